package box

import (
	"crypto/rand"
	"errors"
	"io"

	naclbox "golang.org/x/crypto/nacl/box"
)

// ErrDecryptionFailed is returned when AEAD authentication fails.
var ErrDecryptionFailed = errors.New("box: decryption failed")

// KeyStore owns a secret scalar and its derived public key, and performs
// public-key authenticated ("box") encryption against a peer's public key.
//
// A KeyStore is created once per role for a permanent identity, and once per
// handshake for a session key; per-responder session keystores on the
// initiator are created lazily.
type KeyStore struct {
	public  [KeySize]byte
	private [KeySize]byte
}

// NewKeyStore generates a fresh X25519 keypair from r.
func NewKeyStore(r io.Reader) (*KeyStore, error) {
	pub, priv, err := naclbox.GenerateKey(r)
	if err != nil {
		return nil, err
	}
	return &KeyStore{public: *pub, private: *priv}, nil
}

// NewRandomKeyStore generates a fresh keypair from crypto/rand.
func NewRandomKeyStore() (*KeyStore, error) {
	return NewKeyStore(rand.Reader)
}

// PublicKey returns the 32-byte public key.
func (k *KeyStore) PublicKey() [KeySize]byte { return k.public }

// PublicKeyHex returns the lowercase hex public key.
func (k *KeyStore) PublicKeyHex() string { return PublicKeyHex(k.public) }

// Encrypt produces a Box whose nonce equals nonceBytes and whose ciphertext
// is the crypto_box AEAD output under (own private key, peerPublic).
func (k *KeyStore) Encrypt(plaintext []byte, nonceBytes [NonceSize]byte, peerPublic [KeySize]byte) Box {
	ct := naclbox.Seal(nil, plaintext, &nonceBytes, &peerPublic, &k.private)
	return Box{Nonce: nonceBytes, Ciphertext: ct}
}

// Decrypt authenticates and decrypts b under (own private key, peerPublic).
func (k *KeyStore) Decrypt(b Box, peerPublic [KeySize]byte) ([]byte, error) {
	plain, ok := naclbox.Open(nil, b.Ciphertext, &b.Nonce, &peerPublic, &k.private)
	if !ok {
		return nil, ErrDecryptionFailed
	}
	return plain, nil
}
