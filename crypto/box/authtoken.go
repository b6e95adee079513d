package box

import (
	"crypto/rand"
	"io"

	naclsecretbox "golang.org/x/crypto/nacl/secretbox"
)

// AuthToken owns a 32-byte symmetric secret and performs secret-key
// authenticated ("secretbox") encryption. It is created by the initiator
// out-of-band, conveyed to the responder through a side channel, and
// consumed exactly once to authenticate the responder's first message to
// the initiator.
type AuthToken struct {
	secret [KeySize]byte
}

// NewAuthToken draws a fresh 32-byte secret from r.
func NewAuthToken(r io.Reader) (*AuthToken, error) {
	var secret [KeySize]byte
	if _, err := io.ReadFull(r, secret[:]); err != nil {
		return nil, err
	}
	return &AuthToken{secret: secret}, nil
}

// NewRandomAuthToken draws a fresh secret from crypto/rand.
func NewRandomAuthToken() (*AuthToken, error) {
	return NewAuthToken(rand.Reader)
}

// AuthTokenFromBytes wraps an existing 32-byte secret, e.g. one conveyed
// through a side channel.
func AuthTokenFromBytes(secret [KeySize]byte) *AuthToken {
	return &AuthToken{secret: secret}
}

// Secret returns the 32-byte secret.
func (a *AuthToken) Secret() [KeySize]byte { return a.secret }

// Encrypt produces a Box whose nonce equals nonceBytes and whose ciphertext
// is the crypto_secretbox AEAD output under the shared secret.
func (a *AuthToken) Encrypt(plaintext []byte, nonceBytes [NonceSize]byte) Box {
	ct := naclsecretbox.Seal(nil, plaintext, &nonceBytes, &a.secret)
	return Box{Nonce: nonceBytes, Ciphertext: ct}
}

// Decrypt authenticates and decrypts b under the shared secret.
func (a *AuthToken) Decrypt(b Box) ([]byte, error) {
	plain, ok := naclsecretbox.Open(nil, b.Ciphertext, &b.Nonce, &a.secret)
	if !ok {
		return nil, ErrDecryptionFailed
	}
	return plain, nil
}
