package signaling

import "github.com/saltywire/saltyrtc-go/crypto/box"

// keyKind tags which key material a keySelection carries, mirroring the
// tagged variant from the key selection matrix: PermanentToServer,
// AuthToken, PermanentToPeer(pub), SessionToPeer(own, peerSession).
type keyKind int

const (
	keyPermanentServer keyKind = iota
	keyAuthTokenKind
	keyPermanentPeer
	keySessionPeer
)

// keySelection picks the concrete key material for one encrypt/decrypt
// call, driven by (role, destination kind, message type, peer state) at
// each call site rather than branching on message type inside a generic
// send path.
type keySelection struct {
	kind    keyKind
	ks      *box.KeyStore
	token   *box.AuthToken
	peerPub [32]byte
}

func (k keySelection) encrypt(plaintext []byte, nonceBytes [box.NonceSize]byte) box.Box {
	if k.kind == keyAuthTokenKind {
		return k.token.Encrypt(plaintext, nonceBytes)
	}
	return k.ks.Encrypt(plaintext, nonceBytes, k.peerPub)
}

func (k keySelection) decrypt(b box.Box) ([]byte, error) {
	if k.kind == keyAuthTokenKind {
		return k.token.Decrypt(b)
	}
	return k.ks.Decrypt(b, k.peerPub)
}
