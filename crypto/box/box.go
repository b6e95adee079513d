package box

import (
	"encoding/hex"
	"errors"
)

// Box is the envelope of (nonce, ciphertext) carried on the signaling
// channel once a message is encrypted.
type Box struct {
	Nonce      [NonceSize]byte
	Ciphertext []byte // at least MACSize bytes
}

// ErrBadLength is returned when a wire frame is not longer than the 24-byte
// nonce.
var ErrBadLength = errors.New("box: frame too short")

// Bytes serializes the Box to its wire form: nonce(24) || ciphertext(>=16).
func (b Box) Bytes() []byte {
	out := make([]byte, 0, NonceSize+len(b.Ciphertext))
	out = append(out, b.Nonce[:]...)
	out = append(out, b.Ciphertext...)
	return out
}

// Parse reads a Box out of a wire frame. frame_len must exceed NonceSize,
// i.e. the ciphertext must be non-empty; a ciphertext shorter than MACSize
// is accepted here and fails later at decryption.
func Parse(frame []byte) (Box, error) {
	if len(frame) <= NonceSize {
		return Box{}, ErrBadLength
	}
	var b Box
	copy(b.Nonce[:], frame[:NonceSize])
	b.Ciphertext = append([]byte(nil), frame[NonceSize:]...)
	return b, nil
}

// PublicKeyHex returns the lowercase hex encoding of a 32-byte public key.
func PublicKeyHex(pub [KeySize]byte) string {
	return hex.EncodeToString(pub[:])
}
