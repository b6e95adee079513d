// Package cookie implements the 16-byte per-peer cookie used to bind
// signaling replies to requests.
package cookie

import (
	"crypto/rand"
	"crypto/subtle"
	"io"
)

// Len is the fixed byte length of a Cookie.
const Len = 16

// Cookie is 16 random bytes exchanged during the server handshake and
// echoed back in your_cookie fields.
type Cookie [Len]byte

// New draws a fresh random Cookie from r.
func New(r io.Reader) (Cookie, error) {
	var c Cookie
	if _, err := io.ReadFull(r, c[:]); err != nil {
		return Cookie{}, err
	}
	return c, nil
}

// NewRandom draws a fresh random Cookie from crypto/rand.
func NewRandom() (Cookie, error) {
	return New(rand.Reader)
}

// NewDistinctFrom repeatedly draws random cookies from r until it finds one
// that differs from theirs, satisfying the invariant that a connection's
// (ours, theirs) pair is never equal. Collisions are astronomically
// unlikely (2^-128), so this never needs a retry cap.
func NewDistinctFrom(r io.Reader, theirs Cookie) (Cookie, error) {
	for {
		c, err := New(r)
		if err != nil {
			return Cookie{}, err
		}
		if !c.Equal(theirs) {
			return c, nil
		}
	}
}

// Equal reports whether c and other hold the same 16 bytes.
func (c Cookie) Equal(other Cookie) bool {
	return subtle.ConstantTimeCompare(c[:], other[:]) == 1
}

// Bytes returns the cookie as a byte slice.
func (c Cookie) Bytes() []byte {
	return c[:]
}

// FromBytes parses a Cookie out of a 16-byte slice.
func FromBytes(b []byte) (Cookie, bool) {
	var c Cookie
	if len(b) != Len {
		return Cookie{}, false
	}
	copy(c[:], b)
	return c, true
}
