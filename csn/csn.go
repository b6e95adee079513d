// Package csn implements the combined sequence number: a conceptual 48-bit
// monotonic counter split into a 32-bit sequence and a 16-bit overflow.
package csn

import (
	"crypto/rand"
	"encoding/binary"
	"errors"
	"io"
)

// ErrOverflowExhausted is returned by Next once the 16-bit overflow field
// would itself overflow. This is a fatal, catastrophic protocol error: it
// means the whole 48-bit counter space for a single destination is used up.
var ErrOverflowExhausted = errors.New("csn: overflow exhausted")

// CombinedSequence is a per-destination monotonic counter. It is not safe
// for concurrent use; callers serialize access per peer.
type CombinedSequence struct {
	sequence uint32
	overflow uint16
}

// New creates a CombinedSequence with a uniformly random initial sequence
// and zero overflow, as required by the wire protocol.
func New(r io.Reader) (*CombinedSequence, error) {
	var buf [4]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return nil, err
	}
	return &CombinedSequence{sequence: binary.BigEndian.Uint32(buf[:])}, nil
}

// NewRandom creates a CombinedSequence seeded from crypto/rand.
func NewRandom() (*CombinedSequence, error) {
	return New(rand.Reader)
}

// Sequence returns the current sequence field without advancing.
func (c *CombinedSequence) Sequence() uint32 { return c.sequence }

// Overflow returns the current overflow field without advancing.
func (c *CombinedSequence) Overflow() uint16 { return c.overflow }

// Next advances the counter and returns the post-increment (sequence,
// overflow) pair. The pair (overflow, sequence) is strictly monotonically
// increasing across calls.
func (c *CombinedSequence) Next() (sequence uint32, overflow uint16, err error) {
	if uint64(c.sequence)+1 >= 1<<32 {
		if c.overflow >= ^uint16(0) {
			return 0, 0, ErrOverflowExhausted
		}
		c.sequence = 0
		c.overflow++
	} else {
		c.sequence++
	}
	return c.sequence, c.overflow, nil
}
