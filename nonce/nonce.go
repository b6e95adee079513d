// Package nonce implements the 24-byte wire nonce shared by both the
// public-key and secret-key authenticated encryption primitives.
package nonce

import (
	"github.com/saltywire/saltyrtc-go/cookie"
	"github.com/saltywire/saltyrtc-go/internal/bin"
)

// Len is the fixed wire length of a Nonce.
const Len = 24

// Address identifies a 1-byte routing slot in the relay's address space.
type Address uint8

// Reserved addresses. 0x02-0xFF are responder slots assigned by the server.
const (
	AddressServer    Address = 0x00
	AddressInitiator Address = 0x01
)

// IsResponder reports whether a is in the responder slot range.
func (a Address) IsResponder() bool { return a >= 0x02 }

// Nonce is the 24-byte value prefixing every signaling frame:
//
//	offset 0..16   cookie         (16 bytes)
//	offset 16      source         (1 byte)
//	offset 17      destination    (1 byte)
//	offset 18..20  overflow       (2 bytes, big-endian)
//	offset 20..24  sequence       (4 bytes, big-endian)
type Nonce struct {
	Cookie      cookie.Cookie
	Source      Address
	Destination Address
	Overflow    uint16
	Sequence    uint32
}

// New builds a Nonce from its fields.
func New(c cookie.Cookie, source, destination Address, overflow uint16, sequence uint32) Nonce {
	return Nonce{Cookie: c, Source: source, Destination: destination, Overflow: overflow, Sequence: sequence}
}

// Bytes serializes the nonce to its 24-byte wire form.
func (n Nonce) Bytes() [Len]byte {
	var out [Len]byte
	copy(out[0:16], n.Cookie[:])
	out[16] = byte(n.Source)
	out[17] = byte(n.Destination)
	bin.PutU16BE(out[18:20], n.Overflow)
	bin.PutU32BE(out[20:24], n.Sequence)
	return out
}

// Parse reads a Nonce from any 24-byte slice; it reports false only for a
// slice of any other length and checks none of the field values: the
// nonce is "unsafe" until the frame it prefixes has been
// authenticated by AEAD decryption; until then only Source/Destination may
// be peeked to select a key.
func Parse(b []byte) (Nonce, bool) {
	if len(b) != Len {
		return Nonce{}, false
	}
	var n Nonce
	copy(n.Cookie[:], b[0:16])
	n.Source = Address(b[16])
	n.Destination = Address(b[17])
	n.Overflow = bin.U16BE(b[18:20])
	n.Sequence = bin.U32BE(b[20:24])
	return n, true
}

// PeekAddresses reads only the source and destination fields from the
// first Len bytes of b, without validating the rest of the nonce.
func PeekAddresses(b []byte) (source, destination Address, ok bool) {
	if len(b) < Len {
		return 0, 0, false
	}
	return Address(b[16]), Address(b[17]), true
}
