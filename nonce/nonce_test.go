package nonce

import (
	"testing"

	"github.com/saltywire/saltyrtc-go/cookie"
)

func TestParseBytesRoundTrip(t *testing.T) {
	c := cookie.Cookie{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15, 16}
	n := New(c, AddressInitiator, Address(0x03), 0x0102, 0x0A0B0C0D)

	b := n.Bytes()
	if len(b) != Len {
		t.Fatalf("serialized nonce length = %d, want %d", len(b), Len)
	}

	got, ok := Parse(b[:])
	if !ok {
		t.Fatalf("Parse rejected a valid nonce")
	}
	if got != n {
		t.Fatalf("round trip mismatch: got %+v, want %+v", got, n)
	}
}

func TestParseRejectsWrongLength(t *testing.T) {
	if _, ok := Parse(make([]byte, Len-1)); ok {
		t.Fatalf("expected Parse to reject a short slice")
	}
	if _, ok := Parse(make([]byte, Len+1)); ok {
		t.Fatalf("expected Parse to reject a long slice")
	}
}

func TestPeekAddresses(t *testing.T) {
	c := cookie.Cookie{}
	n := New(c, AddressServer, Address(0x02), 0, 0)
	b := n.Bytes()

	src, dst, ok := PeekAddresses(b[:])
	if !ok {
		t.Fatalf("PeekAddresses failed on a valid nonce")
	}
	if src != AddressServer || dst != Address(0x02) {
		t.Fatalf("got src=%v dst=%v, want src=%v dst=%v", src, dst, AddressServer, Address(0x02))
	}
}

func TestIsResponder(t *testing.T) {
	cases := map[Address]bool{
		AddressServer:    false,
		AddressInitiator: false,
		0x02:             true,
		0xFF:             true,
	}
	for addr, want := range cases {
		if got := addr.IsResponder(); got != want {
			t.Fatalf("Address(%x).IsResponder() = %v, want %v", byte(addr), got, want)
		}
	}
}
