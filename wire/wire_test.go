package wire

import "testing"

func TestServerHelloRoundTrip(t *testing.T) {
	in := ServerHello{Key: [32]byte{1, 2, 3}}
	b, err := in.Encode()
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	typ, err := PeekType(b)
	if err != nil || typ != TypeServerHello {
		t.Fatalf("PeekType = %v, %v", typ, err)
	}
	out, err := DecodeServerHello(b)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if out != in {
		t.Fatalf("got %+v, want %+v", out, in)
	}
}

func TestServerAuthRoundTripWithOptionalFields(t *testing.T) {
	in := ServerAuth{
		YourCookie:    [16]byte{9},
		Responders:    []uint8{2, 3, 4},
		HasResponders: true,
	}
	b, err := in.Encode()
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	out, err := DecodeServerAuth(b)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if out.YourCookie != in.YourCookie {
		t.Fatalf("cookie mismatch")
	}
	if len(out.Responders) != 3 || out.Responders[0] != 2 || out.Responders[2] != 4 {
		t.Fatalf("responders mismatch: %v", out.Responders)
	}
	if out.HasInitiatorConn {
		t.Fatalf("initiator_connected should be absent")
	}
}

func TestServerAuthRoundTripResponderSide(t *testing.T) {
	in := ServerAuth{
		YourCookie:       [16]byte{1},
		InitiatorConnected: true,
		HasInitiatorConn:   true,
	}
	b, err := in.Encode()
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	out, err := DecodeServerAuth(b)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if !out.HasInitiatorConn || !out.InitiatorConnected {
		t.Fatalf("expected initiator_connected=true, got %+v", out)
	}
	if out.HasResponders {
		t.Fatalf("responders should be absent")
	}
}

func TestDecodeWrongTypeFails(t *testing.T) {
	b, err := ServerHello{}.Encode()
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if _, err := DecodeClientHello(b); err == nil {
		t.Fatalf("expected DecodeClientHello to reject a server-hello frame")
	}
}

func TestDecodeRejectsWrongFieldLength(t *testing.T) {
	bad, err := encodeMap(map[string]interface{}{
		"type": string(TypeToken),
		"key":  []byte{1, 2, 3},
	})
	if err != nil {
		t.Fatalf("encodeMap: %v", err)
	}
	if _, err := DecodeToken(bad); err == nil {
		t.Fatalf("expected DecodeToken to reject a short key")
	}
}

func TestNewResponderAndDropResponderRoundTrip(t *testing.T) {
	nr := NewResponder{ID: 0x07}
	b, err := nr.Encode()
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	out, err := DecodeNewResponder(b)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if out.ID != 0x07 {
		t.Fatalf("got id=%x, want 0x07", out.ID)
	}

	dr := DropResponder{ID: 0x09}
	b2, err := dr.Encode()
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	out2, err := DecodeDropResponder(b2)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if out2.ID != 0x09 {
		t.Fatalf("got id=%x, want 0x09", out2.ID)
	}
}

func TestNewInitiatorRoundTrip(t *testing.T) {
	b, err := NewInitiator{}.Encode()
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if _, err := DecodeNewInitiator(b); err != nil {
		t.Fatalf("Decode: %v", err)
	}
}
