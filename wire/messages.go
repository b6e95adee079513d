package wire

// ServerHello is sent unencrypted by the server to open a connection.
type ServerHello struct {
	Key [32]byte
}

func (m ServerHello) Encode() ([]byte, error) {
	return encodeMap(map[string]interface{}{
		"type": string(TypeServerHello),
		"key":  m.Key[:],
	})
}

func DecodeServerHello(b []byte) (ServerHello, error) {
	m, err := decodeMap(b)
	if err != nil {
		return ServerHello{}, err
	}
	if err := requireType(m, TypeServerHello); err != nil {
		return ServerHello{}, err
	}
	key, err := getBytes(m, "key", 32)
	if err != nil {
		return ServerHello{}, err
	}
	var out ServerHello
	copy(out.Key[:], key)
	return out, nil
}

// ClientHello is sent unencrypted by the responder to the server.
type ClientHello struct {
	Key [32]byte
}

func (m ClientHello) Encode() ([]byte, error) {
	return encodeMap(map[string]interface{}{
		"type": string(TypeClientHello),
		"key":  m.Key[:],
	})
}

func DecodeClientHello(b []byte) (ClientHello, error) {
	m, err := decodeMap(b)
	if err != nil {
		return ClientHello{}, err
	}
	if err := requireType(m, TypeClientHello); err != nil {
		return ClientHello{}, err
	}
	key, err := getBytes(m, "key", 32)
	if err != nil {
		return ClientHello{}, err
	}
	var out ClientHello
	copy(out.Key[:], key)
	return out, nil
}

// ClientAuth is sent encrypted (permanent<->server) by both roles.
type ClientAuth struct {
	YourCookie [16]byte
}

func (m ClientAuth) Encode() ([]byte, error) {
	return encodeMap(map[string]interface{}{
		"type":        string(TypeClientAuth),
		"your_cookie": m.YourCookie[:],
	})
}

func DecodeClientAuth(b []byte) (ClientAuth, error) {
	m, err := decodeMap(b)
	if err != nil {
		return ClientAuth{}, err
	}
	if err := requireType(m, TypeClientAuth); err != nil {
		return ClientAuth{}, err
	}
	yc, err := getBytes(m, "your_cookie", 16)
	if err != nil {
		return ClientAuth{}, err
	}
	var out ClientAuth
	copy(out.YourCookie[:], yc)
	return out, nil
}

// ServerAuth concludes the server handshake.
type ServerAuth struct {
	YourCookie         [16]byte
	Responders         []uint8 // initiator only
	HasResponders      bool
	InitiatorConnected bool // responder only
	HasInitiatorConn   bool
}

func (m ServerAuth) Encode() ([]byte, error) {
	fields := map[string]interface{}{
		"type":        string(TypeServerAuth),
		"your_cookie": m.YourCookie[:],
	}
	if m.HasResponders {
		ids := make([]interface{}, len(m.Responders))
		for i, id := range m.Responders {
			ids[i] = id
		}
		fields["responders"] = ids
	}
	if m.HasInitiatorConn {
		fields["initiator_connected"] = m.InitiatorConnected
	}
	return encodeMap(fields)
}

func DecodeServerAuth(b []byte) (ServerAuth, error) {
	m, err := decodeMap(b)
	if err != nil {
		return ServerAuth{}, err
	}
	if err := requireType(m, TypeServerAuth); err != nil {
		return ServerAuth{}, err
	}
	yc, err := getBytes(m, "your_cookie", 16)
	if err != nil {
		return ServerAuth{}, err
	}
	var out ServerAuth
	copy(out.YourCookie[:], yc)
	if responders, err := getUint8SliceOptional(m, "responders"); err != nil {
		return ServerAuth{}, err
	} else if responders != nil {
		out.Responders = responders
		out.HasResponders = true
	}
	if v, ok := getBoolOptional(m, "initiator_connected"); ok {
		out.InitiatorConnected = v
		out.HasInitiatorConn = true
	}
	return out, nil
}

// NewResponder is a server notification that a new responder joined.
type NewResponder struct {
	ID uint8
}

func (m NewResponder) Encode() ([]byte, error) {
	return encodeMap(map[string]interface{}{
		"type": string(TypeNewResponder),
		"id":   m.ID,
	})
}

func DecodeNewResponder(b []byte) (NewResponder, error) {
	m, err := decodeMap(b)
	if err != nil {
		return NewResponder{}, err
	}
	if err := requireType(m, TypeNewResponder); err != nil {
		return NewResponder{}, err
	}
	id, err := getUint8(m, "id")
	if err != nil {
		return NewResponder{}, err
	}
	return NewResponder{ID: id}, nil
}

// NewInitiator is a server notification (responder only) that the
// initiator connected.
type NewInitiator struct{}

func (m NewInitiator) Encode() ([]byte, error) {
	return encodeMap(map[string]interface{}{"type": string(TypeNewInitiator)})
}

func DecodeNewInitiator(b []byte) (NewInitiator, error) {
	m, err := decodeMap(b)
	if err != nil {
		return NewInitiator{}, err
	}
	if err := requireType(m, TypeNewInitiator); err != nil {
		return NewInitiator{}, err
	}
	return NewInitiator{}, nil
}

// DropResponder tells the server to disconnect a responder (initiator only).
type DropResponder struct {
	ID uint8
}

func (m DropResponder) Encode() ([]byte, error) {
	return encodeMap(map[string]interface{}{
		"type": string(TypeDropResponder),
		"id":   m.ID,
	})
}

func DecodeDropResponder(b []byte) (DropResponder, error) {
	m, err := decodeMap(b)
	if err != nil {
		return DropResponder{}, err
	}
	if err := requireType(m, TypeDropResponder); err != nil {
		return DropResponder{}, err
	}
	id, err := getUint8(m, "id")
	if err != nil {
		return DropResponder{}, err
	}
	return DropResponder{ID: id}, nil
}

// Token carries the responder's permanent public key, authenticated with
// the shared auth token.
type Token struct {
	Key [32]byte
}

func (m Token) Encode() ([]byte, error) {
	return encodeMap(map[string]interface{}{
		"type": string(TypeToken),
		"key":  m.Key[:],
	})
}

func DecodeToken(b []byte) (Token, error) {
	m, err := decodeMap(b)
	if err != nil {
		return Token{}, err
	}
	if err := requireType(m, TypeToken); err != nil {
		return Token{}, err
	}
	key, err := getBytes(m, "key", 32)
	if err != nil {
		return Token{}, err
	}
	var out Token
	copy(out.Key[:], key)
	return out, nil
}

// KeyMsg carries a session public key. Named KeyMsg to avoid colliding
// with the "key" field name used across these messages.
type KeyMsg struct {
	Key [32]byte
}

func (m KeyMsg) Encode() ([]byte, error) {
	return encodeMap(map[string]interface{}{
		"type": string(TypeKey),
		"key":  m.Key[:],
	})
}

func DecodeKeyMsg(b []byte) (KeyMsg, error) {
	m, err := decodeMap(b)
	if err != nil {
		return KeyMsg{}, err
	}
	if err := requireType(m, TypeKey); err != nil {
		return KeyMsg{}, err
	}
	key, err := getBytes(m, "key", 32)
	if err != nil {
		return KeyMsg{}, err
	}
	var out KeyMsg
	copy(out.Key[:], key)
	return out, nil
}

// Auth concludes the peer handshake, echoing back the peer's cookie.
type Auth struct {
	YourCookie [16]byte
}

func (m Auth) Encode() ([]byte, error) {
	return encodeMap(map[string]interface{}{
		"type":        string(TypeAuth),
		"your_cookie": m.YourCookie[:],
	})
}

func DecodeAuth(b []byte) (Auth, error) {
	m, err := decodeMap(b)
	if err != nil {
		return Auth{}, err
	}
	if err := requireType(m, TypeAuth); err != nil {
		return Auth{}, err
	}
	yc, err := getBytes(m, "your_cookie", 16)
	if err != nil {
		return Auth{}, err
	}
	var out Auth
	copy(out.YourCookie[:], yc)
	return out, nil
}
