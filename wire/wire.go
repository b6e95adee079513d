// Package wire implements the self-describing binary map encoding of the
// signaling protocol's small structured messages (spec.md §6), using
// MessagePack maps the same way the messages are plain objects in the
// reference implementation this protocol is modeled on.
package wire

import (
	"errors"
	"fmt"

	"github.com/vmihailenco/msgpack/v5"
)

// Type is the "type" discriminator every message carries.
type Type string

const (
	TypeServerHello   Type = "server-hello"
	TypeClientHello   Type = "client-hello"
	TypeClientAuth    Type = "client-auth"
	TypeServerAuth    Type = "server-auth"
	TypeNewResponder  Type = "new-responder"
	TypeNewInitiator  Type = "new-initiator"
	TypeDropResponder Type = "drop-responder"
	TypeToken         Type = "token"
	TypeKey           Type = "key"
	TypeAuth          Type = "auth"
)

// ErrBadMessage is returned when a message fails to decode into the
// expected map shape, or a field has the wrong type or length.
var ErrBadMessage = errors.New("wire: bad message")

func encodeMap(m map[string]interface{}) ([]byte, error) {
	b, err := msgpack.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadMessage, err)
	}
	return b, nil
}

func decodeMap(b []byte) (map[string]interface{}, error) {
	var m map[string]interface{}
	if err := msgpack.Unmarshal(b, &m); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadMessage, err)
	}
	return m, nil
}

// PeekType decodes only enough of b to read the "type" discriminator.
func PeekType(b []byte) (Type, error) {
	m, err := decodeMap(b)
	if err != nil {
		return "", err
	}
	t, ok := m["type"].(string)
	if !ok || t == "" {
		return "", fmt.Errorf("%w: missing type", ErrBadMessage)
	}
	return Type(t), nil
}

func requireType(m map[string]interface{}, want Type) error {
	t, ok := m["type"].(string)
	if !ok || Type(t) != want {
		return fmt.Errorf("%w: expected type %q, got %v", ErrBadMessage, want, m["type"])
	}
	return nil
}

func getBytes(m map[string]interface{}, field string, length int) ([]byte, error) {
	v, ok := m[field]
	if !ok {
		return nil, fmt.Errorf("%w: missing field %q", ErrBadMessage, field)
	}
	b, ok := v.([]byte)
	if !ok {
		return nil, fmt.Errorf("%w: field %q is not bytes", ErrBadMessage, field)
	}
	if length > 0 && len(b) != length {
		return nil, fmt.Errorf("%w: field %q has length %d, want %d", ErrBadMessage, field, len(b), length)
	}
	return b, nil
}

func toUint64(v interface{}) (uint64, bool) {
	switch n := v.(type) {
	case uint64:
		return n, true
	case uint32:
		return uint64(n), true
	case uint16:
		return uint64(n), true
	case uint8:
		return uint64(n), true
	case uint:
		return uint64(n), true
	case int64:
		if n < 0 {
			return 0, false
		}
		return uint64(n), true
	case int32:
		if n < 0 {
			return 0, false
		}
		return uint64(n), true
	case int16:
		if n < 0 {
			return 0, false
		}
		return uint64(n), true
	case int8:
		if n < 0 {
			return 0, false
		}
		return uint64(n), true
	case int:
		if n < 0 {
			return 0, false
		}
		return uint64(n), true
	default:
		return 0, false
	}
}

func getUint8(m map[string]interface{}, field string) (uint8, error) {
	v, ok := m[field]
	if !ok {
		return 0, fmt.Errorf("%w: missing field %q", ErrBadMessage, field)
	}
	n, ok := toUint64(v)
	if !ok || n > 0xFF {
		return 0, fmt.Errorf("%w: field %q is not a valid uint8", ErrBadMessage, field)
	}
	return uint8(n), nil
}

func getUint8SliceOptional(m map[string]interface{}, field string) ([]uint8, error) {
	v, ok := m[field]
	if !ok || v == nil {
		return nil, nil
	}
	arr, ok := v.([]interface{})
	if !ok {
		return nil, fmt.Errorf("%w: field %q is not an array", ErrBadMessage, field)
	}
	out := make([]uint8, 0, len(arr))
	for _, e := range arr {
		n, ok := toUint64(e)
		if !ok || n > 0xFF {
			return nil, fmt.Errorf("%w: field %q has a non-uint8 element", ErrBadMessage, field)
		}
		out = append(out, uint8(n))
	}
	return out, nil
}

func getBoolOptional(m map[string]interface{}, field string) (bool, bool) {
	v, ok := m[field]
	if !ok || v == nil {
		return false, false
	}
	b, ok := v.(bool)
	return b, ok
}
