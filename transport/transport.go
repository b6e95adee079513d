// Package transport adapts a websocket connection to the abstract binary
// frame channel the signaling engine speaks, carrying the saltyrtc-1.0
// subprotocol and the close-code table of the wire protocol.
package transport

import (
	"context"
	"errors"
	"net/http"

	"github.com/gorilla/websocket"

	"github.com/saltywire/saltyrtc-go/realtime/ws"
)

// Subprotocol is the negotiated websocket subprotocol identifier.
const Subprotocol = "saltyrtc-1.0"

// Close codes, mapped 1:1 to the wire protocol's close-code table.
const (
	CloseGoingAway        = 1001
	CloseSubprotocolError = 1002
	ClosePathFull         = 3000
	CloseProtocolError    = 3001
	CloseInternalError    = 3002
	CloseHandover         = 3003
	CloseDropped          = 3004
)

// BinaryTransport is a bidirectional binary frame channel. The engine
// assumes frame boundaries are preserved: one send is one receive.
type BinaryTransport interface {
	ReadBinary(ctx context.Context) ([]byte, error)
	WriteBinary(ctx context.Context, b []byte) error
	// CloseWithCode closes the transport, sending a close frame carrying
	// one of the codes above.
	CloseWithCode(code int) error
	Close() error
}

var errUnexpectedText = errors.New("transport: unexpected text frame")

// WebSocketBinaryTransport adapts a *ws.Conn to BinaryTransport, rejecting
// text frames as protocol errors.
type WebSocketBinaryTransport struct {
	c *ws.Conn
}

// NewWebSocketBinaryTransport wraps an established websocket connection.
func NewWebSocketBinaryTransport(c *ws.Conn) *WebSocketBinaryTransport {
	return &WebSocketBinaryTransport{c: c}
}

func (t *WebSocketBinaryTransport) ReadBinary(ctx context.Context) ([]byte, error) {
	for {
		mt, b, err := t.c.ReadMessage(ctx)
		if err != nil {
			return nil, err
		}
		switch mt {
		case websocket.BinaryMessage:
			return b, nil
		case websocket.TextMessage:
			return nil, errUnexpectedText
		default:
			continue
		}
	}
}

func (t *WebSocketBinaryTransport) WriteBinary(ctx context.Context, b []byte) error {
	return t.c.WriteMessage(ctx, websocket.BinaryMessage, b)
}

func (t *WebSocketBinaryTransport) CloseWithCode(code int) error {
	return t.c.CloseWithStatus(code, "")
}

func (t *WebSocketBinaryTransport) Close() error {
	return t.c.Close()
}

// Dial opens a saltyrtc-1.0 websocket connection to the relay at urlStr.
func Dial(ctx context.Context, urlStr string, header http.Header) (*WebSocketBinaryTransport, *http.Response, error) {
	c, resp, err := ws.Dial(ctx, urlStr, ws.DialOptions{
		Header:       header,
		Subprotocols: []string{Subprotocol},
	})
	if err != nil {
		return nil, resp, err
	}
	return NewWebSocketBinaryTransport(c), resp, nil
}

// UpgradeOptions controls the relay-side websocket upgrade.
type UpgradeOptions struct {
	ReadBufferSize  int
	WriteBufferSize int
	CheckOrigin     func(r *http.Request) bool
}

// Upgrade upgrades an inbound HTTP request to a saltyrtc-1.0 websocket
// connection, for use by a relay server implementation.
func Upgrade(w http.ResponseWriter, r *http.Request, opts UpgradeOptions) (*WebSocketBinaryTransport, error) {
	c, err := ws.Upgrade(w, r, ws.UpgraderOptions{
		ReadBufferSize:  opts.ReadBufferSize,
		WriteBufferSize: opts.WriteBufferSize,
		CheckOrigin:     opts.CheckOrigin,
		Subprotocols:    []string{Subprotocol},
	})
	if err != nil {
		return nil, err
	}
	return NewWebSocketBinaryTransport(c), nil
}
