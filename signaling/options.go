package signaling

import "github.com/saltywire/saltyrtc-go/observability"

// Default knobs applied by Options.withDefaults when left at zero.
const (
	DefaultMaxHandshakeMessage = 8 * 1024
	DefaultMaxResponders       = 254
)

// Options bundles the handful of dials a host sets once per connection.
// Transport establishment and reconnect/timeout policy are not here; those
// are the driver's job. Zero values mean "use the default".
type Options struct {
	// MaxHandshakeMessage bounds the size in bytes of an inbound frame's
	// payload (the part after the 24-byte nonce), checked by HandleInbound
	// before any decrypt/decode work. Oversized frames abort the
	// connection with CodeBadMessageLength.
	MaxHandshakeMessage int

	// MaxResponders bounds how many Peer records new-responder
	// notifications may grow the initiator's map to; notifications beyond
	// this are ignored without an error or notification. Responders listed
	// in server-auth are all tracked regardless of this bound.
	MaxResponders int

	// Observer receives lifecycle events; nil means observability.Noop.
	Observer observability.Observer

	OnConnected        func()
	OnConnectionError  func(err error)
	OnConnectionClosed func(code int)
}

func (o Options) withDefaults() Options {
	if o.MaxHandshakeMessage <= 0 {
		o.MaxHandshakeMessage = DefaultMaxHandshakeMessage
	}
	if o.MaxResponders <= 0 {
		o.MaxResponders = DefaultMaxResponders
	}
	if o.Observer == nil {
		o.Observer = observability.Noop
	}
	if o.OnConnected == nil {
		o.OnConnected = func() {}
	}
	if o.OnConnectionError == nil {
		o.OnConnectionError = func(error) {}
	}
	if o.OnConnectionClosed == nil {
		o.OnConnectionClosed = func(int) {}
	}
	return o
}
