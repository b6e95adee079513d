package signaling

import "github.com/saltywire/saltyrtc-go/nonce"

// Outbound is one frame the engine produced, addressed to Receiver, ready
// for the host to hand to the transport unchanged.
type Outbound struct {
	Receiver nonce.Address
	Frame    []byte
}
