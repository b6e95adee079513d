// Package wsutil computes the websocket per-message read limit that
// accommodates the signaling frames this module produces.
package wsutil

import "math"

const (
	// Defaults used when a caller passes zero or a negative value. The
	// handshake default equals signaling.DefaultMaxHandshakeMessage.
	defaultMaxHandshakeMessage = 8 * 1024
	defaultMaxChunkSize        = 16 * 1024

	// nonceOverheadBytes is the fixed nonce prefix on every signaling frame.
	nonceOverheadBytes = 24
)

// ReadLimit returns a conservative per-message websocket read limit (in
// bytes) that can accommodate both handshake frames and chunked payload
// frames. Callers pass the configured maxHandshakeMessage (as in
// signaling.Options.MaxHandshakeMessage) and the chunk size ceiling they use
// (zero/negative means "use defaults").
func ReadLimit(maxHandshakeMessage int, maxChunkSize int) int64 {
	hm := int64(maxHandshakeMessage)
	if hm <= 0 {
		hm = defaultMaxHandshakeMessage
	}
	cs := int64(maxChunkSize)
	if cs <= 0 {
		cs = defaultMaxChunkSize
	}

	handshakeMax := int64(nonceOverheadBytes)
	if hm > math.MaxInt64-handshakeMax {
		handshakeMax = math.MaxInt64
	} else {
		handshakeMax += hm
	}

	chunkMax := int64(nonceOverheadBytes)
	if cs > math.MaxInt64-chunkMax {
		chunkMax = math.MaxInt64
	} else {
		chunkMax += cs
	}

	if chunkMax > handshakeMax {
		return chunkMax
	}
	return handshakeMax
}
