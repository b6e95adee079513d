package signaling

import "encoding/hex"

// Path returns the lowercase hex rendezvous path for an initiator's
// permanent public key, the only part of the connection URL the core
// defines; everything else about the URL is opaque to it.
func Path(permanentPublicKey [32]byte) string {
	return hex.EncodeToString(permanentPublicKey[:])
}
