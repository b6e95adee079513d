// Package peer implements the initiator's per-responder bookkeeping: keys,
// outbound sequence counter, and handshake sub-state.
package peer

import (
	"github.com/saltywire/saltyrtc-go/crypto/box"
	"github.com/saltywire/saltyrtc-go/csn"
)

// State is the per-responder handshake sub-state tracked by the initiator.
type State int

const (
	StateNew State = iota
	StateTokenReceived
	StateKeyReceived
)

func (s State) String() string {
	switch s {
	case StateNew:
		return "new"
	case StateTokenReceived:
		return "token_received"
	case StateKeyReceived:
		return "key_received"
	default:
		return "unknown"
	}
}

// Peer is the initiator's record of one responder.
type Peer struct {
	ID uint8

	PermanentPub *[32]byte // learned from the responder's "token" message
	SessionPub   *[32]byte // learned from the responder's "key" message

	// OwnSession is the initiator's session keystore for this responder.
	// Created lazily on first use.
	OwnSession *box.KeyStore

	State State

	// CSN is the outbound sequence counter the initiator uses when sending
	// to this responder.
	CSN *csn.CombinedSequence
}

// New creates a fresh Peer record in state New with a freshly seeded CSN.
func New(id uint8) (*Peer, error) {
	c, err := csn.NewRandom()
	if err != nil {
		return nil, err
	}
	return &Peer{ID: id, State: StateNew, CSN: c}, nil
}

// EnsureSession lazily creates the per-responder session keystore.
func (p *Peer) EnsureSession() (*box.KeyStore, error) {
	if p.OwnSession != nil {
		return p.OwnSession, nil
	}
	ks, err := box.NewRandomKeyStore()
	if err != nil {
		return nil, err
	}
	p.OwnSession = ks
	return ks, nil
}
