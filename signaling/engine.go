// Package signaling implements the client-side signaling state machine:
// the server handshake, the initiator/responder peer handshake, framing,
// and key selection. It is organized as a single explicit step function,
// HandleInbound, so the whole state machine is testable without a live
// transport.
package signaling

import (
	"errors"
	"sort"
	"sync"

	"github.com/saltywire/saltyrtc-go/cookie"
	"github.com/saltywire/saltyrtc-go/crypto/box"
	"github.com/saltywire/saltyrtc-go/csn"
	"github.com/saltywire/saltyrtc-go/nonce"
	"github.com/saltywire/saltyrtc-go/observability"
	"github.com/saltywire/saltyrtc-go/peer"
	"github.com/saltywire/saltyrtc-go/saltyerr"
	"github.com/saltywire/saltyrtc-go/wire"
)

// Engine drives one side of the signaling protocol. It is not safe for
// concurrent use: a single owning goroutine must call HandleInbound
// sequentially, matching the protocol's single-reader/single-writer model.
type Engine struct {
	role Role
	own  *box.KeyStore
	opts Options

	state State

	serverPub      [32]byte
	serverPubKnown bool

	ours cookie.Cookie

	serverCSN *csn.CombinedSequence

	selfAddress  nonce.Address
	addressKnown bool

	token *box.AuthToken

	// initiator-only
	peers  map[uint8]*peer.Peer
	chosen *peer.Peer

	// responder-only
	initiatorPermanentPub [32]byte
	initiatorSessionPub   [32]byte
	initiatorCSN          *csn.CombinedSequence
	localSession          *box.KeyStore
	subState              responderSubState
	initiatorConnected    bool

	closeOnce sync.Once
}

// NewInitiator creates an Engine in the initiator role. own is the
// initiator's permanent keystore; token is the auth token the initiator
// generated out-of-band and will convey to the responder through a side
// channel.
func NewInitiator(own *box.KeyStore, token *box.AuthToken, opts Options) *Engine {
	e := &Engine{
		role:         RoleInitiator,
		own:          own,
		token:        token,
		opts:         opts.withDefaults(),
		state:        StateNew,
		selfAddress:  nonce.AddressInitiator,
		addressKnown: true,
		peers:        make(map[uint8]*peer.Peer),
	}
	e.opts.Observer.HandshakeStarted(observability.RoleInitiator)
	return e
}

// NewResponder creates an Engine in the responder role. own is the
// responder's permanent keystore; token and initiatorPermanentPub are the
// auth token and the initiator's permanent public key, both conveyed
// out-of-band (the same side channel a responder uses to learn the
// rendezvous path, see Path).
func NewResponder(own *box.KeyStore, token *box.AuthToken, initiatorPermanentPub [32]byte, opts Options) *Engine {
	e := &Engine{
		role:                  RoleResponder,
		own:                   own,
		token:                 token,
		initiatorPermanentPub: initiatorPermanentPub,
		opts:                  opts.withDefaults(),
		state:                 StateNew,
	}
	e.opts.Observer.HandshakeStarted(observability.RoleResponder)
	return e
}

// State returns the engine's current coarse state.
func (e *Engine) State() State { return e.state }

// Close idempotently tears the engine down: it clears key material
// references, resets internal maps, and notifies the host exactly once.
func (e *Engine) Close(code int) {
	e.closeOnce.Do(func() {
		e.state = StateClosing
		e.reset()
		e.state = StateClosed
		e.opts.Observer.Closed(e.obsRole())
		e.opts.OnConnectionClosed(code)
	})
}

// HandleInbound is the engine's single step function: given the next
// inbound frame, it advances the state machine and returns zero or more
// frames for the host to send.
func (e *Engine) HandleInbound(frame []byte) ([]Outbound, error) {
	if e.state == StateClosed || e.state == StateClosing || e.state == StateOpen {
		return nil, nil
	}
	if len(frame) < nonce.Len {
		return nil, e.abort(currentStage(e.state), saltyerr.CodeBadMessageLength, errBadLength)
	}
	if len(frame)-nonce.Len > e.opts.MaxHandshakeMessage {
		return nil, e.abort(currentStage(e.state), saltyerr.CodeBadMessageLength, errMessageTooLarge)
	}
	n, _ := nonce.Parse(frame[:nonce.Len])
	if e.addressKnown && n.Destination != e.selfAddress {
		return nil, e.abort(currentStage(e.state), saltyerr.CodeBadNonceDestination, nil)
	}

	switch {
	case n.Source == nonce.AddressServer:
		return e.handleFromServer(n, frame)
	case n.Source == nonce.AddressInitiator:
		if e.role != RoleResponder {
			return nil, e.abort(currentStage(e.state), saltyerr.CodeBadNonceSource, nil)
		}
		return e.handleFromInitiator(n, frame)
	default:
		if e.role != RoleInitiator {
			return nil, e.abort(currentStage(e.state), saltyerr.CodeBadNonceSource, nil)
		}
		return e.handleFromResponder(n, frame)
	}
}

var errBadLength = errors.New("signaling: frame shorter than a nonce")
var errMessageTooLarge = errors.New("signaling: message exceeds MaxHandshakeMessage")

// send builds an outbound frame to receiver, selecting its CSN and, when
// sel is non-nil, encrypting under the selected key. sel is nil only for
// the responder's unencrypted client-hello.
func (e *Engine) send(receiver nonce.Address, payload []byte, sel *keySelection) (Outbound, error) {
	cs, err := e.csnFor(receiver)
	if err != nil {
		return Outbound{}, err
	}
	seq, overflow, err := cs.Next()
	if err != nil {
		return Outbound{}, e.abort(currentStage(e.state), saltyerr.CodeOverflowExhausted, err)
	}
	n := nonce.New(e.ours, e.selfAddress, receiver, overflow, seq)
	nb := n.Bytes()

	var frame []byte
	if sel == nil {
		frame = make([]byte, 0, nonce.Len+len(payload))
		frame = append(frame, nb[:]...)
		frame = append(frame, payload...)
	} else {
		frame = sel.encrypt(payload, nb).Bytes()
	}
	return Outbound{Receiver: receiver, Frame: frame}, nil
}

func (e *Engine) csnFor(receiver nonce.Address) (*csn.CombinedSequence, error) {
	switch {
	case receiver == nonce.AddressServer:
		return e.serverCSN, nil
	case receiver == nonce.AddressInitiator:
		if e.role != RoleResponder {
			return nil, e.abort(currentStage(e.state), saltyerr.CodeBadReceiver, nil)
		}
		return e.initiatorCSN, nil
	case receiver.IsResponder():
		if e.role != RoleInitiator {
			return nil, e.abort(currentStage(e.state), saltyerr.CodeBadReceiver, nil)
		}
		p, ok := e.peers[uint8(receiver)]
		if !ok {
			return nil, e.abort(currentStage(e.state), saltyerr.CodeBadReceiver, nil)
		}
		return p.CSN, nil
	default:
		return nil, e.abort(currentStage(e.state), saltyerr.CodeBadReceiver, nil)
	}
}

func (e *Engine) permanentServerKey() *keySelection {
	return &keySelection{kind: keyPermanentServer, ks: e.own, peerPub: e.serverPub}
}

func (e *Engine) abort(stage saltyerr.Stage, code saltyerr.Code, err error) error {
	se := saltyerr.New(stage, code, err)
	e.opts.Observer.Aborted(e.obsRole(), stageFor(e.state), abortReasonFor(code))
	e.opts.OnConnectionError(se)
	e.reset()
	return se
}

// reset restores the engine to a fresh New state, dropping all key
// material and peer bookkeeping accumulated so far.
func (e *Engine) reset() {
	e.state = StateNew
	e.serverPubKnown = false
	e.serverPub = [32]byte{}
	e.ours = cookie.Cookie{}
	e.serverCSN = nil

	if e.role == RoleInitiator {
		e.selfAddress = nonce.AddressInitiator
		e.addressKnown = true
		e.peers = make(map[uint8]*peer.Peer)
		e.chosen = nil
	} else {
		e.selfAddress = 0
		e.addressKnown = false
		e.initiatorSessionPub = [32]byte{}
		e.initiatorCSN = nil
		e.localSession = nil
		e.subState = subStateNew
		e.initiatorConnected = false
	}
}

func (e *Engine) obsRole() observability.Role {
	if e.role == RoleInitiator {
		return observability.RoleInitiator
	}
	return observability.RoleResponder
}

func stageFor(s State) observability.HandshakeStage {
	if s == StatePeerHandshake {
		return observability.StagePeer
	}
	return observability.StageServer
}

func currentStage(s State) saltyerr.Stage {
	if s == StatePeerHandshake {
		return saltyerr.StagePeerHandshake
	}
	return saltyerr.StageServerHandshake
}

func abortReasonFor(code saltyerr.Code) observability.AbortReason {
	switch code {
	case saltyerr.CodeBadCookie:
		return observability.AbortBadCookie
	case saltyerr.CodeBadNonceSource:
		return observability.AbortBadNonceSource
	case saltyerr.CodeBadNonceDestination:
		return observability.AbortBadNonceDestination
	case saltyerr.CodeBadReceiver:
		return observability.AbortBadReceiver
	case saltyerr.CodeDecryptionFailed:
		return observability.AbortDecryptionFailed
	case saltyerr.CodeBadMessageType, saltyerr.CodeBadMessage, saltyerr.CodeBadMessageLength:
		return observability.AbortBadMessageType
	case saltyerr.CodeOverflowExhausted:
		return observability.AbortOverflowExhausted
	default:
		return observability.AbortOther
	}
}

func sortedIDs(m map[uint8]*peer.Peer) []uint8 {
	ids := make([]uint8, 0, len(m))
	for id := range m {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}
