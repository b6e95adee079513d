package signaling

import (
	"github.com/saltywire/saltyrtc-go/crypto/box"
	"github.com/saltywire/saltyrtc-go/nonce"
	"github.com/saltywire/saltyrtc-go/observability"
	"github.com/saltywire/saltyrtc-go/peer"
	"github.com/saltywire/saltyrtc-go/saltyerr"
	"github.com/saltywire/saltyrtc-go/wire"
)

// handleFromInitiator is the responder side of the peer handshake: it
// dispatches on the responder's own sub-state, since the responder tracks
// exactly one peer (the initiator).
func (e *Engine) handleFromInitiator(n nonce.Nonce, frame []byte) ([]Outbound, error) {
	switch e.subState {
	case subStateTokenSent:
		return e.handleInitiatorKey(n, frame)
	case subStateKeySent:
		return e.handleInitiatorAuth(n, frame)
	default:
		return nil, e.abort(saltyerr.StagePeerHandshake, saltyerr.CodeProtocolError, nil)
	}
}

func (e *Engine) handleInitiatorKey(n nonce.Nonce, frame []byte) ([]Outbound, error) {
	b, err := box.Parse(frame)
	if err != nil {
		return nil, e.abort(saltyerr.StagePeerHandshake, saltyerr.CodeBadMessageLength, err)
	}
	sel := &keySelection{kind: keyPermanentPeer, ks: e.own, peerPub: e.initiatorPermanentPub}
	plain, err := sel.decrypt(b)
	if err != nil {
		return nil, e.abort(saltyerr.StagePeerHandshake, saltyerr.CodeDecryptionFailed, err)
	}
	msg, err := wire.DecodeKeyMsg(plain)
	if err != nil {
		return nil, e.abort(saltyerr.StagePeerHandshake, saltyerr.CodeBadMessage, err)
	}
	e.initiatorSessionPub = msg.Key

	session, err := box.NewRandomKeyStore()
	if err != nil {
		return nil, e.abort(saltyerr.StagePeerHandshake, saltyerr.CodeInvalidArgument, err)
	}
	e.localSession = session

	keyMsg := wire.KeyMsg{Key: session.PublicKey()}
	payload, err := keyMsg.Encode()
	if err != nil {
		return nil, e.abort(saltyerr.StagePeerHandshake, saltyerr.CodeBadMessage, err)
	}
	outSel := &keySelection{kind: keyPermanentPeer, ks: e.own, peerPub: e.initiatorPermanentPub}
	ob, err := e.send(nonce.AddressInitiator, payload, outSel)
	if err != nil {
		return nil, err
	}
	e.subState = subStateKeySent
	return []Outbound{ob}, nil
}

func (e *Engine) handleInitiatorAuth(n nonce.Nonce, frame []byte) ([]Outbound, error) {
	b, err := box.Parse(frame)
	if err != nil {
		return nil, e.abort(saltyerr.StagePeerHandshake, saltyerr.CodeBadMessageLength, err)
	}
	sel := &keySelection{kind: keySessionPeer, ks: e.localSession, peerPub: e.initiatorSessionPub}
	plain, err := sel.decrypt(b)
	if err != nil {
		return nil, e.abort(saltyerr.StagePeerHandshake, saltyerr.CodeDecryptionFailed, err)
	}
	msg, err := wire.DecodeAuth(plain)
	if err != nil {
		return nil, e.abort(saltyerr.StagePeerHandshake, saltyerr.CodeBadMessage, err)
	}
	if msg.YourCookie != e.ours {
		return nil, e.abort(saltyerr.StagePeerHandshake, saltyerr.CodeBadCookie, nil)
	}
	if n.Cookie == e.ours {
		return nil, e.abort(saltyerr.StagePeerHandshake, saltyerr.CodeBadCookie, nil)
	}

	auth := wire.Auth{YourCookie: n.Cookie}
	payload, err := auth.Encode()
	if err != nil {
		return nil, e.abort(saltyerr.StagePeerHandshake, saltyerr.CodeBadMessage, err)
	}
	outSel := &keySelection{kind: keySessionPeer, ks: e.localSession, peerPub: e.initiatorSessionPub}
	ob, err := e.send(nonce.AddressInitiator, payload, outSel)
	if err != nil {
		return nil, err
	}

	e.subState = subStateAuthReceived
	e.state = StateOpen
	e.opts.Observer.HandshakeStageComplete(observability.RoleResponder, observability.StagePeer)
	e.opts.Observer.Opened(observability.RoleResponder)
	e.opts.OnConnected()
	return []Outbound{ob}, nil
}

// handleFromResponder is the initiator side of the peer handshake. Every
// responder the initiator tracks advances independently through
// peer.State; the first one to complete an auth is elected, and every
// other tracked responder is dropped.
func (e *Engine) handleFromResponder(n nonce.Nonce, frame []byte) ([]Outbound, error) {
	id := uint8(n.Source)
	p, ok := e.peers[id]
	if !ok {
		return nil, nil // unknown responder source; drop without aborting
	}

	switch p.State {
	case peer.StateNew:
		return e.handleResponderToken(n, p, frame)
	case peer.StateTokenReceived:
		return e.handleResponderKey(n, p, frame)
	case peer.StateKeyReceived:
		return e.handleResponderAuth(n, p, frame)
	default:
		return nil, e.abort(saltyerr.StagePeerHandshake, saltyerr.CodeProtocolError, nil)
	}
}

// handleResponderToken handles the responder's token message in peer.StateNew.
// Per spec, the initiator replies key (own_session.public) encrypted
// permanent<->permanent and transitions New -> TokenReceived.
func (e *Engine) handleResponderToken(n nonce.Nonce, p *peer.Peer, frame []byte) ([]Outbound, error) {
	b, err := box.Parse(frame)
	if err != nil {
		return nil, e.abort(saltyerr.StagePeerHandshake, saltyerr.CodeBadMessageLength, err)
	}
	sel := &keySelection{kind: keyAuthTokenKind, token: e.token}
	plain, err := sel.decrypt(b)
	if err != nil {
		return nil, e.abort(saltyerr.StagePeerHandshake, saltyerr.CodeDecryptionFailed, err)
	}
	msg, err := wire.DecodeToken(plain)
	if err != nil {
		return nil, e.abort(saltyerr.StagePeerHandshake, saltyerr.CodeBadMessage, err)
	}
	key := msg.Key
	p.PermanentPub = &key
	p.State = peer.StateTokenReceived

	session, err := p.EnsureSession()
	if err != nil {
		return nil, e.abort(saltyerr.StagePeerHandshake, saltyerr.CodeInvalidArgument, err)
	}
	keyMsg := wire.KeyMsg{Key: session.PublicKey()}
	payload, err := keyMsg.Encode()
	if err != nil {
		return nil, e.abort(saltyerr.StagePeerHandshake, saltyerr.CodeBadMessage, err)
	}
	outSel := &keySelection{kind: keyPermanentPeer, ks: e.own, peerPub: *p.PermanentPub}
	ob, err := e.send(nonce.Address(p.ID), payload, outSel)
	if err != nil {
		return nil, err
	}
	return []Outbound{ob}, nil
}

// handleResponderKey handles the responder's key message in
// peer.StateTokenReceived. Per spec, the initiator replies auth
// (your_cookie: nonce.cookie) encrypted session<->session and transitions
// TokenReceived -> KeyReceived.
func (e *Engine) handleResponderKey(n nonce.Nonce, p *peer.Peer, frame []byte) ([]Outbound, error) {
	b, err := box.Parse(frame)
	if err != nil {
		return nil, e.abort(saltyerr.StagePeerHandshake, saltyerr.CodeBadMessageLength, err)
	}
	sel := &keySelection{kind: keyPermanentPeer, ks: e.own, peerPub: *p.PermanentPub}
	plain, err := sel.decrypt(b)
	if err != nil {
		return nil, e.abort(saltyerr.StagePeerHandshake, saltyerr.CodeDecryptionFailed, err)
	}
	msg, err := wire.DecodeKeyMsg(plain)
	if err != nil {
		return nil, e.abort(saltyerr.StagePeerHandshake, saltyerr.CodeBadMessage, err)
	}
	key := msg.Key
	p.SessionPub = &key
	p.State = peer.StateKeyReceived

	if n.Cookie == e.ours {
		return nil, e.abort(saltyerr.StagePeerHandshake, saltyerr.CodeBadCookie, nil)
	}

	auth := wire.Auth{YourCookie: n.Cookie}
	payload, err := auth.Encode()
	if err != nil {
		return nil, e.abort(saltyerr.StagePeerHandshake, saltyerr.CodeBadMessage, err)
	}
	outSel := &keySelection{kind: keySessionPeer, ks: p.OwnSession, peerPub: *p.SessionPub}
	ob, err := e.send(nonce.Address(p.ID), payload, outSel)
	if err != nil {
		return nil, err
	}
	return []Outbound{ob}, nil
}

// handleResponderAuth handles the responder's auth message in
// peer.StateKeyReceived: the final step of the peer handshake. No reply is
// sent to the elected responder; the initiator instead drops every other
// tracked responder and opens.
func (e *Engine) handleResponderAuth(n nonce.Nonce, p *peer.Peer, frame []byte) ([]Outbound, error) {
	b, err := box.Parse(frame)
	if err != nil {
		return nil, e.abort(saltyerr.StagePeerHandshake, saltyerr.CodeBadMessageLength, err)
	}
	sel := &keySelection{kind: keySessionPeer, ks: p.OwnSession, peerPub: *p.SessionPub}
	plain, err := sel.decrypt(b)
	if err != nil {
		return nil, e.abort(saltyerr.StagePeerHandshake, saltyerr.CodeDecryptionFailed, err)
	}
	msg, err := wire.DecodeAuth(plain)
	if err != nil {
		return nil, e.abort(saltyerr.StagePeerHandshake, saltyerr.CodeBadMessage, err)
	}
	if msg.YourCookie != e.ours {
		return nil, e.abort(saltyerr.StagePeerHandshake, saltyerr.CodeBadCookie, nil)
	}

	e.chosen = p
	var out []Outbound
	for _, id := range sortedIDs(e.peers) {
		if id == p.ID {
			continue
		}
		drop := wire.DropResponder{ID: id}
		dropPayload, err := drop.Encode()
		if err != nil {
			return nil, e.abort(saltyerr.StagePeerHandshake, saltyerr.CodeBadMessage, err)
		}
		dropOb, err := e.send(nonce.AddressServer, dropPayload, e.permanentServerKey())
		if err != nil {
			return nil, err
		}
		out = append(out, dropOb)
		e.opts.Observer.DropResponderSent()
	}
	e.peers = map[uint8]*peer.Peer{p.ID: p}

	e.state = StateOpen
	e.opts.Observer.HandshakeStageComplete(observability.RoleInitiator, observability.StagePeer)
	e.opts.Observer.Opened(observability.RoleInitiator)
	e.opts.OnConnected()
	return out, nil
}
