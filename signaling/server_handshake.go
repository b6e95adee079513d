package signaling

import (
	"crypto/rand"

	"github.com/saltywire/saltyrtc-go/cookie"
	"github.com/saltywire/saltyrtc-go/crypto/box"
	"github.com/saltywire/saltyrtc-go/csn"
	"github.com/saltywire/saltyrtc-go/nonce"
	"github.com/saltywire/saltyrtc-go/observability"
	"github.com/saltywire/saltyrtc-go/peer"
	"github.com/saltywire/saltyrtc-go/saltyerr"
	"github.com/saltywire/saltyrtc-go/wire"
)

// handleFromServer processes frames whose nonce source is the server
// address, covering both the server handshake and the server
// notifications (new-responder/new-initiator) that arrive during the
// peer handshake.
func (e *Engine) handleFromServer(n nonce.Nonce, frame []byte) ([]Outbound, error) {
	switch e.state {
	case StateNew:
		return e.handleServerHello(n, frame)
	case StateServerHandshake:
		return e.handleServerAuth(n, frame)
	case StatePeerHandshake:
		return e.handleServerNotification(n, frame)
	default:
		return nil, nil
	}
}

func (e *Engine) handleServerHello(n nonce.Nonce, frame []byte) ([]Outbound, error) {
	payload := frame[nonce.Len:]
	msg, err := wire.DecodeServerHello(payload)
	if err != nil {
		return nil, e.abort(saltyerr.StageServerHandshake, saltyerr.CodeBadMessage, err)
	}

	ours, err := cookie.NewDistinctFrom(rand.Reader, n.Cookie)
	if err != nil {
		return nil, e.abort(saltyerr.StageServerHandshake, saltyerr.CodeInvalidArgument, err)
	}
	e.ours = ours
	e.serverPub = msg.Key
	e.serverPubKnown = true
	sc, err := csn.NewRandom()
	if err != nil {
		return nil, e.abort(saltyerr.StageServerHandshake, saltyerr.CodeInvalidArgument, err)
	}
	e.serverCSN = sc
	e.state = StateServerHandshake

	var out []Outbound
	if e.role == RoleResponder {
		hello := wire.ClientHello{Key: e.own.PublicKey()}
		payload, err := hello.Encode()
		if err != nil {
			return nil, e.abort(saltyerr.StageServerHandshake, saltyerr.CodeBadMessage, err)
		}
		ob, err := e.send(nonce.AddressServer, payload, nil)
		if err != nil {
			return nil, err
		}
		out = append(out, ob)
	}

	auth := wire.ClientAuth{YourCookie: n.Cookie}
	authPayload, err := auth.Encode()
	if err != nil {
		return nil, e.abort(saltyerr.StageServerHandshake, saltyerr.CodeBadMessage, err)
	}
	ob, err := e.send(nonce.AddressServer, authPayload, e.permanentServerKey())
	if err != nil {
		return nil, err
	}
	out = append(out, ob)
	return out, nil
}

func (e *Engine) handleServerAuth(n nonce.Nonce, frame []byte) ([]Outbound, error) {
	b, err := box.Parse(frame)
	if err != nil {
		return nil, e.abort(saltyerr.StageServerHandshake, saltyerr.CodeBadMessageLength, err)
	}
	plain, err := e.own.Decrypt(b, e.serverPub)
	if err != nil {
		return nil, e.abort(saltyerr.StageServerHandshake, saltyerr.CodeDecryptionFailed, err)
	}
	msg, err := wire.DecodeServerAuth(plain)
	if err != nil {
		return nil, e.abort(saltyerr.StageServerHandshake, saltyerr.CodeBadMessage, err)
	}

	if e.role == RoleResponder {
		if !n.Destination.IsResponder() {
			return nil, e.abort(saltyerr.StageServerHandshake, saltyerr.CodeBadNonceDestination, nil)
		}
		e.selfAddress = n.Destination
		e.addressKnown = true
	}

	if msg.YourCookie != e.ours {
		return nil, e.abort(saltyerr.StageServerHandshake, saltyerr.CodeBadCookie, nil)
	}

	if e.role == RoleInitiator {
		for _, id := range msg.Responders {
			if _, exists := e.peers[id]; exists {
				continue
			}
			p, err := peer.New(id)
			if err != nil {
				return nil, e.abort(saltyerr.StageServerHandshake, saltyerr.CodeInvalidArgument, err)
			}
			e.peers[id] = p
		}
		e.opts.Observer.ResponderCount(len(e.peers))
	} else {
		e.initiatorConnected = msg.InitiatorConnected
		ic, err := csn.NewRandom()
		if err != nil {
			return nil, e.abort(saltyerr.StageServerHandshake, saltyerr.CodeInvalidArgument, err)
		}
		e.initiatorCSN = ic
	}

	e.state = StatePeerHandshake
	e.opts.Observer.HandshakeStageComplete(e.obsRole(), observability.StageServer)

	if e.role == RoleResponder && e.initiatorConnected {
		return e.sendToken()
	}
	return nil, nil
}

func (e *Engine) handleServerNotification(n nonce.Nonce, frame []byte) ([]Outbound, error) {
	b, err := box.Parse(frame)
	if err != nil {
		return nil, e.abort(saltyerr.StagePeerHandshake, saltyerr.CodeBadMessageLength, err)
	}
	plain, err := e.own.Decrypt(b, e.serverPub)
	if err != nil {
		return nil, e.abort(saltyerr.StagePeerHandshake, saltyerr.CodeDecryptionFailed, err)
	}
	typ, err := wire.PeekType(plain)
	if err != nil {
		return nil, e.abort(saltyerr.StagePeerHandshake, saltyerr.CodeBadMessage, err)
	}

	switch {
	case e.role == RoleInitiator && typ == wire.TypeNewResponder:
		msg, err := wire.DecodeNewResponder(plain)
		if err != nil {
			return nil, e.abort(saltyerr.StagePeerHandshake, saltyerr.CodeBadMessage, err)
		}
		if !nonce.Address(msg.ID).IsResponder() {
			return nil, e.abort(saltyerr.StagePeerHandshake, saltyerr.CodeBadMessage, nil)
		}
		if _, exists := e.peers[msg.ID]; exists {
			return nil, nil // already tracked; ignored silently
		}
		if len(e.peers) >= e.opts.MaxResponders {
			return nil, nil // at capacity; ignored silently
		}
		p, err := peer.New(msg.ID)
		if err != nil {
			return nil, e.abort(saltyerr.StagePeerHandshake, saltyerr.CodeInvalidArgument, err)
		}
		e.peers[msg.ID] = p
		e.opts.Observer.ResponderCount(len(e.peers))
		return nil, nil

	case e.role == RoleResponder && typ == wire.TypeNewInitiator:
		if _, err := wire.DecodeNewInitiator(plain); err != nil {
			return nil, e.abort(saltyerr.StagePeerHandshake, saltyerr.CodeBadMessage, err)
		}
		e.initiatorConnected = true
		if e.subState == subStateNew {
			return e.sendToken()
		}
		return nil, nil

	default:
		return nil, nil // any other server message during peer handshake is ignored
	}
}

func (e *Engine) sendToken() ([]Outbound, error) {
	tok := wire.Token{Key: e.own.PublicKey()}
	payload, err := tok.Encode()
	if err != nil {
		return nil, e.abort(saltyerr.StagePeerHandshake, saltyerr.CodeBadMessage, err)
	}
	sel := &keySelection{kind: keyAuthTokenKind, token: e.token}
	ob, err := e.send(nonce.AddressInitiator, payload, sel)
	if err != nil {
		return nil, err
	}
	e.subState = subStateTokenSent
	return []Outbound{ob}, nil
}
