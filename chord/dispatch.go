package chord

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"chordhash/ida"
	"chordhash/ring"
)

// Dispatch is the server-side entry point a Transport's concrete
// listener calls for every decoded inbound Envelope, routing on the
// COMMAND field. A request whose RECIPIENT_ID does not name this peer
// is dropped rather than acted on.
func (p *Peer) Dispatch(ctx context.Context, req Envelope) Envelope {
	if req.RecipientID != "" && req.RecipientID != p.selfID().Hex() {
		return failureEnvelope(req.Command, fmt.Errorf("%w: request addressed to %s", ErrProtocolMismatch, req.RecipientID))
	}

	switch req.Command {
	case CmdJoin:
		return p.handleJoin(ctx, req)
	case CmdGetSucc:
		return p.handleGetSucc(ctx, req)
	case CmdGetPred:
		return p.handleGetPred(ctx, req)
	case CmdNotify:
		return p.handleNotify(req)
	case CmdLeave:
		return p.handleLeave(req)
	case CmdCreateFrag:
		return p.handleCreateFrag(req)
	case CmdReadFrag:
		return p.handleReadFrag(req)
	case CmdSynchronize:
		return p.handleSynchronize(ctx, req)
	case CmdMaintenance:
		return p.handleMaintenance(req)
	default:
		return failureEnvelope(req.Command, fmt.Errorf("%w: %q", ErrInvalidCommand, req.Command))
	}
}

// handleJoin is a pure query: it resolves and returns the current
// predecessor of the joining peer's id, routed through the ring like
// any GET_PRED. It makes no topology change of its own — adoption
// happens only once the joiner (and its neighbors) exchange NOTIFY,
// mirroring JoinHandler in peer.cpp, which calls
// GetPredecessor(new_peer.id_) and nothing else.
func (p *Peer) handleJoin(ctx context.Context, req Envelope) Envelope {
	if req.NewPeer == nil {
		return failureEnvelope(CmdJoin, fmt.Errorf("join: missing new_peer"))
	}
	newPeer, err := fromWireDescriptor(*req.NewPeer)
	if err != nil {
		return failureEnvelope(CmdJoin, err)
	}

	pred, err := p.GetPredecessor(ctx, newPeer.ID, nil)
	if err != nil {
		return failureEnvelope(CmdJoin, err)
	}

	w := toWireDescriptor(pred)
	return Envelope{Command: CmdJoin, Success: true, Predecessor: &w}
}

func (p *Peer) handleGetSucc(ctx context.Context, req Envelope) Envelope {
	k, err := ring.FromHex(req.Key)
	if err != nil {
		return failureEnvelope(CmdGetSucc, err)
	}
	var requester *ring.ID
	if req.SenderID != "" {
		if id, err := ring.FromHex(req.SenderID); err == nil {
			requester = &id
		}
	}
	succ, err := p.GetSuccessor(ctx, k, requester)
	if err != nil {
		return failureEnvelope(CmdGetSucc, err)
	}
	return descriptorEnvelope(CmdGetSucc, succ)
}

func (p *Peer) handleGetPred(ctx context.Context, req Envelope) Envelope {
	k, err := ring.FromHex(req.Key)
	if err != nil {
		return failureEnvelope(CmdGetPred, err)
	}
	var requester *ring.ID
	if req.SenderID != "" {
		if id, err := ring.FromHex(req.SenderID); err == nil {
			requester = &id
		}
	}
	pred, err := p.GetPredecessor(ctx, k, requester)
	if err != nil {
		return failureEnvelope(CmdGetPred, err)
	}
	return descriptorEnvelope(CmdGetPred, pred)
}

func (p *Peer) handleNotify(req Envelope) Envelope {
	if req.NewPeer == nil {
		return failureEnvelope(CmdNotify, fmt.Errorf("notify: missing new_peer"))
	}
	newPeer, err := fromWireDescriptor(*req.NewPeer)
	if err != nil {
		return failureEnvelope(CmdNotify, err)
	}
	p.NotifyHandler(newPeer)
	return Envelope{Command: CmdNotify, Success: true}
}

func (p *Peer) handleLeave(req Envelope) Envelope {
	if err := p.LeaveHandler(req); err != nil {
		return failureEnvelope(CmdLeave, err)
	}
	return Envelope{Command: CmdLeave, Success: true}
}

// handleCreateFrag fails outright when the key is already held: a peer
// never silently overwrites one fragment with another, which would
// collapse two distinct fragment indices into one and drop the
// reconstructable count below M. Matches peer.cpp's CreateFragHandler,
// which rejects with "Key already in db."
func (p *Peer) handleCreateFrag(req Envelope) Envelope {
	k, err := ring.FromHex(req.Key)
	if err != nil {
		return failureEnvelope(CmdCreateFrag, err)
	}
	frag, err := ida.ParseFragment(req.Fragment)
	if err != nil {
		return failureEnvelope(CmdCreateFrag, err)
	}
	if err := p.db.Insert(k, frag); err != nil {
		return failureEnvelope(CmdCreateFrag, err)
	}
	return Envelope{Command: CmdCreateFrag, Success: true}
}

func (p *Peer) handleReadFrag(req Envelope) Envelope {
	k, err := ring.FromHex(req.Key)
	if err != nil {
		return failureEnvelope(CmdReadFrag, err)
	}
	frag, err := p.db.Lookup(k)
	if err != nil {
		return failureEnvelope(CmdReadFrag, err)
	}
	return Envelope{Command: CmdReadFrag, Success: true, Fragment: frag.String()}
}

func (p *Peer) handleSynchronize(ctx context.Context, req Envelope) Envelope {
	p.SynchronizeHandler(ctx, req)
	return Envelope{Command: CmdSynchronize, Success: true}
}

func (p *Peer) handleMaintenance(req Envelope) Envelope {
	p.logger.Debug("maintenance tick received", zap.String("from", req.SenderID))
	return Envelope{Command: CmdMaintenance, Success: true}
}
