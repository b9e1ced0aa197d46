package chord

import (
	"context"
	"fmt"

	"chordhash/ring"
)

// Transport is the external collaborator the core protocol depends on
// for outbound calls: a single framed request/response exchange. The
// concrete default lives in chordhash/transport/http; the core never
// imports it, keeping the protocol logic transport-agnostic.
type Transport interface {
	Send(ctx context.Context, to PeerDescriptor, req Envelope) (Envelope, error)
}

// Command names the wire envelope's COMMAND field.
type Command string

const (
	CmdJoin        Command = "JOIN"
	CmdGetSucc     Command = "GET_SUCC"
	CmdGetPred     Command = "GET_PRED"
	CmdNotify      Command = "NOTIFY"
	CmdLeave       Command = "LEAVE"
	CmdCreateFrag  Command = "CREATE_FRAG"
	CmdReadFrag    Command = "READ_FRAG"
	CmdSynchronize Command = "SYNCHRONIZE"
	CmdMaintenance Command = "MAINTENANCE"
)

// WireDescriptor is a PeerDescriptor as represented on the wire:
// {ID, MIN_KEY, MAX_KEY, IP_ADDR, PORT}, all string except PORT.
type WireDescriptor struct {
	ID     string `json:"ID"`
	MinKey string `json:"MIN_KEY"`
	MaxKey string `json:"MAX_KEY"`
	IPAddr string `json:"IP_ADDR"`
	Port   int    `json:"PORT"`
}

func toWireDescriptor(d PeerDescriptor) WireDescriptor {
	return WireDescriptor{
		ID:     d.ID.Hex(),
		MinKey: d.MinKey.Hex(),
		MaxKey: d.MaxKey.Hex(),
		IPAddr: d.IPAddr,
		Port:   d.Port,
	}
}

func fromWireDescriptor(w WireDescriptor) (PeerDescriptor, error) {
	id, err := ring.FromHex(w.ID)
	if err != nil {
		return PeerDescriptor{}, fmt.Errorf("wire descriptor id: %w", err)
	}
	minKey, err := ring.FromHex(w.MinKey)
	if err != nil {
		return PeerDescriptor{}, fmt.Errorf("wire descriptor min_key: %w", err)
	}
	maxKey, err := ring.FromHex(w.MaxKey)
	if err != nil {
		return PeerDescriptor{}, fmt.Errorf("wire descriptor max_key: %w", err)
	}
	return PeerDescriptor{ID: id, MinKey: minKey, MaxKey: maxKey, IPAddr: w.IPAddr, Port: w.Port}, nil
}

// Envelope is the single JSON wire message shape every command uses: a
// COMMAND tag plus whatever fields that command needs. Requests carry
// SENDER_ID/RECIPIENT_ID; responses always carry SUCCESS and, on
// failure, ERRORS.
type Envelope struct {
	Command     Command `json:"COMMAND"`
	SenderID    string  `json:"SENDER_ID,omitempty"`
	RecipientID string  `json:"RECIPIENT_ID,omitempty"`
	Success     bool    `json:"SUCCESS"`
	Errors      string  `json:"ERRORS,omitempty"`

	// JOIN / NOTIFY
	NewPeer *WireDescriptor `json:"NEW_PEER,omitempty"`
	RecipID string          `json:"RECIP_ID,omitempty"`

	// JOIN response
	Predecessor *WireDescriptor `json:"PREDECESSOR,omitempty"`

	// GET_SUCC / GET_PRED / READ_FRAG / CREATE_FRAG request key
	Key string `json:"KEY,omitempty"`

	// GET_SUCC / GET_PRED response descriptor fields
	ID     string `json:"ID,omitempty"`
	MinKey string `json:"MIN_KEY,omitempty"`
	MaxKey string `json:"MAX_KEY,omitempty"`
	IPAddr string `json:"IP_ADDR,omitempty"`
	Port   int    `json:"PORT,omitempty"`

	// LEAVE
	NewPred *WireDescriptor `json:"NEW_PRED,omitempty"`
	NewMin  string          `json:"NEW_MIN,omitempty"`
	NewSucc *WireDescriptor `json:"NEW_SUCC,omitempty"`

	// CREATE_FRAG / READ_FRAG fragment payload
	Fragment string `json:"FRAGMENT,omitempty"`

	// SYNCHRONIZE
	Keys []string `json:"KEYS,omitempty"`
}

func descriptorEnvelope(cmd Command, d PeerDescriptor) Envelope {
	return Envelope{
		Command: cmd,
		Success: true,
		ID:      d.ID.Hex(),
		MinKey:  d.MinKey.Hex(),
		MaxKey:  d.MaxKey.Hex(),
		IPAddr:  d.IPAddr,
		Port:    d.Port,
	}
}

func descriptorFromEnvelope(e Envelope) (PeerDescriptor, error) {
	w := WireDescriptor{ID: e.ID, MinKey: e.MinKey, MaxKey: e.MaxKey, IPAddr: e.IPAddr, Port: e.Port}
	return fromWireDescriptor(w)
}

func failureEnvelope(cmd Command, err error) Envelope {
	return Envelope{Command: cmd, Success: false, Errors: err.Error()}
}

func ipPort(ip string, port int) string {
	return fmt.Sprintf("%s:%d", ip, port)
}
