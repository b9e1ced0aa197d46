package chord

import "chordhash/ring"

// PeerDescriptor is an immutable value type describing a remote or
// local peer, grounded on original_source/src/peer_repr.h's PeerRepr.
// id is the hash of ip:port; maxKey equals id; minKey is
// predecessor.id+1 (wrapping).
type PeerDescriptor struct {
	ID      ring.ID
	MinKey  ring.ID
	MaxKey  ring.ID
	IPAddr  string
	Port    int
	Latency float64 // mean round-trip milliseconds, 0 if never sampled
}

// Equal reports whether two descriptors match on every field.
func (d PeerDescriptor) Equal(other PeerDescriptor) bool {
	return d.ID.Equal(other.ID) &&
		d.MinKey.Equal(other.MinKey) &&
		d.MaxKey.Equal(other.MaxKey) &&
		d.IPAddr == other.IPAddr &&
		d.Port == other.Port &&
		d.Latency == other.Latency
}

// Addr renders the descriptor's dial target.
func (d PeerDescriptor) Addr() string {
	return ipPort(d.IPAddr, d.Port)
}
