package chord

import (
	"sort"
	"sync"

	"github.com/montanaflynn/stats"
)

// latencyWindow bounds how many recent round-trip samples a peer keeps
// per remote id before averaging.
const latencyWindow = 20

// LatencyTracker maintains a rolling mean round-trip latency per remote
// peer id, restoring the feature original_source/src/peer_repr.h's
// PeerList::SortByLatency/LatencySort describe but spec.md's
// distillation left unused beyond carrying the field.
type LatencyTracker struct {
	mu      sync.Mutex
	samples map[string][]float64
}

// NewLatencyTracker returns an empty tracker.
func NewLatencyTracker() *LatencyTracker {
	return &LatencyTracker{samples: make(map[string][]float64)}
}

// Record appends a round-trip sample (in milliseconds) for peerID.
func (lt *LatencyTracker) Record(peerID string, ms float64) {
	lt.mu.Lock()
	defer lt.mu.Unlock()
	s := append(lt.samples[peerID], ms)
	if len(s) > latencyWindow {
		s = s[len(s)-latencyWindow:]
	}
	lt.samples[peerID] = s
}

// Mean returns the mean of peerID's recorded samples, or 0 if none have
// been recorded yet.
func (lt *LatencyTracker) Mean(peerID string) float64 {
	lt.mu.Lock()
	s := append([]float64{}, lt.samples[peerID]...)
	lt.mu.Unlock()

	if len(s) == 0 {
		return 0
	}
	mean, err := stats.Mean(s)
	if err != nil {
		return 0
	}
	return mean
}

// SortDescriptorsByLatency returns a copy of descs ordered by ascending
// mean latency, used by Peer.ReadPreferringLowLatency to prefer a
// faster replica when several successors can answer a READ_FRAG.
func SortDescriptorsByLatency(descs []PeerDescriptor, lt *LatencyTracker) []PeerDescriptor {
	out := make([]PeerDescriptor, len(descs))
	copy(out, descs)
	sort.SliceStable(out, func(i, j int) bool {
		return lt.Mean(out[i].ID.Hex()) < lt.Mean(out[j].ID.Hex())
	})
	return out
}
