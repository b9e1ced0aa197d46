package chord

import "chordhash/ring"

// SuccessorList is a bounded, clockwise-sorted list of PeerDescriptors,
// grounded on original_source/src/peer_repr.h's PeerList bounded
// insertion algorithm.
type SuccessorList struct {
	capacity int
	entries  []PeerDescriptor
}

// NewSuccessorList returns an empty list with the given capacity.
func NewSuccessorList(capacity int) *SuccessorList {
	return &SuccessorList{capacity: capacity}
}

// Insert places newDesc in ring-sorted position relative to existing
// entries, rejecting duplicate ids and truncating to capacity by
// dropping the tail.
func (sl *SuccessorList) Insert(newDesc PeerDescriptor) bool {
	for _, cur := range sl.entries {
		if cur.ID.Equal(newDesc.ID) {
			return false
		}
	}
	if len(sl.entries) == 0 {
		sl.entries = append(sl.entries, newDesc)
		return true
	}
	for i := 0; i < len(sl.entries)-1; i++ {
		prev, cur := sl.entries[i], sl.entries[i+1]
		if ring.Between(newDesc.ID, prev.ID, cur.ID, true) {
			sl.entries = append(sl.entries[:i+1:i+1], append([]PeerDescriptor{newDesc}, sl.entries[i+1:]...)...)
			if len(sl.entries) > sl.capacity {
				sl.entries = sl.entries[:sl.capacity]
			}
			return true
		}
	}
	if len(sl.entries) < sl.capacity {
		sl.entries = append(sl.entries, newDesc)
		return true
	}
	return false
}

// First returns the closest successor, if any.
func (sl *SuccessorList) First() (PeerDescriptor, bool) {
	if len(sl.entries) == 0 {
		return PeerDescriptor{}, false
	}
	return sl.entries[0], true
}

// All returns a copy of the current successor list.
func (sl *SuccessorList) All() []PeerDescriptor {
	out := make([]PeerDescriptor, len(sl.entries))
	copy(out, sl.entries)
	return out
}

// Len reports how many successors are currently held.
func (sl *SuccessorList) Len() int { return len(sl.entries) }
