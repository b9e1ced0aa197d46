// Package store implements the Database external collaborator named in
// the specification: a mapping from ring identifier to IDA fragment,
// paired with a merkle.Index over its key set. Grounded on
// original_source/src/database.{h,cpp}.
package store

import (
	"errors"
	"sync"

	"chordhash/ida"
	"chordhash/merkle"
	"chordhash/ring"
)

// ErrKeyAbsent is returned by Lookup, Update and Delete when the key is
// not present.
var ErrKeyAbsent = errors.New("store: key absent")

// ErrKeyPresent is returned by Insert when the key already exists; a
// duplicate insert is rejected rather than silently overwriting.
var ErrKeyPresent = errors.New("store: key already present")

// Database is the external collaborator contract named in the
// specification: insert/update/delete/lookup/readRange/contains/next
// over identifier-keyed fragments.
type Database interface {
	Insert(k ring.ID, frag ida.Fragment) error
	Update(k ring.ID, frag ida.Fragment) error
	Delete(k ring.ID) error
	Lookup(k ring.ID) (ida.Fragment, error)
	ReadRange(lo, hi ring.ID) []ring.ID
	Contains(k ring.ID) bool
	Next(k ring.ID) (ring.ID, bool)
	Keys() []ring.ID
	Index() *merkle.Index
}

// Memory is an in-memory Database, the only persistence this module
// provides; durability beyond process lifetime is an explicit
// non-goal.
type Memory struct {
	mu    sync.RWMutex
	frags map[string]ida.Fragment
	ids   map[string]ring.ID
	index merkle.Index
}

// NewMemory returns an empty in-memory Database.
func NewMemory() *Memory {
	return &Memory{
		frags: make(map[string]ida.Fragment),
		ids:   make(map[string]ring.ID),
	}
}

func (m *Memory) Insert(k ring.ID, frag ida.Fragment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := k.Hex()
	if _, ok := m.frags[key]; ok {
		return ErrKeyPresent
	}
	m.frags[key] = frag
	m.ids[key] = k
	m.index.Insert(k)
	return nil
}

func (m *Memory) Update(k ring.ID, frag ida.Fragment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := k.Hex()
	if _, ok := m.frags[key]; !ok {
		return ErrKeyAbsent
	}
	m.frags[key] = frag
	return nil
}

func (m *Memory) Delete(k ring.ID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := k.Hex()
	if _, ok := m.frags[key]; !ok {
		return ErrKeyAbsent
	}
	delete(m.frags, key)
	delete(m.ids, key)
	m.index.Delete(k)
	return nil
}

func (m *Memory) Lookup(k ring.ID) (ida.Fragment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	frag, ok := m.frags[k.Hex()]
	if !ok {
		return ida.Fragment{}, ErrKeyAbsent
	}
	return frag, nil
}

// ReadRange returns every stored key in the clockwise-inclusive arc
// [lo, hi]. Callers wanting the open-lower variant (lo, hi] exclude lo
// themselves, since an owner's own id is never one of its stored keys.
func (m *Memory) ReadRange(lo, hi ring.ID) []ring.ID {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []ring.ID
	for _, id := range m.ids {
		if ring.Between(id, lo, hi, true) {
			out = append(out, id)
		}
	}
	return out
}

func (m *Memory) Contains(k ring.ID) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.frags[k.Hex()]
	return ok
}

// Next returns the first key strictly clockwise-greater than k, or
// wraps to the smallest key in the store if none exists. This is the
// corrected design mandated by the specification's open question: the
// original's Next() used a static stash that returned a fixed entry
// regardless of k; this implementation always computes the true
// successor in key-sorted order, wrapping around the ring.
func (m *Memory) Next(k ring.ID) (ring.ID, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if len(m.ids) == 0 {
		return ring.ID{}, false
	}

	var best ring.ID
	haveBest := false
	var smallest ring.ID
	haveSmallest := false

	for _, id := range m.ids {
		if id.Cmp(k) > 0 {
			if !haveBest || id.Cmp(best) < 0 {
				best = id
				haveBest = true
			}
		}
		if !haveSmallest || id.Cmp(smallest) < 0 {
			smallest = id
			haveSmallest = true
		}
	}

	if haveBest {
		return best, true
	}
	return smallest, true
}

func (m *Memory) Keys() []ring.ID {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]ring.ID, 0, len(m.ids))
	for _, id := range m.ids {
		out = append(out, id)
	}
	return out
}

// Index returns the merkle index mirroring this database's key set.
// Callers must not mutate the returned index directly; it is kept in
// sync with Insert/Delete.
func (m *Memory) Index() *merkle.Index {
	return &m.index
}
