package chord

import (
	"github.com/jedib0t/go-pretty/v6/table"

	"chordhash/ring"
)

// Finger is a (lowerBound, upperBound, successor) triple, grounded on
// original_source/src/finger_table.h.
type Finger struct {
	Lower     ring.ID
	Upper     ring.ID
	Successor PeerDescriptor
}

// FingerTable is the ordered sequence of NumFingers Fingers covering
// the ring in logarithmic steps starting just past startingID.
type FingerTable struct {
	startingID ring.ID
	fingers    [NumFingers]Finger
}

// NewFingerTable initializes an empty table (successors unset) for the
// given starting identifier.
func NewFingerTable(startingID ring.ID) *FingerTable {
	ft := &FingerTable{startingID: startingID}
	for i := 0; i < NumFingers; i++ {
		lower, upper := ft.Range(i)
		ft.fingers[i] = Finger{Lower: lower, Upper: upper}
	}
	return ft
}

// Range returns finger i's (lowerBound, upperBound).
func (ft *FingerTable) Range(i int) (ring.ID, ring.ID) {
	lower := ft.startingID.Add(ring.Pow2(i))
	upper := ft.startingID.Add(ring.Pow2(i + 1)).Sub(ring.FromInt64(1))
	return lower, upper
}

// EditNth overwrites the successor of finger i.
func (ft *FingerTable) EditNth(i int, succ PeerDescriptor) {
	ft.fingers[i].Successor = succ
}

// NthSuccessor returns finger i's current successor.
func (ft *FingerTable) NthSuccessor(i int) PeerDescriptor {
	return ft.fingers[i].Successor
}

// Lookup scans fingers in order and returns the successor of the first
// finger whose range contains k inclusive.
func (ft *FingerTable) Lookup(k ring.ID) (PeerDescriptor, bool) {
	for _, f := range ft.fingers {
		if ring.Between(k, f.Lower, f.Upper, true) {
			return f.Successor, true
		}
	}
	return PeerDescriptor{}, false
}

// AdjustFingers rewrites every finger whose lowerBound falls inclusive
// between newPeer.MinKey and newPeer.MaxKey to point at newPeer.
func (ft *FingerTable) AdjustFingers(newPeer PeerDescriptor) {
	for i := range ft.fingers {
		if ring.Between(ft.fingers[i].Lower, newPeer.MinKey, newPeer.MaxKey, true) {
			ft.fingers[i].Successor = newPeer
		}
	}
}

// String renders the finger table as an aligned ASCII table via
// go-pretty, replacing the hand-built std::setw rendering in
// finger_table.cpp's operator string().
func (ft *FingerTable) String() string {
	t := table.NewWriter()
	t.AppendHeader(table.Row{"#", "lower", "upper", "successor"})
	for i, f := range ft.fingers {
		successorID := "-"
		if f.Successor.IPAddr != "" {
			successorID = f.Successor.ID.Hex()
		}
		t.AppendRow(table.Row{i, f.Lower.Hex(), f.Upper.Hex(), successorID})
	}
	return t.Render()
}
