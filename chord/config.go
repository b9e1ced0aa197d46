package chord

import "time"

// Configuration constants, grounded on the teacher's chord/config.go
// but re-scaled to the specification's ring and replication parameters.
const (
	// NumFingerGroups and BitsPerGroup together give the 4*32=128
	// finger table entries the specification calls for.
	NumFingerGroups = 4
	BitsPerGroup    = 32
	NumFingers      = NumFingerGroups * BitsPerGroup

	// SuccessorListCapacity is K, the bounded successor/predecessor
	// list size used throughout routing and replication.
	SuccessorListCapacity = 14
)

// Timing constants. A single maintenance task per peer, driven by a
// periodic timer and cancelled at shutdown, replaces the teacher's
// ad hoc thread detachment (node.go's startStabilize).
const (
	MaintenanceInterval = 2 * time.Second
	NetworkTimeout      = 2 * time.Second
)
