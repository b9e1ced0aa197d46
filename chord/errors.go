package chord

import "errors"

// Error kinds, grounded on the teacher's chord/config.go sentinel error
// style (ErrNodeNotFound, ErrKeyNotFound, ErrNodeDown) and named per the
// specification's error handling design.
var (
	ErrTransport        = errors.New("chord: outbound call failed")
	ErrInvalidCommand   = errors.New("chord: request envelope unrecognized")
	ErrProtocolMismatch = errors.New("chord: recipient id mismatch")
	ErrNoPredecessor    = errors.New("chord: no predecessor known")
	ErrInsufficientRead = errors.New("chord: fewer than M fragments could be reconstructed")
)
