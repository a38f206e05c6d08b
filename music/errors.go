package music

import "errors"

// Sentinel errors shared across the pipeline. Callers match them with
// errors.Is; stages wrap them with fmt.Errorf("...: %w", ...) for context.
var (
	// ErrEmptyInput marks a pitch track or note sequence with zero usable
	// frames or notes. Propagated to the caller, never retried.
	ErrEmptyInput = errors.New("empty input: no usable notes or frames")

	// ErrInvalidRange marks a voice range whose min exceeds its max, which
	// would otherwise turn octave folding into an unbounded loop.
	ErrInvalidRange = errors.New("invalid voice range: min exceeds max")

	// ErrOutOfVocalRange marks a melody that cannot be placed inside the
	// supported vocal bounds even after transposition.
	ErrOutOfVocalRange = errors.New("melody out of supported vocal range")
)
