package match

import "errors"

var (
	// ErrInsufficientData reports a sequence too short to align. A
	// comparison that fails this way is a "no match" with a reason, not a
	// score of zero.
	ErrInsufficientData = errors.New("insufficient data for alignment")

	// ErrCancelled reports cooperative cancellation observed during the
	// dynamic-programming pass. Distinct from a negative verdict.
	ErrCancelled = errors.New("comparison cancelled")
)
