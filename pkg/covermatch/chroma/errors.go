package chroma

import "errors"

// ErrInvalidFeatureData reports a malformed chroma vector or sequence:
// empty input, wrong bin count, or non-finite/negative values.
var ErrInvalidFeatureData = errors.New("invalid feature data")
