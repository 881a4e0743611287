package reduce

import "errors"

// ErrInvalidInput is returned for empty point sets, out-of-range anchors,
// non-finite coordinates and non-positive thresholds.
var ErrInvalidInput = errors.New("invalid input")

// ErrBadAnchor is returned when an AnchorSelector picks an index that is
// out of range or already consumed.
var ErrBadAnchor = errors.New("anchor selector returned unusable index")
