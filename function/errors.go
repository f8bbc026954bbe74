package function

import "errors"

// Sentinel errors for boundary APIs. Preconditions elsewhere panic per
// spec.md §7.
var (
	// ErrInconsistent is returned by Validate when a function's defined set,
	// inverse index, or carrier equivalence disagree.
	ErrInconsistent = errors.New("function: inconsistent state")
)
