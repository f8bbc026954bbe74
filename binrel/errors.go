package binrel

import "errors"

// Sentinel errors for binrel. Panics are reserved for programmer errors
// (out-of-range obs, malformed merges); these are returned from boundary
// validation APIs, per the teacher's "binrel: ..." sentinel-error idiom.
var (
	// ErrNotDisjoint is returned by ValidateDisjoint when two relations
	// (e.g. LESS/NLESS) share a pair they are supposed to partition.
	ErrNotDisjoint = errors.New("binrel: relations are not disjoint")

	// ErrInconsistent is returned by Validate when Lx and Rx disagree.
	ErrInconsistent = errors.New("binrel: Lx/Rx inconsistency")
)
