// Package cleanup implements the lock-free round-robin cleanup work
// generator of spec.md §4.5: type_count disjoint classes, each consumed
// once per push_all() cycle.
//
// lvlath (the teacher) has no lock-free code of its own to ground this on;
// no third-party atomics/lock-free library appears anywhere in the
// retrieved pack either, so this is built directly from spec.md's stated
// algorithm on top of sync/atomic (see DESIGN.md).
package cleanup
