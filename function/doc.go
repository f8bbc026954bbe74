// Package function implements the partial-function tables of spec.md §3/§4.4:
// NullaryFunction (a single scalar Ob), InjectiveFunction (a 1-ary function
// with a direct inverse array), BinaryFunction (a 2-ary function with three
// inverse indices), and SymmetricFunction (BinaryFunction restricted to the
// upper triangle lhs<=rhs).
//
// Storage is grounded on the teacher's matrix.AdjacencyMatrix dense-array
// idiom (katalvlaran/lvlath), adapted from float64 weights to Ob values
// guarded by each table's own lock; exact merge/inverse-index semantics are grounded on
// original_source/src/aggregator/injective_function.{hpp,cpp},
// src/atlas/micro/binary_function.cpp, and
// src/microstructure/symmetric_function.cpp.
//
// spec.md §9 notes that BinaryFunction storage is "tile-decomposed" in the
// C++ source for memory-locality reasons specific to a manually-managed
// heap. That is an allocation-strategy detail, not a semantic requirement:
// here storage is a flat per-lhs row of obs, which Go's contiguous slices
// already place favorably for cache access, so no tiling layer is
// reproduced.
package function
