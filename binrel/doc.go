// Package binrel implements the dense bit-matrix substrate shared by unary
// and binary relations: BaseBinRel, UnaryRelation, and BinaryRelation from
// spec.md §3/§4.3.
//
// The dual Lx/Rx row-matrix shape is grounded on the teacher's
// matrix.AdjacencyMatrix dense-storage idiom (katalvlaran/lvlath), adapted
// from a float64 weight matrix to a pair of bit-matrices with the exact
// merge/validate semantics of original_source/src/atlas/micro/
// binary_relation.hpp and src/microstructure/base_bin_rel.cpp.
package binrel
