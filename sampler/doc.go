// Package sampler implements the probabilistic term generator of
// spec.md §4.7: given per-function weights, it performs a depth-bounded
// recursive descent that either yields a freshly-created ob, rejects
// (retry from the top), or fails (the carrier is full).
//
// Grounded on original_source/src/atlas/sampler_impl.hpp for the
// BoundedSampler induction (P(nullary)/P(injective)/P(binary)/
// P(symmetric) folded into per-depth totals and compound-arity
// conditionals) and original_source/src/atlas/sampler.hpp for the public
// shape. The C++ Policy/exception mechanism is explicitly
// "implementation-specific" in the original header; per spec.md's own
// instruction ("replace these with tagged-union returns through the
// recursive calls"), it is reworked here as a Policy interface returning
// an Outcome tagged union instead of throwing.
package sampler
