// Package denseset implements a fixed-capacity bit-set of obs.
//
// A DenseSet over item_dim is a contiguous array of 64-bit words, bit i of
// the set representing membership of ob i. Bit 0 is always reserved (never
// set): obs are 1-based. Callers that need concurrency-safe membership
// tests/claims (TryInsert, TryInsertOne) get them via atomic word ops;
// bulk set-algebra (Union, Insn, Diff, Merge) is not safe to race against a
// concurrent single-bit claim on the same word; no other package in this
// module calls those four methods.
package denseset
