package binrel

import (
	"fmt"
	"sync"

	"github.com/pomagma/atlas/denseset"
)

// Ob re-exports denseset.Ob for callers that only need binrel.
type Ob = denseset.Ob

// Base holds the two parallel bit-matrices Lx and Rx of shape
// (itemDim+1) x wordDim, one DenseSet row per ob. A symmetric Base aliases
// Lx and Rx (Rx[i] IS Lx[i]) and only ever writes through Lx.
//
// Invariant: for all i, j, Lx[i].Contains(j) == Rx[j].Contains(i); for any
// i or j outside the carrier's support, both bits are 0 (enforced by
// Clear/UnsafeMerge, never independently by Base itself).
type Base struct {
	mu        sync.RWMutex
	itemDim   int
	symmetric bool
	lx        []*denseset.DenseSet
	rx        []*denseset.DenseSet
}

// NewBase allocates a Base over obs 0..itemDim (row 0 is allocated but never
// addressed by a live ob). symmetric aliases Rx to Lx.
func NewBase(itemDim int, symmetric bool) *Base {
	b := &Base{itemDim: itemDim, symmetric: symmetric}
	b.lx = make([]*denseset.DenseSet, itemDim+1)
	for i := range b.lx {
		b.lx[i] = denseset.New(itemDim)
	}
	if symmetric {
		b.rx = b.lx
	} else {
		b.rx = make([]*denseset.DenseSet, itemDim+1)
		for i := range b.rx {
			b.rx[i] = denseset.New(itemDim)
		}
	}
	return b
}

func (b *Base) checkRange(i Ob) {
	if int(i) < 0 || int(i) > b.itemDim {
		panic(fmt.Sprintf("binrel: ob %d out of range [0,%d]", i, b.itemDim))
	}
}

// Lx returns row i of the left-indexed matrix.
func (b *Base) Lx(i Ob) *denseset.DenseSet {
	b.checkRange(i)
	return b.lx[i]
}

// Rx returns row j of the right-indexed matrix.
func (b *Base) Rx(j Ob) *denseset.DenseSet {
	b.checkRange(j)
	return b.rx[j]
}

// Symmetric reports whether Lx and Rx are aliased.
func (b *Base) Symmetric() bool { return b.symmetric }

// ItemDim returns the fixed capacity.
func (b *Base) ItemDim() int { return b.itemDim }

// Get reports whether the pair (i, j) is present.
func (b *Base) Get(i, j Ob) bool {
	b.checkRange(i)
	b.checkRange(j)
	return b.lx[i].Contains(j)
}

// set marks (i, j) present in both matrices; returns true iff it was newly
// added (Lx bit was previously clear). Caller must hold b.mu for writing.
func (b *Base) set(i, j Ob) bool {
	added := b.lx[i].TryInsert(j)
	if b.symmetric {
		if i != j {
			b.lx[j].TryInsert(i)
		}
		return added
	}
	b.rx[j].TryInsert(i)
	return added
}

// SetPair marks (i, j) present, mirroring into the transposed cell when
// symmetric. Not synchronized: callers that embed a Base inside a larger
// locked structure (function.Symmetric, function.Binary) call this while
// already holding their own lock.
func (b *Base) SetPair(i, j Ob) bool {
	return b.set(i, j)
}

// RemovePair clears (i, j), mirroring into the transposed cell when
// symmetric. Not synchronized; see SetPair.
func (b *Base) RemovePair(i, j Ob) {
	b.lx[i].Remove(j)
	if b.symmetric {
		if i != j {
			b.lx[j].Remove(i)
		}
		return
	}
	b.rx[j].Remove(i)
}

// Lock/Unlock/RLock/RUnlock expose Base's own readers-writer lock.
// BinaryRelation takes it for writing around Insert, InsertRow, RawInsert
// and UnsafeMerge, and for reading around Find.
func (b *Base) Lock()    { b.mu.Lock() }
func (b *Base) Unlock()  { b.mu.Unlock() }
func (b *Base) RLock()   { b.mu.RLock() }
func (b *Base) RUnlock() { b.mu.RUnlock() }

// CountPairs counts every defined pair (slow; for diagnostics/tests).
func (b *Base) CountPairs() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	n := 0
	for i := 1; i <= b.itemDim; i++ {
		n += b.lx[Ob(i)].Count()
	}
	return n
}

// IterPairs calls fn once per defined pair (i, j), with i <= j when
// symmetric so each unordered pair is visited exactly once.
func (b *Base) IterPairs(fn func(i, j Ob)) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	for i := 1; i <= b.itemDim; i++ {
		for _, j := range b.lx[Ob(i)].Iter() {
			if b.symmetric && j < Ob(i) {
				continue
			}
			fn(Ob(i), j)
		}
	}
}

// Clear empties every row of both matrices.
func (b *Base) Clear() {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i := range b.lx {
		b.lx[i].Zero()
	}
	if !b.symmetric {
		for i := range b.rx {
			b.rx[i].Zero()
		}
	}
}

// CopyLxToRx rebuilds Rx from Lx by bit-transpose, for a single-threaded
// bulk-load path; not concurrency-safe against inserts, matching spec.md
// §4.3.
func (b *Base) CopyLxToRx() {
	if b.symmetric {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	for i := range b.rx {
		b.rx[i].Zero()
	}
	for i := 1; i <= b.itemDim; i++ {
		for _, j := range b.lx[Ob(i)].Iter() {
			b.rx[j].Insert(Ob(i))
		}
	}
}

// Validate checks that Lx and Rx agree on every live pair.
func (b *Base) Validate() error {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.symmetric {
		return nil
	}
	for i := 1; i <= b.itemDim; i++ {
		for _, j := range b.lx[Ob(i)].Iter() {
			if !b.rx[j].Contains(Ob(i)) {
				return fmt.Errorf("%w: Lx(%d,%d) set but Rx(%d,%d) clear", ErrInconsistent, i, j, j, i)
			}
		}
	}
	return nil
}

// ValidateDisjoint checks that a and b share no pair, e.g. the conventional
// LESS/NLESS negation pairing (spec.md §3 Signature, §4.3).
func ValidateDisjoint(a, b *Base) error {
	if a.itemDim != b.itemDim {
		panic("binrel: ValidateDisjoint requires matching item_dim")
	}
	a.mu.RLock()
	defer a.mu.RUnlock()
	b.mu.RLock()
	defer b.mu.RUnlock()
	for i := 1; i <= a.itemDim; i++ {
		shared := denseset.IterInsn(a.lx[Ob(i)], b.lx[Ob(i)])
		if len(shared) > 0 {
			return fmt.Errorf("%w: row %d shares %v", ErrNotDisjoint, i, shared)
		}
	}
	return nil
}

// unsafeMergeRows merges dep's Lx/Rx rows into rep's, firing onNewPair for
// every newly-added bit in either direction with the surviving pair
// (rep, k) / (k, rep), then clears dep's rows. Caller must hold b.mu for
// writing (BinaryRelation.UnsafeMerge takes it around this call, per
// spec.md §4.3 unsafe_merge).
func (b *Base) unsafeMergeRows(dep, rep Ob, onNewPair func(i, j Ob)) {
	b.mergeLxInto(dep, rep, onNewPair)
	if !b.symmetric {
		b.mergeRxInto(dep, rep, onNewPair)
	}

	// Clear dep's column in both matrices: for every k, drop (k, dep)/(dep, k).
	for _, k := range b.rx[dep].Iter() {
		b.lx[k].Remove(dep)
	}
	if !b.symmetric {
		for _, k := range b.lx[dep].Iter() {
			b.rx[k].Remove(dep)
		}
	}
	b.lx[dep].Zero()
	if !b.symmetric {
		b.rx[dep].Zero()
	}
}

func (b *Base) mergeLxInto(dep, rep Ob, onNewPair func(i, j Ob)) {
	diff := denseset.New(b.itemDim)
	b.lx[rep].Ensure(b.lx[dep], diff)
	for _, k := range diff.Iter() {
		if !b.symmetric {
			b.rx[k].Insert(rep)
		} else if k != rep {
			b.lx[k].TryInsert(rep)
		}
		onNewPair(rep, k)
	}
}

func (b *Base) mergeRxInto(dep, rep Ob, onNewPair func(i, j Ob)) {
	diff := denseset.New(b.itemDim)
	b.rx[rep].Ensure(b.rx[dep], diff)
	for _, k := range diff.Iter() {
		b.lx[k].Insert(rep)
		onNewPair(k, rep)
	}
}
