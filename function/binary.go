package function

import (
	"fmt"
	"sync"

	"github.com/pomagma/atlas/binrel"
	"github.com/pomagma/atlas/carrier"
)

// BinaryCallback fires once per newly-defined (lhs, rhs, val) triple.
type BinaryCallback func(lhs, rhs, val Ob)

// Pair is an (lhs, rhs) argument tuple, used by the Vlr inverse index.
type Pair struct{ Lhs, Rhs Ob }

// Binary is a 2-ary partial function value[lhs][rhs], backed by a dense
// per-lhs row of obs plus a defined-pair bit-matrix (reusing binrel.Base,
// which doubles as the VLr/VRl inverse indices: Base.Lx(l) is "given l,
// which r"; Base.Rx(r) is "given r, which l") and a value->pairs inverse
// index Vlr.
type Binary struct {
	mu       sync.RWMutex
	itemDim  int
	value    [][]Ob // value[lhs][rhs]
	defined  *binrel.Base
	vlr      map[Ob]map[Pair]struct{}
	onInsert BinaryCallback
}

// NewBinary allocates a Binary function over obs 0..itemDim.
func NewBinary(itemDim int, onInsert BinaryCallback) *Binary {
	value := make([][]Ob, itemDim+1)
	for i := range value {
		value[i] = make([]Ob, itemDim+1)
	}
	return &Binary{
		itemDim:  itemDim,
		value:    value,
		defined:  binrel.NewBase(itemDim, false),
		vlr:      make(map[Ob]map[Pair]struct{}),
		onInsert: onInsert,
	}
}

func (f *Binary) checkRange(ob Ob) {
	if int(ob) < 0 || int(ob) > f.itemDim {
		panic(fmt.Sprintf("function: ob %d out of range [0,%d]", ob, f.itemDim))
	}
}

// Find returns value[lhs][rhs], or 0 if undefined.
func (f *Binary) Find(lhs, rhs Ob) Ob {
	f.checkRange(lhs)
	f.checkRange(rhs)
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.value[lhs][rhs]
}

// Defined reports whether (lhs, rhs) is defined.
func (f *Binary) Defined(lhs, rhs Ob) bool {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.defined.Get(lhs, rhs)
}

func (f *Binary) addVlrLocked(val, lhs, rhs Ob) {
	m := f.vlr[val]
	if m == nil {
		m = make(map[Pair]struct{})
		f.vlr[val] = m
	}
	m[Pair{lhs, rhs}] = struct{}{}
}

func (f *Binary) removeVlrLocked(val, lhs, rhs Ob) {
	m := f.vlr[val]
	if m == nil {
		return
	}
	delete(m, Pair{lhs, rhs})
	if len(m) == 0 {
		delete(f.vlr, val)
	}
}

// Insert asserts value[lhs][rhs] = val. If the slot is currently 0, it is
// set and the callback fires. If already non-zero and differs, the carrier
// is asked to merge (SetAndMerge: both sides are already-defined values).
func (f *Binary) Insert(c *carrier.Carrier, lhs, rhs, val Ob) {
	f.checkRange(lhs)
	f.checkRange(rhs)
	f.checkRange(val)
	f.mu.Lock()
	cur := f.value[lhs][rhs]
	if cur == 0 {
		f.value[lhs][rhs] = val
		f.defined.Lx(lhs).TryInsert(rhs)
		f.defined.Rx(rhs).TryInsert(lhs)
		f.addVlrLocked(val, lhs, rhs)
		f.mu.Unlock()
		if f.onInsert != nil {
			f.onInsert(lhs, rhs, val)
		}
		return
	}
	f.mu.Unlock()
	if cur != val {
		c.SetAndMerge(&cur, val)
	}
}

// RawInsert unconditionally assigns value[lhs][rhs]=val (bulk load; no
// callback).
func (f *Binary) RawInsert(lhs, rhs, val Ob) {
	f.checkRange(lhs)
	f.checkRange(rhs)
	f.checkRange(val)
	f.mu.Lock()
	defer f.mu.Unlock()
	f.value[lhs][rhs] = val
	f.defined.Lx(lhs).TryInsert(rhs)
	f.defined.Rx(rhs).TryInsert(lhs)
	f.addVlrLocked(val, lhs, rhs)
}

// IterVal returns every (lhs, rhs) pair whose value is val.
func (f *Binary) IterVal(val Ob) []Pair {
	f.mu.RLock()
	defer f.mu.RUnlock()
	m := f.vlr[val]
	out := make([]Pair, 0, len(m))
	for p := range m {
		out = append(out, p)
	}
	return out
}

// IterLhs returns every rhs such that (lhs, rhs) is defined.
func (f *Binary) IterLhs(lhs Ob) []Ob {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.defined.Lx(lhs).Iter()
}

// IterRhs returns every lhs such that (lhs, rhs) is defined.
func (f *Binary) IterRhs(rhs Ob) []Ob {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.defined.Rx(rhs).Iter()
}

// UnsafeMerge rewrites every occurrence of dep as lhs, as rhs, and as value
// to rep, updating all three inverse indices. Collisions are rescheduled as
// carrier merges via SetOrMerge, matching spec.md §4.4's stated contract for
// BinaryFunction (preserved per DESIGN.md Open Question (b): unlike
// InjectiveFunction, BinaryFunction's unsafe_merge uses set_or_merge because
// the destination slot during a rewrite-in-place pass may not yet have been
// visited and so may still be unbound).
func (f *Binary) UnsafeMerge(c *carrier.Carrier, dep, rep Ob) {
	f.mu.Lock()

	// dep as lhs: move row dep into row rep.
	for _, rhs := range f.defined.Lx(dep).Iter() {
		v := f.value[dep][rhs]
		f.value[dep][rhs] = 0
		f.removeVlrLocked(v, dep, rhs)
		f.defined.Rx(rhs).Remove(dep)
		f.rewriteCellLocked(c, rep, rhs, v)
	}
	f.defined.Lx(dep).Zero()

	// dep as rhs: move column dep into column rep.
	for _, lhs := range f.defined.Rx(dep).Iter() {
		v := f.value[lhs][dep]
		f.value[lhs][dep] = 0
		f.removeVlrLocked(v, lhs, dep)
		f.defined.Lx(lhs).Remove(dep)
		f.rewriteCellLocked(c, lhs, rep, v)
	}
	f.defined.Rx(dep).Zero()

	// dep as value: every pair currently mapped to dep now maps to rep.
	for p := range f.vlr[dep] {
		f.value[p.Lhs][p.Rhs] = rep
		f.addVlrLocked(rep, p.Lhs, p.Rhs)
	}
	delete(f.vlr, dep)

	f.mu.Unlock()
}

// rewriteCellLocked writes value[lhs][rhs]=v into the (already-cleared)
// rep-indexed slot, merging with whatever is already there. Caller holds
// f.mu for writing; merges may recursively call back into the carrier but
// never re-enter f.mu (EnsureEqual/SetOrMerge touch only the carrier).
func (f *Binary) rewriteCellLocked(c *carrier.Carrier, lhs, rhs, v Ob) {
	cur := f.value[lhs][rhs]
	if cur == 0 {
		f.value[lhs][rhs] = v
		f.defined.Lx(lhs).TryInsert(rhs)
		f.defined.Rx(rhs).TryInsert(lhs)
		f.addVlrLocked(v, lhs, rhs)
		return
	}
	if cur != v {
		dst := cur
		c.SetOrMerge(&dst, v)
	}
}

// IterDefined calls fn once per defined (lhs, rhs, value) triple.
func (f *Binary) IterDefined(fn func(lhs, rhs, val Ob)) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	for lhs := 1; lhs <= f.itemDim; lhs++ {
		for _, rhs := range f.defined.Lx(Ob(lhs)).Iter() {
			fn(Ob(lhs), rhs, f.value[lhs][rhs])
		}
	}
}

// Validate checks cross-consistency between value, defined, and Vlr.
func (f *Binary) Validate() error {
	f.mu.RLock()
	defer f.mu.RUnlock()
	for lhs := 1; lhs <= f.itemDim; lhs++ {
		for _, rhs := range f.defined.Lx(Ob(lhs)).Iter() {
			v := f.value[lhs][rhs]
			if v == 0 {
				return fmt.Errorf("%w: (%d,%d) marked defined with zero value", ErrInconsistent, lhs, rhs)
			}
			if _, ok := f.vlr[v][Pair{Ob(lhs), rhs}]; !ok {
				return fmt.Errorf("%w: (%d,%d)=%d missing from Vlr", ErrInconsistent, lhs, rhs, v)
			}
		}
	}
	return nil
}
