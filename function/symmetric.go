package function

import (
	"fmt"
	"sync"

	"github.com/pomagma/atlas/binrel"
	"github.com/pomagma/atlas/carrier"
)

// Symmetric is a 2-ary partial function canonicalized so lhs<=rhs; queries
// swap operands as needed. Only two inverse indices are kept (Vlr, VLr) —
// VRl is redundant with VLr once arguments are canonicalized, per spec.md
// §4.4 ("Only two inverse indices are needed").
type Symmetric struct {
	mu       sync.RWMutex
	itemDim  int
	value    [][]Ob // value[lhs][rhs], lhs<=rhs only
	defined  *binrel.Base
	vlr      map[Ob]map[Pair]struct{}
	onInsert BinaryCallback
}

// NewSymmetric allocates a Symmetric function over obs 0..itemDim.
func NewSymmetric(itemDim int, onInsert BinaryCallback) *Symmetric {
	value := make([][]Ob, itemDim+1)
	for i := range value {
		value[i] = make([]Ob, itemDim+1)
	}
	return &Symmetric{
		itemDim:  itemDim,
		value:    value,
		defined:  binrel.NewBase(itemDim, true),
		vlr:      make(map[Ob]map[Pair]struct{}),
		onInsert: onInsert,
	}
}

func canon(a, b Ob) (Ob, Ob) {
	if a <= b {
		return a, b
	}
	return b, a
}

func (f *Symmetric) checkRange(ob Ob) {
	if int(ob) < 0 || int(ob) > f.itemDim {
		panic(fmt.Sprintf("function: ob %d out of range [0,%d]", ob, f.itemDim))
	}
}

// Find returns value[lhs][rhs] canonicalized, or 0 if undefined.
func (f *Symmetric) Find(a, b Ob) Ob {
	lhs, rhs := canon(a, b)
	f.checkRange(lhs)
	f.checkRange(rhs)
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.value[lhs][rhs]
}

// Defined reports whether (a, b) is defined.
func (f *Symmetric) Defined(a, b Ob) bool {
	lhs, rhs := canon(a, b)
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.defined.Get(lhs, rhs)
}

func (f *Symmetric) addVlrLocked(val, lhs, rhs Ob) {
	m := f.vlr[val]
	if m == nil {
		m = make(map[Pair]struct{})
		f.vlr[val] = m
	}
	m[Pair{lhs, rhs}] = struct{}{}
}

func (f *Symmetric) removeVlrLocked(val, lhs, rhs Ob) {
	m := f.vlr[val]
	if m == nil {
		return
	}
	delete(m, Pair{lhs, rhs})
	if len(m) == 0 {
		delete(f.vlr, val)
	}
}

// Insert asserts value(a,b) = val (canonicalized). Same collision semantics
// as Binary.Insert.
func (f *Symmetric) Insert(c *carrier.Carrier, a, b, val Ob) {
	lhs, rhs := canon(a, b)
	f.checkRange(lhs)
	f.checkRange(rhs)
	f.checkRange(val)
	f.mu.Lock()
	cur := f.value[lhs][rhs]
	if cur == 0 {
		f.value[lhs][rhs] = val
		f.defined.SetPair(lhs, rhs)
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

// RawInsert unconditionally assigns value(a,b)=val (bulk load; no callback).
func (f *Symmetric) RawInsert(a, b, val Ob) {
	lhs, rhs := canon(a, b)
	f.checkRange(lhs)
	f.checkRange(rhs)
	f.checkRange(val)
	f.mu.Lock()
	defer f.mu.Unlock()
	f.value[lhs][rhs] = val
	f.defined.SetPair(lhs, rhs)
	f.addVlrLocked(val, lhs, rhs)
}

// IterVal returns every canonicalized (lhs, rhs) pair whose value is val.
func (f *Symmetric) IterVal(val Ob) []Pair {
	f.mu.RLock()
	defer f.mu.RUnlock()
	m := f.vlr[val]
	out := make([]Pair, 0, len(m))
	for p := range m {
		out = append(out, p)
	}
	return out
}

// IterArg returns every ob paired with a (in either canonical position).
func (f *Symmetric) IterArg(a Ob) []Ob {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.defined.Lx(a).Iter() // symmetric Base aliases Lx/Rx: this is VLr
}

// UnsafeMerge rewrites every occurrence of dep, as either canonical
// argument or as value, to rep. Collisions rescheduled via SetOrMerge, same
// rationale as function.Binary (DESIGN.md Open Question (b)).
func (f *Symmetric) UnsafeMerge(c *carrier.Carrier, dep, rep Ob) {
	f.mu.Lock()

	for _, other := range f.defined.Lx(dep).Iter() {
		lhs, rhs := dep, other
		if lhs > rhs {
			lhs, rhs = rhs, lhs
		}
		v := f.value[lhs][rhs]
		f.value[lhs][rhs] = 0
		f.removeVlrLocked(v, lhs, rhs)
		f.defined.RemovePair(lhs, rhs)

		newLhs, newRhs := canon(rep, other)
		if newLhs == dep || newRhs == dep {
			// other == dep: the pair (dep, dep) maps to (rep, rep).
			newLhs, newRhs = rep, rep
		}
		cur := f.value[newLhs][newRhs]
		if cur == 0 {
			f.value[newLhs][newRhs] = v
			f.defined.SetPair(newLhs, newRhs)
			f.addVlrLocked(v, newLhs, newRhs)
		} else if cur != v {
			dst := cur
			c.SetOrMerge(&dst, v)
		}
	}

	for p := range f.vlr[dep] {
		f.value[p.Lhs][p.Rhs] = rep
		f.addVlrLocked(rep, p.Lhs, p.Rhs)
	}
	delete(f.vlr, dep)

	f.mu.Unlock()
}

// IterDefined calls fn once per defined canonicalized (lhs, rhs, value) triple.
func (f *Symmetric) IterDefined(fn func(lhs, rhs, val Ob)) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	for lhs := 1; lhs <= f.itemDim; lhs++ {
		for _, rhs := range f.defined.Lx(Ob(lhs)).Iter() {
			if Ob(lhs) > rhs {
				continue
			}
			fn(Ob(lhs), rhs, f.value[lhs][rhs])
		}
	}
}

// Validate checks cross-consistency between value, defined, and Vlr.
func (f *Symmetric) Validate() error {
	f.mu.RLock()
	defer f.mu.RUnlock()
	for lhs := 1; lhs <= f.itemDim; lhs++ {
		for _, rhs := range f.defined.Lx(Ob(lhs)).Iter() {
			if Ob(lhs) > rhs {
				continue // the aliased mirror entry; canonical side already checked
			}
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
