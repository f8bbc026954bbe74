package function

import (
	"sync"
	"sync/atomic"

	"github.com/pomagma/atlas/carrier"
	"github.com/pomagma/atlas/denseset"
)

// Ob re-exports denseset.Ob for callers that only need function.
type Ob = denseset.Ob

// InsertCallback fires once per newly-defined value.
type InsertCallback func(args ...Ob)

// Nullary is a single scalar Ob (or 0 if undefined), e.g. the constant I or K
// combinator.
type Nullary struct {
	mu       sync.RWMutex
	value    atomic.Uint32
	onInsert InsertCallback
}

// NewNullary constructs an undefined Nullary function.
func NewNullary(onInsert InsertCallback) *Nullary {
	return &Nullary{onInsert: onInsert}
}

// Find returns the value, or 0 if undefined.
func (f *Nullary) Find() Ob {
	return Ob(f.value.Load())
}

// Defined reports whether the function has a value.
func (f *Nullary) Defined() bool {
	return f.value.Load() != 0
}

// Insert sets the value to val. If already defined to a different value,
// the carrier is asked to merge the two (spec.md §4.4: "if already non-zero
// and differs... invokes carrier.ensure_equal").
func (f *Nullary) Insert(c *carrier.Carrier, val Ob) {
	f.mu.Lock()
	cur := Ob(f.value.Load())
	if cur == 0 {
		f.value.Store(uint32(val))
		f.mu.Unlock()
		if f.onInsert != nil {
			f.onInsert(val)
		}
		return
	}
	f.mu.Unlock()
	if cur != val {
		c.EnsureEqual(cur, val)
	}
}

// RawInsert unconditionally assigns val (bulk load; no callback).
func (f *Nullary) RawInsert(val Ob) {
	f.value.Store(uint32(val))
}

// UnsafeMerge rewrites the value dep to rep, if the value currently equals
// dep.
func (f *Nullary) UnsafeMerge(dep, rep Ob) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if Ob(f.value.Load()) == dep {
		f.value.Store(uint32(rep))
	}
}
