package binrel

import (
	"github.com/pomagma/atlas/denseset"
)

// Binary2Callback is invoked exactly once per newly-asserted (i, j) pair.
type Binary2Callback func(i, j Ob)

// Binary wraps a Base with the insert-callback and merge discipline of
// spec.md §4.3.
type Binary struct {
	base     *Base
	onInsert Binary2Callback
}

// NewBinary allocates a Binary relation. symmetric aliases Lx/Rx for
// relations like COMPAT where (i,j) and (j,i) are the same fact.
func NewBinary(itemDim int, symmetric bool, onInsert Binary2Callback) *Binary {
	return &Binary{base: NewBase(itemDim, symmetric), onInsert: onInsert}
}

// Base exposes the underlying bit-matrix pair (read-mostly use: Lx/Rx rows,
// CopyLxToRx during bulk load, Validate).
func (r *Binary) Base() *Base { return r.base }

// Find reports whether (i, j) holds.
func (r *Binary) Find(i, j Ob) bool {
	r.base.RLock()
	defer r.base.RUnlock()
	return r.base.Get(i, j)
}

// Insert asserts (i, j), firing the callback iff the Lx bit was previously
// clear.
func (r *Binary) Insert(i, j Ob) {
	r.base.Lock()
	added := r.base.set(i, j)
	r.base.Unlock()
	if added && r.onInsert != nil {
		r.onInsert(i, j)
	}
}

// InsertRow bulk-inserts a set of right operands for a fixed left operand,
// firing the callback only for newly-added pairs.
func (r *Binary) InsertRow(i Ob, js *denseset.DenseSet) {
	r.base.Lock()
	diff := denseset.New(r.base.itemDim)
	r.base.lx[i].Ensure(js, diff)
	newJs := diff.Iter()
	if !r.base.symmetric {
		for _, j := range newJs {
			r.base.rx[j].TryInsert(i)
		}
	} else {
		for _, j := range newJs {
			if j != i {
				r.base.lx[j].TryInsert(i)
			}
		}
	}
	r.base.Unlock()
	if r.onInsert != nil {
		for _, j := range newJs {
			r.onInsert(i, j)
		}
	}
}

// RawInsert unconditionally asserts (i, j) in both matrices (bulk load; no
// callback).
func (r *Binary) RawInsert(i, j Ob) {
	r.base.Lock()
	defer r.base.Unlock()
	r.base.set(i, j)
}

// UnsafeMerge rewrites every pair referencing dep (as either argument) to
// rep, firing the callback for each newly-created surviving pair, and
// clears dep's rows. The caller (scheduler, under the strict mutex) must
// serialize this against Insert via the Binary's own lock, which this
// method takes for writing.
func (r *Binary) UnsafeMerge(dep, rep Ob) {
	r.base.Lock()
	defer r.base.Unlock()
	cb := r.onInsert
	r.base.unsafeMergeRows(dep, rep, func(i, j Ob) {
		if cb != nil {
			cb(i, j)
		}
	})
}

// Validate checks Lx/Rx consistency (delegates to Base).
func (r *Binary) Validate() error { return r.base.Validate() }
