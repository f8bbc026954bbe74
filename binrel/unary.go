package binrel

import (
	"sync"

	"github.com/pomagma/atlas/denseset"
)

// InsertCallback is invoked exactly once per newly-asserted fact.
type InsertCallback func(args ...Ob)

// Unary holds a DenseSet subset of the carrier's support, plus an
// insert-callback fired when a new ob enters the relation.
type Unary struct {
	mu       sync.RWMutex
	set      *denseset.DenseSet
	onInsert InsertCallback
}

// NewUnary allocates a Unary relation over obs 0..itemDim.
func NewUnary(itemDim int, onInsert InsertCallback) *Unary {
	return &Unary{set: denseset.New(itemDim), onInsert: onInsert}
}

// Find reports whether ob holds the relation.
func (u *Unary) Find(ob Ob) bool {
	u.mu.RLock()
	defer u.mu.RUnlock()
	return u.set.Contains(ob)
}

// Insert asserts the relation for ob, firing the callback iff newly added.
func (u *Unary) Insert(ob Ob) {
	u.mu.Lock()
	added := u.set.TryInsert(ob)
	u.mu.Unlock()
	if added && u.onInsert != nil {
		u.onInsert(ob)
	}
}

// RawInsert unconditionally asserts ob (bulk load; no callback).
func (u *Unary) RawInsert(ob Ob) {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.set.TryInsert(ob)
}

// Iter returns every ob currently holding the relation.
func (u *Unary) Iter() []Ob {
	u.mu.RLock()
	defer u.mu.RUnlock()
	return u.set.Iter()
}

// UnsafeMerge rewrites every occurrence of dep to rep. If dep was present
// and rep was not, rep becomes present and the callback fires for rep;
// otherwise there is nothing new to report.
func (u *Unary) UnsafeMerge(dep, rep Ob) {
	u.mu.Lock()
	hadDep := u.set.Contains(dep)
	if !hadDep {
		u.mu.Unlock()
		return
	}
	u.set.Remove(dep)
	added := u.set.TryInsert(rep)
	u.mu.Unlock()
	if added && u.onInsert != nil {
		u.onInsert(rep)
	}
}
