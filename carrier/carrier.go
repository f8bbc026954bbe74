package carrier

import (
	"errors"
	"fmt"
	"sync"

	"github.com/pomagma/atlas/denseset"
)

// Ob re-exports denseset.Ob so callers of carrier need not import denseset
// directly for the common case.
type Ob = denseset.Ob

// ErrCarrierFull names the condition of no free ob remaining. No function in
// this package returns it: Insert returns Ob(0) on exhaustion per spec.md §7
// ("resource exhaustion... insert() returns 0").
var ErrCarrierFull = errors.New("carrier: full")

// MergeCallback is invoked synchronously from Merge, after rep[dep] has been
// set, with the deprecated ob. It is whatever the caller passed to New;
// neither the scheduler nor the engine installs one, so a merge schedules no
// task.Merge unless the caller's callback does. Implementations must not
// block and must not re-enter the Carrier's lock.
type MergeCallback func(dep Ob)

// Carrier is a union-find over obs 1..itemDim.
//
//   - support.Contains(ob) <=> rep[ob] != 0
//   - for every ob in support, rep[ob] <= ob, and following rep reaches a
//     fixed point in the support (a representative)
//   - repCount = |{ob in support : rep[ob] == ob}|
type Carrier struct {
	mu            sync.RWMutex
	itemDim       int
	support       *denseset.DenseSet
	rep           []Ob
	repCount      int
	mergeCallback MergeCallback
}

// New constructs a Carrier over obs 1..itemDim. cb may be nil.
func New(itemDim int, cb MergeCallback) *Carrier {
	return &Carrier{
		itemDim:       itemDim,
		support:       denseset.New(itemDim),
		rep:           make([]Ob, itemDim+1),
		mergeCallback: cb,
	}
}

// ItemDim returns the fixed capacity.
func (c *Carrier) ItemDim() int { return c.itemDim }

// Support returns the DenseSet of currently-live obs. Callers must not
// mutate it directly; it is owned by the Carrier.
func (c *Carrier) Support() *denseset.DenseSet {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.support
}

// ItemCount returns the number of live obs (support set size).
func (c *Carrier) ItemCount() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.support.Count()
}

// RepCount returns the number of equivalence-class representatives.
func (c *Carrier) RepCount() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.repCount
}

// Contains reports whether ob is currently live (not merged away).
func (c *Carrier) Contains(ob Ob) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.support.Contains(ob)
}

// Insert allocates the smallest free ob and returns it, or 0 if full.
func (c *Carrier) Insert() Ob {
	c.mu.Lock()
	defer c.mu.Unlock()
	ob := c.support.TryInsertOne()
	if ob == 0 {
		return 0
	}
	c.rep[ob] = ob
	c.repCount++
	return ob
}

// RawInsert bulk-loads ob as present with rep[ob] = ob. Used only during a
// single-threaded load path; callers must follow up with Update.
func (c *Carrier) RawInsert(ob Ob) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if int(ob) < 1 || int(ob) > c.itemDim {
		panic(fmt.Sprintf("carrier: raw_insert ob %d out of range", ob))
	}
	c.support.Insert(ob)
	c.rep[ob] = ob
}

// Update recomputes repCount after a bulk RawInsert load.
func (c *Carrier) Update() {
	c.mu.Lock()
	defer c.mu.Unlock()
	count := 0
	for _, ob := range c.support.Iter() {
		if c.rep[ob] == ob {
			count++
		}
	}
	c.repCount = count
}

// Find returns the representative of ob, performing path compression.
func (c *Carrier) Find(ob Ob) Ob {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.findLocked(ob)
}

// findLocked assumes c.mu is held for writing (path compression mutates rep).
func (c *Carrier) findLocked(ob Ob) Ob {
	root := ob
	for c.rep[root] != root {
		root = c.rep[root]
	}
	for c.rep[ob] != root {
		next := c.rep[ob]
		c.rep[ob] = root
		ob = next
	}
	return root
}

// Equal reports whether x and y are in the same equivalence class.
func (c *Carrier) Equal(x, y Ob) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.findLocked(x) == c.findLocked(y)
}

// Merge asserts dep == rep (dep > rep required), removes dep as its own
// representative, and invokes the merge callback. Returns rep.
func (c *Carrier) Merge(dep, rep Ob) Ob {
	c.mu.Lock()
	if dep <= rep {
		c.mu.Unlock()
		panic(fmt.Sprintf("carrier: ill-formed merge dep=%d rep=%d", dep, rep))
	}
	depRoot := c.findLocked(dep)
	if depRoot == dep {
		c.repCount--
	}
	c.rep[dep] = rep
	cb := c.mergeCallback
	c.mu.Unlock()

	if cb != nil {
		cb(dep)
	}
	return rep
}

// EnsureEqual merges x and y (larger as dep, smaller as rep) if they differ,
// and returns the resulting common representative. If x and y are already
// equal, returns that common value without scheduling a merge.
func (c *Carrier) EnsureEqual(x, y Ob) Ob {
	fx := c.Find(x)
	fy := c.Find(y)
	if fx == fy {
		return fx
	}
	dep, rep := fx, fy
	if dep < rep {
		dep, rep = rep, dep
	}
	return c.Merge(dep, rep)
}

// SetAndMerge is used when both destin and source are already known-defined.
// If destin is 0 it is a no-op (returns false). If destin == source, returns
// false. Otherwise destin is reassigned to EnsureEqual(destin, source) and
// true is returned.
func (c *Carrier) SetAndMerge(destin *Ob, source Ob) bool {
	if *destin == 0 {
		return false
	}
	if *destin == source {
		return false
	}
	*destin = c.EnsureEqual(*destin, source)
	return true
}

// SetOrMerge is used when destin may be unbound. If destin is 0, source is
// stored and true is returned (a fresh binding, not a merge). Otherwise the
// two are merged and false is returned (the caller's slot is unchanged; any
// consequence of the merge propagates via the merge callback).
func (c *Carrier) SetOrMerge(destin *Ob, source Ob) bool {
	if *destin == 0 {
		*destin = source
		return true
	}
	c.EnsureEqual(*destin, source)
	return false
}

// UnsafeRemove deletes ob from support. The caller must already have
// rewritten every reference to ob in every table sharing this carrier.
func (c *Carrier) UnsafeRemove(ob Ob) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.rep[ob] == ob {
		c.repCount--
	}
	c.support.Remove(ob)
	c.rep[ob] = 0
}
