package function

import (
	"fmt"
	"sync"

	"github.com/pomagma/atlas/carrier"
	"github.com/pomagma/atlas/denseset"
)

// Injective is a 1-ary partial function with a direct inverse array:
// values[key] = val, inverse[val] = key.
//
// Invariant: defined.Contains(k) <=> values[k] != 0; similarly for
// inverseDefined; and inverse[values[k]] == k under carrier equivalence.
type Injective struct {
	mu             sync.RWMutex
	itemDim        int
	values         []Ob
	inverse        []Ob
	defined        *denseset.DenseSet
	inverseDefined *denseset.DenseSet
	onInsert       InsertCallback
}

// NewInjective allocates an Injective function over obs 0..itemDim.
func NewInjective(itemDim int, onInsert InsertCallback) *Injective {
	return &Injective{
		itemDim:        itemDim,
		values:         make([]Ob, itemDim+1),
		inverse:        make([]Ob, itemDim+1),
		defined:        denseset.New(itemDim),
		inverseDefined: denseset.New(itemDim),
		onInsert:       onInsert,
	}
}

func (f *Injective) checkRange(ob Ob) {
	if int(ob) < 0 || int(ob) > f.itemDim {
		panic(fmt.Sprintf("function: ob %d out of range [0,%d]", ob, f.itemDim))
	}
}

// Find returns values[key], or 0 if undefined.
func (f *Injective) Find(key Ob) Ob {
	f.checkRange(key)
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.values[key]
}

// InverseFind returns the key mapping to val, or 0 if undefined.
func (f *Injective) InverseFind(val Ob) Ob {
	f.checkRange(val)
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.inverse[val]
}

// Defined reports whether key has a value.
func (f *Injective) Defined(key Ob) bool {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.defined.Contains(key)
}

// Insert asserts values[key] = val. If the slot is currently 0, it is set
// and the callback fires. If already non-zero and differs from val, the
// carrier is asked to merge the two existing/incoming values
// (carrier.SetAndMerge: both sides are already known-defined here).
func (f *Injective) Insert(c *carrier.Carrier, key, val Ob) {
	f.checkRange(key)
	f.checkRange(val)
	f.mu.Lock()
	cur := f.values[key]
	if cur == 0 {
		f.values[key] = val
		f.defined.TryInsert(key)
		if !f.inverseDefined.Contains(val) {
			f.inverse[val] = key
			f.inverseDefined.TryInsert(val)
		}
		f.mu.Unlock()
		if f.onInsert != nil {
			f.onInsert(key, val)
		}
		return
	}
	f.mu.Unlock()
	if cur != val {
		c.SetAndMerge(&cur, val)
	}
}

// RawInsert unconditionally assigns values[key]=val and inverse[val]=key
// (bulk load; no callback).
func (f *Injective) RawInsert(key, val Ob) {
	f.checkRange(key)
	f.checkRange(val)
	f.mu.Lock()
	defer f.mu.Unlock()
	f.values[key] = val
	f.defined.TryInsert(key)
	f.inverse[val] = key
	f.inverseDefined.TryInsert(val)
}

// UnsafeMerge rewrites every occurrence of dep, as either key or value, to
// rep. Collisions (both values[dep] and values[rep] defined but differ)
// are rescheduled as a carrier merge via SetAndMerge — both sides are
// already-defined function values, matching spec.md §4.4's stated contract
// for InjectiveFunction (preserved per DESIGN.md Open Question (b)).
func (f *Injective) UnsafeMerge(c *carrier.Carrier, dep, rep Ob) {
	f.mu.Lock()

	// dep as key: values[dep] -> becomes values[rep], possibly colliding.
	if f.defined.Contains(dep) {
		v := f.values[dep]
		f.values[dep] = 0
		f.defined.Remove(dep)
		if f.defined.Contains(rep) && f.values[rep] != v {
			existing := f.values[rep]
			f.mu.Unlock()
			c.SetAndMerge(&existing, v)
			f.mu.Lock()
		} else if !f.defined.Contains(rep) {
			f.values[rep] = v
			f.defined.TryInsert(rep)
			if f.inverseDefined.Contains(v) && f.inverse[v] == dep {
				f.inverse[v] = rep
			}
		}
	}

	// dep as value: inverse[dep] -> becomes inverse[rep].
	if f.inverseDefined.Contains(dep) {
		k := f.inverse[dep]
		f.inverse[dep] = 0
		f.inverseDefined.Remove(dep)
		if f.inverseDefined.Contains(rep) && f.inverse[rep] != k {
			// Two distinct keys claim to map to the same surviving value;
			// those keys' values must themselves be merged.
			existingKey := f.inverse[rep]
			f.mu.Unlock()
			c.SetAndMerge(&existingKey, k)
			f.mu.Lock()
		} else if !f.inverseDefined.Contains(rep) {
			f.inverse[rep] = k
			f.inverseDefined.TryInsert(rep)
		}
		if f.defined.Contains(k) && f.values[k] == dep {
			f.values[k] = rep
		}
	}

	f.mu.Unlock()
}

// IterDefined calls fn once per defined (key, value) pair.
func (f *Injective) IterDefined(fn func(key, val Ob)) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	for _, k := range f.defined.Iter() {
		fn(k, f.values[k])
	}
}

// Validate checks cross-consistency between defined/inverseDefined and the
// carrier's equivalence relation.
func (f *Injective) Validate(c *carrier.Carrier) error {
	f.mu.RLock()
	defer f.mu.RUnlock()
	for _, k := range f.defined.Iter() {
		v := f.values[k]
		if v == 0 {
			return fmt.Errorf("%w: key %d marked defined with zero value", ErrInconsistent, k)
		}
		if !f.inverseDefined.Contains(v) {
			return fmt.Errorf("%w: value %d of key %d has no inverse entry", ErrInconsistent, v, k)
		}
		if !c.Equal(f.inverse[v], k) {
			return fmt.Errorf("%w: inverse(%d)=%d not equivalent to key %d", ErrInconsistent, v, f.inverse[v], k)
		}
	}
	return nil
}
