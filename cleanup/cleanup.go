package cleanup

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
)

// paddedCounter separates hot counters so they never share a cache line.
// 64 bytes minus the 4 bytes of the atomic.Uint32 it follows.
type paddedCounter struct {
	v atomic.Uint32
	_ [60]byte
}

// Generator is a lock-free round-robin source of cleanup work over
// type_count disjoint classes, per spec.md §4.5.
type Generator struct {
	typeCount uint32

	done   paddedCounter
	cursor paddedCounter

	mu    sync.RWMutex
	names []string
	fns   []func(context.Context) error
}

// New constructs a Generator with type_count classes. Panics if typeCount
// is not positive (a zero-class generator can never do anything useful;
// this is a construction-time programmer error, not a runtime condition).
func New(typeCount int) *Generator {
	if typeCount <= 0 {
		panic(fmt.Sprintf("cleanup: type_count must be positive, got %d", typeCount))
	}
	g := &Generator{typeCount: uint32(typeCount)}
	g.names = make([]string, typeCount)
	g.fns = make([]func(context.Context) error, typeCount)
	return g
}

// TypeCount returns the fixed number of cleanup classes.
func (g *Generator) TypeCount() int { return int(g.typeCount) }

// Register binds a named cleanup routine to type index id (a supplemented
// feature over spec.md §4.5, grounded on original_source/src/atlas/macro/
// base_bin_rel.cpp's per-relation cleanup hooks — see SPEC_FULL.md). Must be
// called before any concurrent PushAll/TryPop traffic (typically during
// Engine construction).
func (g *Generator) Register(id int, name string, fn func(context.Context) error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if id < 0 || id >= int(g.typeCount) {
		panic(fmt.Sprintf("cleanup: type id %d out of range [0,%d)", id, g.typeCount))
	}
	g.names[id] = name
	g.fns[id] = fn
}

// Name returns the registered name for a type index, or "" if unregistered.
func (g *Generator) Name(id int) string {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.names[id]
}

// Run invokes the registered routine for type index id, if any.
func (g *Generator) Run(ctx context.Context, id int) error {
	g.mu.RLock()
	fn := g.fns[id]
	g.mu.RUnlock()
	if fn == nil {
		return nil
	}
	return fn(ctx)
}

// PushAll resets the completion counter to 0, re-enabling type_count more
// TryPop successes. The round-robin cursor is not reset: fairness is
// preserved across repeated PushAll calls, not just within one.
func (g *Generator) PushAll() {
	g.done.v.Store(0)
}

// TryPop atomically claims the next available class. It increments the
// done-counter (bounded by type_count) via a CAS loop and advances the
// round-robin cursor via a second CAS loop, returning the pre-advance
// cursor value as the claimed type index. Returns false once type_count
// classes have been consumed since the last PushAll.
func (g *Generator) TryPop() (typeID int, ok bool) {
	for {
		d := g.done.v.Load()
		if d >= g.typeCount {
			return 0, false
		}
		if g.done.v.CompareAndSwap(d, d+1) {
			break
		}
	}
	for {
		c := g.cursor.v.Load()
		next := (c + 1) % g.typeCount
		if g.cursor.v.CompareAndSwap(c, next) {
			return int(c), true
		}
	}
}
