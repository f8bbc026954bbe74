package scheduler

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/pomagma/atlas/cleanup"
	"github.com/pomagma/atlas/task"
	"golang.org/x/sync/errgroup"
)

// enforceOrder fixes the order in which non-merge, non-assume arities are
// tried during an enforce pass, per spec.md §4.6's "all non-merge
// categories tried in fixed order".
var enforceOrder = []string{
	"exists",
	"positive_order",
	"negative_order",
	"unary_relation",
	"nullary_function",
	"injective_function",
	"binary_function",
	"symmetric_function",
}

const idleWaitTimeout = 100 * time.Millisecond
const deadlinePollInterval = 500 * time.Millisecond

// Scheduler dispatches heterogeneous task records under the strict-mutex
// discipline of spec.md §4.6.
type Scheduler struct {
	exec    Executor
	cleanup *cleanup.Generator

	strictMu sync.RWMutex

	mergeQueue  fifoQueue
	assumeQueue fifoQueue
	enforce     map[string]*fifoQueue

	mergeCount   atomic.Uint64
	enforceCount atomic.Uint64

	notify chan struct{}

	deadlineLive atomic.Bool
}

// New builds a Scheduler around exec (the collaborator that applies task
// effects) and a cleanup generator sized for the caller's class count.
func New(exec Executor, cg *cleanup.Generator) *Scheduler {
	s := &Scheduler{
		exec:    exec,
		cleanup: cg,
		enforce: make(map[string]*fifoQueue, len(enforceOrder)),
		notify:  make(chan struct{}, 1),
	}
	s.deadlineLive.Store(true)
	for _, arity := range enforceOrder {
		s.enforce[arity] = &fifoQueue{}
	}
	return s
}

func (s *Scheduler) signal() {
	select {
	case s.notify <- struct{}{}:
	default:
	}
}

// MergeCount returns the number of MergeTasks ever scheduled.
func (s *Scheduler) MergeCount() uint64 { return s.mergeCount.Load() }

// EnforceCount returns the number of non-merge tasks ever scheduled.
func (s *Scheduler) EnforceCount() uint64 { return s.enforceCount.Load() }

// Schedule pushes task t to its queue and wakes one idle worker.
func (s *Scheduler) Schedule(t task.Task) {
	switch v := t.(type) {
	case task.Merge:
		s.mergeQueue.push(v)
		s.mergeCount.Add(1)
	case task.Assume:
		s.assumeQueue.push(v)
		s.enforceCount.Add(1)
	default:
		q, ok := s.enforce[t.Arity()]
		if !ok {
			panic("scheduler: unknown task arity " + t.Arity())
		}
		q.push(t)
		s.enforceCount.Add(1)
	}
	s.signal()
}

// StartDeadline marks the deadline live and spawns a detached watchdog
// that clears it once d elapses, per spec.md §4.6 "Deadline". The
// returned stop func cancels the watchdog early (e.g. on Engine.Close).
func (s *Scheduler) StartDeadline(d time.Duration) (stop func()) {
	s.deadlineLive.Store(true)
	deadline := time.Now().Add(d)
	done := make(chan struct{})
	go func() {
		ticker := time.NewTicker(deadlinePollInterval)
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case now := <-ticker.C:
				if !now.Before(deadline) {
					s.deadlineLive.Store(false)
					return
				}
			}
		}
	}()
	var once sync.Once
	return func() { once.Do(func() { close(done) }) }
}

// DeadlineLive reports whether the deadline watchdog has not yet expired.
func (s *Scheduler) DeadlineLive() bool { return s.deadlineLive.Load() }

// RunPhase runs workerCount workers attempting phase-appropriate work
// until every worker observes simultaneous idleness, then returns. It
// blocks until that point or until ctx is cancelled.
func (s *Scheduler) RunPhase(ctx context.Context, phase Phase, workerCount int) error {
	if workerCount < 1 {
		workerCount = 1
	}
	g, gctx := errgroup.WithContext(ctx)
	terminate := make(chan struct{})
	var terminateOnce sync.Once
	var working atomic.Int32

	for i := 0; i < workerCount; i++ {
		g.Go(func() error {
			for {
				select {
				case <-gctx.Done():
					return gctx.Err()
				case <-terminate:
					return nil
				default:
				}

				working.Add(1)
				ok, err := s.tryWork(gctx, phase)
				remaining := working.Add(-1)
				if err != nil {
					terminateOnce.Do(func() { close(terminate) })
					return err
				}
				if ok {
					continue
				}
				if remaining == 0 {
					terminateOnce.Do(func() { close(terminate) })
					return nil
				}
				select {
				case <-gctx.Done():
					return gctx.Err()
				case <-terminate:
					return nil
				case <-s.notify:
				case <-time.After(idleWaitTimeout):
				}
			}
		})
	}
	return g.Wait()
}

// tryWork attempts one unit of phase-appropriate work, per the
// initialize/survey/deadline sequencing of spec.md §4.6.
func (s *Scheduler) tryWork(ctx context.Context, phase Phase) (bool, error) {
	if ok, err := s.tryMerge(ctx); ok || err != nil {
		return ok, err
	}

	switch phase {
	case PhaseInitialize:
		if ok, err := s.tryEnforce(ctx); ok || err != nil {
			return ok, err
		}
		if ok, err := s.tryAssume(ctx); ok || err != nil {
			return ok, err
		}
		return s.tryCleanup(ctx)

	case PhaseSurvey:
		if ok, err := s.tryEnforce(ctx); err != nil {
			return true, err
		} else if ok {
			s.cleanup.PushAll()
			return true, nil
		}
		if ok, err := s.trySample(ctx); ok || err != nil {
			return ok, err
		}
		return s.tryCleanup(ctx)

	case PhaseDeadline:
		if ok, err := s.tryEnforce(ctx); err != nil {
			return true, err
		} else if ok {
			s.cleanup.PushAll()
			return true, nil
		}
		if ok, err := s.tryAssume(ctx); ok || err != nil {
			return ok, err
		}
		if ok, err := s.trySample(ctx); ok || err != nil {
			return ok, err
		}
		if !s.DeadlineLive() {
			return false, nil
		}
		return s.tryCleanup(ctx)

	default:
		return false, nil
	}
}

// tryMerge drains the merge queue under the unique lock, executing each
// MergeTask and then cancelling every queued task that references the
// deprecated ob, per spec.md §4.6.
func (s *Scheduler) tryMerge(ctx context.Context) (bool, error) {
	first, ok := s.mergeQueue.pop()
	if !ok {
		return false, nil
	}

	s.strictMu.Lock()
	defer s.strictMu.Unlock()

	t := first
	for {
		mt := t.(task.Merge)
		if err := s.exec.ExecuteMerge(ctx, mt.Dep); err != nil {
			return true, err
		}
		s.cancelEverywhere(mt.Dep)

		next, ok := s.mergeQueue.pop()
		if !ok {
			break
		}
		t = next
	}
	return true, nil
}

// cancelEverywhere filters every non-merge queue in place for references
// to dep. Must be called with strictMu held in unique mode.
func (s *Scheduler) cancelEverywhere(dep task.Ob) {
	for _, arity := range enforceOrder {
		q := s.enforce[arity]
		q.cancelReferencing(dep, q.len())
	}
	s.assumeQueue.cancelReferencing(dep, s.assumeQueue.len())
}

// tryEnforce pops and executes one task from the first non-empty enforce
// queue in fixed arity order, under the strict mutex's shared lock.
func (s *Scheduler) tryEnforce(ctx context.Context) (bool, error) {
	for _, arity := range enforceOrder {
		q := s.enforce[arity]
		t, ok := q.pop()
		if !ok {
			continue
		}
		s.strictMu.RLock()
		err := s.exec.Execute(ctx, t)
		s.strictMu.RUnlock()
		return true, err
	}
	return false, nil
}

func (s *Scheduler) tryAssume(ctx context.Context) (bool, error) {
	t, ok := s.assumeQueue.pop()
	if !ok {
		return false, nil
	}
	s.strictMu.RLock()
	err := s.exec.Execute(ctx, t)
	s.strictMu.RUnlock()
	return true, err
}

func (s *Scheduler) trySample(ctx context.Context) (bool, error) {
	s.strictMu.RLock()
	_, ok, err := s.exec.Sample(ctx)
	s.strictMu.RUnlock()
	if err != nil {
		return true, err
	}
	return ok, nil
}

func (s *Scheduler) tryCleanup(ctx context.Context) (bool, error) {
	id, ok := s.cleanup.TryPop()
	if !ok {
		return false, nil
	}
	s.strictMu.RLock()
	err := s.exec.Cleanup(ctx, id)
	s.strictMu.RUnlock()
	return true, err
}
