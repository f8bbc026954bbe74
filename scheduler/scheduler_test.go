package scheduler_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/pomagma/atlas/cleanup"
	"github.com/pomagma/atlas/scheduler"
	"github.com/pomagma/atlas/task"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingExecutor struct {
	mu       sync.Mutex
	merged   []task.Ob
	executed []task.Task
}

func (e *recordingExecutor) ExecuteMerge(ctx context.Context, dep task.Ob) error {
	e.mu.Lock()
	e.merged = append(e.merged, dep)
	e.mu.Unlock()
	return nil
}

func (e *recordingExecutor) Execute(ctx context.Context, t task.Task) error {
	time.Sleep(time.Millisecond)
	e.mu.Lock()
	e.executed = append(e.executed, t)
	e.mu.Unlock()
	return nil
}

func (e *recordingExecutor) Sample(ctx context.Context) (task.Ob, bool, error) {
	return 0, false, nil
}

func (e *recordingExecutor) Cleanup(ctx context.Context, typeID int) error { return nil }

// TestScheduler_S3 verifies spec.md §8 S3: two-worker Scheduler, 3
// MergeTasks and 10 ExistsTasks interleaved; after the phase run returns,
// no ExistsTask referencing a merged dep has executed, and exactly 3
// merges were recorded.
func TestScheduler_S3(t *testing.T) {
	exec := &recordingExecutor{}
	cg := cleanup.New(1)
	s := scheduler.New(exec, cg)

	deps := []task.Ob{10, 5, 3}
	for i, d := range deps {
		s.Schedule(task.Merge{Dep: d})
		for j := 0; j < 3; j++ {
			s.Schedule(task.Exists{Ob: task.Ob(i*3 + j + 1)})
		}
	}
	s.Schedule(task.Exists{Ob: 10})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	err := s.RunPhase(ctx, scheduler.PhaseInitialize, 2)
	require.NoError(t, err)

	exec.mu.Lock()
	defer exec.mu.Unlock()
	assert.Len(t, exec.merged, 3)
	assert.Equal(t, uint64(3), s.MergeCount())

	merged := make(map[task.Ob]bool, len(exec.merged))
	for _, d := range exec.merged {
		merged[d] = true
	}
	for _, executed := range exec.executed {
		if ex, ok := executed.(task.Exists); ok {
			assert.False(t, merged[ex.Ob], "Exists(%d) executed after its ob was merged", ex.Ob)
		}
	}
}

// TestScheduler_EveryTaskEventuallyExecutedOrCancelled covers property 9's
// second clause: with no merges in flight, every scheduled task runs.
func TestScheduler_EveryTaskEventuallyExecutedOrCancelled(t *testing.T) {
	exec := &recordingExecutor{}
	cg := cleanup.New(1)
	s := scheduler.New(exec, cg)

	for i := 0; i < 20; i++ {
		s.Schedule(task.Exists{Ob: task.Ob(i + 1)})
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, s.RunPhase(ctx, scheduler.PhaseInitialize, 4))

	exec.mu.Lock()
	defer exec.mu.Unlock()
	assert.Len(t, exec.executed, 20)
}

func TestScheduler_DeadlineWatchdogClearsFlag(t *testing.T) {
	exec := &recordingExecutor{}
	cg := cleanup.New(1)
	s := scheduler.New(exec, cg)

	assert.True(t, s.DeadlineLive())
	stop := s.StartDeadline(10 * time.Millisecond)
	defer stop()
	assert.Eventually(t, func() bool { return !s.DeadlineLive() }, time.Second, 5*time.Millisecond)
}
