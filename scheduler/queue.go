package scheduler

import (
	"sync"

	"github.com/pomagma/atlas/task"
)

// fifoQueue is a mutex-guarded multi-producer/multi-consumer FIFO of task
// records. spec.md does not mandate a particular queue implementation,
// only FIFO-within-queue ordering and O(size) filtering for cancellation.
type fifoQueue struct {
	mu    sync.Mutex
	items []task.Task
}

func (q *fifoQueue) push(t task.Task) {
	q.mu.Lock()
	q.items = append(q.items, t)
	q.mu.Unlock()
}

func (q *fifoQueue) pop() (task.Task, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.items) == 0 {
		return nil, false
	}
	t := q.items[0]
	q.items[0] = nil
	q.items = q.items[1:]
	return t, true
}

func (q *fifoQueue) len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

// cancelReferencing pops at most bound items (the size observed when the
// merge pass began) and re-pushes each that does not reference dep. New
// arrivals during the pass are left untouched for a subsequent pass, per
// spec.md §4.6's "queue size observed at the start of the pass bounds the
// work" rule.
func (q *fifoQueue) cancelReferencing(dep task.Ob, bound int) {
	for i := 0; i < bound; i++ {
		t, ok := q.pop()
		if !ok {
			return
		}
		if !t.References(dep) {
			q.push(t)
		}
	}
}
