package scheduler

import (
	"context"

	"github.com/pomagma/atlas/task"
)

// Executor is implemented by the collaborator that actually applies task
// effects to the structure (the engine package, in practice). The
// scheduler only owns queues, locking discipline, and phase sequencing;
// it knows nothing about carriers, functions, or relations.
type Executor interface {
	// ExecuteMerge rewrites dep out of every function and relation table,
	// after Carrier.Merge has already set dep's representative. Called with
	// the strict mutex held in unique mode.
	ExecuteMerge(ctx context.Context, dep task.Ob) error
	// Execute runs any non-merge, non-sample, non-cleanup task. Called
	// with the strict mutex held in shared mode.
	Execute(ctx context.Context, t task.Task) error
	// Sample attempts one probabilistic term insertion. ok reports
	// whether a new ob was created; a false ok with a nil error means the
	// sampler rejected this attempt (retry is the caller's concern, not
	// an error). Called with the strict mutex held in shared mode.
	Sample(ctx context.Context) (ob task.Ob, ok bool, err error)
	// Cleanup runs the registered routine for a cleanup type index.
	// Called with the strict mutex held in shared mode.
	Cleanup(ctx context.Context, typeID int) error
}

// Phase selects which task categories a worker attempts, and in what
// order, per spec.md §4.6's "Worker loop" paragraph.
type Phase int

const (
	// PhaseInitialize: merge, enforce, assume, cleanup.
	PhaseInitialize Phase = iota
	// PhaseSurvey: merge, enforce (re-priming cleanup on success), sample, cleanup.
	PhaseSurvey
	// PhaseDeadline: merge, enforce (re-priming cleanup), assume, sample,
	// cleanup-while-deadline-live.
	PhaseDeadline
)

func (p Phase) String() string {
	switch p {
	case PhaseInitialize:
		return "initialize"
	case PhaseSurvey:
		return "survey"
	case PhaseDeadline:
		return "deadline"
	default:
		return "unknown"
	}
}
