package engine

import (
	"context"
	"fmt"
	"math/rand"
	"sync"

	"github.com/pomagma/atlas/atlascfg"
	"github.com/pomagma/atlas/atlaslog"
	"github.com/pomagma/atlas/carrier"
	"github.com/pomagma/atlas/cleanup"
	"github.com/pomagma/atlas/sampler"
	"github.com/pomagma/atlas/scheduler"
	"github.com/pomagma/atlas/signature"
	"github.com/pomagma/atlas/task"
	"go.uber.org/zap"
)

const defaultSampleDepth = 4

// Stats is a point-in-time snapshot of the engine's running counters, a
// supplemented convenience over spec.md's scattered per-component counters.
type Stats struct {
	ItemCount    int
	RepCount     int
	MergeCount   uint64
	EnforceCount uint64
	Sampler      sampler.Stats
}

// Engine owns one saturation structure end to end: a Signature over a
// Carrier, the Scheduler that dispatches work against it, the Cleanup
// generator driving maintenance passes, and the Sampler that proposes new
// terms. It implements scheduler.Executor directly.
//
// Per spec.md §9 "global mutable state", Engine is an explicit value: any
// number of independent Engines may coexist in one process.
type Engine struct {
	sig     *signature.Signature
	carrier *carrier.Carrier
	sampler *sampler.Sampler
	cleanup *cleanup.Generator
	sched   *scheduler.Scheduler
	log     *zap.Logger
	cfg     atlascfg.Config

	sampleDepth int
	strictMode  bool

	rngMu sync.Mutex
	rng   *rand.Rand

	rules        map[string]func(context.Context, task.Task) error
	cleanupHooks map[string]func(context.Context) error

	stopDeadline func()
}

// New wires a fresh Engine around sig and spl (already populated/configured
// by the caller) and cfg's deadline/logging settings.
func New(sig *signature.Signature, spl *sampler.Sampler, cfg atlascfg.Config, opts ...Option) (*Engine, error) {
	e := &Engine{
		sig:          sig,
		carrier:      sig.Carrier(),
		sampler:      spl,
		cfg:          cfg,
		sampleDepth:  defaultSampleDepth,
		strictMode:   true,
		rng:          rand.New(rand.NewSource(1)),
		rules:        make(map[string]func(context.Context, task.Task) error),
		cleanupHooks: make(map[string]func(context.Context) error),
	}
	for _, opt := range opts {
		opt(e)
	}

	if e.log == nil {
		log, err := atlaslog.New(cfg)
		if err != nil {
			return nil, fmt.Errorf("engine: build logger: %w", err)
		}
		e.log = log
	}

	names := cleanupClassNames(sig)
	if len(names) == 0 {
		names = []string{"noop"}
	}
	e.cleanup = cleanup.New(len(names))
	for i, name := range names {
		e.cleanup.Register(i, name, e.cleanupHooks[name])
	}

	e.sched = scheduler.New(e, e.cleanup)
	return e, nil
}

// cleanupClassNames enumerates one cleanup class per declared relation or
// function, a deterministic (sorted, kind-prefixed) order so Register ids
// are stable across runs with the same Signature.
func cleanupClassNames(sig *signature.Signature) []string {
	var names []string
	for _, n := range sig.UnaryRelationNames() {
		names = append(names, "unary_relation."+n)
	}
	for _, n := range sig.BinaryRelationNames() {
		names = append(names, "binary_relation."+n)
	}
	for _, n := range sig.NullaryFunctionNames() {
		names = append(names, "nullary_function."+n)
	}
	for _, n := range sig.InjectiveFunctionNames() {
		names = append(names, "injective_function."+n)
	}
	for _, n := range sig.BinaryFunctionNames() {
		names = append(names, "binary_function."+n)
	}
	for _, n := range sig.SymmetricFunctionNames() {
		names = append(names, "symmetric_function."+n)
	}
	return names
}

// Signature returns the engine's owned Signature.
func (e *Engine) Signature() *signature.Signature { return e.sig }

// Carrier returns the engine's owned Carrier.
func (e *Engine) Carrier() *carrier.Carrier { return e.carrier }

// Sampler returns the engine's owned Sampler.
func (e *Engine) Sampler() *sampler.Sampler { return e.sampler }

// Scheduler returns the engine's owned Scheduler.
func (e *Engine) Scheduler() *scheduler.Scheduler { return e.sched }

// Logger returns the engine's logger.
func (e *Engine) Logger() *zap.Logger { return e.log }

// Assume schedules expr (an opaque, collaborator-parsed term expression) for
// assertion into the structure.
func (e *Engine) Assume(expr string) {
	e.sched.Schedule(task.NewAssume(expr))
}

// Stats returns a snapshot of the engine's running counters.
func (e *Engine) Stats() Stats {
	return Stats{
		ItemCount:    e.carrier.ItemCount(),
		RepCount:     e.carrier.RepCount(),
		MergeCount:   e.sched.MergeCount(),
		EnforceCount: e.sched.EnforceCount(),
		Sampler:      e.sampler.Stats(),
	}
}

// Saturate runs the scheduler through its full spec.md §4.6 lifecycle:
// initialize (drain any pre-loaded work), survey (explore via sampling),
// then deadline (continue exploring, throttling cleanup once the deadline
// expires). Each phase runs until its workers simultaneously idle. Returns
// the first error from any phase, or nil once all three have quiesced.
func (e *Engine) Saturate(ctx context.Context, workerCount int) error {
	if err := e.sched.RunPhase(ctx, scheduler.PhaseInitialize, workerCount); err != nil {
		return fmt.Errorf("engine: initialize phase: %w", err)
	}

	stop := e.sched.StartDeadline(e.cfg.Deadline())
	e.stopDeadline = stop
	defer stop()

	if err := e.sched.RunPhase(ctx, scheduler.PhaseSurvey, workerCount); err != nil {
		return fmt.Errorf("engine: survey phase: %w", err)
	}
	if err := e.sched.RunPhase(ctx, scheduler.PhaseDeadline, workerCount); err != nil {
		return fmt.Errorf("engine: deadline phase: %w", err)
	}
	return nil
}

// Close stops the deadline watchdog, if one is running. Safe to call
// multiple times or without a prior Saturate call.
func (e *Engine) Close() {
	if e.stopDeadline != nil {
		e.stopDeadline()
	}
}
