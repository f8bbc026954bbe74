package engine

import (
	"context"

	"github.com/pomagma/atlas/task"
	"go.uber.org/zap"
)

// ExecuteMerge implements scheduler.Executor. By the time a MergeTask
// reaches here, Carrier.Merge has already set rep[dep]; this rewrites dep
// out of every table (binary functions first, then symmetric, injective,
// nullary, binary relations, unary relations — mirroring
// original_source/src/atlas/scheduler.cpp's process_mergers order) and
// finally removes dep from the carrier's support.
func (e *Engine) ExecuteMerge(ctx context.Context, dep task.Ob) error {
	rep := e.carrier.Find(dep)
	if rep == dep {
		return nil
	}

	for _, name := range e.sig.BinaryFunctionNames() {
		e.sig.BinaryFunction(name).UnsafeMerge(e.carrier, dep, rep)
	}
	for _, name := range e.sig.SymmetricFunctionNames() {
		e.sig.SymmetricFunction(name).UnsafeMerge(e.carrier, dep, rep)
	}
	for _, name := range e.sig.InjectiveFunctionNames() {
		e.sig.InjectiveFunction(name).UnsafeMerge(e.carrier, dep, rep)
	}
	for _, name := range e.sig.NullaryFunctionNames() {
		e.sig.NullaryFunction(name).UnsafeMerge(dep, rep)
	}
	for _, name := range e.sig.BinaryRelationNames() {
		e.sig.BinaryRelation(name).UnsafeMerge(dep, rep)
	}
	for _, name := range e.sig.UnaryRelationNames() {
		e.sig.UnaryRelation(name).UnsafeMerge(dep, rep)
	}

	e.carrier.UnsafeRemove(dep)
	e.cleanup.PushAll()
	e.log.Debug("merged", zap.Uint32("dep", uint32(dep)), zap.Uint32("rep", uint32(rep)))
	return nil
}

// Execute implements scheduler.Executor for every non-merge, non-sample,
// non-cleanup task. The actual consequence-deriving logic (an inference
// rule body) is a Non-goal per spec.md §1; a collaborator supplies one via
// engine.WithRule. Without one, the task is accounted for and dropped.
func (e *Engine) Execute(ctx context.Context, t task.Task) error {
	arity := t.Arity()
	fields := []zap.Field{zap.String("arity", arity)}
	if a, ok := t.(task.Assume); ok {
		fields = append(fields, zap.Stringer("correlation_id", a.CorrelationID))
	}

	rule, ok := e.rules[arity]
	if !ok {
		e.log.Debug("execute (no rule registered)", fields...)
		return nil
	}
	if err := rule(ctx, t); err != nil {
		return err
	}
	e.log.Debug("execute", fields...)
	return nil
}

// Sample implements scheduler.Executor: draws one term via the engine's
// sampler, guarded by a private RNG lock since multiple workers may call
// Sample concurrently under the strict mutex's shared mode.
func (e *Engine) Sample(ctx context.Context) (task.Ob, bool, error) {
	e.rngMu.Lock()
	ob := e.sampler.Sample(e.sampleDepth, e.rng)
	e.rngMu.Unlock()
	if ob == 0 {
		return 0, false, nil
	}
	return ob, true, nil
}

// Cleanup implements scheduler.Executor by running the registered routine
// for typeID, if any.
func (e *Engine) Cleanup(ctx context.Context, typeID int) error {
	return e.cleanup.Run(ctx, typeID)
}
