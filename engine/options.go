package engine

import (
	"context"

	"github.com/pomagma/atlas/task"
	"go.uber.org/zap"
)

// Option configures an Engine at construction time, in the teacher's
// functional-options style (core.GraphOption / matrix.MatrixOptions).
type Option func(*Engine)

// WithLogger overrides the engine's logger. Default: atlaslog.New(cfg).
func WithLogger(log *zap.Logger) Option {
	return func(e *Engine) { e.log = log }
}

// WithSampleDepth overrides the maximum compound-term depth passed to the
// sampler on every sampling attempt. Default: 4.
func WithSampleDepth(depth int) Option {
	return func(e *Engine) { e.sampleDepth = depth }
}

// WithRule registers the consequence-deriving routine for tasks of the
// given arity (e.g. "unary_relation", "binary_function", "assume"). Without
// a registered rule, Execute is a no-op for that arity: spec.md §1's
// Non-goals exclude inference-rule bodies, so the default engine applies no
// rule and simply accounts for the task having run.
func WithRule(arity string, fn func(ctx context.Context, t task.Task) error) Option {
	return func(e *Engine) { e.rules[arity] = fn }
}

// WithCleanupHook binds a maintenance routine to a named cleanup class (one
// per relation/function declared in the Signature, by convention). Without
// a registered hook, that class's cleanup pass is a no-op.
func WithCleanupHook(name string, fn func(ctx context.Context) error) Option {
	return func(e *Engine) { e.cleanupHooks[name] = fn }
}

// WithStrictMode sets the engine's strict-mode flag (on by default). No code
// reads the flag: the precondition-violation panics of spec.md §7 in
// denseset, carrier, binrel and function fire whatever its value.
func WithStrictMode(strict bool) Option {
	return func(e *Engine) { e.strictMode = strict }
}
