package task

import (
	"github.com/google/uuid"
	"github.com/pomagma/atlas/denseset"
)

// Ob re-exports denseset.Ob for callers that only need task.
type Ob = denseset.Ob

// Task is implemented by every scheduled task record. References reports
// whether the task mentions ob anywhere in its payload; the scheduler uses
// this to cancel queued tasks after a merge removes ob from the carrier.
type Task interface {
	References(ob Ob) bool
	// Arity names the scheduler queue this task belongs to, used for
	// per-arity routing and logging (not part of spec.md's data model, but
	// needed by any Go dispatcher over a tagged union of task kinds).
	Arity() string
}

// Merge asserts dep should be unified into its carrier representative.
type Merge struct{ Dep Ob }

func (t Merge) References(ob Ob) bool { return t.Dep == ob }
func (t Merge) Arity() string         { return "merge" }

// Exists asks whether ob is still live; used to drive cleanup of derived
// facts that assumed an ob existed.
type Exists struct{ Ob Ob }

func (t Exists) References(ob Ob) bool { return t.Ob == ob }
func (t Exists) Arity() string         { return "exists" }

// PositiveOrder and NegativeOrder carry a LESS/NLESS-style ordered pair.
type PositiveOrder struct{ Lhs, Rhs Ob }

func (t PositiveOrder) References(ob Ob) bool { return t.Lhs == ob || t.Rhs == ob }
func (t PositiveOrder) Arity() string         { return "positive_order" }

type NegativeOrder struct{ Lhs, Rhs Ob }

func (t NegativeOrder) References(ob Ob) bool { return t.Lhs == ob || t.Rhs == ob }
func (t NegativeOrder) Arity() string         { return "negative_order" }

// UnaryRelation names a unary-relation fact to (re)process.
type UnaryRelation struct {
	Rel string
	Ob  Ob
}

func (t UnaryRelation) References(ob Ob) bool { return t.Ob == ob }
func (t UnaryRelation) Arity() string         { return "unary_relation" }

// NullaryFunction names a nullary-function fact to (re)process.
type NullaryFunction struct{ Fun string }

func (t NullaryFunction) References(ob Ob) bool { return false }
func (t NullaryFunction) Arity() string         { return "nullary_function" }

// InjectiveFunction names an injective-function argument to (re)process.
type InjectiveFunction struct {
	Fun string
	Arg Ob
}

func (t InjectiveFunction) References(ob Ob) bool { return t.Arg == ob }
func (t InjectiveFunction) Arity() string         { return "injective_function" }

// BinaryFunction names a binary-function argument pair to (re)process.
type BinaryFunction struct {
	Fun      string
	Lhs, Rhs Ob
}

func (t BinaryFunction) References(ob Ob) bool { return t.Lhs == ob || t.Rhs == ob }
func (t BinaryFunction) Arity() string         { return "binary_function" }

// SymmetricFunction names a symmetric-function argument pair to (re)process.
type SymmetricFunction struct {
	Fun      string
	Lhs, Rhs Ob
}

func (t SymmetricFunction) References(ob Ob) bool { return t.Lhs == ob || t.Rhs == ob }
func (t SymmetricFunction) Arity() string         { return "symmetric_function" }

// Assume names a syntactic expression to assert into the structure. The
// expression language itself is a collaborator concern (spec.md §1); here
// it is an opaque string. CorrelationID traces a single assumption through
// logs (see SPEC_FULL.md DOMAIN STACK: google/uuid).
type Assume struct {
	Expression    string
	CorrelationID uuid.UUID
}

func (t Assume) References(ob Ob) bool { return false }
func (t Assume) Arity() string         { return "assume" }

// Sample requests one probabilistic term insertion from the sampler. Unlike
// every other arity, Sample is never queued: the scheduler's survey/deadline
// loop calls Executor.Sample directly (see scheduler.trySample), so this
// type carries no correlation id — there is no Task value to log it from.
type Sample struct{}

func (t Sample) References(ob Ob) bool { return false }
func (t Sample) Arity() string         { return "sample" }

// Cleanup names one round-robin maintenance class to run.
type Cleanup struct{ TypeID int }

func (t Cleanup) References(ob Ob) bool { return false }
func (t Cleanup) Arity() string         { return "cleanup" }

// NewAssume builds an Assume task with a fresh correlation id.
func NewAssume(expr string) Assume { return Assume{Expression: expr, CorrelationID: uuid.New()} }
