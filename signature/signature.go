package signature

import (
	"fmt"
	"hash/fnv"
	"sort"
	"sync"

	"github.com/pomagma/atlas/binrel"
	"github.com/pomagma/atlas/carrier"
	"github.com/pomagma/atlas/function"
)

// Ob re-exports carrier.Ob for callers that only need signature.
type Ob = carrier.Ob

// ErrAlreadyDeclared's message prefixes the panic raised by Declare* when
// name is already bound; Declare* does not return it.
var ErrAlreadyDeclared = fmt.Errorf("signature: name already declared")

// ErrNotDeclared names a name with no prior binding. No function in this
// package returns it; lookups of an undeclared name return nil.
var ErrNotDeclared = fmt.Errorf("signature: name not declared")

// Signature is a shallow registry over one Carrier: named binary
// relations, unary relations, and nullary/injective/binary/symmetric
// functions, all sized to the same item_dim.
type Signature struct {
	mu sync.RWMutex

	carrier *carrier.Carrier

	binaryRelations    map[string]*binrel.Binary
	unaryRelations     map[string]*binrel.Unary
	nullaryFunctions   map[string]*function.Nullary
	injectiveFunctions map[string]*function.Injective
	binaryFunctions    map[string]*function.Binary
	symmetricFunctions map[string]*function.Symmetric
}

// New allocates an empty Signature over carrier c.
func New(c *carrier.Carrier) *Signature {
	return &Signature{
		carrier:            c,
		binaryRelations:    make(map[string]*binrel.Binary),
		unaryRelations:     make(map[string]*binrel.Unary),
		nullaryFunctions:   make(map[string]*function.Nullary),
		injectiveFunctions: make(map[string]*function.Injective),
		binaryFunctions:    make(map[string]*function.Binary),
		symmetricFunctions: make(map[string]*function.Symmetric),
	}
}

// Carrier returns the underlying carrier.
func (s *Signature) Carrier() *carrier.Carrier { return s.carrier }

// DeclareBinaryRelation binds name to rel. Panics if name is already bound
// (programmer error: signatures are wired once at Engine construction).
func (s *Signature) DeclareBinaryRelation(name string, rel *binrel.Binary) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.binaryRelations[name]; ok {
		panic(fmt.Sprintf("%v: %s", ErrAlreadyDeclared, name))
	}
	s.binaryRelations[name] = rel
}

// DeclareUnaryRelation binds name to rel.
func (s *Signature) DeclareUnaryRelation(name string, rel *binrel.Unary) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.unaryRelations[name]; ok {
		panic(fmt.Sprintf("%v: %s", ErrAlreadyDeclared, name))
	}
	s.unaryRelations[name] = rel
}

// DeclareNullaryFunction binds name to fun.
func (s *Signature) DeclareNullaryFunction(name string, fun *function.Nullary) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.nullaryFunctions[name]; ok {
		panic(fmt.Sprintf("%v: %s", ErrAlreadyDeclared, name))
	}
	s.nullaryFunctions[name] = fun
}

// DeclareInjectiveFunction binds name to fun.
func (s *Signature) DeclareInjectiveFunction(name string, fun *function.Injective) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.injectiveFunctions[name]; ok {
		panic(fmt.Sprintf("%v: %s", ErrAlreadyDeclared, name))
	}
	s.injectiveFunctions[name] = fun
}

// DeclareBinaryFunction binds name to fun.
func (s *Signature) DeclareBinaryFunction(name string, fun *function.Binary) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.binaryFunctions[name]; ok {
		panic(fmt.Sprintf("%v: %s", ErrAlreadyDeclared, name))
	}
	s.binaryFunctions[name] = fun
}

// DeclareSymmetricFunction binds name to fun.
func (s *Signature) DeclareSymmetricFunction(name string, fun *function.Symmetric) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.symmetricFunctions[name]; ok {
		panic(fmt.Sprintf("%v: %s", ErrAlreadyDeclared, name))
	}
	s.symmetricFunctions[name] = fun
}

// BinaryRelation looks up a declared binary relation by name, or nil.
func (s *Signature) BinaryRelation(name string) *binrel.Binary {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.binaryRelations[name]
}

// UnaryRelation looks up a declared unary relation by name, or nil.
func (s *Signature) UnaryRelation(name string) *binrel.Unary {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.unaryRelations[name]
}

// NullaryFunction looks up a declared nullary function by name, or nil.
func (s *Signature) NullaryFunction(name string) *function.Nullary {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.nullaryFunctions[name]
}

// InjectiveFunction looks up a declared injective function by name, or nil.
func (s *Signature) InjectiveFunction(name string) *function.Injective {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.injectiveFunctions[name]
}

// BinaryFunction looks up a declared binary function by name, or nil.
func (s *Signature) BinaryFunction(name string) *function.Binary {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.binaryFunctions[name]
}

// SymmetricFunction looks up a declared symmetric function by name, or nil.
func (s *Signature) SymmetricFunction(name string) *function.Symmetric {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.symmetricFunctions[name]
}

// BinaryRelationNames returns every declared binary relation name, sorted.
func (s *Signature) BinaryRelationNames() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return sortedKeysBinary(s.binaryRelations)
}

// UnaryRelationNames returns every declared unary relation name, sorted.
func (s *Signature) UnaryRelationNames() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]string, 0, len(s.unaryRelations))
	for k := range s.unaryRelations {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// NullaryFunctionNames returns every declared nullary function name, sorted.
func (s *Signature) NullaryFunctionNames() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]string, 0, len(s.nullaryFunctions))
	for k := range s.nullaryFunctions {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// InjectiveFunctionNames returns every declared injective function name,
// sorted.
func (s *Signature) InjectiveFunctionNames() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]string, 0, len(s.injectiveFunctions))
	for k := range s.injectiveFunctions {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// BinaryFunctionNames returns every declared binary function name, sorted.
func (s *Signature) BinaryFunctionNames() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]string, 0, len(s.binaryFunctions))
	for k := range s.binaryFunctions {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// SymmetricFunctionNames returns every declared symmetric function name,
// sorted.
func (s *Signature) SymmetricFunctionNames() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]string, 0, len(s.symmetricFunctions))
	for k := range s.symmetricFunctions {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func sortedKeysBinary(m map[string]*binrel.Binary) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Negate returns the conventional negated name of a binary relation: LESS
// negates to NLESS and vice versa. Panics on any other name, matching
// spec.md §3's fixed LESS/NLESS convention.
func Negate(name string) string {
	switch name {
	case "LESS":
		return "NLESS"
	case "NLESS":
		return "LESS"
	default:
		panic("signature: cannot negate name " + name)
	}
}

// Validate checks the LESS/NLESS disjointness invariant (if both are
// declared) and every member relation/function's own Validate.
func (s *Signature) Validate() error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if less, ok := s.binaryRelations["LESS"]; ok {
		if nless, ok := s.binaryRelations["NLESS"]; ok {
			if err := binrel.ValidateDisjoint(less.Base(), nless.Base()); err != nil {
				return err
			}
		}
	}
	for name, rel := range s.binaryRelations {
		if err := rel.Validate(); err != nil {
			return fmt.Errorf("binary relation %s: %w", name, err)
		}
	}
	for name, fun := range s.injectiveFunctions {
		if err := fun.Validate(s.carrier); err != nil {
			return fmt.Errorf("injective function %s: %w", name, err)
		}
	}
	for name, fun := range s.binaryFunctions {
		if err := fun.Validate(); err != nil {
			return fmt.Errorf("binary function %s: %w", name, err)
		}
	}
	for name, fun := range s.symmetricFunctions {
		if err := fun.Validate(); err != nil {
			return fmt.Errorf("symmetric function %s: %w", name, err)
		}
	}
	return nil
}

// ContentHash folds every live fact in the signature into a single
// order-insensitive 64-bit digest (FNV-1a per fact, XORed together so
// iteration order never affects the result). A supplemented feature over
// spec.md's distillation, useful for detecting drift between a dump and a
// freshly-saturated structure without a full diff.
func (s *Signature) ContentHash() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var acc uint64
	fold := func(format string, args ...any) {
		h := fnv.New64a()
		fmt.Fprintf(h, format, args...)
		acc ^= h.Sum64()
	}

	for _, ob := range s.carrier.Support().Iter() {
		fold("ob:%d=%d", ob, s.carrier.Find(ob))
	}
	for name, rel := range s.unaryRelations {
		for _, ob := range rel.Iter() {
			fold("unary:%s:%d", name, ob)
		}
	}
	for name, rel := range s.binaryRelations {
		rel.Base().IterPairs(func(i, j Ob) {
			fold("binary_rel:%s:%d:%d", name, i, j)
		})
	}
	for name, fun := range s.nullaryFunctions {
		if fun.Defined() {
			fold("nullary:%s=%d", name, fun.Find())
		}
	}
	for name, fun := range s.injectiveFunctions {
		fun.IterDefined(func(key, val Ob) {
			fold("injective:%s:%d=%d", name, key, val)
		})
	}
	for name, fun := range s.binaryFunctions {
		fun.IterDefined(func(lhs, rhs, val Ob) {
			fold("binary_fun:%s:%d:%d=%d", name, lhs, rhs, val)
		})
	}
	for name, fun := range s.symmetricFunctions {
		fun.IterDefined(func(lhs, rhs, val Ob) {
			fold("symmetric_fun:%s:%d:%d=%d", name, lhs, rhs, val)
		})
	}
	return acc
}
