package sampler

import (
	"fmt"
	"math/rand"
	"sync"
	"sync/atomic"

	"github.com/pomagma/atlas/carrier"
	"github.com/pomagma/atlas/function"
	"github.com/pomagma/atlas/signature"
)

// Ob re-exports carrier.Ob for callers that only need sampler.
type Ob = carrier.Ob

// Arity names which function kind a sampling step picked.
type Arity int

const (
	ArityNullary Arity = iota
	ArityInjective
	ArityBinary
	AritySymmetric
)

func (a Arity) String() string {
	switch a {
	case ArityNullary:
		return "nullary"
	case ArityInjective:
		return "injective"
	case ArityBinary:
		return "binary"
	case AritySymmetric:
		return "symmetric"
	default:
		return fmt.Sprintf("Arity(%d)", int(a))
	}
}

// OutcomeKind tags the result of one sampling step, replacing the original
// implementation's ObInsertedException/ObRejectedException/
// InsertionFailedException control-flow with a plain return value.
type OutcomeKind int

const (
	// Continue means the step resolved to an existing ob; the recursive
	// descent should keep building a larger compound term on top of it.
	Continue OutcomeKind = iota
	// Inserted means a fresh ob was created; the whole attempt terminates
	// successfully with this ob.
	Inserted
	// Rejected means the step could not build a term (no function of the
	// chosen arity carries weight, or a Policy declined); restart the whole
	// attempt from the top.
	Rejected
	// Failed means the carrier has no room left for a new ob.
	Failed
)

// Outcome is the tagged union returned by every sampling step.
type Outcome struct {
	Kind OutcomeKind
	Ob   Ob
}

// Policy performs the actual domain-specific insertion or lookup behind one
// sampling step. The default CarrierPolicy mints a fresh ob through the
// carrier whenever a function is found undefined at the chosen arguments;
// a collaborator may supply its own Policy to drive term construction
// through an external expression language instead.
type Policy interface {
	SampleNullary(fun *function.Nullary) Outcome
	SampleInjective(fun *function.Injective, key Ob) Outcome
	SampleBinary(fun *function.Binary, lhs, rhs Ob) Outcome
	SampleSymmetric(fun *function.Symmetric, lhs, rhs Ob) Outcome
}

// CarrierPolicy is the default Policy: undefined arguments mint a fresh ob
// and bind it into the function (Inserted); already-defined arguments just
// carry their existing value upward (Continue) so a larger compound term
// can be built on top of it; an exhausted carrier reports Failed.
type CarrierPolicy struct {
	c *carrier.Carrier
}

// NewCarrierPolicy wraps carrier c as a Policy.
func NewCarrierPolicy(c *carrier.Carrier) *CarrierPolicy {
	return &CarrierPolicy{c: c}
}

func (p *CarrierPolicy) resolve(val Ob, bind func(fresh Ob)) Outcome {
	if val != 0 {
		return Outcome{Kind: Continue, Ob: val}
	}
	fresh := p.c.Insert()
	if fresh == 0 {
		return Outcome{Kind: Failed}
	}
	bind(fresh)
	return Outcome{Kind: Inserted, Ob: fresh}
}

// SampleNullary implements Policy.
func (p *CarrierPolicy) SampleNullary(fun *function.Nullary) Outcome {
	return p.resolve(fun.Find(), func(fresh Ob) { fun.Insert(p.c, fresh) })
}

// SampleInjective implements Policy.
func (p *CarrierPolicy) SampleInjective(fun *function.Injective, key Ob) Outcome {
	return p.resolve(fun.Find(key), func(fresh Ob) { fun.Insert(p.c, key, fresh) })
}

// SampleBinary implements Policy.
func (p *CarrierPolicy) SampleBinary(fun *function.Binary, lhs, rhs Ob) Outcome {
	return p.resolve(fun.Find(lhs, rhs), func(fresh Ob) { fun.Insert(p.c, lhs, rhs, fresh) })
}

// SampleSymmetric implements Policy.
func (p *CarrierPolicy) SampleSymmetric(fun *function.Symmetric, lhs, rhs Ob) Outcome {
	return p.resolve(fun.Find(lhs, rhs), func(fresh Ob) { fun.Insert(p.c, lhs, rhs, fresh) })
}

type weighted[T any] struct {
	name string
	fun  T
	prob float64
}

// Stats is a snapshot of the sampler's running counters, a supplemented
// feature over the original's bare log_stats() dump.
type Stats struct {
	SampleCount              uint64
	RejectCount               uint64
	AritySampleCount          uint64
	CompoundAritySampleCount  uint64
	AritySamples              [4]uint64
	CompoundAritySamples      [4]uint64
}

// Sampler draws random well-formed terms over a Signature, bounded to a
// maximum compound depth, and inserts the ones that are genuinely new.
//
// Grounded on original_source/src/atlas/sampler_impl.hpp: per-function
// probabilities folded into per-depth BoundedSampler totals, cached under a
// readers-writer lock and extended on demand as deeper terms are requested.
type Sampler struct {
	sig *signature.Signature

	probMu     sync.RWMutex
	nullary    []weighted[*function.Nullary]
	injective  []weighted[*function.Injective]
	binary     []weighted[*function.Binary]
	symmetric  []weighted[*function.Symmetric]
	nullaryTotal, injectiveTotal, binaryTotal, symmetricTotal float64

	cacheMu  sync.RWMutex
	bounded  []BoundedSampler

	sampleCount              atomic.Uint64
	rejectCount              atomic.Uint64
	aritySampleCount          atomic.Uint64
	compoundAritySampleCount  atomic.Uint64
	aritySamples             [4]atomic.Uint64
	compoundAritySamples     [4]atomic.Uint64
}

// New allocates an empty Sampler over sig. Call SetProb for every function
// that should be eligible for sampling before drawing any terms.
func New(sig *signature.Signature) *Sampler {
	return &Sampler{sig: sig}
}

// SetProb assigns a sampling weight to the named function (nullary,
// injective, binary, or symmetric — whichever the signature declares that
// name as) and invalidates the bounded-sampler cache. A weight of 0 removes
// the function from consideration.
func (s *Sampler) SetProb(name string, prob float64) error {
	if prob < 0 {
		return fmt.Errorf("sampler: negative probability for %s", name)
	}

	s.probMu.Lock()
	defer s.probMu.Unlock()

	switch {
	case s.sig.NullaryFunction(name) != nil:
		fun := s.sig.NullaryFunction(name)
		s.nullary = setWeight(s.nullary, name, fun, prob)
		s.nullaryTotal = sumWeights(s.nullary)
	case s.sig.InjectiveFunction(name) != nil:
		fun := s.sig.InjectiveFunction(name)
		s.injective = setWeight(s.injective, name, fun, prob)
		s.injectiveTotal = sumWeights(s.injective)
	case s.sig.BinaryFunction(name) != nil:
		fun := s.sig.BinaryFunction(name)
		s.binary = setWeight(s.binary, name, fun, prob)
		s.binaryTotal = sumWeights(s.binary)
	case s.sig.SymmetricFunction(name) != nil:
		fun := s.sig.SymmetricFunction(name)
		s.symmetric = setWeight(s.symmetric, name, fun, prob)
		s.symmetricTotal = sumWeights(s.symmetric)
	default:
		return fmt.Errorf("sampler: %s is not a declared function", name)
	}

	s.cacheMu.Lock()
	s.bounded = nil
	s.cacheMu.Unlock()
	return nil
}

func setWeight[T any](items []weighted[T], name string, fun T, prob float64) []weighted[T] {
	for i := range items {
		if items[i].name == name {
			if prob == 0 {
				return append(items[:i], items[i+1:]...)
			}
			items[i].prob = prob
			return items
		}
	}
	if prob == 0 {
		return items
	}
	return append(items, weighted[T]{name: name, fun: fun, prob: prob})
}

func sumWeights[T any](items []weighted[T]) float64 {
	var total float64
	for _, it := range items {
		total += it.prob
	}
	return total
}

func pickWeighted[T any](items []weighted[T], total float64, rng *rand.Rand) (T, bool) {
	var zero T
	if total <= 0 || len(items) == 0 {
		return zero, false
	}
	for {
		r := rng.Float64() * total
		for _, it := range items {
			r -= it.prob
			if r < 0 {
				return it.fun, true
			}
		}
		// Rounding can occasionally leave r >= 0 after the last item; retry.
	}
}

// Validate checks that sampling can make progress: some nullary function and
// some binary-or-symmetric function must carry positive weight.
func (s *Sampler) Validate() error {
	s.probMu.RLock()
	defer s.probMu.RUnlock()
	if s.nullaryTotal <= 0 {
		return fmt.Errorf("sampler: no nullary function has positive probability")
	}
	if s.binaryTotal <= 0 && s.symmetricTotal <= 0 {
		return fmt.Errorf("sampler: no binary or symmetric function has positive probability")
	}
	return nil
}

// Stats returns a snapshot of the running counters.
func (s *Sampler) Stats() Stats {
	var st Stats
	st.SampleCount = s.sampleCount.Load()
	st.RejectCount = s.rejectCount.Load()
	st.AritySampleCount = s.aritySampleCount.Load()
	st.CompoundAritySampleCount = s.compoundAritySampleCount.Load()
	for i := range st.AritySamples {
		st.AritySamples[i] = s.aritySamples[i].Load()
		st.CompoundAritySamples[i] = s.compoundAritySamples[i].Load()
	}
	return st
}

// BoundedSampler holds the per-depth arity totals used by SampleArity and
// SampleCompoundArity: depth 0 (the base case) only ever offers a nullary
// function; each induction step folds in the previous depth's total so that
// injective/binary/symmetric terms of bounded size become reachable.
type BoundedSampler struct {
	Injective, Binary, Symmetric, Total                               float64
	CompoundInjective, CompoundBinary, CompoundSymmetric, CompoundTotal float64
}

func baseBoundedSampler(s *Sampler) BoundedSampler {
	return BoundedSampler{Total: s.nullaryTotal}
}

func inductBoundedSampler(s *Sampler, prev BoundedSampler) BoundedSampler {
	injective := s.injectiveTotal * prev.Total
	binary := s.binaryTotal * prev.Total * prev.Total
	symmetric := s.symmetricTotal * prev.Total * prev.Total
	total := s.nullaryTotal + injective + binary + symmetric

	compoundInjective := s.injectiveTotal
	compoundBinary := s.binaryTotal * prev.Total
	compoundSymmetric := s.symmetricTotal * prev.Total
	compoundTotal := compoundInjective + compoundBinary + compoundSymmetric

	return BoundedSampler{
		Injective: injective, Binary: binary, Symmetric: symmetric, Total: total,
		CompoundInjective: compoundInjective, CompoundBinary: compoundBinary,
		CompoundSymmetric: compoundSymmetric, CompoundTotal: compoundTotal,
	}
}

// SampleArity picks which kind of term to build at this depth: nullary,
// injective, binary, or symmetric, weighted by Total.
func (b BoundedSampler) SampleArity(rng *rand.Rand) Arity {
	if b.Total <= 0 {
		return ArityNullary
	}
	r := rng.Float64() * b.Total
	if b.Binary > 0 {
		if r -= b.Binary; r < 0 {
			return ArityBinary
		}
	}
	if b.Symmetric > 0 {
		if r -= b.Symmetric; r < 0 {
			return AritySymmetric
		}
	}
	if b.Injective > 0 {
		if r -= b.Injective; r < 0 {
			return ArityInjective
		}
	}
	return ArityNullary
}

// SampleCompoundArity picks which kind of term to wrap an existing ob in:
// injective, binary, or symmetric (never nullary, which has no argument to
// wrap).
func (b BoundedSampler) SampleCompoundArity(rng *rand.Rand) Arity {
	if b.CompoundTotal <= 0 {
		return ArityBinary
	}
	r := rng.Float64() * b.CompoundTotal
	if b.CompoundSymmetric > 0 {
		if r -= b.CompoundSymmetric; r < 0 {
			return AritySymmetric
		}
	}
	if b.CompoundInjective > 0 {
		if r -= b.CompoundInjective; r < 0 {
			return ArityInjective
		}
	}
	return ArityBinary
}

// boundedSampler returns (growing the cache if necessary) the totals for
// maxDepth, reading under a shared lock and extending under a unique one —
// concurrent growers harmlessly race to append the same next entry.
func (s *Sampler) boundedSampler(maxDepth int) BoundedSampler {
	for {
		s.cacheMu.RLock()
		if maxDepth < len(s.bounded) {
			b := s.bounded[maxDepth]
			s.cacheMu.RUnlock()
			return b
		}
		s.cacheMu.RUnlock()

		s.probMu.RLock()
		s.cacheMu.Lock()
		if maxDepth < len(s.bounded) {
			s.cacheMu.Unlock()
			s.probMu.RUnlock()
			continue
		}
		if len(s.bounded) == 0 {
			s.bounded = append(s.bounded, baseBoundedSampler(s))
		} else {
			prev := s.bounded[len(s.bounded)-1]
			s.bounded = append(s.bounded, inductBoundedSampler(s, prev))
		}
		s.cacheMu.Unlock()
		s.probMu.RUnlock()
	}
}

func (s *Sampler) insertRandomNullary(rng *rand.Rand, policy Policy) Outcome {
	s.probMu.RLock()
	fun, ok := pickWeighted(s.nullary, s.nullaryTotal, rng)
	s.probMu.RUnlock()
	if !ok {
		return Outcome{Kind: Rejected}
	}
	return policy.SampleNullary(fun)
}

func (s *Sampler) insertRandomInjective(key Ob, rng *rand.Rand, policy Policy) Outcome {
	s.probMu.RLock()
	fun, ok := pickWeighted(s.injective, s.injectiveTotal, rng)
	s.probMu.RUnlock()
	if !ok {
		return Outcome{Kind: Rejected}
	}
	return policy.SampleInjective(fun, key)
}

func (s *Sampler) insertRandomBinary(lhs, rhs Ob, rng *rand.Rand, policy Policy) Outcome {
	s.probMu.RLock()
	fun, ok := pickWeighted(s.binary, s.binaryTotal, rng)
	s.probMu.RUnlock()
	if !ok {
		return Outcome{Kind: Rejected}
	}
	return policy.SampleBinary(fun, lhs, rhs)
}

func (s *Sampler) insertRandomSymmetric(lhs, rhs Ob, rng *rand.Rand, policy Policy) Outcome {
	s.probMu.RLock()
	fun, ok := pickWeighted(s.symmetric, s.symmetricTotal, rng)
	s.probMu.RUnlock()
	if !ok {
		return Outcome{Kind: Rejected}
	}
	return policy.SampleSymmetric(fun, lhs, rhs)
}

// insertRandom builds a term of depth at most maxDepth from scratch.
func (s *Sampler) insertRandom(maxDepth int, rng *rand.Rand, policy Policy) Outcome {
	s.aritySampleCount.Add(1)
	bounded := s.boundedSampler(maxDepth)
	arity := bounded.SampleArity(rng)
	s.aritySamples[arity].Add(1)

	switch arity {
	case ArityNullary:
		return s.insertRandomNullary(rng, policy)
	case ArityInjective:
		key := s.insertRandom(maxDepth-1, rng, policy)
		if key.Kind != Continue {
			return key
		}
		return s.insertRandomInjective(key.Ob, rng, policy)
	case ArityBinary:
		lhs := s.insertRandom(maxDepth-1, rng, policy)
		if lhs.Kind != Continue {
			return lhs
		}
		rhs := s.insertRandom(maxDepth-1, rng, policy)
		if rhs.Kind != Continue {
			return rhs
		}
		return s.insertRandomBinary(lhs.Ob, rhs.Ob, rng, policy)
	default: // AritySymmetric
		lhs := s.insertRandom(maxDepth-1, rng, policy)
		if lhs.Kind != Continue {
			return lhs
		}
		rhs := s.insertRandom(maxDepth-1, rng, policy)
		if rhs.Kind != Continue {
			return rhs
		}
		return s.insertRandomSymmetric(lhs.Ob, rhs.Ob, rng, policy)
	}
}

// insertRandomCompound wraps the existing ob in a larger term, one depth
// further from the leaves.
func (s *Sampler) insertRandomCompound(ob Ob, maxDepth int, rng *rand.Rand, policy Policy) Outcome {
	s.compoundAritySampleCount.Add(1)
	bounded := s.boundedSampler(maxDepth)
	arity := bounded.SampleCompoundArity(rng)
	s.compoundAritySamples[arity].Add(1)

	switch arity {
	case ArityInjective:
		return s.insertRandomInjective(ob, rng, policy)
	case AritySymmetric:
		other := s.insertRandom(maxDepth-1, rng, policy)
		if other.Kind != Continue {
			return other
		}
		return s.insertRandomSymmetric(ob, other.Ob, rng, policy)
	default: // ArityBinary
		other := s.insertRandom(maxDepth-1, rng, policy)
		if other.Kind != Continue {
			return other
		}
		lhs, rhs := ob, other.Ob
		if rng.Intn(2) == 0 {
			lhs, rhs = rhs, lhs
		}
		return s.insertRandomBinary(lhs, rhs, rng, policy)
	}
}

// maxRejectStreak bounds how many consecutive Rejected/Continue-exhausted
// attempts TryInsertRandom tolerates before giving up. An under-configured
// sampler (e.g. only a nullary weighted, and it's already defined) can
// otherwise retry forever with the caller's deadline never checked, since
// scheduler.trySample holds only the strict mutex's shared lock, not a
// deadline, around this call.
const maxRejectStreak = 10000

// TryInsertRandom draws one random well-formed term up to maxDepth nested
// compound applications, retrying on rejection until it either inserts a
// fresh ob (returned), the carrier is full (returns 0), or maxRejectStreak
// consecutive attempts end without a fresh ob (returns 0).
func (s *Sampler) TryInsertRandom(maxDepth int, rng *rand.Rand, policy Policy) Ob {
	streak := 0
	for {
		outcome := s.insertRandomNullary(rng, policy)
		depth := 1
		for outcome.Kind == Continue && depth <= maxDepth {
			outcome = s.insertRandomCompound(outcome.Ob, depth, rng, policy)
			depth++
		}
		switch outcome.Kind {
		case Inserted:
			s.sampleCount.Add(1)
			return outcome.Ob
		case Rejected:
			s.rejectCount.Add(1)
			streak++
			if streak >= maxRejectStreak {
				return 0
			}
			continue
		case Failed:
			return 0
		case Continue:
			// maxDepth exhausted without a fresh ob: treat as a rejection
			// and retry, rather than returning a stale, unrecorded value.
			s.rejectCount.Add(1)
			streak++
			if streak >= maxRejectStreak {
				return 0
			}
			continue
		}
	}
}

// Sample draws one fresh ob using the default CarrierPolicy bound to the
// Sampler's own signature's carrier.
func (s *Sampler) Sample(maxDepth int, rng *rand.Rand) Ob {
	return s.TryInsertRandom(maxDepth, rng, NewCarrierPolicy(s.sig.Carrier()))
}
