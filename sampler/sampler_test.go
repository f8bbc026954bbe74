package sampler_test

import (
	"math/rand"
	"testing"

	"github.com/pomagma/atlas/carrier"
	"github.com/pomagma/atlas/function"
	"github.com/pomagma/atlas/sampler"
	"github.com/pomagma/atlas/signature"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestSampler wires a tiny signature with one nullary function (K) and
// one binary function (APP), enough to exercise the whole recursive descent.
func newTestSampler(t *testing.T, itemDim int) (*sampler.Sampler, *carrier.Carrier) {
	t.Helper()
	c := carrier.New(itemDim, nil)
	sig := signature.New(c)

	k := function.NewNullary(nil)
	sig.DeclareNullaryFunction("K", k)

	app := function.NewBinary(itemDim, nil)
	sig.DeclareBinaryFunction("APP", app)

	s := sampler.New(sig)
	require.NoError(t, s.SetProb("K", 1.0))
	require.NoError(t, s.SetProb("APP", 1.0))
	require.NoError(t, s.Validate())
	return s, c
}

func TestSampler_ValidateRequiresNullaryAndBinaryOrSymmetric(t *testing.T) {
	c := carrier.New(8, nil)
	sig := signature.New(c)
	app := function.NewBinary(8, nil)
	sig.DeclareBinaryFunction("APP", app)
	s := sampler.New(sig)
	require.NoError(t, s.SetProb("APP", 1.0))
	assert.Error(t, s.Validate())
}

func TestSampler_SetProbRejectsUndeclaredName(t *testing.T) {
	c := carrier.New(4, nil)
	sig := signature.New(c)
	s := sampler.New(sig)
	assert.Error(t, s.SetProb("GHOST", 1.0))
}

func TestSampler_BoundedSamplerBaseCaseIsNullaryOnly(t *testing.T) {
	s, _ := newTestSampler(t, 64)
	rng := rand.New(rand.NewSource(1))
	// Depth 0 always yields a fresh nullary ob: K is the only eligible
	// function and the carrier starts empty, so the first draw inserts.
	ob := s.Sample(0, rng)
	assert.NotZero(t, ob)
}

func TestSampler_SampleProducesFreshObsUntilCarrierFull(t *testing.T) {
	const itemDim = 64
	s, c := newTestSampler(t, itemDim)
	rng := rand.New(rand.NewSource(42))

	seen := make(map[sampler.Ob]bool)
	count := 0
	for i := 0; i < itemDim; i++ {
		ob := s.Sample(4, rng)
		if ob == 0 {
			break
		}
		assert.False(t, seen[ob], "sampler returned the same ob twice")
		seen[ob] = true
		count++
	}
	assert.Greater(t, count, 0)
	assert.LessOrEqual(t, c.ItemCount(), itemDim)

	st := s.Stats()
	assert.Equal(t, uint64(count), st.SampleCount)
}

func TestSampler_StatsTrackArityChoices(t *testing.T) {
	s, _ := newTestSampler(t, 128)
	rng := rand.New(rand.NewSource(7))
	for i := 0; i < 32; i++ {
		if s.Sample(5, rng) == 0 {
			break
		}
	}
	st := s.Stats()
	assert.Positive(t, st.AritySampleCount)
	// Only K (nullary) and APP (binary) are eligible; injective/symmetric
	// must never be chosen.
	assert.Zero(t, st.AritySamples[sampler.ArityInjective])
	assert.Zero(t, st.AritySamples[sampler.AritySymmetric])
	assert.Zero(t, st.CompoundAritySamples[sampler.ArityInjective])
	assert.Zero(t, st.CompoundAritySamples[sampler.AritySymmetric])
}

// TestSampler_ArityDistributionConverges is a nominal check of spec.md
// property 10: raising a function's relative probability should raise its
// empirical share of top-level arity draws, within the noise of a fixed
// random seed.
func TestSampler_ArityDistributionConverges(t *testing.T) {
	c := carrier.New(4096, nil)
	sig := signature.New(c)
	k := function.NewNullary(nil)
	sig.DeclareNullaryFunction("K", k)
	app := function.NewBinary(4096, nil)
	sig.DeclareBinaryFunction("APP", app)
	sym := function.NewSymmetric(4096, nil)
	sig.DeclareSymmetricFunction("PAIR", sym)

	s := sampler.New(sig)
	require.NoError(t, s.SetProb("K", 1.0))
	require.NoError(t, s.SetProb("APP", 9.0))
	require.NoError(t, s.SetProb("PAIR", 1.0))
	require.NoError(t, s.Validate())

	rng := rand.New(rand.NewSource(99))
	for i := 0; i < 2000; i++ {
		if s.Sample(3, rng) == 0 {
			break
		}
	}

	st := s.Stats()
	// APP was weighted nine times PAIR's weight; its empirical sample
	// share should dominate by a wide margin.
	assert.Greater(t, st.AritySamples[sampler.ArityBinary], st.AritySamples[sampler.AritySymmetric])
}

func TestSampler_CarrierPolicyMintsFreshObForUndefinedNullary(t *testing.T) {
	c := carrier.New(2, nil)
	sig := signature.New(c)
	k := function.NewNullary(nil)
	sig.DeclareNullaryFunction("K", k)
	app := function.NewBinary(2, nil)
	sig.DeclareBinaryFunction("APP", app)

	s := sampler.New(sig)
	require.NoError(t, s.SetProb("K", 1.0))
	require.NoError(t, s.SetProb("APP", 1.0))

	rng := rand.New(rand.NewSource(3))
	ob := s.Sample(3, rng)
	assert.NotZero(t, ob)
}
