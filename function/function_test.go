package function_test

import (
	"testing"

	"github.com/pomagma/atlas/carrier"
	"github.com/pomagma/atlas/function"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newCarrierWithObs(n int) *carrier.Carrier {
	c := carrier.New(n, nil)
	for i := 0; i < n; i++ {
		c.Insert()
	}
	return c
}

func TestNullary_InsertThenMergeOnConflict(t *testing.T) {
	c := newCarrierWithObs(5)
	f := function.NewNullary(nil)

	f.Insert(c, 2)
	assert.Equal(t, function.Ob(2), f.Find())

	f.Insert(c, 4) // conflicting re-definition: forces a carrier merge
	assert.True(t, c.Equal(2, 4))
}

// TestInjective_S6 verifies spec.md §8 S6: g.insert(1,5); carrier.merge(5,2);
// g.unsafe_merge(5); then g.find(1)=2 and g.inverse_find(2)=1.
func TestInjective_S6(t *testing.T) {
	c := newCarrierWithObs(10)
	g := function.NewInjective(10, nil)

	g.Insert(c, 1, 5)
	c.Merge(5, 2)
	g.UnsafeMerge(c, 5, 2)

	assert.Equal(t, function.Ob(2), g.Find(1))
	assert.Equal(t, function.Ob(1), g.InverseFind(2))
}

// TestInjective_InverseConsistency verifies spec.md §8 property 4: for every
// key k with f.find(k) = v != 0, carrier.equal(f.inverse_find(v), k).
func TestInjective_InverseConsistency(t *testing.T) {
	c := newCarrierWithObs(10)
	g := function.NewInjective(10, nil)
	g.Insert(c, 3, 7)
	require.Equal(t, function.Ob(7), g.Find(3))
	assert.True(t, c.Equal(g.InverseFind(7), 3))
	assert.NoError(t, g.Validate(c))
}

// TestBinary_S5 verifies spec.md §8 S5: f.insert(1,2,3); f.insert(1,2,4)
// forces carrier.ensure_equal(3,4); after merges, f.find(1,2)=find(3)=find(4)=3.
func TestBinary_S5(t *testing.T) {
	c := newCarrierWithObs(10)
	f := function.NewBinary(10, nil)

	f.Insert(c, 1, 2, 3)
	f.Insert(c, 1, 2, 4) // conflicting: forces carrier.ensure_equal(3,4)

	assert.True(t, c.Equal(3, 4))
	rep := c.Find(3)
	assert.Equal(t, rep, c.Find(4))
	assert.Equal(t, rep, c.Find(f.Find(1, 2)))
}

// TestBinary_IterVal verifies spec.md §8 property 5: iterating f.iter_val(v)
// yields exactly the pairs (l,r) with f.find(l,r)=v.
func TestBinary_IterVal(t *testing.T) {
	c := newCarrierWithObs(10)
	f := function.NewBinary(10, nil)
	f.Insert(c, 1, 2, 9)
	f.Insert(c, 3, 4, 9)
	f.Insert(c, 5, 6, 8)

	pairs := f.IterVal(9)
	assert.ElementsMatch(t, []function.Pair{{1, 2}, {3, 4}}, pairs)
}

func TestBinary_UnsafeMerge_AsLhsRhsAndValue(t *testing.T) {
	c := newCarrierWithObs(10)
	f := function.NewBinary(10, nil)
	f.Insert(c, 5, 1, 9) // dep as lhs
	f.Insert(c, 1, 5, 9) // dep as rhs
	f.Insert(c, 2, 3, 5) // dep as value

	f.UnsafeMerge(c, 5, 2)

	assert.Equal(t, function.Ob(9), f.Find(2, 1))
	assert.Equal(t, function.Ob(9), f.Find(1, 2))
	assert.Equal(t, function.Ob(2), f.Find(2, 3))
	assert.NoError(t, f.Validate())
}

func TestSymmetric_CanonicalizesArgs(t *testing.T) {
	c := newCarrierWithObs(10)
	f := function.NewSymmetric(10, nil)
	f.Insert(c, 5, 2, 9)

	assert.Equal(t, function.Ob(9), f.Find(2, 5))
	assert.Equal(t, function.Ob(9), f.Find(5, 2))
	assert.NoError(t, f.Validate())
}

func TestSymmetric_IterArgFindsPartnerRegardlessOfCanonicalSide(t *testing.T) {
	c := newCarrierWithObs(10)
	f := function.NewSymmetric(10, nil)
	f.Insert(c, 5, 1, 9) // canonicalizes to (1,5): 5 is the larger, non-canonical-lhs side
	f.Insert(c, 5, 7, 2) // canonicalizes to (5,7): 5 is the smaller, canonical-lhs side

	assert.ElementsMatch(t, []function.Ob{1, 7}, f.IterArg(5))
}

func TestSymmetric_UnsafeMerge(t *testing.T) {
	c := newCarrierWithObs(10)
	f := function.NewSymmetric(10, nil)
	f.Insert(c, 5, 1, 9)
	f.Insert(c, 2, 3, 5)

	f.UnsafeMerge(c, 5, 2)

	assert.Equal(t, function.Ob(9), f.Find(1, 2))
	assert.Equal(t, function.Ob(2), f.Find(2, 3))
	assert.NoError(t, f.Validate())
}
