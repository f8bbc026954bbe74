package signature_test

import (
	"testing"

	"github.com/pomagma/atlas/binrel"
	"github.com/pomagma/atlas/carrier"
	"github.com/pomagma/atlas/function"
	"github.com/pomagma/atlas/signature"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newCarrierWithObs(t *testing.T, n int) *carrier.Carrier {
	t.Helper()
	c := carrier.New(n, nil)
	for i := 0; i < n; i++ {
		ob := c.Insert()
		require.NotZero(t, ob)
	}
	return c
}

func TestSignature_DeclareAndLookup(t *testing.T) {
	c := newCarrierWithObs(t, 4)
	s := signature.New(c)

	less := binrel.NewBinary(4, false, nil)
	s.DeclareBinaryRelation("LESS", less)

	assert.Same(t, less, s.BinaryRelation("LESS"))
	assert.Nil(t, s.BinaryRelation("NLESS"))
	assert.Equal(t, []string{"LESS"}, s.BinaryRelationNames())
}

func TestSignature_DeclareTwicePanics(t *testing.T) {
	c := newCarrierWithObs(t, 2)
	s := signature.New(c)
	s.DeclareBinaryRelation("LESS", binrel.NewBinary(2, false, nil))
	assert.Panics(t, func() {
		s.DeclareBinaryRelation("LESS", binrel.NewBinary(2, false, nil))
	})
}

func TestNegate(t *testing.T) {
	assert.Equal(t, "NLESS", signature.Negate("LESS"))
	assert.Equal(t, "LESS", signature.Negate("NLESS"))
	assert.Panics(t, func() { signature.Negate("COMPAT") })
}

func TestSignature_ValidateCatchesOverlappingLessNless(t *testing.T) {
	c := newCarrierWithObs(t, 4)
	s := signature.New(c)
	less := binrel.NewBinary(4, false, nil)
	nless := binrel.NewBinary(4, false, nil)
	less.RawInsert(1, 2)
	nless.RawInsert(1, 2)
	s.DeclareBinaryRelation("LESS", less)
	s.DeclareBinaryRelation("NLESS", nless)

	assert.ErrorIs(t, s.Validate(), binrel.ErrNotDisjoint)
}

func TestSignature_ContentHashIsOrderInsensitive(t *testing.T) {
	c := newCarrierWithObs(t, 4)
	s := signature.New(c)

	less := binrel.NewBinary(4, false, nil)
	less.RawInsert(1, 2)
	less.RawInsert(2, 3)
	s.DeclareBinaryRelation("LESS", less)

	nullary := function.NewNullary(nil)
	nullary.RawInsert(1)
	s.DeclareNullaryFunction("ZERO", nullary)

	h1 := s.ContentHash()

	c2 := newCarrierWithObs(t, 4)
	s2 := signature.New(c2)
	less2 := binrel.NewBinary(4, false, nil)
	less2.RawInsert(2, 3)
	less2.RawInsert(1, 2)
	s2.DeclareBinaryRelation("LESS", less2)
	nullary2 := function.NewNullary(nil)
	nullary2.RawInsert(1)
	s2.DeclareNullaryFunction("ZERO", nullary2)

	h2 := s2.ContentHash()
	assert.Equal(t, h1, h2)
}

func TestSignature_ContentHashChangesOnNewFact(t *testing.T) {
	c := newCarrierWithObs(t, 4)
	s := signature.New(c)
	less := binrel.NewBinary(4, false, nil)
	less.RawInsert(1, 2)
	s.DeclareBinaryRelation("LESS", less)

	before := s.ContentHash()
	less.RawInsert(2, 3)
	after := s.ContentHash()
	assert.NotEqual(t, before, after)
}
