package binrel_test

import (
	"testing"

	"github.com/pomagma/atlas/binrel"
	"github.com/stretchr/testify/assert"
)

// TestBinary_FindMatchesLxRx verifies spec.md §8 property 3:
// R.Find(i,j) == R.Lx(i).Contains(j) == R.Rx(j).Contains(i).
func TestBinary_FindMatchesLxRx(t *testing.T) {
	r := binrel.NewBinary(10, false, nil)
	r.Insert(3, 7)

	assert.True(t, r.Find(3, 7))
	assert.True(t, r.Base().Lx(3).Contains(7))
	assert.True(t, r.Base().Rx(7).Contains(3))
	assert.False(t, r.Find(7, 3))
}

func TestBinary_InsertFiresCallbackOnce(t *testing.T) {
	var calls [][2]binrel.Ob
	r := binrel.NewBinary(10, false, func(i, j binrel.Ob) {
		calls = append(calls, [2]binrel.Ob{i, j})
	})
	r.Insert(1, 2)
	r.Insert(1, 2) // repeat: must not fire again
	r.Insert(1, 3)

	assert.Equal(t, [][2]binrel.Ob{{1, 2}, {1, 3}}, calls)
}

func TestBinary_SymmetricAliasesRows(t *testing.T) {
	r := binrel.NewBinary(10, true, nil)
	r.Insert(2, 5)
	assert.True(t, r.Find(2, 5))
	assert.True(t, r.Find(5, 2))
}

func TestBinary_UnsafeMergeRewritesPairs(t *testing.T) {
	var merged [][2]binrel.Ob
	r := binrel.NewBinary(10, false, func(i, j binrel.Ob) {
		merged = append(merged, [2]binrel.Ob{i, j})
	})
	r.Insert(5, 9)
	r.Insert(9, 5)
	merged = nil // reset: only interested in merge-driven callbacks

	r.UnsafeMerge(9, 2) // dep=9 merges into rep=2

	assert.True(t, r.Find(5, 2), "dep as rhs rewritten to rep")
	assert.True(t, r.Find(2, 5), "dep as lhs rewritten to rep")
	assert.False(t, r.Find(5, 9))
	assert.False(t, r.Find(9, 5))
	assert.ElementsMatch(t, [][2]binrel.Ob{{5, 2}, {2, 5}}, merged)
}

func TestBase_CopyLxToRxRebuildsTranspose(t *testing.T) {
	b := binrel.NewBase(10, false)
	b.Lx(1).Insert(4)
	b.Lx(2).Insert(4)

	b.CopyLxToRx()

	assert.True(t, b.Rx(4).Contains(1))
	assert.True(t, b.Rx(4).Contains(2))
}

func TestValidateDisjoint(t *testing.T) {
	less := binrel.NewBinary(10, false, nil)
	nless := binrel.NewBinary(10, false, nil)
	less.Insert(1, 2)
	nless.Insert(3, 4)

	assert.NoError(t, binrel.ValidateDisjoint(less.Base(), nless.Base()))

	nless.Insert(1, 2)
	assert.ErrorIs(t, binrel.ValidateDisjoint(less.Base(), nless.Base()), binrel.ErrNotDisjoint)
}

func TestUnary_InsertAndMerge(t *testing.T) {
	var fired []binrel.Ob
	u := binrel.NewUnary(10, func(args ...binrel.Ob) { fired = append(fired, args[0]) })
	u.Insert(3)
	assert.True(t, u.Find(3))

	u.UnsafeMerge(3, 7)
	assert.False(t, u.Find(3))
	assert.True(t, u.Find(7))
	assert.Equal(t, []binrel.Ob{3, 7}, fired)
}
