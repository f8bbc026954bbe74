package denseset_test

import (
	"testing"

	"github.com/pomagma/atlas/denseset"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func build(itemDim int, obs ...denseset.Ob) *denseset.DenseSet {
	s := denseset.New(itemDim)
	for _, o := range obs {
		s.Insert(o)
	}
	return s
}

// TestDenseSet_S1 verifies the end-to-end union/insn/diff scenario from
// spec.md §8 S1: item_dim=7, a={1,3,5,7}, b={1,2,3}.
func TestDenseSet_S1(t *testing.T) {
	a := build(7, 1, 3, 5, 7)
	b := build(7, 1, 2, 3)

	union := denseset.New(7)
	denseset.SetUnion(union, a, b)
	assert.Equal(t, []denseset.Ob{1, 2, 3, 5, 7}, union.Iter())

	insn := denseset.New(7)
	denseset.SetInsn2(insn, a, b)
	assert.Equal(t, []denseset.Ob{1, 3}, insn.Iter())

	diff := denseset.New(7)
	denseset.SetDiff(diff, a, b)
	assert.Equal(t, []denseset.Ob{5, 7}, diff.Iter())
}

func TestDenseSet_ReservedZeroBit(t *testing.T) {
	s := denseset.New(10)
	s.InsertAll()
	assert.False(t, s.Contains(0))
	for i := denseset.Ob(1); i <= 10; i++ {
		assert.True(t, s.Contains(i))
	}
}

func TestDenseSet_ContainsOutOfRangePanics(t *testing.T) {
	s := denseset.New(5)
	assert.Panics(t, func() { s.Contains(6) })
}

func TestDenseSet_DoubleInsertPanics(t *testing.T) {
	s := denseset.New(5)
	s.Insert(3)
	assert.Panics(t, func() { s.Insert(3) })
}

func TestDenseSet_TryInsertOne_ClaimsUniqueBits(t *testing.T) {
	s := denseset.New(3)
	got := map[denseset.Ob]bool{}
	for i := 0; i < 3; i++ {
		ob := s.TryInsertOne()
		require.NotZero(t, ob)
		require.False(t, got[ob])
		got[ob] = true
	}
	assert.Zero(t, s.TryInsertOne(), "set should report full")
}

func TestDenseSet_MergeZeroesSource(t *testing.T) {
	dst := build(10, 1, 2)
	dep := build(10, 3, 4)
	union := append([]denseset.Ob{}, dst.Iter()...)
	union = append(union, dep.Iter()...)

	dst.Merge(dep)

	assert.ElementsMatch(t, union, dst.Iter())
	assert.Empty(t, dep.Iter())
}

func TestDenseSet_EnsureReturnsNewBits(t *testing.T) {
	dst := build(10, 1, 2)
	src := build(10, 2, 3, 4)
	diff := denseset.New(10)

	changed := dst.Ensure(src, diff)

	assert.True(t, changed)
	assert.ElementsMatch(t, []denseset.Ob{3, 4}, diff.Iter())
	assert.ElementsMatch(t, []denseset.Ob{2, 3, 4}, src.Iter(), "Ensure must not zero src")
}

func TestDenseSet_SetAlgebraProperties(t *testing.T) {
	a := build(20, 1, 2, 3, 10)
	b := build(20, 2, 3, 4, 11)

	ab := denseset.New(20)
	ba := denseset.New(20)
	denseset.SetUnion(ab, a, b)
	denseset.SetUnion(ba, b, a)
	assert.True(t, denseset.Equal(ab, ba), "union must commute")

	iab := denseset.New(20)
	iba := denseset.New(20)
	denseset.SetInsn2(iab, a, b)
	denseset.SetInsn2(iba, b, a)
	assert.True(t, denseset.Equal(iab, iba), "intersection must commute")

	selfDiff := denseset.New(20)
	denseset.SetDiff(selfDiff, a, a)
	assert.Empty(t, selfDiff.Iter(), "set_diff(a,a) must be empty")

	selfInsn := denseset.New(20)
	denseset.SetInsn2(selfInsn, a, a)
	assert.True(t, denseset.Equal(selfInsn, a), "intersection is idempotent")
}

func TestDenseSet_IterInsnSkipsEmptyWords(t *testing.T) {
	a := build(200, 5, 130)
	b := build(200, 5, 9, 130)
	c := build(200, 5, 130, 131)

	got := denseset.IterInsn(a, b, c)
	assert.Equal(t, []denseset.Ob{5, 130}, got)
}

func TestDenseSet_IterDiff(t *testing.T) {
	a := build(20, 1, 2, 3)
	b := build(20, 2)
	assert.Equal(t, []denseset.Ob{1, 3}, denseset.IterDiff(a, b))
}

func TestDenseSet_PositiveNegativeIntersections(t *testing.T) {
	p1 := build(20, 1, 2, 3, 4)
	p2 := build(20, 2, 3, 4, 5)
	n1 := build(20, 3)
	n2 := build(20, 4)

	pnn := denseset.New(20)
	denseset.SetPNN(pnn, p1, n1, n2)
	assert.Equal(t, []denseset.Ob{1, 2}, pnn.Iter())

	ppnn := denseset.New(20)
	denseset.SetPPNN(ppnn, p1, p2, n1, n2)
	assert.Equal(t, []denseset.Ob{2}, ppnn.Iter())
}
