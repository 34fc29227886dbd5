package topk

import (
	"math/rand/v2"
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func greater(a, b int) bool { return a > b }

func TestTrackerKeepsKLargest(t *testing.T) {
	rng := rand.New(rand.NewPCG(1, 2))

	for _, k := range []int{1, 2, 5, 16} {
		tr := New(k, greater)
		var all []int
		for i := 0; i < 200; i++ {
			v := rng.IntN(1000)
			all = append(all, v)
			tr.Push(v)
			require.LessOrEqual(t, tr.Len(), k)
		}

		slices.Sort(all)
		slices.Reverse(all)
		assert.Equal(t, all[:k], tr.Best(), "k=%d", k)
		assert.True(t, tr.Full())

		worst, ok := tr.Worst()
		require.True(t, ok)
		assert.Equal(t, all[k-1], worst)
	}
}

func TestTrackerRejectsWhenFull(t *testing.T) {
	tr := New(3, greater)
	assert.True(t, tr.Push(5))
	assert.True(t, tr.Push(1))
	assert.True(t, tr.Push(3))
	assert.False(t, tr.Push(0))
	assert.False(t, tr.Push(1), "equal to worst is not better")
	assert.True(t, tr.Push(4))
	assert.Equal(t, []int{5, 4, 3}, tr.Best())
}

func TestTrackerTiesKeepInsertionOrder(t *testing.T) {
	type item struct{ score, id int }
	better := func(a, b item) bool { return a.score > b.score }

	tr := New(2, better)
	tr.Push(item{1, 0})
	tr.Push(item{1, 1})
	tr.Push(item{1, 2})
	assert.Equal(t, []item{{1, 0}, {1, 1}}, tr.Best())

	tr.Push(item{2, 3})
	assert.Equal(t, []item{{2, 3}, {1, 0}}, tr.Best())
}

func TestTrackerPushUnique(t *testing.T) {
	type kv struct {
		id    int
		score float64
	}
	better := func(a, b kv) bool { return a.score > b.score }
	same := func(a, b kv) bool { return a.id == b.id }

	tr := New(3, better)
	pos, ok := tr.PushUnique(kv{1, 0.5}, same)
	assert.True(t, ok)
	assert.Equal(t, 0, pos)

	pos, ok = tr.PushUnique(kv{2, 0.9}, same)
	assert.True(t, ok)
	assert.Equal(t, 1, pos)

	pos, ok = tr.PushUnique(kv{1, 0.5}, same)
	assert.False(t, ok)
	assert.Equal(t, 0, pos, "returns the existing position")

	_, ok = tr.PushUnique(kv{3, 0.1}, same)
	assert.True(t, ok)
	pos, ok = tr.PushUnique(kv{4, 0.05}, same)
	assert.False(t, ok)
	assert.Equal(t, -1, pos)

	assert.Equal(t, []kv{{2, 0.9}, {1, 0.5}, {3, 0.1}}, tr.Best())
}

func TestTrackerReset(t *testing.T) {
	tr := New(2, greater)
	tr.Push(1)
	tr.Push(2)
	tr.Reset()
	assert.Equal(t, 0, tr.Len())
	assert.Equal(t, 2, tr.Cap())
	_, ok := tr.Worst()
	assert.False(t, ok)
	assert.Empty(t, tr.Best())
}

func TestNewPanicsOnBadK(t *testing.T) {
	assert.Panics(t, func() { New(0, greater) })
}

func TestSelect(t *testing.T) {
	values := []float64{0.3, 0.9, 0.1, 0.9, 0.5}
	better := func(a, b float64) bool { return a > b }

	assert.Equal(t, []int{1, 3, 4}, Select(3, values, better))
	assert.Equal(t, []int{1, 3, 4, 0, 2}, Select(10, values, better))
	assert.Nil(t, Select(0, values, better))
	assert.Nil(t, Select(2, []float64{}, better))
}
