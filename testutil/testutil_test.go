package testutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arthurfeeney/nrlsh/distance"
)

func TestUniformVectors(t *testing.T) {
	rng := NewRNG(4711)

	v := rng.UniformVectors(8, 32)

	assert.Equal(t, 8, len(v))
	assert.Equal(t, 32, len(v[0]))
	assert.LessOrEqual(t, v[0][0], float32(1.0))
	assert.GreaterOrEqual(t, v[1][0], float32(0.0))
}

func TestUniformRangeVectors(t *testing.T) {
	rng := NewRNG(4711)

	v := rng.UniformRangeVectors(8, 32)

	assert.Equal(t, 8, len(v))
	assert.Equal(t, 32, len(v[0]))
	assert.LessOrEqual(t, v[0][0], float32(1.0))
	assert.GreaterOrEqual(t, v[1][0], float32(-1.0))
}

func TestUnitVectors(t *testing.T) {
	rng := NewRNG(4711)

	v := rng.UnitVectors(8, 32)

	assert.Equal(t, 8, len(v))
	assert.Equal(t, 32, len(v[0]))
	for _, vec := range v {
		assert.InDelta(t, float32(1.0), distance.Norm(vec), 1e-5)
	}
	assert.InDelta(t, float32(1.0), distance.Norm(rng.UnitVector(5)), 1e-5)
}

func TestScaledVectors(t *testing.T) {
	rng := NewRNG(4711)

	v := rng.ScaledVectors(50, 16, 0.5, 4)
	require.Len(t, v, 50)
	for _, vec := range v {
		n := distance.Norm(vec)
		assert.GreaterOrEqual(t, n, float32(0.5)-1e-5)
		assert.Less(t, n, float32(4)+1e-5)
	}
}

func TestReset(t *testing.T) {
	rng := NewRNG(4711)
	v1 := rng.UniformVectors(1, 10)
	rng.Reset()
	v2 := rng.UniformVectors(1, 10)
	assert.Equal(t, v1, v2)
	assert.Equal(t, int64(4711), rng.Seed())
}

func TestExactMIPS(t *testing.T) {
	data := [][]float32{{.1, .1, .1}, {.2, .3, .1}, {.1, .3, .1}, {-1, -1, -1}}

	got := ExactMIPS(data, []float32{1, 1, 1}, 2)
	assert.Equal(t, []int{1, 2}, IDs(got))
	assert.InDelta(t, 0.6, got[0].Score, 1e-6)

	assert.Len(t, ExactMIPS(data, []float32{1, 0, 0}, 10), 4)
}

func TestExactNearest(t *testing.T) {
	data := [][]float64{{0, 0}, {3, 4}, {1, 1}}
	got := ExactNearest(data, []float64{0.9, 0.9}, 2)
	assert.Equal(t, []int{2, 0}, IDs(got))
}

func TestComputeRecall(t *testing.T) {
	assert.Equal(t, 1.0, ComputeRecall(nil, nil))
	assert.Equal(t, 0.0, ComputeRecall([]int{1}, nil))
	assert.Equal(t, 0.5, ComputeRecall([]int{1, 2, 3}, []int{2, 9}))
	assert.Equal(t, 1.0, ComputeRecall([]int{4, 5}, []int{5, 4}))
}

func TestToFloat64(t *testing.T) {
	got := ToFloat64([][]float32{{1, 2}, {0.5}})
	assert.Equal(t, [][]float64{{1, 2}, {0.5}}, got)
}
