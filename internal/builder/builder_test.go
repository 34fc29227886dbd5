package builder

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arthurfeeney/nrlsh/distance"
	"github.com/arthurfeeney/nrlsh/lsh"
	"github.com/arthurfeeney/nrlsh/testutil"
)

func TestRankByNorm(t *testing.T) {
	data := [][]float64{
		{3, 0},
		{1, 0},
		{0, 2},
		{0, -1},
		{0.5, 0},
	}
	assert.Equal(t, []int{4, 1, 3, 2, 0}, RankByNorm(data))
}

func TestPartition(t *testing.T) {
	ranking := []int{9, 8, 7, 6, 5, 4, 3, 2, 1, 0}

	tests := []struct {
		name string
		m    int
		want [][]int
	}{
		{"One", 1, [][]int{ranking}},
		{"Even", 5, [][]int{{9, 8}, {7, 6}, {5, 4}, {3, 2}, {1, 0}}},
		{"RemainderToLast", 3, [][]int{{9, 8, 7}, {6, 5, 4}, {3, 2, 1, 0}}},
		{"Singletons", 10, [][]int{{9}, {8}, {7}, {6}, {5}, {4}, {3}, {2}, {1}, {0}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			parts, err := Partition(ranking, tt.m)
			require.NoError(t, err)
			assert.Equal(t, tt.want, parts)
		})
	}
}

func TestPartitionErrors(t *testing.T) {
	_, err := Partition([]int{0, 1}, 0)
	assert.ErrorIs(t, err, ErrInvalidPartitions)

	_, err = Partition([]int{0, 1}, 3)
	require.ErrorIs(t, err, ErrTooFewVectors)
	var tf *TooFewVectorsError
	require.ErrorAs(t, err, &tf)
	assert.Equal(t, 2, tf.Have)
	assert.Equal(t, 3, tf.Want)
}

func TestPartitionCoverageAndOrder(t *testing.T) {
	rng := testutil.NewRNG(3)
	data := rng.GaussianVectors(103, 6)

	ranking := RankByNorm(data)
	for _, m := range []int{1, 2, 7, 103} {
		parts, err := Partition(ranking, m)
		require.NoError(t, err)
		require.Len(t, parts, m)

		seen := make(map[int]bool)
		for _, part := range parts {
			require.NotEmpty(t, part)
			for _, id := range part {
				assert.False(t, seen[id], "id %d in two partitions", id)
				seen[id] = true
			}
		}
		assert.Len(t, seen, len(data))

		for p := 0; p+1 < m; p++ {
			var hi float32
			for _, id := range parts[p] {
				hi = max(hi, distance.Norm(data[id]))
			}
			for _, id := range parts[p+1] {
				assert.LessOrEqual(t, hi, distance.Norm(data[id]))
			}
		}
	}
}

func TestNormalize(t *testing.T) {
	data := [][]float64{{1, 1, 1}, {-2, -2, -2}}
	parts, err := Partition(RankByNorm(data), 2)
	require.NoError(t, err)
	assert.Equal(t, [][]int{{0}, {1}}, parts)

	normalized, normalizers := Normalize(data, parts)
	assert.InDelta(t, math.Sqrt(3), normalizers[0], 1e-12)
	assert.InDelta(t, 2*math.Sqrt(3), normalizers[1], 1e-12)
	for p := range parts {
		require.Len(t, normalized[p], 1)
		assert.InDelta(t, 1, distance.Norm(normalized[p][0]), 1e-12)
	}
}

func TestNormalizeZeroPartition(t *testing.T) {
	data := [][]float32{{0, 0}, {0, 0}, {3, 4}}
	parts, err := Partition(RankByNorm(data), 2)
	require.NoError(t, err)

	normalized, normalizers := Normalize(data, parts)
	assert.Equal(t, []float32{1, 5}, normalizers)
	assert.Equal(t, [][]float32{{0, 0}}, normalized[0])
	assert.InDeltaSlice(t, []float32{0.6, 0.8}, normalized[1][1], 1e-6)
}

func TestBuild(t *testing.T) {
	rng := testutil.NewRNG(11)
	data := rng.UniformVectors(250, 8)
	for i := range data {
		data[i] = distance.Scale(data[i], float32(1+i%17))
	}

	fam, err := lsh.NewNormalizedSignHash[float32](16, 8, lsh.NewRand(1, 0))
	require.NoError(t, err)

	layout, err := Build(context.Background(), data, 4, 32, fam, 2)
	require.NoError(t, err)
	require.Len(t, layout.Partitions, 4)

	for p, ids := range layout.Partitions {
		require.Len(t, layout.Normalized[p], len(ids))
		require.Len(t, layout.Buckets[p], len(ids))
		for i, id := range ids {
			assert.LessOrEqual(t, float64(distance.Norm(layout.Normalized[p][i])), 1+1e-5)
			assert.True(t, distance.ApproxEqual(distance.Scale(layout.Normalized[p][i], layout.Normalizers[p]), data[id]))

			b, err := fam.Bucket(layout.Normalized[p][i], 32)
			require.NoError(t, err)
			assert.Equal(t, b, layout.Buckets[p][i])
			assert.GreaterOrEqual(t, b, 0)
			assert.Less(t, b, 32)
		}
	}
}

func TestBuildErrors(t *testing.T) {
	fam, err := lsh.NewNormalizedSignHash[float64](4, 2, lsh.NewRand(1, 0))
	require.NoError(t, err)
	ctx := context.Background()
	data := [][]float64{{1, 0}, {0, 1}}

	_, err = Build(ctx, data, 0, 4, fam, 0)
	assert.ErrorIs(t, err, ErrInvalidPartitions)

	_, err = Build(ctx, data, 1, 0, fam, 0)
	assert.ErrorIs(t, err, lsh.ErrInvalidBuckets)

	_, err = Build(ctx, data, 3, 4, fam, 0)
	assert.ErrorIs(t, err, ErrTooFewVectors)

	_, err = Build(ctx, [][]float64{{1, 0, 0}, {0, 1, 0}}, 1, 4, fam, 0)
	assert.ErrorIs(t, err, lsh.ErrDimensionMismatch)

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	_, err = Build(cancelled, data, 2, 4, fam, 0)
	assert.ErrorIs(t, err, context.Canceled)
}
