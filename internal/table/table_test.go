package table

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arthurfeeney/nrlsh/distance"
	"github.com/arthurfeeney/nrlsh/internal/builder"
	"github.com/arthurfeeney/nrlsh/lsh"
	"github.com/arthurfeeney/nrlsh/testutil"
)

func newHasher[F distance.Float](t *testing.T, bits, dim int) *lsh.NormalizedSignHash[F] {
	t.Helper()
	fam, err := lsh.NewNormalizedSignHash[F](bits, dim, lsh.NewRand(17, 0))
	require.NoError(t, err)
	return fam
}

// filledTable builds a single-partition table over data.
func filledTable[F distance.Float](t *testing.T, data [][]F, bits, numBuckets int, storeNormalized bool) *Table[F] {
	t.Helper()
	fam := newHasher[F](t, bits, len(data[0]))
	layout, err := builder.Build(context.Background(), data, 1, numBuckets, fam, 0)
	require.NoError(t, err)

	tbl, err := New[F](fam, numBuckets)
	require.NoError(t, err)
	require.NoError(t, tbl.Fill(layout.Normalized[0], layout.Buckets[0], layout.Partitions[0], layout.Normalizers[0], storeNormalized))
	return tbl
}

func TestNew(t *testing.T) {
	_, err := New[float32](newHasher[float32](t, 4, 2), 0)
	assert.ErrorIs(t, err, lsh.ErrInvalidBuckets)

	tbl, err := New[float32](newHasher[float32](t, 4, 2), 16)
	require.NoError(t, err)
	assert.Equal(t, 16, tbl.NumBuckets())
	assert.Equal(t, 0, tbl.Len())
	assert.Equal(t, float32(1), tbl.Normalizer())
}

func TestFill(t *testing.T) {
	fam := newHasher[float64](t, 4, 2)
	normalized := [][]float64{{0.5, 0}, {0, 1}}

	t.Run("Rescaled", func(t *testing.T) {
		tbl, err := New[float64](fam, 4)
		require.NoError(t, err)
		require.NoError(t, tbl.Fill(normalized, []int{1, 3}, []int{7, 9}, 2, false))

		assert.Equal(t, 2, tbl.Len())
		assert.False(t, tbl.StoresNormalized())
		assert.Equal(t, 2.0, tbl.Normalizer())
		require.Len(t, tbl.Bucket(1), 1)
		assert.Equal(t, []float64{1, 0}, tbl.Bucket(1)[0].Vector)
		assert.Equal(t, 7, tbl.Bucket(1)[0].ID)
		assert.Equal(t, []float64{0, 2}, tbl.Bucket(3)[0].Vector)
		assert.Empty(t, tbl.Bucket(0))
	})

	t.Run("Normalized", func(t *testing.T) {
		tbl, err := New[float64](fam, 4)
		require.NoError(t, err)
		require.NoError(t, tbl.Fill(normalized, []int{1, 1}, []int{7, 9}, 2, true))

		assert.True(t, tbl.StoresNormalized())
		require.Len(t, tbl.Bucket(1), 2)
		assert.Equal(t, []float64{0.5, 0}, tbl.Bucket(1)[0].Vector)
		assert.Equal(t, 9, tbl.Bucket(1)[1].ID, "buckets keep insertion order")
	})

	t.Run("Errors", func(t *testing.T) {
		tbl, err := New[float64](fam, 4)
		require.NoError(t, err)
		assert.ErrorIs(t, tbl.Fill(normalized, []int{1}, []int{7, 9}, 1, true), ErrInvalidLayout)
		assert.ErrorIs(t, tbl.Fill(normalized, []int{1, 4}, []int{7, 9}, 1, true), ErrInvalidLayout)
		assert.ErrorIs(t, tbl.Fill(normalized, []int{-1, 0}, []int{7, 9}, 1, true), ErrInvalidLayout)

		require.NoError(t, tbl.Fill(normalized, []int{0, 0}, []int{7, 9}, 1, true))
		assert.ErrorIs(t, tbl.Fill(normalized, []int{0, 0}, []int{7, 9}, 1, true), ErrAlreadyFilled)
	})
}

func TestSim(t *testing.T) {
	tbl, err := New[float64](newHasher[float64](t, 3, 2), 8)
	require.NoError(t, err)
	require.NoError(t, tbl.Fill([][]float64{{1, 0}}, []int{0}, []int{0}, 2.5, false))

	assert.InDelta(t, 2.5, tbl.Sim(5, 5), 1e-12)
	assert.InDelta(t, 2.5*math.Cos(math.Pi*(1-epsilon)), tbl.Sim(0b101, 0b010), 1e-12)
	assert.InDelta(t, 2.5*math.Cos(math.Pi*(1-epsilon)/3), tbl.Sim(0b101, 0b100), 1e-12)

	// More shared bits never score lower.
	for other := 0; other < 8; other++ {
		for o2 := 0; o2 < 8; o2++ {
			if lsh.MatchingBits(5, other, 3) > lsh.MatchingBits(5, o2, 3) {
				assert.Greater(t, tbl.Sim(5, other), tbl.Sim(5, o2))
			}
		}
	}
}

func TestSimClampsRatio(t *testing.T) {
	// Two hash bits but sixteen buckets: four bucket bits can all match.
	tbl, err := New[float64](newHasher[float64](t, 2, 2), 16)
	require.NoError(t, err)
	assert.InDelta(t, 1, tbl.Sim(3, 3), 1e-12)
}

func TestProbeRanking(t *testing.T) {
	tbl, err := New[float32](newHasher[float32](t, 8, 2), 8)
	require.NoError(t, err)

	rank := tbl.ProbeRanking(0b110, 8)
	require.Len(t, rank, 8)
	assert.Equal(t, 0b110, rank[0])
	assert.ElementsMatch(t, []int{0, 1, 2, 3, 4, 5, 6, 7}, rank)

	for i := 1; i < len(rank); i++ {
		prev, cur := tbl.Sim(0b110, rank[i-1]), tbl.Sim(0b110, rank[i])
		assert.GreaterOrEqual(t, prev, cur)
		if prev == cur {
			assert.Less(t, rank[i-1], rank[i], "ties keep bucket order")
		}
	}

	// Hamming distance one: 0b111, 0b100, 0b010 in bucket order.
	assert.Equal(t, []int{0b110, 0b010, 0b100, 0b111}, tbl.ProbeRanking(0b110, 4))
	assert.Len(t, tbl.ProbeRanking(0, 100), 8)
	assert.Nil(t, tbl.ProbeRanking(0, 0))
}

func TestMIPS(t *testing.T) {
	tbl, err := New[float32](newHasher[float32](t, 4, 3), 4)
	require.NoError(t, err)
	_, err = tbl.MIPS([]float32{1, 0, 0})
	assert.ErrorIs(t, err, ErrEmptyTable)

	rng := testutil.NewRNG(5)
	data := rng.ScaledVectors(300, 8, 0.1, 3)
	filled := filledTable(t, data, 12, 64, false)

	for i := 0; i < 20; i++ {
		q := rng.GaussianVectors(1, 8)[0]
		want := testutil.ExactMIPS(data, q, 1)[0]
		got, err := filled.MIPS(q)
		require.NoError(t, err)
		assert.Equal(t, want.ID, got.ID)
	}
}

func TestSingleBucketScenario(t *testing.T) {
	data := [][]float64{{.1, .1, .1}, {.2, .3, .1}, {.1, .3, .1}}
	q := []float64{.1, .1, .1}

	for _, storeNormalized := range []bool{false, true} {
		tbl := filledTable(t, data, 4, 1, storeNormalized)

		kv, found, st, err := tbl.Probe(q, 1)
		require.NoError(t, err)
		require.True(t, found)
		assert.Contains(t, []int{0, 1, 2}, kv.ID)
		assert.Equal(t, 3, st.Snapshot().Comparisons)
		assert.Equal(t, 1, st.Snapshot().Buckets)

		best, err := tbl.MIPS(q)
		require.NoError(t, err)
		assert.Equal(t, testutil.ExactMIPS(data, q, 1)[0].ID, best.ID)
		assert.Equal(t, 1, best.ID)
	}
}

func TestProbeFindsNothingInEmptyBuckets(t *testing.T) {
	fam := newHasher[float64](t, 6, 2)
	tbl, err := New[float64](fam, 64)
	require.NoError(t, err)

	q := []float64{1, 0}
	qb, err := tbl.QueryBucket(q)
	require.NoError(t, err)
	far := tbl.ProbeRanking(qb, 64)[63]
	require.NoError(t, tbl.Fill([][]float64{{0, 1}}, []int{far}, []int{0}, 1, true))

	_, found, st, err := tbl.Probe(q, 1)
	require.NoError(t, err)
	assert.False(t, found)
	assert.Equal(t, 0, st.Snapshot().Comparisons)

	_, found, _, err = tbl.Probe(q, 64)
	require.NoError(t, err)
	assert.True(t, found)

	_, _, _, err = tbl.Probe([]float64{1, 0, 0}, 1)
	assert.ErrorIs(t, err, lsh.ErrDimensionMismatch)
}

func TestLookIn(t *testing.T) {
	tbl, err := New[float64](newHasher[float64](t, 4, 2), 2)
	require.NoError(t, err)
	vecs := [][]float64{{0.1, 0}, {0.9, 0}, {0.8, 0}, {0.2, 0}}
	require.NoError(t, tbl.Fill(vecs, []int{0, 0, 0, 0}, []int{0, 1, 2, 3}, 1, true))
	q := []float64{1, 0}

	kv, ok, st := tbl.LookIn(0, q, 0.5)
	require.True(t, ok)
	assert.Equal(t, 1, kv.ID)
	assert.Equal(t, 2, st.Snapshot().Comparisons)
	assert.Equal(t, 1, st.Snapshot().Buckets)

	_, ok, st = tbl.LookIn(0, q, 0.95)
	assert.False(t, ok)
	assert.Equal(t, 4, st.Snapshot().Comparisons)

	_, ok, _ = tbl.LookIn(1, q, -1)
	assert.False(t, ok)
}

func TestLookInUntil(t *testing.T) {
	tbl, err := New[float64](newHasher[float64](t, 4, 2), 1)
	require.NoError(t, err)
	vecs := [][]float64{{0.9, 0}, {0.1, 0}, {0.8, 0}, {0.7, 0}}
	require.NoError(t, tbl.Fill(vecs, []int{0, 0, 0, 0}, []int{0, 1, 2, 3}, 1, true))
	q := []float64{1, 0}

	items, st := tbl.LookInUntil(0, q, 0.5, 2)
	assert.Equal(t, []int{0, 2}, ids(items))
	assert.Equal(t, 3, st.Snapshot().Comparisons)

	items, st = tbl.LookInUntil(0, q, 0.5, 10)
	assert.Equal(t, []int{0, 2, 3}, ids(items))
	assert.Equal(t, 4, st.Snapshot().Comparisons)

	items, _ = tbl.LookInUntil(0, q, 0.95, 10)
	assert.Empty(t, items)

	items, _ = tbl.LookInUntil(0, q, 0, 0)
	assert.Empty(t, items)
}

func TestTopKInBucket(t *testing.T) {
	tbl, err := New[float32](newHasher[float32](t, 4, 2), 2)
	require.NoError(t, err)
	vecs := [][]float32{{0.3, 0}, {0.9, 0}, {0.1, 0}, {0.5, 0}}
	require.NoError(t, tbl.Fill(vecs, []int{0, 0, 0, 0}, []int{10, 11, 12, 13}, 1, true))
	q := []float32{1, 0}

	assert.Equal(t, []int{11, 13}, ids(tbl.TopKInBucket(2, 0, q)))
	assert.Equal(t, []int{11, 13, 10, 12}, ids(tbl.TopKInBucket(9, 0, q)))
	assert.Empty(t, tbl.TopKInBucket(2, 1, q))
}

func TestContains(t *testing.T) {
	rng := testutil.NewRNG(21)
	data := testutil.ToFloat64(rng.ScaledVectors(200, 6, 0.5, 5))

	for _, storeNormalized := range []bool{false, true} {
		tbl := filledTable(t, data, 10, 32, storeNormalized)
		for _, x := range data {
			assert.True(t, tbl.Contains(x))
		}

		assert.False(t, tbl.Contains(distance.Scale(data[0], 1.5)))
		assert.False(t, tbl.Contains(distance.Scale(data[0], 100)), "beyond the normalizer bound")
		assert.False(t, tbl.Contains([]float64{1, 2}))
	}

	empty, err := New[float64](newHasher[float64](t, 4, 6), 4)
	require.NoError(t, err)
	assert.False(t, empty.Contains(data[0]))
}

func TestDiagnostics(t *testing.T) {
	tbl, err := New[float64](newHasher[float64](t, 4, 2), 4)
	require.NoError(t, err)
	vecs := [][]float64{{1, 0}, {0, 1}, {1, 1}, {0.5, 0}}
	require.NoError(t, tbl.Fill(vecs, []int{0, 0, 0, 2}, []int{0, 1, 2, 3}, 1, true))

	d, err := tbl.Diagnostics(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 4, d.Buckets)
	assert.Equal(t, 4, d.Vectors)
	assert.Equal(t, 3, d.Max)
	assert.Equal(t, 0, d.MaxBucket)
	assert.Equal(t, 0, d.Min)
	assert.Equal(t, 2, d.Empty)
	assert.Equal(t, 2, d.NonEmpty)
	assert.InDelta(t, 1.0, d.All.Mean, 1e-12)
	assert.InDelta(t, 1.5, d.All.Variance, 1e-12)
	assert.InDelta(t, math.Sqrt(1.5), d.All.StdDev, 1e-12)
	assert.InDelta(t, 0.5, d.All.Median, 1e-12)
	assert.InDelta(t, 2.0, d.Occupied.Mean, 1e-12)
	assert.InDelta(t, 1.0, d.Occupied.Variance, 1e-12)
	assert.InDelta(t, 2.0, d.Occupied.Median, 1e-12)
	assert.Contains(t, d.String(), "max bucket: 0")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = tbl.Diagnostics(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}
