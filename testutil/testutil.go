package testutil

import (
	"cmp"
	"math/rand/v2"
	"slices"
	"sync"

	"github.com/arthurfeeney/nrlsh/distance"
)

// SearchResult is one ground-truth hit.
type SearchResult struct {
	ID    int
	Score float64
}

// RNG wraps a seeded generator. It is safe for concurrent use.
type RNG struct {
	rand *rand.Rand
	seed int64
	mu   sync.Mutex
}

func newSource(seed int64) *rand.Rand {
	return rand.New(rand.NewPCG(uint64(seed), 0x9e3779b97f4a7c15)) // nolint gosec
}

// NewRNG creates an RNG with the given seed.
func NewRNG(seed int64) *RNG {
	return &RNG{
		rand: newSource(seed),
		seed: seed,
	}
}

// Reset rewinds the RNG to its initial seed.
func (r *RNG) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rand = newSource(r.seed)
}

// Seed returns the initial seed.
func (r *RNG) Seed() int64 {
	return r.seed
}

// Intn returns a pseudo-random number in [0,n).
func (r *RNG) Intn(n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.IntN(n)
}

// Uint64 returns a pseudo-random uint64, suitable as a hash seed.
func (r *RNG) Uint64() uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Uint64()
}

// Float32 returns a pseudo-random number in [0.0,1.0).
func (r *RNG) Float32() float32 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Float32()
}

func (r *RNG) vectors(num, dimensions int, gen func() float32) [][]float32 {
	data := make([]float32, num*dimensions)
	vectors := make([][]float32, num)
	for i := range num {
		vec := data[i*dimensions : (i+1)*dimensions]
		for j := range vec {
			vec[j] = gen()
		}
		vectors[i] = vec
	}
	return vectors
}

// UniformVectors generates vectors with values in [0, 1).
// Uses a single backing array.
func (r *RNG) UniformVectors(num int, dimensions int) [][]float32 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.vectors(num, dimensions, r.rand.Float32)
}

// UniformRangeVectors generates vectors with values in [-1, 1).
func (r *RNG) UniformRangeVectors(num int, dimensions int) [][]float32 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.vectors(num, dimensions, func() float32 { return r.rand.Float32()*2 - 1 })
}

// GaussianVectors generates vectors with standard normal components.
func (r *RNG) GaussianVectors(num int, dimensions int) [][]float32 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.vectors(num, dimensions, func() float32 { return float32(r.rand.NormFloat64()) })
}

// UnitVectors generates L2-normalized vectors, uniform on the sphere.
func (r *RNG) UnitVectors(num int, dimensions int) [][]float32 {
	vectors := r.GaussianVectors(num, dimensions)
	for i, v := range vectors {
		if n := distance.Norm(v); n > 0 {
			vectors[i] = distance.Div(v, n)
		}
	}
	return vectors
}

// UnitVector generates a single L2-normalized vector.
func (r *RNG) UnitVector(dimensions int) []float32 {
	return r.UnitVectors(1, dimensions)[0]
}

// ScaledVectors generates random directions with norms drawn uniformly from
// [minNorm, maxNorm). Spread-out norms are what norm-ranged partitioning is
// for, so MIPS tests should use this rather than unit data.
func (r *RNG) ScaledVectors(num, dimensions int, minNorm, maxNorm float32) [][]float32 {
	vectors := r.UnitVectors(num, dimensions)

	r.mu.Lock()
	defer r.mu.Unlock()
	for i, v := range vectors {
		norm := minNorm + r.rand.Float32()*(maxNorm-minNorm)
		vectors[i] = distance.Scale(v, norm)
	}
	return vectors
}

// ToFloat64 converts a float32 dataset for float64 tests.
func ToFloat64(vectors [][]float32) [][]float64 {
	out := make([][]float64, len(vectors))
	for i, v := range vectors {
		out[i] = distance.ToFloat64(nil, v)
	}
	return out
}

// ExactMIPS returns the k vectors with the largest inner product with query,
// best first. Ties go to the lower id.
func ExactMIPS[F distance.Float](vectors [][]F, query []F, k int) []SearchResult {
	results := make([]SearchResult, len(vectors))
	for i, v := range vectors {
		results[i] = SearchResult{ID: i, Score: float64(distance.Dot(query, v))}
	}

	slices.SortStableFunc(results, func(a, b SearchResult) int {
		return cmp.Compare(b.Score, a.Score)
	})

	if len(results) > k {
		results = results[:k]
	}
	return results
}

// ExactNearest returns the k vectors closest to query in Euclidean distance,
// nearest first.
func ExactNearest[F distance.Float](vectors [][]F, query []F, k int) []SearchResult {
	results := make([]SearchResult, len(vectors))
	for i, v := range vectors {
		results[i] = SearchResult{ID: i, Score: float64(distance.Distance(query, v))}
	}

	slices.SortStableFunc(results, func(a, b SearchResult) int {
		return cmp.Compare(a.Score, b.Score)
	})

	if len(results) > k {
		results = results[:k]
	}
	return results
}

// IDs returns the ids of results in order.
func IDs(results []SearchResult) []int {
	ids := make([]int, len(results))
	for i, r := range results {
		ids[i] = r.ID
	}
	return ids
}

// ComputeRecall returns the fraction of the first min(len) ground-truth ids
// present in approximate.
func ComputeRecall(groundTruth, approximate []int) float64 {
	if len(groundTruth) == 0 || len(approximate) == 0 {
		if len(groundTruth) == 0 && len(approximate) == 0 {
			return 1.0
		}
		return 0.0
	}

	k := min(len(approximate), len(groundTruth))

	truthSet := make(map[int]struct{}, k)
	for _, id := range groundTruth[:k] {
		truthSet[id] = struct{}{}
	}

	hits := 0
	for _, id := range approximate {
		if _, ok := truthSet[id]; ok {
			hits++
		}
	}

	return float64(hits) / float64(k)
}
