package lsh

import (
	"math/bits"
	"math/rand/v2"

	"github.com/arthurfeeney/nrlsh/distance"
)

// Family is the capability shared by all hash families.
type Family[F distance.Float] interface {
	// Bits returns the number of bits in a code (1 for scalar families).
	Bits() int
	// Dimension returns the expected input length.
	Dimension() int
	// Hash maps x to its code.
	Hash(x []F) (Code, error)
	// Bucket maps x to a bucket index in [0, n).
	Bucket(x []F, n int) (int, error)
}

// Compile time checks to ensure every family satisfies Family.
var (
	_ Family[float32] = (*SignHash[float32])(nil)
	_ Family[float64] = (*NormalizedSignHash[float64])(nil)
	_ Family[float32] = (*PStableHash[float32])(nil)
)

// MatchingBits counts the positions among the lowest n bits where a and b
// agree (both 1 or both 0).
func MatchingBits(a, b, n int) int {
	if n <= 0 {
		return 0
	}
	match := ^(uint64(a) ^ uint64(b))
	if n < 64 {
		match &= 1<<uint(n) - 1
	}
	return bits.OnesCount64(match)
}

// BucketBits returns ⌈log2 n⌉, the number of low bits that distinguish n
// buckets. It is 0 when n ≤ 1.
func BucketBits(n int) int {
	if n <= 1 {
		return 0
	}
	return bits.Len(uint(n - 1))
}

func bucketOf(c Code, n int) (int, error) {
	if n <= 0 {
		return 0, ErrInvalidBuckets
	}
	return c.Mod(n), nil
}

func ensureRand(rng *rand.Rand) *rand.Rand {
	if rng != nil {
		return rng
	}
	return rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())) // nolint gosec
}

// NewRand returns a reproducible generator for seed. Distinct streams give
// independent draws from the same seed (one per replica, for example).
func NewRand(seed, stream uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, stream)) // nolint gosec
}
