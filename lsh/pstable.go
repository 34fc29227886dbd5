package lsh

import (
	"math"
	"math/big"
	"math/rand/v2"

	"github.com/arthurfeeney/nrlsh/distance"
)

// PStableHash is the p-stable (Gaussian) LSH for Euclidean distance:
// h(x) = floor((a·x + b) / r) with a ~ N(0, I) and b ~ U[0, r).
type PStableHash[F distance.Float] struct {
	a     []float64
	b     float64
	width float64
	dim   int
}

// NewPStableHash draws a and b from rng. A nil rng uses a fresh source.
func NewPStableHash[F distance.Float](dim int, width float64, rng *rand.Rand) (*PStableHash[F], error) {
	if dim <= 0 {
		return nil, ErrInvalidDimension
	}
	if !(width > 0) {
		return nil, ErrInvalidWidth
	}
	rng = ensureRand(rng)

	a := make([]float64, dim)
	for i := range a {
		a[i] = rng.NormFloat64()
	}
	return &PStableHash[F]{
		a:     a,
		b:     rng.Float64() * width,
		width: width,
		dim:   dim,
	}, nil
}

// Bits returns 1: the code is a scalar, not a bit vector.
func (h *PStableHash[F]) Bits() int { return 1 }

// Dimension returns the input dimension.
func (h *PStableHash[F]) Dimension() int { return h.dim }

// Width returns the bucket width r.
func (h *PStableHash[F]) Width() float64 { return h.width }

// Raw returns the signed value floor((a·x + b) / r).
func (h *PStableHash[F]) Raw(x []F) (float64, error) {
	if err := checkDim(h.dim, len(x)); err != nil {
		return 0, err
	}
	v := math.Floor((distance.Dot(h.a, distance.ToFloat64(nil, x)) + h.b) / h.width)
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, ErrNonFinite
	}
	return v, nil
}

// Hash returns |floor((a·x + b) / r)|. Buckets therefore agree with the
// magnitude of the signed residue, so h and -h share a bucket.
func (h *PStableHash[F]) Hash(x []F) (Code, error) {
	v, err := h.Raw(x)
	if err != nil {
		return Code{}, err
	}
	mag := math.Abs(v)
	if mag < 1<<63 {
		return CodeFromUint64(uint64(mag)), nil
	}
	bi, _ := new(big.Float).SetFloat64(mag).Int(nil)
	return CodeFromBig(bi), nil
}

// Bucket returns Hash(x) mod n.
func (h *PStableHash[F]) Bucket(x []F, n int) (int, error) {
	c, err := h.Hash(x)
	if err != nil {
		return 0, err
	}
	return bucketOf(c, n)
}
