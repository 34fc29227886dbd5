package lsh

import (
	"math/rand/v2"

	"gonum.org/v1/gonum/mat"

	"github.com/arthurfeeney/nrlsh/distance"
)

// SignHash is random-hyperplane LSH over dim-dimensional vectors.
// It is immutable after construction and safe for concurrent use.
type SignHash[F distance.Float] struct {
	planes *mat.Dense // bits × dim, standard normal entries
	bits   int
	dim    int
}

// NewSignHash draws a bits × dim matrix of standard normal entries from rng.
// A nil rng uses a fresh, unseeded source.
func NewSignHash[F distance.Float](bits, dim int, rng *rand.Rand) (*SignHash[F], error) {
	if bits <= 0 {
		return nil, ErrInvalidBits
	}
	if dim <= 0 {
		return nil, ErrInvalidDimension
	}
	rng = ensureRand(rng)

	data := make([]float64, bits*dim)
	for i := range data {
		data[i] = rng.NormFloat64()
	}

	return &SignHash[F]{
		planes: mat.NewDense(bits, dim, data),
		bits:   bits,
		dim:    dim,
	}, nil
}

// Bits returns the number of hyperplanes.
func (h *SignHash[F]) Bits() int { return h.bits }

// Dimension returns the input dimension.
func (h *SignHash[F]) Dimension() int { return h.dim }

// Hash returns sign(A·x) packed into a Code.
func (h *SignHash[F]) Hash(x []F) (Code, error) {
	if err := checkDim(h.dim, len(x)); err != nil {
		return Code{}, err
	}

	xv := mat.NewVecDense(h.dim, distance.ToFloat64(nil, x))

	var proj mat.VecDense
	proj.MulVec(h.planes, xv)

	words := make([]uint64, (h.bits+63)/64)
	for i := 0; i < h.bits; i++ {
		if proj.AtVec(i) >= 0 {
			words[i/64] |= 1 << (uint(i) % 64)
		}
	}
	return newCode(words), nil
}

// Bucket returns Hash(x) mod n.
func (h *SignHash[F]) Bucket(x []F, n int) (int, error) {
	c, err := h.Hash(x)
	if err != nil {
		return 0, err
	}
	return bucketOf(c, n)
}
