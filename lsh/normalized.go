package lsh

import (
	"math"
	"math/rand/v2"

	"github.com/arthurfeeney/nrlsh/distance"
)

// LiftTolerance is how far above 1 a norm may be and still lift.
const LiftTolerance = 1e-3

// Lift returns P(x) = [x, sqrt(1-‖x‖²)], a unit vector one dimension up.
// Norms within LiftTolerance above 1 lift with a zero tail.
func Lift[F distance.Float](x []F) ([]F, error) {
	sq := float64(distance.Dot(x, x))
	norm := math.Sqrt(sq)
	if norm > 1+LiftTolerance || math.IsNaN(norm) {
		return nil, &NormError{Norm: norm}
	}

	out := make([]F, len(x)+1)
	copy(out, x)
	out[len(x)] = F(math.Sqrt(math.Max(0, 1-sq)))
	return out, nil
}

// NormalizedSignHash is Simple-LSH: a SignHash over lifted vectors.
// Inputs must have ‖x‖ ≤ 1 (see Lift).
type NormalizedSignHash[F distance.Float] struct {
	inner *SignHash[F]
	dim   int
}

// NewNormalizedSignHash builds a SignHash(bits, dim+1) for lifted inputs.
func NewNormalizedSignHash[F distance.Float](bits, dim int, rng *rand.Rand) (*NormalizedSignHash[F], error) {
	if dim <= 0 {
		return nil, ErrInvalidDimension
	}
	inner, err := NewSignHash[F](bits, dim+1, rng)
	if err != nil {
		return nil, err
	}
	return &NormalizedSignHash[F]{inner: inner, dim: dim}, nil
}

// Bits returns the number of hyperplanes.
func (h *NormalizedSignHash[F]) Bits() int { return h.inner.Bits() }

// Dimension returns the input dimension before lifting.
func (h *NormalizedSignHash[F]) Dimension() int { return h.dim }

// Hash lifts x and returns its sign code. It fails with ErrNormOutOfRange
// when ‖x‖ > 1 + LiftTolerance.
func (h *NormalizedSignHash[F]) Hash(x []F) (Code, error) {
	if err := checkDim(h.dim, len(x)); err != nil {
		return Code{}, err
	}
	lifted, err := Lift(x)
	if err != nil {
		return Code{}, err
	}
	return h.inner.Hash(lifted)
}

// Bucket returns Hash(x) mod n.
func (h *NormalizedSignHash[F]) Bucket(x []F, n int) (int, error) {
	c, err := h.Hash(x)
	if err != nil {
		return 0, err
	}
	return bucketOf(c, n)
}

// HashQuery hashes a query of any norm. Non-zero queries are scaled to unit
// norm first; the order of inner products with q does not depend on its scale.
func (h *NormalizedSignHash[F]) HashQuery(q []F) (Code, error) {
	if err := checkDim(h.dim, len(q)); err != nil {
		return Code{}, err
	}
	if n := distance.Norm(q); n > 0 {
		q = distance.Div(q, n)
	}
	return h.Hash(q)
}

// BucketQuery returns HashQuery(q) mod n.
func (h *NormalizedSignHash[F]) BucketQuery(q []F, n int) (int, error) {
	c, err := h.HashQuery(q)
	if err != nil {
		return 0, err
	}
	return bucketOf(c, n)
}
