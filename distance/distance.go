package distance

import (
	"math"
	"slices"
	"unsafe"

	"github.com/viterin/vek"
	"github.com/viterin/vek/vek32"
)

// Float is the set of supported vector component types.
type Float interface {
	~float32 | ~float64
}

// Dot calculates the dot product of two vectors.
// Assumes vectors are the same length (caller's responsibility).
func Dot[F Float](a, b []F) F {
	if len(a) == 0 {
		return 0
	}
	switch av := any(a).(type) {
	case []float32:
		return F(vek32.Dot(av, any(b).([]float32)))
	case []float64:
		return F(vek.Dot(av, any(b).([]float64)))
	}
	var sum F
	for i := range a {
		sum += a[i] * b[i]
	}
	return sum
}

// Norm returns the Euclidean (L2) norm of a.
func Norm[F Float](a []F) F {
	return F(math.Sqrt(float64(Dot(a, a))))
}

// Distance returns the Euclidean distance between a and b.
func Distance[F Float](a, b []F) F {
	if len(a) == 0 {
		return 0
	}
	switch av := any(a).(type) {
	case []float32:
		return F(vek32.Distance(av, any(b).([]float32)))
	case []float64:
		return F(vek.Distance(av, any(b).([]float64)))
	}
	var sum float64
	for i := range a {
		d := float64(a[i] - b[i])
		sum += d * d
	}
	return F(math.Sqrt(sum))
}

// Scale returns a copy of a multiplied elementwise by s.
func Scale[F Float](a []F, s F) []F {
	out := slices.Clone(a)
	if len(out) == 0 {
		return out
	}
	switch ov := any(out).(type) {
	case []float32:
		vek32.MulNumber_Inplace(ov, float32(s))
		return out
	case []float64:
		vek.MulNumber_Inplace(ov, float64(s))
		return out
	}
	for i := range out {
		out[i] *= s
	}
	return out
}

// Div returns a copy of a divided elementwise by s.
//
// Build-time normalization and membership checks both go through Div, so a
// vector rescaled twice by the same divisor is bit-identical.
func Div[F Float](a []F, s F) []F {
	out := make([]F, len(a))
	for i, v := range a {
		out[i] = v / s
	}
	return out
}

// ApproxEqual reports whether a and b are equal up to a relative tolerance:
// ‖a−b‖ ≤ tol·min(‖a‖, ‖b‖). Zero vectors only equal exact zeros.
// tol is 1e-5 for 32-bit components and 1e-12 for 64-bit components.
func ApproxEqual[F Float](a, b []F) bool {
	if len(a) != len(b) {
		return false
	}
	diff := float64(Distance(a, b))
	if diff == 0 {
		return true
	}
	na, nb := float64(Norm(a)), float64(Norm(b))
	return diff <= tolerance[F]()*math.Min(na, nb)
}

func tolerance[F Float]() float64 {
	var zero F
	if unsafe.Sizeof(zero) == 4 {
		return 1e-5
	}
	return 1e-12
}

// ToFloat64 widens a into dst (reallocated when too small) and returns it.
func ToFloat64[F Float](dst []float64, a []F) []float64 {
	if cap(dst) < len(a) {
		dst = make([]float64, len(a))
	}
	dst = dst[:len(a)]
	for i, v := range a {
		dst[i] = float64(v)
	}
	return dst
}
