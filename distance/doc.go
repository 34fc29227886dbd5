// Package distance provides the dense vector arithmetic used by the index.
//
// Every function is generic over the component type (float32 or float64).
// Plain []float32 and []float64 slices are dispatched to the SIMD kernels
// of github.com/viterin/vek; named float types fall back to portable loops.
//
// # Usage
//
//	ip := distance.Dot(a, b)
//	n := distance.Norm(a)
//	unit := distance.Div(a, n)
//	same := distance.ApproxEqual(a, b)
package distance
