package lsh

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidBits is returned when a family is built with bits ≤ 0.
	ErrInvalidBits = errors.New("lsh: bits must be positive")

	// ErrInvalidDimension is returned when a family is built with dim ≤ 0.
	ErrInvalidDimension = errors.New("lsh: dimension must be positive")

	// ErrInvalidWidth is returned when a p-stable family is built with r ≤ 0.
	ErrInvalidWidth = errors.New("lsh: bucket width must be positive")

	// ErrInvalidBuckets is returned when a bucket count is ≤ 0.
	ErrInvalidBuckets = errors.New("lsh: number of buckets must be positive")

	// ErrInvalidCount is returned when a vector count is ≤ 0.
	ErrInvalidCount = errors.New("lsh: vector count must be positive")

	// ErrInvalidProbability is returned when sizing probabilities are out of range.
	ErrInvalidProbability = errors.New("lsh: probabilities must satisfy 0 < p2 < p1 < 1")

	// ErrDimensionMismatch is returned when a vector has the wrong length.
	ErrDimensionMismatch = errors.New("lsh: dimension mismatch")

	// ErrNormOutOfRange is returned when a vector with ‖x‖ > 1 is lifted.
	ErrNormOutOfRange = errors.New("lsh: norm exceeds unit bound")

	// ErrNonFinite is returned when a projection is NaN or infinite.
	ErrNonFinite = errors.New("lsh: non-finite projection")
)

// DimensionMismatchError carries the expected and actual vector lengths.
type DimensionMismatchError struct {
	Expected int
	Actual   int
}

func (e *DimensionMismatchError) Error() string {
	return fmt.Sprintf("lsh: dimension mismatch: expected %d, got %d", e.Expected, e.Actual)
}

func (e *DimensionMismatchError) Unwrap() error { return ErrDimensionMismatch }

// NormError carries the norm of a vector that could not be lifted.
type NormError struct {
	Norm float64
}

func (e *NormError) Error() string {
	return fmt.Sprintf("lsh: cannot lift vector with norm %g > 1", e.Norm)
}

func (e *NormError) Unwrap() error { return ErrNormOutOfRange }

func checkDim(want, got int) error {
	if want != got {
		return &DimensionMismatchError{Expected: want, Actual: got}
	}
	return nil
}
