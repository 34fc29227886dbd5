package nrlsh

import (
	"errors"

	"github.com/arthurfeeney/nrlsh/internal/builder"
	"github.com/arthurfeeney/nrlsh/internal/table"
	"github.com/arthurfeeney/nrlsh/internal/tableset"
	"github.com/arthurfeeney/nrlsh/lsh"
)

// Construction errors.
var (
	// ErrInvalidReplicas is returned when the replica count is not positive.
	ErrInvalidReplicas = errors.New("nrlsh: number of replicas must be positive")

	ErrInvalidPartitions  = builder.ErrInvalidPartitions
	ErrInvalidBits        = lsh.ErrInvalidBits
	ErrInvalidDimension   = lsh.ErrInvalidDimension
	ErrInvalidBuckets     = lsh.ErrInvalidBuckets
	ErrInvalidProbability = lsh.ErrInvalidProbability
	ErrInvalidCount       = lsh.ErrInvalidCount
	ErrTooFewVectors      = builder.ErrTooFewVectors
)

// Precondition errors.
var (
	// ErrNotFilled is returned when an index is queried before Fill.
	ErrNotFilled = errors.New("nrlsh: index is not filled")

	ErrAlreadyFilled     = table.ErrAlreadyFilled
	ErrInvalidK          = tableset.ErrInvalidK
	ErrInvalidDepth      = tableset.ErrInvalidDepth
	ErrDimensionMismatch = lsh.ErrDimensionMismatch
	ErrNormOutOfRange    = lsh.ErrNormOutOfRange
	ErrEmptyTable        = table.ErrEmptyTable
)

// DimensionMismatchError carries the expected and actual vector lengths.
// It matches ErrDimensionMismatch.
type DimensionMismatchError = lsh.DimensionMismatchError

// NormError carries the norm of a vector that could not be lifted.
// It matches ErrNormOutOfRange.
type NormError = lsh.NormError

// TooFewVectorsError carries the dataset size and the partition count.
// It matches ErrTooFewVectors.
type TooFewVectorsError = builder.TooFewVectorsError

func checkDim(want, got int) error {
	if want != got {
		return &DimensionMismatchError{Expected: want, Actual: got}
	}
	return nil
}
