package table

import "errors"

var (
	// ErrEmptyTable is returned by MIPS when no bucket holds a vector.
	ErrEmptyTable = errors.New("table: all buckets are empty")

	// ErrAlreadyFilled is returned when Fill is called twice.
	ErrAlreadyFilled = errors.New("table: already filled")

	// ErrInvalidLayout is returned when Fill inputs disagree in length or
	// name a bucket out of range.
	ErrInvalidLayout = errors.New("table: invalid fill layout")
)
