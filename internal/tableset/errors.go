package tableset

import "errors"

var (
	// ErrInvalidK is returned when a k-probe asks for fewer than one item.
	ErrInvalidK = errors.New("tableset: k must be at least 1")

	// ErrInvalidDepth is returned when a probe depth is less than one bucket.
	ErrInvalidDepth = errors.New("tableset: probe depth must be at least 1")
)
