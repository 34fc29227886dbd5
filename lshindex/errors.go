package lshindex

import "errors"

var (
	// ErrNoFamilies is returned when an index is built without hash families.
	ErrNoFamilies = errors.New("lshindex: at least one hash family is required")

	// ErrMixedDimensions is returned when the families disagree on dimension.
	ErrMixedDimensions = errors.New("lshindex: hash families have different dimensions")

	// ErrNotFilled is returned when an index is queried before Fill.
	ErrNotFilled = errors.New("lshindex: index is not filled")

	// ErrAlreadyFilled is returned by a second Fill.
	ErrAlreadyFilled = errors.New("lshindex: index is already filled")

	// ErrEmptyDataset is returned when Fill is given no vectors.
	ErrEmptyDataset = errors.New("lshindex: dataset is empty")

	// ErrInvalidK is returned when a k-probe asks for fewer than one item.
	ErrInvalidK = errors.New("lshindex: k must be at least 1")

	// ErrInvalidDepth is returned when a probe visits fewer than one bucket.
	ErrInvalidDepth = errors.New("lshindex: probe depth must be at least 1")
)
