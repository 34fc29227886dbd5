package blobstore

import (
	"context"
	"io"
	"os"
)

// ErrNotFound is returned when an object does not exist.
//
// Implementations return an error that satisfies errors.Is(err, ErrNotFound).
var ErrNotFound = os.ErrNotExist

// Store is a flat namespace of immutable objects.
// Implementations must be safe for concurrent use.
type Store interface {
	// Open opens an object for sequential reading.
	Open(ctx context.Context, name string) (io.ReadCloser, error)

	// Create starts writing an object. The object replaces any previous
	// object of the same name when the writer is closed.
	Create(ctx context.Context, name string) (io.WriteCloser, error)
}
