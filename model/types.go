package model

import (
	"fmt"

	"github.com/arthurfeeney/nrlsh/distance"
	"github.com/arthurfeeney/nrlsh/stats"
)

// KV is a stored vector together with its dataset position.
type KV[F distance.Float] struct {
	Vector []F
	ID     int
}

// String returns a short representation of the KV.
func (kv KV[F]) String() string {
	return fmt.Sprintf("KV(%d:%v)", kv.ID, kv.Vector)
}

// Result is the outcome of a single-answer probe.
type Result[F distance.Float] struct {
	// Item is only meaningful when Found is true.
	Item  KV[F]
	Found bool
	// Stats is the work performed by the probe.
	Stats stats.Snapshot
}

// ListResult is the outcome of a multi-answer probe.
type ListResult[F distance.Float] struct {
	Items []KV[F]
	Stats stats.Snapshot
}

// Found reports whether at least one item was returned.
func (r ListResult[F]) Found() bool { return len(r.Items) > 0 }

// IDs returns the ids of the returned items in order.
func (r ListResult[F]) IDs() []int {
	ids := make([]int, len(r.Items))
	for i, kv := range r.Items {
		ids[i] = kv.ID
	}
	return ids
}
