package builder

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"slices"

	"golang.org/x/sync/errgroup"

	"github.com/arthurfeeney/nrlsh/distance"
	"github.com/arthurfeeney/nrlsh/lsh"
)

var (
	// ErrInvalidPartitions is returned when the partition count is ≤ 0.
	ErrInvalidPartitions = errors.New("builder: number of partitions must be positive")

	// ErrTooFewVectors is returned when the dataset is smaller than the
	// partition count.
	ErrTooFewVectors = errors.New("builder: fewer vectors than partitions")
)

// TooFewVectorsError carries the dataset size and the partition count.
type TooFewVectorsError struct {
	Have int
	Want int
}

func (e *TooFewVectorsError) Error() string {
	return fmt.Sprintf("builder: %d vectors cannot fill %d partitions", e.Have, e.Want)
}

func (e *TooFewVectorsError) Unwrap() error { return ErrTooFewVectors }

// Layout is the result of Build. All slices are indexed by partition; within
// a partition, entry i of Partitions, Normalized and Buckets describe the
// same vector.
type Layout[F distance.Float] struct {
	Partitions  [][]int // dataset ids, ascending norm
	Normalized  [][][]F // member vectors divided by the partition normalizer
	Normalizers []F     // U_p, the largest member norm (1 if that is 0)
	Buckets     [][]int // bucket index of each normalized vector
}

// RankByNorm returns the dataset indices ordered by ascending Euclidean
// norm. Equal norms keep dataset order.
func RankByNorm[F distance.Float](data [][]F) []int {
	norms := make([]F, len(data))
	for i, x := range data {
		norms[i] = distance.Norm(x)
	}

	ranking := make([]int, len(data))
	for i := range ranking {
		ranking[i] = i
	}
	slices.SortStableFunc(ranking, func(a, b int) int {
		return cmp.Compare(norms[a], norms[b])
	})
	return ranking
}

// Partition cuts ranking into m runs of len(ranking)/m ids; the last run
// also takes the remainder.
func Partition(ranking []int, m int) ([][]int, error) {
	if m <= 0 {
		return nil, ErrInvalidPartitions
	}
	if len(ranking) < m {
		return nil, &TooFewVectorsError{Have: len(ranking), Want: m}
	}

	size := len(ranking) / m
	parts := make([][]int, m)
	for p := 0; p < m; p++ {
		end := (p + 1) * size
		if p == m-1 {
			end = len(ranking)
		}
		parts[p] = slices.Clone(ranking[p*size : end])
	}
	return parts, nil
}

// Normalize divides each partition's vectors by that partition's largest
// norm and returns the scaled vectors with the normalizers.
func Normalize[F distance.Float](data [][]F, parts [][]int) (normalized [][][]F, normalizers []F) {
	normalized = make([][][]F, len(parts))
	normalizers = make([]F, len(parts))
	for p, ids := range parts {
		normalized[p], normalizers[p] = normalizePartition(data, ids)
	}
	return normalized, normalizers
}

func normalizePartition[F distance.Float](data [][]F, ids []int) ([][]F, F) {
	var up F
	for _, id := range ids {
		up = max(up, distance.Norm(data[id]))
	}
	if up == 0 {
		up = 1
	}

	out := make([][]F, len(ids))
	for i, id := range ids {
		out[i] = distance.Div(data[id], up)
	}
	return out, up
}

// Build ranks, partitions, normalizes and hashes data for m partitions of
// numBuckets buckets each. Partitions are normalized and hashed in parallel,
// at most concurrency at a time (no limit when concurrency ≤ 0).
func Build[F distance.Float](ctx context.Context, data [][]F, m, numBuckets int, fam lsh.Family[F], concurrency int) (*Layout[F], error) {
	if numBuckets <= 0 {
		return nil, lsh.ErrInvalidBuckets
	}
	parts, err := Partition(RankByNorm(data), m)
	if err != nil {
		return nil, err
	}

	layout := &Layout[F]{
		Partitions:  parts,
		Normalized:  make([][][]F, m),
		Normalizers: make([]F, m),
		Buckets:     make([][]int, m),
	}

	g, ctx := errgroup.WithContext(ctx)
	if concurrency > 0 {
		g.SetLimit(concurrency)
	}

	for p := range parts {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}

			normalized, up := normalizePartition(data, parts[p])
			buckets := make([]int, len(normalized))
			for i, x := range normalized {
				b, err := fam.Bucket(x, numBuckets)
				if err != nil {
					return fmt.Errorf("builder: partition %d, vector %d: %w", p, parts[p][i], err)
				}
				buckets[i] = b
			}

			// Each goroutine writes only its own partition slot.
			layout.Normalized[p] = normalized
			layout.Normalizers[p] = up
			layout.Buckets[p] = buckets
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return layout, nil
}
