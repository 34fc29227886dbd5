package table

import (
	"context"
	"fmt"
	"math"
	"slices"
	"strings"

	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// diagnosticsChunk is the number of buckets sized per goroutine.
const diagnosticsChunk = 4096

// Summary describes a set of bucket sizes.
type Summary struct {
	Mean     float64 `json:"mean"`
	Variance float64 `json:"variance"`
	StdDev   float64 `json:"stddev"`
	Median   float64 `json:"median"`
}

// Diagnostics describes how a table's vectors spread over its buckets.
type Diagnostics struct {
	Buckets   int     `json:"buckets"`
	Vectors   int     `json:"vectors"`
	Empty     int     `json:"empty"`
	NonEmpty  int     `json:"non_empty"`
	Max       int     `json:"max"`
	MaxBucket int     `json:"max_bucket"`
	Min       int     `json:"min"`
	All       Summary `json:"all"`
	Occupied  Summary `json:"occupied"`
}

// String renders the diagnostics as an indented block.
func (d Diagnostics) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "buckets:     %d\n", d.Buckets)
	fmt.Fprintf(&sb, "\tmean:       %g\n", d.All.Mean)
	fmt.Fprintf(&sb, "\tmax:        %d\n", d.Max)
	fmt.Fprintf(&sb, "\tmax bucket: %d\n", d.MaxBucket)
	fmt.Fprintf(&sb, "\tmin:        %d\n", d.Min)
	fmt.Fprintf(&sb, "\tvar:        %g\n", d.All.Variance)
	fmt.Fprintf(&sb, "\tstdev:      %g\n", d.All.StdDev)
	fmt.Fprintf(&sb, "\tmedian:     %g\n", d.All.Median)
	fmt.Fprintf(&sb, "\tempty:      %d\n", d.Empty)
	fmt.Fprintf(&sb, "\tnon-empty:  %d\n", d.NonEmpty)
	sb.WriteString("non-empty buckets\n")
	fmt.Fprintf(&sb, "\tmean:       %g\n", d.Occupied.Mean)
	fmt.Fprintf(&sb, "\tvar:        %g\n", d.Occupied.Variance)
	fmt.Fprintf(&sb, "\tstdev:      %g\n", d.Occupied.StdDev)
	fmt.Fprintf(&sb, "\tmedian:     %g\n", d.Occupied.Median)
	return sb.String()
}

// Diagnostics computes bucket-size statistics. Sizes are gathered in
// parallel chunks.
func (t *Table[F]) Diagnostics(ctx context.Context) (Diagnostics, error) {
	sizes := make([]float64, t.numBuckets)

	g, ctx := errgroup.WithContext(ctx)
	for start := 0; start < t.numBuckets; start += diagnosticsChunk {
		end := min(start+diagnosticsChunk, t.numBuckets)
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			for b := start; b < end; b++ {
				sizes[b] = float64(len(t.buckets[b]))
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Diagnostics{}, err
	}

	d := Diagnostics{
		Buckets:   t.numBuckets,
		Vectors:   t.size,
		MaxBucket: floats.MaxIdx(sizes),
		Max:       int(floats.Max(sizes)),
		Min:       int(floats.Min(sizes)),
		All:       summarize(sizes),
	}

	occupied := make([]float64, 0, len(sizes))
	for _, s := range sizes {
		if s > 0 {
			occupied = append(occupied, s)
		}
	}
	d.NonEmpty = len(occupied)
	d.Empty = d.Buckets - d.NonEmpty
	d.Occupied = summarize(occupied)
	return d, nil
}

func summarize(x []float64) Summary {
	if len(x) == 0 {
		return Summary{}
	}
	mean, variance := stat.PopMeanVariance(x, nil)
	return Summary{
		Mean:     mean,
		Variance: variance,
		StdDev:   math.Sqrt(variance),
		Median:   median(x),
	}
}

// median averages the two middle values when len(x) is even.
func median(x []float64) float64 {
	sorted := slices.Clone(x)
	slices.Sort(sorted)
	n := len(sorted)
	if n%2 == 1 {
		return sorted[n/2]
	}
	return (sorted[n/2-1] + sorted[n/2]) / 2
}
