package nrlsh

import (
	"sync/atomic"
	"time"

	"github.com/arthurfeeney/nrlsh/stats"
)

// Probe operation names passed to MetricsCollector.RecordProbe.
const (
	OpProbe        = "probe"
	OpProbeApprox  = "probe_approx"
	OpKProbeApprox = "k_probe_approx"
	OpKProbe       = "k_probe"
	OpFindMaxInner = "find_max_inner"
	OpContains     = "contains"
)

// MetricsCollector defines an interface for collecting operational metrics.
// Implement this interface to integrate with monitoring systems; the
// metrics/prom package provides a Prometheus implementation.
type MetricsCollector interface {
	// RecordFill is called after each bulk fill.
	// n is the number of vectors, err is nil if successful.
	RecordFill(n int, duration time.Duration, err error)

	// RecordProbe is called after each query. op is one of the Op constants,
	// found reports whether anything was returned and snap is the work done.
	RecordProbe(op string, found bool, snap stats.Snapshot, duration time.Duration, err error)
}

// NoopMetricsCollector is a no-op implementation of MetricsCollector.
// Use this when metrics collection is not needed.
type NoopMetricsCollector struct{}

func (NoopMetricsCollector) RecordFill(int, time.Duration, error) {}
func (NoopMetricsCollector) RecordProbe(string, bool, stats.Snapshot, time.Duration, error) {
}

// BasicMetricsCollector provides simple in-memory metrics collection.
// Useful for debugging and basic monitoring without external dependencies.
type BasicMetricsCollector struct {
	FillCount        atomic.Int64
	FillErrors       atomic.Int64
	FillVectors      atomic.Int64
	FillTotalNanos   atomic.Int64
	ProbeCount       atomic.Int64
	ProbeErrors      atomic.Int64
	ProbeMisses      atomic.Int64
	ProbeTotalNanos  atomic.Int64
	Comparisons      atomic.Int64
	BucketsProbed    atomic.Int64
	PartitionsProbed atomic.Int64
	TablesProbed     atomic.Int64
}

// RecordFill implements MetricsCollector.
func (b *BasicMetricsCollector) RecordFill(n int, duration time.Duration, err error) {
	b.FillCount.Add(1)
	b.FillTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.FillErrors.Add(1)
		return
	}
	b.FillVectors.Add(int64(n))
}

// RecordProbe implements MetricsCollector.
func (b *BasicMetricsCollector) RecordProbe(_ string, found bool, snap stats.Snapshot, duration time.Duration, err error) {
	b.ProbeCount.Add(1)
	b.ProbeTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.ProbeErrors.Add(1)
		return
	}
	if !found {
		b.ProbeMisses.Add(1)
	}
	b.Comparisons.Add(int64(snap.Comparisons))
	b.BucketsProbed.Add(int64(snap.Buckets))
	b.PartitionsProbed.Add(int64(snap.Partitions))
	b.TablesProbed.Add(int64(snap.Tables))
}

// GetStats returns a snapshot of current metrics.
func (b *BasicMetricsCollector) GetStats() BasicMetricsStats {
	probes := b.ProbeCount.Load()
	return BasicMetricsStats{
		FillCount:           b.FillCount.Load(),
		FillErrors:          b.FillErrors.Load(),
		FillVectors:         b.FillVectors.Load(),
		ProbeCount:          probes,
		ProbeErrors:         b.ProbeErrors.Load(),
		ProbeMisses:         b.ProbeMisses.Load(),
		ProbeAvgNanos:       perProbe(b.ProbeTotalNanos.Load(), probes),
		ComparisonsPerProbe: perProbe(b.Comparisons.Load(), probes),
		BucketsPerProbe:     perProbe(b.BucketsProbed.Load(), probes),
	}
}

func perProbe(total, count int64) int64 {
	if count == 0 {
		return 0
	}
	return total / count
}

// BasicMetricsStats is a snapshot of BasicMetricsCollector state.
type BasicMetricsStats struct {
	FillCount           int64
	FillErrors          int64
	FillVectors         int64
	ProbeCount          int64
	ProbeErrors         int64
	ProbeMisses         int64
	ProbeAvgNanos       int64
	ComparisonsPerProbe int64
	BucketsPerProbe     int64
}
