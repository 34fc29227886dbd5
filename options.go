package nrlsh

import (
	"log/slog"
)

type options struct {
	metricsCollector MetricsCollector
	logger           *Logger
	seed             uint64
	seeded           bool
	concurrency      int
	rankingCache     int
}

// Option configures an Index.
type Option func(*options)

// WithMetricsCollector configures a metrics collector for monitoring operations.
// Pass nil to disable metrics collection.
//
// Example with BasicMetricsCollector:
//
//	metrics := &nrlsh.BasicMetricsCollector{}
//	idx, _ := nrlsh.New[float32](4, 8, 16, 128, 1024, nrlsh.WithMetricsCollector(metrics))
//	// ... fill and probe ...
//	stats := metrics.GetStats()
//	fmt.Printf("Probes: %d, Avg comparisons: %d\n", stats.ProbeCount, stats.ComparisonsPerProbe)
func WithMetricsCollector(mc MetricsCollector) Option {
	return func(o *options) {
		o.metricsCollector = mc
	}
}

// WithLogger configures structured logging for operations.
// Pass nil to disable logging.
//
// Example with JSON logging:
//
//	logger := nrlsh.NewJSONLogger(slog.LevelInfo)
//	idx, _ := nrlsh.New[float32](4, 8, 16, 128, 1024, nrlsh.WithLogger(logger))
func WithLogger(logger *Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithLogLevel creates a text logger with the specified level and sets it.
// Convenience wrapper for WithLogger(NewTextLogger(level)).
func WithLogLevel(level slog.Level) Option {
	return func(o *options) {
		o.logger = NewTextLogger(level)
	}
}

// WithSeed makes hash draws reproducible. Replica i draws from stream i of
// the seed, so replicas stay independent.
func WithSeed(seed uint64) Option {
	return func(o *options) {
		o.seed = seed
		o.seeded = true
	}
}

// WithConcurrency bounds the goroutines used per fill stage (replicas, and
// partitions within a replica). n ≤ 0 means no bound.
func WithConcurrency(n int) Option {
	return func(o *options) {
		o.concurrency = n
	}
}

// WithRankingCache keeps the bucket rankings of up to size query buckets
// per replica. Rankings depend only on the query bucket and the probe depth,
// so repeated probes from nearby queries skip the ranking step.
// size ≤ 0 disables the cache.
func WithRankingCache(size int) Option {
	return func(o *options) {
		o.rankingCache = size
	}
}

func applyOptions(optFns []Option) options {
	o := options{
		metricsCollector: NoopMetricsCollector{},
		logger:           NoopLogger(),
	}
	for _, fn := range optFns {
		if fn != nil {
			fn(&o)
		}
	}
	if o.metricsCollector == nil {
		o.metricsCollector = NoopMetricsCollector{}
	}
	if o.logger == nil {
		o.logger = NoopLogger()
	}
	return o
}
