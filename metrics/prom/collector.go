package prom

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/arthurfeeney/nrlsh"
	"github.com/arthurfeeney/nrlsh/stats"
)

// Collector implements nrlsh.MetricsCollector with Prometheus metrics.
type Collector struct {
	fills       *prometheus.CounterVec
	fillVectors prometheus.Counter
	fillLatency prometheus.Histogram

	probes       *prometheus.CounterVec
	probeLatency *prometheus.HistogramVec
	comparisons  *prometheus.HistogramVec
	buckets      *prometheus.HistogramVec
	tables       *prometheus.HistogramVec
}

var _ nrlsh.MetricsCollector = (*Collector)(nil)

// NewCollector creates the metrics under namespace and registers them with
// reg. A nil reg uses prometheus.DefaultRegisterer. It panics if the
// metrics are already registered, like prometheus.MustRegister.
func NewCollector(reg prometheus.Registerer, namespace string) *Collector {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	work := prometheus.ExponentialBuckets(1, 4, 10)
	c := &Collector{
		fills: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "fills_total",
			Help:      "Index fills by status.",
		}, []string{"status"}),
		fillVectors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "fill_vectors_total",
			Help:      "Vectors indexed by successful fills.",
		}),
		fillLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "fill_duration_seconds",
			Help:      "Latency of index fills.",
			Buckets:   prometheus.ExponentialBuckets(0.001, 4, 10),
		}),
		probes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "probes_total",
			Help:      "Queries by operation and outcome (hit, miss, error).",
		}, []string{"op", "outcome"}),
		probeLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "probe_duration_seconds",
			Help:      "Latency of queries.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"op"}),
		comparisons: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "probe_comparisons",
			Help:      "Inner products or distances computed per query.",
			Buckets:   work,
		}, []string{"op"}),
		buckets: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "probe_buckets",
			Help:      "Buckets visited per query.",
			Buckets:   work,
		}, []string{"op"}),
		tables: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "probe_tables",
			Help:      "Replicas visited per query.",
			Buckets:   prometheus.LinearBuckets(1, 1, 8),
		}, []string{"op"}),
	}

	reg.MustRegister(
		c.fills,
		c.fillVectors,
		c.fillLatency,
		c.probes,
		c.probeLatency,
		c.comparisons,
		c.buckets,
		c.tables,
	)
	return c
}

// RecordFill implements nrlsh.MetricsCollector.
func (c *Collector) RecordFill(n int, duration time.Duration, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	c.fills.WithLabelValues(status).Inc()
	c.fillLatency.Observe(duration.Seconds())
	if err == nil {
		c.fillVectors.Add(float64(n))
	}
}

// RecordProbe implements nrlsh.MetricsCollector.
func (c *Collector) RecordProbe(op string, found bool, snap stats.Snapshot, duration time.Duration, err error) {
	c.probeLatency.WithLabelValues(op).Observe(duration.Seconds())

	switch {
	case err != nil:
		c.probes.WithLabelValues(op, "error").Inc()
		return
	case found:
		c.probes.WithLabelValues(op, "hit").Inc()
	default:
		c.probes.WithLabelValues(op, "miss").Inc()
	}

	c.comparisons.WithLabelValues(op).Observe(float64(snap.Comparisons))
	c.buckets.WithLabelValues(op).Observe(float64(snap.Buckets))
	c.tables.WithLabelValues(op).Observe(float64(snap.Tables))
}
