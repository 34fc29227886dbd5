package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"text/tabwriter"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/arthurfeeney/nrlsh"
	"github.com/arthurfeeney/nrlsh/dataset"
	"github.com/arthurfeeney/nrlsh/metrics/prom"
	"github.com/arthurfeeney/nrlsh/stats"
	"github.com/arthurfeeney/nrlsh/testutil"
)

// OpReport summarises one probe operation over the query set.
type OpReport struct {
	Op string `json:"op"`
	// Quality is the hit rate for single-answer probes and the mean recall
	// against exact top-k for KProbe.
	Quality        float64 `json:"quality"`
	MeanCompared   float64 `json:"mean_comparisons"`
	MeanBuckets    float64 `json:"mean_buckets"`
	MeanPartitions float64 `json:"mean_partitions"`
	MeanLatency    string  `json:"mean_latency"`
}

// Report is the outcome of a benchmark run.
type Report struct {
	Vectors      int        `json:"vectors"`
	Dimension    int        `json:"dimension"`
	Queries      int        `json:"queries"`
	Replicas     int        `json:"replicas"`
	Partitions   int        `json:"partitions"`
	Bits         int        `json:"bits"`
	Buckets      int        `json:"buckets"`
	Adj          int        `json:"adj"`
	K            int        `json:"k"`
	FillDuration string     `json:"fill_duration"`
	Ops          []OpReport `json:"ops"`
}

func newBenchCmd() *cobra.Command {
	var (
		configPath string
		asJSON     bool
		fc         = DefaultConfig()
	)

	cmd := &cobra.Command{
		Use:   "bench",
		Short: "Build an index and measure probe quality against exact search",
		Long: `Build an index over a dataset and run Probe, ProbeApprox and KProbe for
every query, comparing each against exhaustive search.

Flags override values read from --config.

Examples:
  nrlsh bench                                  # synthetic data
  nrlsh bench --data base.fvecs.zst --adj 8
  nrlsh bench --data s3://bucket/sift/base.fvecs.gz --n 0
  nrlsh bench --metrics-addr :9090 --qps 200`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := DefaultConfig()
			if configPath != "" {
				var err error
				if cfg, err = LoadConfig(configPath); err != nil {
					return err
				}
			}
			applyChangedFlags(cmd, &cfg, &fc)
			if err := cfg.Validate(); err != nil {
				return err
			}

			report, err := runBench(cmd.Context(), cfg, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			if asJSON {
				return writeJSON(cmd.OutOrStdout(), report)
			}
			return writeTable(cmd.OutOrStdout(), report)
		},
	}

	f := cmd.Flags()
	f.StringVar(&configPath, "config", "", "YAML config file")
	f.BoolVar(&asJSON, "json", false, "Print the report as JSON")
	f.IntVar(&fc.Replicas, "replicas", fc.Replicas, "Independent replicas")
	f.IntVar(&fc.Partitions, "partitions", fc.Partitions, "Norm-ranged partitions per replica")
	f.IntVar(&fc.Bits, "bits", fc.Bits, "Hash bits per partition")
	f.IntVar(&fc.Buckets, "buckets", fc.Buckets, "Buckets per partition table")
	f.BoolVar(&fc.Normalized, "store-normalized", fc.Normalized, "Keep normalized vectors in the tables")
	f.IntVar(&fc.Concurrency, "concurrency", fc.Concurrency, "Worker limit for fill and queries (0 = GOMAXPROCS)")
	f.IntVar(&fc.RankingCache, "ranking-cache", fc.RankingCache, "Bucket ranking cache entries per replica")
	f.StringVar(&fc.Data, "data", fc.Data, "Dataset location (.fvecs[.zst|.gz|.lz4], s3:// or minio://)")
	f.StringVar(&fc.QueryData, "query-data", fc.QueryData, "Query set location")
	f.IntVar(&fc.N, "n", fc.N, "Synthetic vectors, or a cap on loaded vectors (0 = all)")
	f.IntVar(&fc.Dim, "dim", fc.Dim, "Synthetic dimension")
	f.IntVar(&fc.Queries, "queries", fc.Queries, "Synthetic queries, or a cap on loaded queries")
	f.Uint64Var(&fc.Seed, "seed", fc.Seed, "Seed for data and hash draws")
	f.IntVar(&fc.Adj, "adj", fc.Adj, "Probe depth in buckets per partition")
	f.IntVar(&fc.K, "k", fc.K, "Result size for KProbe")
	f.Float64Var(&fc.ThresholdRatio, "threshold-ratio", fc.ThresholdRatio, "ProbeApprox threshold as a fraction of the exact best inner product")
	f.Float64Var(&fc.QPS, "qps", fc.QPS, "Query rate limit (0 = unlimited)")
	f.StringVar(&fc.MetricsAddr, "metrics-addr", fc.MetricsAddr, "Serve Prometheus metrics on this address")
	f.StringVar(&fc.LogLevel, "log-level", fc.LogLevel, "debug, info, warn or error")
	return cmd
}

// applyChangedFlags copies the flags the user set from fc into cfg.
func applyChangedFlags(cmd *cobra.Command, cfg, fc *Config) {
	overrides := map[string]func(){
		"replicas":         func() { cfg.Replicas = fc.Replicas },
		"partitions":       func() { cfg.Partitions = fc.Partitions },
		"bits":             func() { cfg.Bits = fc.Bits },
		"buckets":          func() { cfg.Buckets = fc.Buckets },
		"store-normalized": func() { cfg.Normalized = fc.Normalized },
		"concurrency":      func() { cfg.Concurrency = fc.Concurrency },
		"ranking-cache":    func() { cfg.RankingCache = fc.RankingCache },
		"data":             func() { cfg.Data = fc.Data },
		"query-data":       func() { cfg.QueryData = fc.QueryData },
		"n":                func() { cfg.N = fc.N },
		"dim":              func() { cfg.Dim = fc.Dim },
		"queries":          func() { cfg.Queries = fc.Queries },
		"seed":             func() { cfg.Seed = fc.Seed },
		"adj":              func() { cfg.Adj = fc.Adj },
		"k":                func() { cfg.K = fc.K },
		"threshold-ratio":  func() { cfg.ThresholdRatio = fc.ThresholdRatio },
		"qps":              func() { cfg.QPS = fc.QPS },
		"metrics-addr":     func() { cfg.MetricsAddr = fc.MetricsAddr },
		"log-level":        func() { cfg.LogLevel = fc.LogLevel },
	}
	for name, apply := range overrides {
		if cmd.Flags().Changed(name) {
			apply()
		}
	}
}

func loadVectors(ctx context.Context, uri string, limit int) ([][]float32, error) {
	loc, err := parseLocation(uri)
	if err != nil {
		return nil, err
	}
	store, err := loc.open(ctx)
	if err != nil {
		return nil, err
	}
	return dataset.Load(ctx, store, loc.name, limit)
}

// queryOutcome is the per-query measurement for one operation.
type queryOutcome struct {
	quality float64
	stats   stats.Snapshot
	elapsed time.Duration
}

// runBench builds the index described by cfg and measures every query.
// Logs go to logw.
func runBench(ctx context.Context, cfg Config, logw io.Writer) (*Report, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	level, err := cfg.Level()
	if err != nil {
		return nil, err
	}
	logger := nrlsh.NewLogger(slog.NewTextHandler(logw, &slog.HandlerOptions{Level: level}))

	rng := testutil.NewRNG(int64(cfg.Seed))
	var data [][]float32
	if cfg.Data != "" {
		if data, err = loadVectors(ctx, cfg.Data, cfg.N); err != nil {
			return nil, fmt.Errorf("loading data: %w", err)
		}
	} else {
		data = rng.ScaledVectors(cfg.N, cfg.Dim, 0.1, 10)
	}
	if len(data) == 0 {
		return nil, errors.New("dataset is empty")
	}
	dim := len(data[0])

	var queries [][]float32
	if cfg.QueryData != "" {
		if queries, err = loadVectors(ctx, cfg.QueryData, cfg.Queries); err != nil {
			return nil, fmt.Errorf("loading queries: %w", err)
		}
	} else {
		queries = rng.UnitVectors(cfg.Queries, dim)
	}
	if len(queries) == 0 {
		return nil, errors.New("query set is empty")
	}

	var collector nrlsh.MetricsCollector = &nrlsh.BasicMetricsCollector{}
	if cfg.MetricsAddr != "" {
		reg := prometheus.NewRegistry()
		collector = prom.NewCollector(reg, "nrlsh")
		srv := &http.Server{
			Addr:              cfg.MetricsAddr,
			Handler:           promhttp.HandlerFor(reg, promhttp.HandlerOpts{}),
			ReadHeaderTimeout: 5 * time.Second,
		}
		go func() {
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("metrics server failed", "addr", cfg.MetricsAddr, "error", err)
			}
		}()
		defer srv.Close()
	}

	idx, err := nrlsh.New[float32](cfg.Replicas, cfg.Partitions, cfg.Bits, dim, cfg.Buckets,
		nrlsh.WithSeed(cfg.Seed),
		nrlsh.WithConcurrency(cfg.Concurrency),
		nrlsh.WithRankingCache(cfg.RankingCache),
		nrlsh.WithLogger(logger),
		nrlsh.WithMetricsCollector(collector),
	)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	if err := idx.Fill(ctx, data, cfg.Normalized); err != nil {
		return nil, err
	}
	fillDuration := time.Since(start)

	var limiter *rate.Limiter
	if cfg.QPS > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.QPS), 1)
	}

	ops := []string{nrlsh.OpProbe, nrlsh.OpProbeApprox, nrlsh.OpKProbe}
	outcomes := make([][]queryOutcome, len(queries))

	g, gctx := errgroup.WithContext(ctx)
	if cfg.Concurrency > 0 {
		g.SetLimit(cfg.Concurrency)
	}
	for i, q := range queries {
		if limiter != nil {
			if err := limiter.Wait(gctx); err != nil {
				break
			}
		}
		g.Go(func() error {
			out, err := measure(idx, data, q, cfg)
			if err != nil {
				return fmt.Errorf("query %d: %w", i, err)
			}
			outcomes[i] = out
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	report := &Report{
		Vectors:      len(data),
		Dimension:    dim,
		Queries:      len(queries),
		Replicas:     cfg.Replicas,
		Partitions:   cfg.Partitions,
		Bits:         cfg.Bits,
		Buckets:      cfg.Buckets,
		Adj:          cfg.Adj,
		K:            cfg.K,
		FillDuration: fillDuration.Round(time.Microsecond).String(),
	}
	for o, op := range ops {
		report.Ops = append(report.Ops, summarise(op, o, outcomes))
	}
	logger.Info("benchmark completed", "queries", len(queries), "fill_duration", fillDuration)
	return report, nil
}

// measure runs every benchmarked operation for q, in the order runBench
// reports them.
func measure(idx *nrlsh.Index[float32], data [][]float32, q []float32, cfg Config) ([]queryOutcome, error) {
	best, err := idx.FindMaxInner(q)
	if err != nil {
		return nil, err
	}
	bestDot := float32(testutil.ExactMIPS(data, q, 1)[0].Score)

	out := make([]queryOutcome, 0, 3)

	start := time.Now()
	res, err := idx.Probe(q, cfg.Adj)
	if err != nil {
		return nil, err
	}
	out = append(out, queryOutcome{
		quality: boolScore(res.Found && res.Item.ID == best.ID),
		stats:   res.Stats,
		elapsed: time.Since(start),
	})

	start = time.Now()
	res, err = idx.ProbeApprox(q, float32(cfg.ThresholdRatio)*bestDot, cfg.Adj)
	if err != nil {
		return nil, err
	}
	out = append(out, queryOutcome{
		quality: boolScore(res.Found),
		stats:   res.Stats,
		elapsed: time.Since(start),
	})

	start = time.Now()
	list, err := idx.KProbe(cfg.K, q, cfg.Adj)
	if err != nil {
		return nil, err
	}
	out = append(out, queryOutcome{
		quality: testutil.ComputeRecall(testutil.IDs(testutil.ExactMIPS(data, q, cfg.K)), list.IDs()),
		stats:   list.Stats,
		elapsed: time.Since(start),
	})
	return out, nil
}

func boolScore(ok bool) float64 {
	if ok {
		return 1
	}
	return 0
}

func summarise(op string, o int, outcomes [][]queryOutcome) OpReport {
	var (
		quality float64
		total   stats.Snapshot
		elapsed time.Duration
	)
	for _, q := range outcomes {
		quality += q[o].quality
		total = total.Plus(q[o].stats)
		elapsed += q[o].elapsed
	}
	n := float64(len(outcomes))
	return OpReport{
		Op:             op,
		Quality:        quality / n,
		MeanCompared:   float64(total.Comparisons) / n,
		MeanBuckets:    float64(total.Buckets) / n,
		MeanPartitions: float64(total.Partitions) / n,
		MeanLatency:    (elapsed / time.Duration(len(outcomes))).Round(time.Nanosecond).String(),
	}
}

func writeJSON(w io.Writer, report *Report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(report)
}

func writeTable(w io.Writer, report *Report) error {
	fmt.Fprintf(w, "%d vectors, dim %d, %d queries; L=%d m=%d K=%d buckets=%d adj=%d k=%d; fill %s\n\n",
		report.Vectors, report.Dimension, report.Queries,
		report.Replicas, report.Partitions, report.Bits, report.Buckets,
		report.Adj, report.K, report.FillDuration)

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "OP\tQUALITY\tCOMPARISONS\tBUCKETS\tPARTITIONS\tLATENCY")
	for _, op := range report.Ops {
		fmt.Fprintf(tw, "%s\t%.3f\t%.1f\t%.1f\t%.1f\t%s\n",
			op.Op, op.Quality, op.MeanCompared, op.MeanBuckets, op.MeanPartitions, op.MeanLatency)
	}
	return tw.Flush()
}
