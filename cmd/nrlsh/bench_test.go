package main

import (
	"bytes"
	"context"
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arthurfeeney/nrlsh"
)

func smallConfig() Config {
	cfg := DefaultConfig()
	cfg.Replicas = 2
	cfg.Partitions = 4
	cfg.Bits = 4
	cfg.Buckets = 16
	cfg.N = 300
	cfg.Dim = 8
	cfg.Queries = 10
	cfg.K = 5
	cfg.Seed = 3
	return cfg
}

func TestRunBenchFullDepth(t *testing.T) {
	cfg := smallConfig()
	cfg.Adj = cfg.Buckets

	report, err := runBench(context.Background(), cfg, &bytes.Buffer{})
	require.NoError(t, err)

	assert.Equal(t, 300, report.Vectors)
	assert.Equal(t, 8, report.Dimension)
	require.Len(t, report.Ops, 3)

	ops := map[string]OpReport{}
	for _, op := range report.Ops {
		ops[op.Op] = op
	}

	probe := ops[nrlsh.OpProbe]
	assert.Equal(t, 1.0, probe.Quality)
	// The first replica scans every vector and answers.
	assert.Equal(t, 300.0, probe.MeanCompared)
	assert.Equal(t, float64(cfg.Partitions*cfg.Buckets), probe.MeanBuckets)

	assert.Equal(t, 1.0, ops[nrlsh.OpProbeApprox].Quality)
	assert.LessOrEqual(t, ops[nrlsh.OpProbeApprox].MeanCompared, 300.0)

	assert.InDelta(t, 1.0, ops[nrlsh.OpKProbe].Quality, 0.05)
	assert.Equal(t, 600.0, ops[nrlsh.OpKProbe].MeanCompared)
}

func TestRunBenchShallowDoesLessWork(t *testing.T) {
	cfg := smallConfig()
	cfg.Adj = 1
	cfg.Concurrency = 2

	report, err := runBench(context.Background(), cfg, &bytes.Buffer{})
	require.NoError(t, err)
	for _, op := range report.Ops {
		assert.LessOrEqual(t, op.MeanBuckets, float64(cfg.Replicas*cfg.Partitions), op.Op)
		assert.GreaterOrEqual(t, op.Quality, 0.0)
		assert.LessOrEqual(t, op.Quality, 1.0)
	}
}

func TestRunBenchRateLimited(t *testing.T) {
	cfg := smallConfig()
	cfg.Queries = 3
	cfg.QPS = 1000

	report, err := runBench(context.Background(), cfg, &bytes.Buffer{})
	require.NoError(t, err)
	assert.Equal(t, 3, report.Queries)
}

func TestRunBenchCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := runBench(ctx, smallConfig(), &bytes.Buffer{})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRunBenchLogs(t *testing.T) {
	cfg := smallConfig()
	cfg.LogLevel = "info"

	var logs bytes.Buffer
	_, err := runBench(context.Background(), cfg, &logs)
	require.NoError(t, err)
	assert.Contains(t, logs.String(), "fill completed")
	assert.Contains(t, logs.String(), "benchmark completed")
}

func TestBenchCommand(t *testing.T) {
	t.Run("JSON", func(t *testing.T) {
		var out bytes.Buffer
		cmd := newRootCmd()
		cmd.SetOut(&out)
		cmd.SetErr(&bytes.Buffer{})
		cmd.SetArgs([]string{"bench", "--json", "--n", "200", "--dim", "6", "--queries", "4",
			"--replicas", "2", "--partitions", "2", "--bits", "3", "--buckets", "8", "--adj", "8", "--k", "3"})
		require.NoError(t, cmd.Execute())

		var report Report
		require.NoError(t, json.Unmarshal(out.Bytes(), &report))
		assert.Equal(t, 200, report.Vectors)
		assert.Equal(t, 8, report.Adj)
		assert.Len(t, report.Ops, 3)
	})

	t.Run("Table", func(t *testing.T) {
		var out bytes.Buffer
		cmd := newRootCmd()
		cmd.SetOut(&out)
		cmd.SetErr(&bytes.Buffer{})
		cmd.SetArgs([]string{"bench", "--n", "100", "--dim", "4", "--queries", "2", "--bits", "3", "--buckets", "8"})
		require.NoError(t, cmd.Execute())
		assert.Contains(t, out.String(), "OP")
		assert.Contains(t, out.String(), nrlsh.OpKProbe)
	})

	t.Run("FlagsOverrideConfig", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "bench.yaml")
		require.NoError(t, writeFile(path, "n: 120\ndim: 5\nqueries: 2\nbits: 3\nbuckets: 8\nadj: 2\n"))

		var out bytes.Buffer
		cmd := newRootCmd()
		cmd.SetOut(&out)
		cmd.SetErr(&bytes.Buffer{})
		cmd.SetArgs([]string{"bench", "--config", path, "--adj", "5", "--json"})
		require.NoError(t, cmd.Execute())

		var report Report
		require.NoError(t, json.Unmarshal(out.Bytes(), &report))
		assert.Equal(t, 120, report.Vectors)
		assert.Equal(t, 5, report.Dimension)
		assert.Equal(t, 5, report.Adj)
	})

	t.Run("InvalidFlags", func(t *testing.T) {
		cmd := newRootCmd()
		cmd.SetOut(&bytes.Buffer{})
		cmd.SetErr(&bytes.Buffer{})
		cmd.SetArgs([]string{"bench", "--adj", "0"})
		err := cmd.Execute()
		require.Error(t, err)
		assert.True(t, strings.Contains(err.Error(), "adj"))
	})
}
