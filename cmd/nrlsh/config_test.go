package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfigIsValid(t *testing.T) {
	cfg := DefaultConfig()
	assert.NoError(t, cfg.Validate())
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		errMsg string
	}{
		{"Replicas", func(c *Config) { c.Replicas = 0 }, "replicas must be positive"},
		{"Adj", func(c *Config) { c.Adj = -1 }, "adj must be positive"},
		{"Ratio", func(c *Config) { c.ThresholdRatio = 1.5 }, "threshold_ratio"},
		{"QPS", func(c *Config) { c.QPS = -1 }, "qps"},
		{"LogLevel", func(c *Config) { c.LogLevel = "loud" }, "log_level"},
		{"SyntheticN", func(c *Config) { c.N = 0 }, "n must be positive"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}

	t.Run("LoadedDataIgnoresN", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.Data = "base.fvecs"
		cfg.N = 0
		cfg.Dim = 0
		assert.NoError(t, cfg.Validate())
	})

	t.Run("Collects", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.Bits = 0
		cfg.K = 0
		err := cfg.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "bits")
		assert.Contains(t, err.Error(), "k must be positive")
	})
}

func TestLoadConfig(t *testing.T) {
	dir := t.TempDir()

	t.Run("OverridesDefaults", func(t *testing.T) {
		path := filepath.Join(dir, "bench.yaml")
		require.NoError(t, os.WriteFile(path, []byte(`
replicas: 2
partitions: 3
adj: 7
threshold_ratio: 0.5
log_level: debug
`), 0o600))

		cfg, err := LoadConfig(path)
		require.NoError(t, err)
		assert.Equal(t, 2, cfg.Replicas)
		assert.Equal(t, 3, cfg.Partitions)
		assert.Equal(t, 7, cfg.Adj)
		assert.Equal(t, 0.5, cfg.ThresholdRatio)
		assert.Equal(t, DefaultConfig().Bits, cfg.Bits)
	})

	t.Run("Missing", func(t *testing.T) {
		_, err := LoadConfig(filepath.Join(dir, "nope.yaml"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "reading config")
	})

	t.Run("Malformed", func(t *testing.T) {
		path := filepath.Join(dir, "bad.yaml")
		require.NoError(t, os.WriteFile(path, []byte("replicas: [1"), 0o600))
		_, err := LoadConfig(path)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "parsing config")
	})

	t.Run("Invalid", func(t *testing.T) {
		path := filepath.Join(dir, "invalid.yaml")
		require.NoError(t, os.WriteFile(path, []byte("bits: 0\n"), 0o600))
		_, err := LoadConfig(path)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "validating config")
	})
}
