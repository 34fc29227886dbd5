package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"gopkg.in/yaml.v3"
)

// Config describes one benchmark run.
type Config struct {
	Replicas     int  `yaml:"replicas"`
	Partitions   int  `yaml:"partitions"`
	Bits         int  `yaml:"bits"`
	Buckets      int  `yaml:"buckets"`
	Normalized   bool `yaml:"store_normalized"`
	Concurrency  int  `yaml:"concurrency,omitempty"`
	RankingCache int  `yaml:"ranking_cache,omitempty"`

	// Data and QueryData name .fvecs objects (local path, s3:// or
	// minio:// URI). Empty means synthetic vectors.
	Data      string `yaml:"data,omitempty"`
	QueryData string `yaml:"query_data,omitempty"`
	N         int    `yaml:"n"`
	Dim       int    `yaml:"dim"`
	Queries   int    `yaml:"queries"`
	Seed      uint64 `yaml:"seed"`

	Adj int `yaml:"adj"`
	K   int `yaml:"k"`
	// ThresholdRatio scales each query's exact best inner product into the
	// ProbeApprox threshold.
	ThresholdRatio float64 `yaml:"threshold_ratio"`
	// QPS limits the query rate; 0 means unlimited.
	QPS float64 `yaml:"qps,omitempty"`

	MetricsAddr string `yaml:"metrics_addr,omitempty"`
	LogLevel    string `yaml:"log_level,omitempty"`
}

// DefaultConfig returns the settings used when neither a config file nor
// flags override them.
func DefaultConfig() Config {
	return Config{
		Replicas:       4,
		Partitions:     8,
		Bits:           16,
		Buckets:        256,
		N:              10000,
		Dim:            32,
		Queries:        100,
		Seed:           1,
		Adj:            4,
		K:              10,
		ThresholdRatio: 0.9,
		LogLevel:       "warn",
	}
}

// Validate checks the configuration for values the index would reject.
func (c *Config) Validate() error {
	var errs []error
	positive := func(name string, v int) {
		if v <= 0 {
			errs = append(errs, fmt.Errorf("%s must be positive, got %d", name, v))
		}
	}
	positive("replicas", c.Replicas)
	positive("partitions", c.Partitions)
	positive("bits", c.Bits)
	positive("buckets", c.Buckets)
	positive("adj", c.Adj)
	positive("k", c.K)
	if c.Data == "" {
		positive("n", c.N)
		positive("dim", c.Dim)
	}
	if c.QueryData == "" {
		positive("queries", c.Queries)
	}
	if c.ThresholdRatio < 0 || c.ThresholdRatio > 1 {
		errs = append(errs, fmt.Errorf("threshold_ratio must be in [0, 1], got %g", c.ThresholdRatio))
	}
	if c.QPS < 0 {
		errs = append(errs, fmt.Errorf("qps must be non-negative, got %g", c.QPS))
	}
	if _, err := c.Level(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// Level parses LogLevel.
func (c *Config) Level() (slog.Level, error) {
	var l slog.Level
	if c.LogLevel == "" {
		return slog.LevelWarn, nil
	}
	if err := l.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return 0, fmt.Errorf("log_level: %w", err)
	}
	return l, nil
}

// LoadConfig reads a YAML file on top of DefaultConfig.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("reading config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("validating config: %w", err)
	}
	return cfg, nil
}
