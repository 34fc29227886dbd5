package nrlsh

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/arthurfeeney/nrlsh/stats"
)

// Logger wraps slog.Logger with index-specific helpers.
// This provides structured logging with consistent field names.
type Logger struct {
	*slog.Logger
}

// NewLogger creates a new Logger with the given handler.
// If handler is nil, uses default text handler to stderr.
func NewLogger(handler slog.Handler) *Logger {
	if handler == nil {
		handler = slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		})
	}
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NewJSONLogger creates a Logger that outputs JSON-formatted logs.
// level sets the minimum log level (e.g., slog.LevelDebug, slog.LevelInfo).
func NewJSONLogger(level slog.Level) *Logger {
	handler := slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NewTextLogger creates a Logger that outputs human-readable text logs.
func NewTextLogger(level slog.Level) *Logger {
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NoopLogger creates a Logger that discards all log output.
func NoopLogger() *Logger {
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.Level(1000), // Unreachable level
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// WithK adds a k (result count) field to the logger.
func (l *Logger) WithK(k int) *Logger {
	return &Logger{
		Logger: l.Logger.With("k", k),
	}
}

// WithDimension adds a dimension field to the logger.
func (l *Logger) WithDimension(dim int) *Logger {
	return &Logger{
		Logger: l.Logger.With("dimension", dim),
	}
}

// WithReplica adds a replica field to the logger.
func (l *Logger) WithReplica(replica int) *Logger {
	return &Logger{
		Logger: l.Logger.With("replica", replica),
	}
}

// LogFill logs a bulk fill.
func (l *Logger) LogFill(ctx context.Context, count, partitions, replicas int, duration time.Duration, err error) {
	if err != nil {
		l.ErrorContext(ctx, "fill failed",
			"count", count,
			"partitions", partitions,
			"replicas", replicas,
			"error", err,
		)
	} else {
		l.InfoContext(ctx, "fill completed",
			"count", count,
			"partitions", partitions,
			"replicas", replicas,
			"duration", duration,
		)
	}
}

// LogProbe logs a query.
func (l *Logger) LogProbe(ctx context.Context, op string, found bool, snap stats.Snapshot, err error) {
	if err != nil {
		l.ErrorContext(ctx, "probe failed",
			"op", op,
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "probe completed",
			"op", op,
			"found", found,
			"comparisons", snap.Comparisons,
			"buckets", snap.Buckets,
			"partitions", snap.Partitions,
			"tables", snap.Tables,
		)
	}
}
