package clustgo

import (
	"context"
	"log/slog"
	"os"
)

// Logger wraps slog.Logger with clustgo-specific context.
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
// Use this to disable logging entirely.
func NoopLogger() *Logger {
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.Level(1000), // Unreachable level
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// WithK adds a k (cluster count) field to the logger.
func (l *Logger) WithK(k int) *Logger {
	return &Logger{
		Logger: l.Logger.With("k", k),
	}
}

// WithRows adds a rows field to the logger.
func (l *Logger) WithRows(rows int) *Logger {
	return &Logger{
		Logger: l.Logger.With("rows", rows),
	}
}

// WithSeed adds a seed field to the logger.
func (l *Logger) WithSeed(seed int64) *Logger {
	return &Logger{
		Logger: l.Logger.With("seed", seed),
	}
}

// WithTrials adds a trials field to the logger.
func (l *Logger) WithTrials(trials int) *Logger {
	return &Logger{
		Logger: l.Logger.With("trials", trials),
	}
}

// LogEncode logs a record encoding operation.
func (l *Logger) LogEncode(ctx context.Context, rows, columns int, err error) {
	if err != nil {
		l.ErrorContext(ctx, "encode failed",
			"rows", rows,
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "encode completed",
			"rows", rows,
			"columns", columns,
		)
	}
}

// LogDistance logs a dissimilarity matrix computation.
func (l *Logger) LogDistance(ctx context.Context, rows int, err error) {
	if err != nil {
		l.ErrorContext(ctx, "distance computation failed",
			"rows", rows,
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "distance computation completed",
			"rows", rows,
		)
	}
}

// LogScan logs a cluster count scan.
func (l *Logger) LogScan(ctx context.Context, kMin, kMax, bestK, skipped int, err error) {
	if err != nil {
		l.ErrorContext(ctx, "scan failed",
			"k_min", kMin,
			"k_max", kMax,
			"error", err,
		)
	} else {
		l.InfoContext(ctx, "scan completed",
			"k_min", kMin,
			"k_max", kMax,
			"best_k", bestK,
			"skipped", skipped,
		)
	}
}

// LogValidate logs a bootstrap validation run.
func (l *Logger) LogValidate(ctx context.Context, trials, skipped int, err error) {
	if err != nil {
		l.ErrorContext(ctx, "validation failed",
			"trials", trials,
			"error", err,
		)
	} else {
		l.InfoContext(ctx, "validation completed",
			"trials", trials,
			"skipped", skipped,
		)
	}
}

// LogProfile logs a cluster profiling operation.
func (l *Logger) LogProfile(ctx context.Context, clusters int, err error) {
	if err != nil {
		l.ErrorContext(ctx, "profiling failed",
			"clusters", clusters,
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "profiling completed",
			"clusters", clusters,
		)
	}
}

// LogRun logs a full pipeline run.
func (l *Logger) LogRun(ctx context.Context, rows, k int, err error) {
	if err != nil {
		l.ErrorContext(ctx, "run failed",
			"rows", rows,
			"error", err,
		)
	} else {
		l.InfoContext(ctx, "run completed",
			"rows", rows,
			"k", k,
		)
	}
}
