package graphbuild

import (
	"context"
	"io"
	"log/slog"
	"os"
	"time"
)

// Logger wraps slog.Logger with graphbuild-specific context.
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
	handler := slog.NewTextHandler(io.Discard, &slog.HandlerOptions{
		Level: slog.Level(1000), // Unreachable level
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// WithBase adds the run's base name to the logger.
func (l *Logger) WithBase(base string) *Logger {
	return &Logger{
		Logger: l.Logger.With("base", base),
	}
}

// LogStage logs the completion of a pipeline stage.
func (l *Logger) LogStage(ctx context.Context, stage string, duration time.Duration, err error) {
	if err != nil {
		l.ErrorContext(ctx, "stage failed",
			"stage", stage,
			"duration", duration,
			"error", err,
		)
	} else {
		l.InfoContext(ctx, "stage completed",
			"stage", stage,
			"duration", duration,
		)
	}
}

// LogPass logs one resolution pass.
func (l *Logger) LogPass(ctx context.Context, pass int, resolved, edges int64) {
	l.DebugContext(ctx, "resolve pass completed",
		"pass", pass,
		"resolved", resolved,
		"edges", edges,
	)
}

// LogBucket logs one merged bucket.
func (l *Logger) LogBucket(ctx context.Context, bucket int, vertices, degreeSum int64) {
	l.DebugContext(ctx, "bucket merged",
		"bucket", bucket,
		"vertices", vertices,
		"degree_sum", degreeSum,
	)
}

// LogResult logs the final graph size.
func (l *Logger) LogResult(ctx context.Context, n uint64, m int64) {
	l.InfoContext(ctx, "adjacency list written",
		"n", n,
		"m", m,
	)
}
