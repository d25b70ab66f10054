package manifold

import (
	"context"
	"log/slog"
	"os"
)

// Logger wraps slog.Logger with manifold-specific context.
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

// WithMethod adds a method field to the logger.
func (l *Logger) WithMethod(m Method) *Logger {
	return &Logger{
		Logger: l.Logger.With("method", m.String()),
	}
}

// WithDimension adds a target-dimension field to the logger.
func (l *Logger) WithDimension(dim int) *Logger {
	return &Logger{
		Logger: l.Logger.With("dimension", dim),
	}
}

// WithSamples adds a sample-count field to the logger.
func (l *Logger) WithSamples(n int) *Logger {
	return &Logger{
		Logger: l.Logger.With("samples", n),
	}
}

// LogEmbed logs an embedding run.
func (l *Logger) LogEmbed(ctx context.Context, m Method, samples int, err error) {
	if err != nil {
		l.ErrorContext(ctx, "embedding failed",
			"method", m.String(),
			"samples", samples,
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "embedding completed",
			"method", m.String(),
			"samples", samples,
		)
	}
}

// LogProject logs an out-of-sample projection.
func (l *Logger) LogProject(ctx context.Context, samples, dimension int, err error) {
	if err != nil {
		l.ErrorContext(ctx, "projection failed",
			"samples", samples,
			"dimension", dimension,
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "projection completed",
			"samples", samples,
			"dimension", dimension,
		)
	}
}
