// Package logging provides structured logging for the pipeline. It wraps
// log/slog with the job-oriented fields the worker and pipeline API attach
// on every record: job_id, kind, attempt, error_class.
package logging

import (
	"context"
	"log/slog"
	"os"

	"github.com/furnicam/furnicam/internal/config"
)

// Logger wraps slog.Logger. Unlike a process-wide default logger, a Logger
// value is constructed once in main and passed explicitly to worker.New and
// pipeline.New — no package-level singleton.
type Logger struct {
	logger *slog.Logger
}

// New builds a Logger from the logging section of the configuration.
func New(cfg config.LoggingConfig) *Logger {
	level := parseLevel(cfg.Level)

	opts := &slog.HandlerOptions{
		Level:     level,
		AddSource: cfg.Level == "debug",
	}

	var handler slog.Handler
	if cfg.Format == "text" {
		handler = slog.NewTextHandler(os.Stdout, opts)
	} else {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}

	return &Logger{logger: slog.New(handler)}
}

// With returns a derived Logger carrying the given attributes on every
// subsequent record, e.g. logger.With("job_id", id, "kind", kind).
func (l *Logger) With(args ...any) *Logger {
	return &Logger{logger: l.logger.With(args...)}
}

// WithJob returns a Logger annotated with the standard job fields.
func (l *Logger) WithJob(jobID string, kind string, attempt int) *Logger {
	return l.With("job_id", jobID, "kind", kind, "attempt", attempt)
}

// WithError returns a Logger annotated with a classified error's class.
func (l *Logger) WithError(errorClass string) *Logger {
	return l.With("error_class", errorClass)
}

func (l *Logger) Debug(msg string, args ...any) { l.logger.Debug(msg, args...) }
func (l *Logger) Info(msg string, args ...any)  { l.logger.Info(msg, args...) }
func (l *Logger) Warn(msg string, args ...any)  { l.logger.Warn(msg, args...) }
func (l *Logger) Error(msg string, args ...any) { l.logger.Error(msg, args...) }

func (l *Logger) DebugContext(ctx context.Context, msg string, args ...any) {
	l.logger.DebugContext(ctx, msg, args...)
}
func (l *Logger) InfoContext(ctx context.Context, msg string, args ...any) {
	l.logger.InfoContext(ctx, msg, args...)
}
func (l *Logger) WarnContext(ctx context.Context, msg string, args ...any) {
	l.logger.WarnContext(ctx, msg, args...)
}
func (l *Logger) ErrorContext(ctx context.Context, msg string, args ...any) {
	l.logger.ErrorContext(ctx, msg, args...)
}

func parseLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
