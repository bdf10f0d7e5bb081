// Package obslog is the opaque structured-logging sink the evaluation
// engine writes to. It is grounded on original_source/sentrykit/utils/
// logging.py's JsonFormatter (one JSON line per record, level-filtered by
// an env var) but built on the standard library log/slog rather than a
// third-party logging library — see DESIGN.md for why no pack dependency
// fit this concern.
package obslog

import (
	"log/slog"
	"os"
	"sync"
)

var (
	once   sync.Once
	logger *slog.Logger
)

// get lazily builds the process-wide JSON logger, reading LOG_LEVEL the
// same way the teacher's CLI reads PAGER/env-configured behavior.
func get() *slog.Logger {
	once.Do(func() {
		level := parseLevel(os.Getenv("LOG_LEVEL"))
		handler := slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level})
		logger = slog.New(handler)
	})
	return logger
}

func parseLevel(name string) slog.Level {
	switch name {
	case "DEBUG", "debug":
		return slog.LevelDebug
	case "WARN", "warn", "WARNING", "warning":
		return slog.LevelWarn
	case "ERROR", "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Warn logs a structured warning, e.g. a failed fetch attempt.
func Warn(msg string, args ...any) {
	get().Warn(msg, args...)
}

// Debug logs a structured debug record, e.g. a per-URL claim verification
// failure that did not itself become a finding.
func Debug(msg string, args ...any) {
	get().Debug(msg, args...)
}

// Error logs a structured error record, e.g. a checker panic caught by the
// orchestrator before it is converted into an internal_error finding.
func Error(msg string, args ...any) {
	get().Error(msg, args...)
}
