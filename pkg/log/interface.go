// Package log provides the structured logging interface used across wrangle.
//
// The interface is slog-compatible so components can be handed any backend. The
// default backend is zerolog (see ZerologProvider); the CLI additionally configures
// log/slog for top-level error reporting via SetupLogger.
//
// Example usage:
//
//	logger := log.GetLoggerWithName("Pipeline").With(log.RunIDKey, runID)
//	logger.Info("stage finished",
//	    log.StageKey, log.StagePrune,
//	    log.RowsInKey, 1000,
//	    log.RowsOutKey, 940,
//	)

package log

import (
	"context"
)

// Logger is a structured logger with key/value fields.
type Logger interface {
	// Debug logs detailed diagnostics, e.g. per-column outlier fences.
	Debug(msg string, fields ...any)

	// Info logs normal progress such as a finished stage.
	Info(msg string, fields ...any)

	// Warn logs a condition that does not stop the run.
	Warn(msg string, fields ...any)

	// Error logs a failure. If the first field is an error it is attached as the
	// error of the line:
	//
	//	logger.Error("fetch failed", err, log.SourceKey, "sql")
	Error(msg string, fields ...any)

	// With returns a logger that adds fields to every line.
	With(fields ...any) Logger

	// Enabled reports whether lines at level are emitted.
	Enabled(ctx context.Context, level Level) bool
}

// Level is a logging level with slog.Level values.
type Level int

const (
	LevelDebug Level = -4
	LevelInfo  Level = 0
	LevelWarn  Level = 4
	LevelError Level = 8
)

// String returns the level name.
func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// LoggerProvider creates loggers that share one backend.
type LoggerProvider interface {
	// GetLogger returns the provider's root logger.
	GetLogger() Logger

	// GetLoggerWithName returns a logger tagged with a component name.
	GetLoggerWithName(name string) Logger

	// SetLevel sets the minimum level for loggers created afterwards.
	SetLevel(level Level)
}
