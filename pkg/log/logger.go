// Package log provides structured logging utilities for scavd.
// It wraps the standard library's slog package with additional convenience methods.
package log

import (
	"log/slog"
	"os"
	"strings"
)

// Logger wraps slog.Logger with additional context and convenience methods
type Logger struct {
	*slog.Logger
	service string
	version string
}

// New creates a new logger with the specified configuration
func New(service, version, level, format string) *Logger {
	var handler slog.Handler

	var logLevel slog.Level
	switch strings.ToLower(level) {
	case "debug":
		logLevel = slog.LevelDebug
	case "info":
		logLevel = slog.LevelInfo
	case "warn", "warning":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{
		Level:     logLevel,
		AddSource: logLevel == slog.LevelDebug,
	}

	switch strings.ToLower(format) {
	case "text":
		handler = slog.NewTextHandler(os.Stdout, opts)
	default:
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}

	baseLogger := slog.New(handler).With(
		"service", service,
		"version", version,
	)

	return &Logger{
		Logger:  baseLogger,
		service: service,
		version: version,
	}
}

// WithFields returns a logger with additional fields
func (l *Logger) WithFields(fields ...any) *Logger {
	return &Logger{
		Logger:  l.With(fields...),
		service: l.service,
		version: l.version,
	}
}

// WithComponent returns a logger with a component field
func (l *Logger) WithComponent(component string) *Logger {
	return l.WithFields("component", component)
}

// WithWorker returns a logger with worker-specific fields
func (l *Logger) WithWorker(id int) *Logger {
	return l.WithFields("worker_id", id)
}

// WithChallenge returns a logger with challenge-specific fields
func (l *Logger) WithChallenge(challengeID string) *Logger {
	return l.WithFields("challenge_id", challengeID)
}

// WithError returns a logger with error context
func (l *Logger) WithError(err error) *Logger {
	if err == nil {
		return l
	}
	return l.WithFields("error", err.Error())
}

// Mining-specific logging helpers

// LogSolutionFound logs a nonce that met the challenge difficulty
func (l *Logger) LogSolutionFound(challengeID, nonce, hash string) {
	l.Info("solution found",
		"challenge_id", challengeID,
		"nonce", nonce,
		"hash", hash,
	)
}

// LogSubmissionAttempt logs one attempt against the solution endpoint
func (l *Logger) LogSubmissionAttempt(challengeID, nonce string, attempt, status int, body string) {
	l.Info("submission attempt",
		"challenge_id", challengeID,
		"nonce", nonce,
		"attempt", attempt,
		"status", status,
		"body", body,
	)
}

// LogHashrate logs periodic throughput for the current challenge
func (l *Logger) LogHashrate(challengeID string, hashes, solutions uint64, hashesPerSec float64) {
	l.Info("hashrate report",
		"challenge_id", challengeID,
		"hashes", hashes,
		"solutions", solutions,
		"hashes_per_sec", hashesPerSec,
	)
}

// LogChallengeStart logs the beginning of a challenge run
func (l *Logger) LogChallengeStart(challengeID, difficulty, expires string, index, total int) {
	l.Info("challenge starting",
		"challenge_id", challengeID,
		"difficulty", difficulty,
		"expires", expires,
		"index", index,
		"total", total,
	)
}
