// Package logger configures structured JSON logging for the kendin backend.
package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

var log *slog.Logger
var logLevel slog.Level

func init() {
	logLevel = ParseLevel(os.Getenv("LOG_LEVEL"))
	log = newLogger(os.Stdout)

	// Anything that logs through slog directly gets the same JSON output
	slog.SetDefault(log)
}

// ParseLevel maps debug/info/warn/error (case-insensitive) to a slog level.
// Unknown or empty values fall back to info.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func newLogger(w io.Writer) *slog.Logger {
	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level: logLevel,
	})).With("service", "kendin-backend")
}

// Info logs an informational message with structured fields
func Info(msg string, args ...any) {
	log.Info(msg, args...)
}

// Warn logs a warning message with structured fields
func Warn(msg string, args ...any) {
	log.Warn(msg, args...)
}

// Error logs an error message with structured fields
func Error(msg string, args ...any) {
	log.Error(msg, args...)
}

// Fatal logs an error message and exits with status 1
func Fatal(msg string, args ...any) {
	log.Error(msg, args...)
	os.Exit(1)
}

// SetOutputForTest redirects log output to w and returns a function that
// restores the previous logger. Tests only.
func SetOutputForTest(w io.Writer) func() {
	original := log
	log = newLogger(w)
	slog.SetDefault(log)
	return func() {
		log = original
		slog.SetDefault(log)
	}
}
