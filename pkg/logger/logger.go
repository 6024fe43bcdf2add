// Package logger builds the process-wide slog loggers: JSON to stdout,
// optionally mirrored to Sentry, and a no-op logger for tests and
// unconfigured components.
package logger

import (
	"io"
	"log/slog"
	"os"
)

// Config holds logger configuration.
// Embed this in your app config for env parsing.
type Config struct {
	// Level is the minimum level emitted: debug, info, warn, or error.
	Level string `env:"LOG_LEVEL" envDefault:"info"`
}

// New creates a JSON-formatted logger writing to stdout.
func New(cfg Config) *slog.Logger {
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: parseLevel(cfg.Level),
	}))
}

// NewNope creates a no-op logger that discards all output.
// Use this as a default when logging is not configured.
func NewNope() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
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
