package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// New returns a JSON logger to stdout tagged with the service name.
func New(service, level string) *slog.Logger {
	return newTo(os.Stdout, service, level)
}

func newTo(w io.Writer, service, level string) *slog.Logger {
	opts := &slog.HandlerOptions{Level: parseLevel(level)}
	return slog.New(slog.NewJSONHandler(w, opts)).With("service", service)
}

func parseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
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
