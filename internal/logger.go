package internal

import (
	"io"
	"log/slog"
)

// NewLogger builds the process-wide slog logger. Development gets readable
// text output; anything else emits JSON for log shipping. Every record
// carries the service name and environment so the dashboard's lines can be
// told apart from the GraphQL backend's in a shared stream.
func NewLogger(w io.Writer, env string, level string) *slog.Logger {
	var logLevel slog.Level
	switch level {
	case "debug":
		logLevel = slog.LevelDebug
	case "info":
		logLevel = slog.LevelInfo
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{
		Level: logLevel,
	}

	var handler slog.Handler
	if env == "development" {
		handler = slog.NewTextHandler(w, opts)
	} else {
		handler = slog.NewJSONHandler(w, opts)
	}

	return slog.New(handler).With(
		"service", "distria-dashboard",
		"env", env,
	)
}
