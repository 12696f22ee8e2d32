package observability

import (
	"io"
	"log/slog"
	"os"
)

// NewLogger writes JSON to stdout. Every line carries the service name; dev
// logs at debug level.
func NewLogger(env, service string) *slog.Logger {
	return newLogger(os.Stdout, env).With("service", service)
}

func newLogger(w io.Writer, env string) *slog.Logger {
	opts := &slog.HandlerOptions{Level: slog.LevelInfo}

	if env == "dev" {
		opts.Level = slog.LevelDebug
	}

	return slog.New(NewTraceHandler(slog.NewJSONHandler(w, opts)))
}
