package logger

import (
	"context"
	"io"
	"log/slog"
	"os"
)

// New returns the process logger.
// Local and dev runs get human-readable text at debug level; everything else is JSON.
func New(appEnv string) *slog.Logger {
	return NewWithWriter(appEnv, os.Stdout)
}

// NewWithWriter is New with an explicit sink.
func NewWithWriter(appEnv string, w io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{Level: slog.LevelInfo}
	if appEnv == "local" || appEnv == "dev" {
		opts.Level = slog.LevelDebug
		return slog.New(slog.NewTextHandler(w, opts))
	}
	return slog.New(slog.NewJSONHandler(w, opts))
}

// Discard is a logger that drops everything. Handy in tests.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type ctxKey struct{}

// With stores a logger in context.
func With(ctx context.Context, l *slog.Logger) context.Context {
	return context.WithValue(ctx, ctxKey{}, l)
}

// From gets a logger from context, falling back to slog.Default().
func From(ctx context.Context) *slog.Logger {
	if v := ctx.Value(ctxKey{}); v != nil {
		if l, ok := v.(*slog.Logger); ok && l != nil {
			return l
		}
	}
	return slog.Default()
}
