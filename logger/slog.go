package logger

import (
	"io"
	"log/slog"
	"os"
)

// Slog is the default Logger implementation, backed by log/slog.
type Slog struct {
	log *slog.Logger
}

// Handler builds the underlying *slog.Logger for a Slog instance.
type Handler func() *slog.Logger

// DefaultSlog is a ready-to-use text logger writing to stdout at info level.
var DefaultSlog = NewSlog(nil)

// NewSlog creates a Slog logger from a Handler, defaulting to a text handler
// on stdout at info level when handler is nil.
func NewSlog(handler Handler) *Slog {
	if handler == nil {
		handler = WithTextHandler(os.Stdout, slog.LevelInfo)
	}

	return &Slog{log: handler()}
}

// WithJSONHandler returns a Handler producing JSON output at the given level.
func WithJSONHandler(w io.Writer, level slog.Level) Handler {
	return func() *slog.Logger {
		if w == nil {
			w = os.Stdout
		}

		return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level}))
	}
}

// WithTextHandler returns a Handler producing text output at the given level.
func WithTextHandler(w io.Writer, level slog.Level) Handler {
	return func() *slog.Logger {
		if w == nil {
			w = os.Stdout
		}

		return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
	}
}

func (s *Slog) Debug(msg string, args ...any) { s.log.Debug(msg, args...) }
func (s *Slog) Info(msg string, args ...any)  { s.log.Info(msg, args...) }
func (s *Slog) Warn(msg string, args ...any)  { s.log.Warn(msg, args...) }
func (s *Slog) Error(msg string, args ...any) { s.log.Error(msg, args...) }

func (s *Slog) With(args ...any) Logger {
	return &Slog{log: s.log.With(args...)}
}
