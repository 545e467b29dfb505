package logging

import (
	"io"
	"log/slog"
)

// Logger is what bookify packages log through. *slog.Logger satisfies it.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// SlogAdapter is a Logger backed by slog.
type SlogAdapter struct {
	l *slog.Logger
}

// NewSlogAdapter wraps logger, or slog.Default() when logger is nil.
func NewSlogAdapter(logger *slog.Logger) *SlogAdapter {
	if logger == nil {
		logger = slog.Default()
	}
	return &SlogAdapter{l: logger}
}

func (a *SlogAdapter) Debug(msg string, args ...any) { a.l.Debug(msg, args...) }
func (a *SlogAdapter) Info(msg string, args ...any)  { a.l.Info(msg, args...) }
func (a *SlogAdapter) Warn(msg string, args ...any)  { a.l.Warn(msg, args...) }
func (a *SlogAdapter) Error(msg string, args ...any) { a.l.Error(msg, args...) }

// With returns an adapter that adds args to every record.
func (a *SlogAdapter) With(args ...any) *SlogAdapter {
	return &SlogAdapter{l: a.l.With(args...)}
}

// Slog returns the wrapped logger.
func (a *SlogAdapter) Slog() *slog.Logger {
	return a.l
}

// DefaultLogger wraps slog.Default().
func DefaultLogger() *SlogAdapter {
	return NewSlogAdapter(nil)
}

// Discard drops every record.
func Discard() *SlogAdapter {
	return NewSlogAdapter(slog.New(slog.NewTextHandler(io.Discard, nil)))
}
