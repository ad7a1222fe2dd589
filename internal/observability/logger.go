// Package observability provides the logging and metrics interfaces shared by
// every portal service. Services never log through a concrete library
// directly; they accept these interfaces so the daemon can wire slog (or
// anything else) in one place.
package observability

// Field is one structured log attribute.
type Field struct {
	Key   string
	Value any
}

// Logger is the structured logging contract the services depend on.
type Logger interface {
	Debug(msg string, fields ...Field)
	Info(msg string, fields ...Field)
	Warn(msg string, fields ...Field)
	Error(msg string, fields ...Field)

	// With returns a logger that carries the given fields on every
	// subsequent message, used to tag per-component loggers.
	With(fields ...Field) Logger
}

// noopLogger discards everything. It is the default wherever a Logger
// was not supplied, which keeps nil checks out of the services.
type noopLogger struct{}

// NoopLogger returns the discarding logger.
//
//nolint:ireturn // factory returns the interface for dependency injection
func NoopLogger() Logger {
	return &noopLogger{}
}

func (l *noopLogger) Debug(string, ...Field) {}
func (l *noopLogger) Info(string, ...Field)  {}
func (l *noopLogger) Warn(string, ...Field)  {}
func (l *noopLogger) Error(string, ...Field) {}

//nolint:ireturn // With has to return the interface to satisfy Logger
func (l *noopLogger) With(...Field) Logger { return l }
