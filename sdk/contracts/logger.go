package contracts

import "time"

// LogLevel represents the severity level for logging.
type LogLevel int

const (
	// InfoLevel indicates informational messages that highlight the progress of the application.
	InfoLevel LogLevel = iota
	// DebugLevel indicates debug messages that are useful for developers to troubleshoot issues.
	DebugLevel
	// WarnLevel indicates potentially harmful situations that should be monitored.
	WarnLevel
	// ErrorLevel indicates error messages that represent serious issues that need attention.
	ErrorLevel
	// FatalLevel indicates very severe error events that will presumably lead the application to abort.
	FatalLevel
)

// Field represents a structured logging field with a typed value.
type Field interface {
	Bool(key string, val bool) Field
	Int(key string, val int) Field
	String(key string, val string) Field
	Error(key string, val error) Field
	Duration(key string, val time.Duration) Field
	Any(key string, val interface{}) Field
}

// Logger provides leveled, structured logging for every component of the
// bridge. A single implementation is shared across MidiInput, ObsClient,
// ObsEventPump, Initializer, and the Supervisor.
type Logger interface {
	Info(msg string, fields ...Field)
	Error(msg string, fields ...Field)
	Debug(msg string, fields ...Field)
	Warn(msg string, fields ...Field)

	Field() Field

	SetLevel(level LogLevel)

	// With returns a derived Logger that always includes the given fields,
	// used to scope a logger to a component (e.g. "component": "obsclient").
	With(fields ...Field) Logger

	// Sync flushes any buffered log entries. Safe to call on teardown even
	// if nothing was buffered.
	Sync() error
}
