package log

// Logger receives session events. Pass NoopLogger to disable the trace.
type Logger interface {
	// Log records an event. Implementations must be thread-safe and must
	// not block for long; the session state machine calls Log inline.
	Log(event Event)
}

// NoopLogger discards all events.
// NoopLogger is safe for concurrent use and usable as a zero value.
type NoopLogger struct{}

// Log discards the event.
func (NoopLogger) Log(Event) {}

// Compile-time interface satisfaction check.
var _ Logger = NoopLogger{}
