// Package logger provides the structured logging facade used by the
// channel, registry, and drivers packages. It is adapted from
// github.com/ezex-io/gopkg/logger: a small interface over log/slog so the
// core concurrency packages never import slog directly.
package logger

// Logger is the structured logging facade the core packages depend on.
type Logger interface {
	// Debug logs fine-grained lifecycle events: termination-state
	// transitions, sentinel drains, channel creation.
	Debug(msg string, args ...any)

	// Info logs coarse lifecycle events: network start/stop.
	Info(msg string, args ...any)

	// Warn logs recoverable anomalies: a drain that found nothing to
	// flush, a publisher granted fewer sequences than requested.
	Warn(msg string, args ...any)

	// Error logs conditions that abort the network: a user callback
	// panic or error surfaced through UserCallbackException.
	Error(msg string, args ...any)

	// With returns a derived Logger with additional context fields
	// attached, e.g. "channel", "routine".
	With(args ...any) Logger
}
