package pacqueue

import (
	"log/slog"
	"time"
)

type options struct {
	capacity     int
	maxInFlight  int
	tickInterval time.Duration
	maxRetries   int
	retryDelay   time.Duration
	timeouts     map[OpKind]time.Duration
	isTransient  func(error) bool
	logger       *slog.Logger
}

// Option configures a Queue.
type Option func(*options)

// WithCapacity bounds the number of pending operations. Must be positive.
func WithCapacity(n int) Option {
	return func(o *options) {
		if n <= 0 {
			panic("pacqueue: capacity must be positive")
		}
		o.capacity = n
	}
}

// WithMaxInFlight bounds concurrent operations per process. Must be positive.
func WithMaxInFlight(n int) Option {
	return func(o *options) {
		if n <= 0 {
			panic("pacqueue: max in-flight must be positive")
		}
		o.maxInFlight = n
	}
}

// WithTickInterval sets the dispatch loop tick.
func WithTickInterval(d time.Duration) Option {
	return func(o *options) {
		if d <= 0 {
			panic("pacqueue: tick interval must be positive")
		}
		o.tickInterval = d
	}
}

// WithMaxRetries sets how many times a transient failure is retried. An
// operation therefore executes at most maxRetries+1 times.
func WithMaxRetries(n int) Option {
	return func(o *options) {
		if n < 0 {
			panic("pacqueue: max retries cannot be negative")
		}
		o.maxRetries = n
	}
}

// WithRetryDelay sets the fixed delay before a retried operation becomes
// eligible for dispatch again.
func WithRetryDelay(d time.Duration) Option {
	return func(o *options) {
		if d < 0 {
			panic("pacqueue: retry delay cannot be negative")
		}
		o.retryDelay = d
	}
}

// WithTimeout overrides the deadline for one operation kind.
func WithTimeout(kind OpKind, d time.Duration) Option {
	return func(o *options) {
		if d <= 0 {
			panic("pacqueue: timeout must be positive")
		}
		o.timeouts[kind] = d
	}
}

// WithTransientClassifier replaces the error classifier deciding which
// failures are retried. The default recognizes provider and network-level
// transient errors.
func WithTransientClassifier(fn func(error) bool) Option {
	return func(o *options) {
		if fn == nil {
			panic("pacqueue: classifier is required")
		}
		o.isTransient = fn
	}
}

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}
