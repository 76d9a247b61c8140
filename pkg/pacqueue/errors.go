package pacqueue

import "errors"

var (
	// ErrQueueFull is returned by Enqueue when the queue is at capacity.
	// It is a backpressure signal, not a business denial.
	ErrQueueFull = errors.New("outbound queue is full")

	// ErrQueueClosed is returned by Enqueue after Stop, and delivered to
	// promises whose operations were still pending at shutdown.
	ErrQueueClosed = errors.New("outbound queue is closed")

	// ErrNilOperation is returned when Enqueue is called without an operation.
	ErrNilOperation = errors.New("operation is required")

	// ErrOpTimeout wraps the per-kind deadline expiry. It classifies as
	// transient: a timed-out provider call may succeed on retry.
	ErrOpTimeout = errors.New("operation timed out")
)
