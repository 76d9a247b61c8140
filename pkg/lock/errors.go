package lock

import "errors"

var (
	// ErrNotAcquired is returned when the lock is currently held by another
	// owner. Transient: the caller may retry after a short delay.
	ErrNotAcquired = errors.New("lock: not acquired")

	// ErrNotHeld is returned by Release when the stored token no longer
	// matches the handle, meaning the lock expired and may have been taken
	// over by a new holder.
	ErrNotHeld = errors.New("lock: not held by this handle")

	// ErrInvalidTTL is returned when a non-positive TTL is requested.
	ErrInvalidTTL = errors.New("lock: ttl must be positive")

	// ErrMemoryLockerMultiProcess is returned when the in-process fallback
	// locker is constructed in a deployment declared as multi-process.
	// The fallback cannot enforce mutual exclusion across processes, so
	// starting it there would silently break folio uniqueness.
	ErrMemoryLockerMultiProcess = errors.New("lock: in-process locker is unsafe with multiple worker processes")
)
