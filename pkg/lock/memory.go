package lock

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// MemoryLocker is the in-process fallback used when no shared Redis endpoint
// is configured. It mirrors the Redis semantics, TTL expiry included, but only
// within a single process. Construction fails in multi-process deployments.
type MemoryLocker struct {
	mu    sync.Mutex
	locks map[string]memoryEntry
}

type memoryEntry struct {
	token     string
	expiresAt time.Time
}

var _ Locker = (*MemoryLocker)(nil)

// MemoryLockerOption configures the in-process locker.
type MemoryLockerOption func(*memoryLockerOptions)

type memoryLockerOptions struct {
	multiProcess bool
	logger       *slog.Logger
}

// WithMultiProcessDeployment declares that the deployment runs more than one
// worker process. The in-process locker refuses to start in that mode.
func WithMultiProcessDeployment(multi bool) MemoryLockerOption {
	return func(o *memoryLockerOptions) {
		o.multiProcess = multi
	}
}

// WithMemoryLockerLogger sets the logger for the fallback warning.
func WithMemoryLockerLogger(logger *slog.Logger) MemoryLockerOption {
	return func(o *memoryLockerOptions) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// NewMemoryLocker creates the single-process fallback locker.
// It logs a warning on construction: this mode is for development and tests,
// and enforces nothing across process boundaries.
func NewMemoryLocker(opts ...MemoryLockerOption) (*MemoryLocker, error) {
	options := &memoryLockerOptions{
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(options)
	}

	if options.multiProcess {
		return nil, ErrMemoryLockerMultiProcess
	}

	options.logger.Warn("in-process lock fallback active; locks are NOT enforced across worker processes, do not use in production with more than one process")

	return &MemoryLocker{
		locks: make(map[string]memoryEntry),
	}, nil
}

// Acquire takes the lock if the key is absent or its previous holder expired.
func (l *MemoryLocker) Acquire(ctx context.Context, key string, ttl time.Duration) (*Handle, error) {
	if ttl <= 0 {
		return nil, ErrInvalidTTL
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	now := time.Now()
	if entry, held := l.locks[key]; held && entry.expiresAt.After(now) {
		return nil, ErrNotAcquired
	}

	token := newToken()
	l.locks[key] = memoryEntry{
		token:     token,
		expiresAt: now.Add(ttl),
	}

	return &Handle{
		Key:        key,
		Token:      token,
		AcquiredAt: now,
		TTL:        ttl,
	}, nil
}

// Release frees the lock if the handle's token is still the live owner.
func (l *MemoryLocker) Release(ctx context.Context, h *Handle) error {
	if h == nil {
		return ErrNotHeld
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	entry, held := l.locks[h.Key]
	if !held || entry.token != h.Token || !entry.expiresAt.After(time.Now()) {
		return ErrNotHeld
	}

	delete(l.locks, h.Key)
	return nil
}
