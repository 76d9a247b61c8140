package lock

import (
	"context"
	"errors"
	"log/slog"
	"time"
)

const (
	// retryBaseDelay is the first backoff step between acquisition attempts.
	retryBaseDelay = 50 * time.Millisecond
	// retryMaxDelay caps the exponential backoff.
	retryMaxDelay = time.Second
)

// WithLock acquires the key with up to maxAttempts tries, runs fn exactly
// once if acquired, and always releases afterwards regardless of fn's outcome.
//
// Backoff doubles from 50ms up to a 1s cap between attempts. When all
// attempts fail the caller gets ErrNotAcquired, which operators surface as
// "another operation is in progress, try again".
//
// A failed release is never returned as an error: when fn succeeded the work
// is done and the TTL will clear the key, and when fn failed the fn error
// wins. Release failures are logged instead, so surfacing one to the caller
// can never make a completed operation look failed and invite a retry.
func WithLock(ctx context.Context, locker Locker, key string, ttl time.Duration, maxAttempts int, fn func(ctx context.Context) error) error {
	if maxAttempts < 1 {
		maxAttempts = 1
	}

	var handle *Handle
	delay := retryBaseDelay

	for attempt := 0; attempt < maxAttempts; attempt++ {
		h, err := locker.Acquire(ctx, key, ttl)
		if err == nil {
			handle = h
			break
		}
		if !errors.Is(err, ErrNotAcquired) {
			return err
		}

		// Last attempt failed: no point sleeping.
		if attempt == maxAttempts-1 {
			return ErrNotAcquired
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}

		delay *= 2
		if delay > retryMaxDelay {
			delay = retryMaxDelay
		}
	}

	fnErr := fn(ctx)

	// Release with a background-capable context so a cancelled caller context
	// cannot leave the lock pinned until TTL expiry.
	releaseCtx := ctx
	if releaseCtx.Err() != nil {
		releaseCtx = context.Background()
	}
	if err := locker.Release(releaseCtx, handle); err != nil && !errors.Is(err, ErrNotHeld) {
		slog.Default().Warn("lock release failed, ttl will clear the key",
			slog.String("key", key),
			slog.Any("error", err),
		)
	}

	return fnErr
}
