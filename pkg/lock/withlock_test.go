package lock_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/facturio/facturio/pkg/lock"
)

// failingReleaseLocker acquires normally but always fails to release,
// simulating a connection dropping between the critical section and the
// release call.
type failingReleaseLocker struct {
	lock.Locker
	releaseErr error
}

func (l *failingReleaseLocker) Release(ctx context.Context, h *lock.Handle) error {
	return l.releaseErr
}

func TestWithLock(t *testing.T) {
	t.Parallel()

	t.Run("runs body exactly once", func(t *testing.T) {
		t.Parallel()

		l := newTestLocker(t)
		var calls atomic.Int32

		err := lock.WithLock(context.Background(), l, "tenant-a", time.Minute, 3, func(ctx context.Context) error {
			calls.Add(1)
			return nil
		})

		require.NoError(t, err)
		assert.Equal(t, int32(1), calls.Load())
	})

	t.Run("releases after body failure", func(t *testing.T) {
		t.Parallel()

		l := newTestLocker(t)
		bodyErr := errors.New("boom")

		err := lock.WithLock(context.Background(), l, "tenant-a", time.Minute, 3, func(ctx context.Context) error {
			return bodyErr
		})
		assert.ErrorIs(t, err, bodyErr)

		// Lock must be free again despite the body error.
		h, err := l.Acquire(context.Background(), "tenant-a", time.Minute)
		require.NoError(t, err)
		assert.NotNil(t, h)
	})

	t.Run("exhausts attempts against a held lock", func(t *testing.T) {
		t.Parallel()

		l := newTestLocker(t)
		_, err := l.Acquire(context.Background(), "tenant-a", time.Minute)
		require.NoError(t, err)

		err = lock.WithLock(context.Background(), l, "tenant-a", time.Minute, 3, func(ctx context.Context) error {
			t.Fatal("body must not run when the lock is never acquired")
			return nil
		})

		assert.ErrorIs(t, err, lock.ErrNotAcquired)
	})

	t.Run("retries until released", func(t *testing.T) {
		t.Parallel()

		l := newTestLocker(t)
		ctx := context.Background()

		h, err := l.Acquire(ctx, "tenant-a", time.Minute)
		require.NoError(t, err)

		go func() {
			time.Sleep(60 * time.Millisecond)
			_ = l.Release(ctx, h)
		}()

		var ran atomic.Bool
		err = lock.WithLock(ctx, l, "tenant-a", time.Minute, 10, func(ctx context.Context) error {
			ran.Store(true)
			return nil
		})

		require.NoError(t, err)
		assert.True(t, ran.Load())
	})

	t.Run("bodies never overlap", func(t *testing.T) {
		t.Parallel()

		l := newTestLocker(t)
		ctx := context.Background()

		var (
			inBody  atomic.Int32
			overlap atomic.Bool
			wg      sync.WaitGroup
		)

		for li := 0; li < 8; li++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_ = lock.WithLock(ctx, l, "tenant-a", time.Minute, 50, func(ctx context.Context) error {
					if inBody.Add(1) > 1 {
						overlap.Store(true)
					}
					time.Sleep(5 * time.Millisecond)
					inBody.Add(-1)
					return nil
				})
			}()
		}
		wg.Wait()

		assert.False(t, overlap.Load(), "two critical sections ran concurrently")
	})

	t.Run("release failure after successful body is not an error", func(t *testing.T) {
		t.Parallel()

		// A Redis hiccup on release must not fail an operation whose work
		// already completed: the caller would retry and redo the work.
		l := &failingReleaseLocker{
			Locker:     newTestLocker(t),
			releaseErr: errors.New("redis: connection reset"),
		}

		var calls atomic.Int32
		err := lock.WithLock(context.Background(), l, "tenant-a", time.Minute, 3, func(ctx context.Context) error {
			calls.Add(1)
			return nil
		})

		assert.NoError(t, err, "release failure leaked to the caller after a successful body")
		assert.Equal(t, int32(1), calls.Load())
	})

	t.Run("body error wins over release failure", func(t *testing.T) {
		t.Parallel()

		l := &failingReleaseLocker{
			Locker:     newTestLocker(t),
			releaseErr: errors.New("redis: connection reset"),
		}
		bodyErr := errors.New("boom")

		err := lock.WithLock(context.Background(), l, "tenant-a", time.Minute, 3, func(ctx context.Context) error {
			return bodyErr
		})

		assert.ErrorIs(t, err, bodyErr)
	})

	t.Run("context cancellation stops retrying", func(t *testing.T) {
		t.Parallel()

		l := newTestLocker(t)
		_, err := l.Acquire(context.Background(), "tenant-a", time.Minute)
		require.NoError(t, err)

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
		defer cancel()

		err = lock.WithLock(ctx, l, "tenant-a", time.Minute, 100, func(ctx context.Context) error {
			return nil
		})

		assert.ErrorIs(t, err, context.DeadlineExceeded)
	})
}
