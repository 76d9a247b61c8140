package lock_test

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/facturio/facturio/pkg/lock"
)

func newTestLocker(t *testing.T) *lock.MemoryLocker {
	t.Helper()

	l, err := lock.NewMemoryLocker(
		lock.WithMemoryLockerLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
	)
	require.NoError(t, err)
	return l
}

func TestNewMemoryLocker(t *testing.T) {
	t.Parallel()

	t.Run("refuses multi-process deployments", func(t *testing.T) {
		t.Parallel()

		l, err := lock.NewMemoryLocker(
			lock.WithMultiProcessDeployment(true),
			lock.WithMemoryLockerLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
		)

		assert.Nil(t, l)
		assert.ErrorIs(t, err, lock.ErrMemoryLockerMultiProcess)
	})

	t.Run("single process succeeds", func(t *testing.T) {
		t.Parallel()

		l, err := lock.NewMemoryLocker(
			lock.WithMemoryLockerLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
		)

		require.NoError(t, err)
		assert.NotNil(t, l)
	})
}

func TestMemoryLockerAcquireRelease(t *testing.T) {
	t.Parallel()

	t.Run("acquire then release", func(t *testing.T) {
		t.Parallel()

		l := newTestLocker(t)
		ctx := context.Background()

		h, err := l.Acquire(ctx, "tenant-a", time.Minute)
		require.NoError(t, err)
		require.NotNil(t, h)
		assert.NotEmpty(t, h.Token)

		require.NoError(t, l.Release(ctx, h))
	})

	t.Run("second acquire fails while held", func(t *testing.T) {
		t.Parallel()

		l := newTestLocker(t)
		ctx := context.Background()

		_, err := l.Acquire(ctx, "tenant-a", time.Minute)
		require.NoError(t, err)

		_, err = l.Acquire(ctx, "tenant-a", time.Minute)
		assert.ErrorIs(t, err, lock.ErrNotAcquired)
	})

	t.Run("cross-tenant keys are independent", func(t *testing.T) {
		t.Parallel()

		l := newTestLocker(t)
		ctx := context.Background()

		_, err := l.Acquire(ctx, "tenant-a", time.Minute)
		require.NoError(t, err)

		// Tenant B must not be blocked by tenant A's lock.
		h, err := l.Acquire(ctx, "tenant-b", time.Minute)
		require.NoError(t, err)
		assert.NotNil(t, h)
	})

	t.Run("release after re-acquire by new holder fails", func(t *testing.T) {
		t.Parallel()

		l := newTestLocker(t)
		ctx := context.Background()

		stale, err := l.Acquire(ctx, "tenant-a", 20*time.Millisecond)
		require.NoError(t, err)

		// Let the lock expire, then a new holder takes over.
		time.Sleep(40 * time.Millisecond)
		fresh, err := l.Acquire(ctx, "tenant-a", time.Minute)
		require.NoError(t, err)

		// The stale handle's token no longer matches: it must not be able to
		// free the new holder's lock.
		assert.ErrorIs(t, l.Release(ctx, stale), lock.ErrNotHeld)
		assert.NoError(t, l.Release(ctx, fresh))
	})

	t.Run("zero ttl rejected", func(t *testing.T) {
		t.Parallel()

		l := newTestLocker(t)

		_, err := l.Acquire(context.Background(), "tenant-a", 0)
		assert.ErrorIs(t, err, lock.ErrInvalidTTL)
	})
}

func TestMemoryLockerTTLExpiry(t *testing.T) {
	t.Parallel()

	t.Run("crashed holder lock becomes acquirable after ttl", func(t *testing.T) {
		t.Parallel()

		l := newTestLocker(t)
		ctx := context.Background()

		// Simulate a crash: acquire and discard the handle without release.
		_, err := l.Acquire(ctx, "tenant-a", 50*time.Millisecond)
		require.NoError(t, err)

		// Not acquirable before expiry.
		_, err = l.Acquire(ctx, "tenant-a", time.Minute)
		assert.ErrorIs(t, err, lock.ErrNotAcquired)

		time.Sleep(70 * time.Millisecond)

		// Acquirable after expiry.
		h, err := l.Acquire(ctx, "tenant-a", time.Minute)
		require.NoError(t, err)
		assert.NotNil(t, h)
	})
}
