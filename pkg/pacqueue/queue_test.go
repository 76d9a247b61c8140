package pacqueue_test

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/facturio/facturio/pkg/pac"
	"github.com/facturio/facturio/pkg/pacqueue"
)

func fastOptions(extra ...pacqueue.Option) []pacqueue.Option {
	opts := []pacqueue.Option{
		pacqueue.WithTickInterval(2 * time.Millisecond),
		pacqueue.WithRetryDelay(time.Millisecond),
	}
	return append(opts, extra...)
}

func startQueue(t *testing.T, opts ...pacqueue.Option) *pacqueue.Queue {
	t.Helper()

	q := pacqueue.New(fastOptions(opts...)...)
	require.NoError(t, q.Start(context.Background()))
	t.Cleanup(func() { _ = q.Stop() })
	return q
}

func noop(ctx context.Context) (any, error) { return nil, nil }

func TestEnqueue(t *testing.T) {
	t.Parallel()

	t.Run("nil operation rejected", func(t *testing.T) {
		t.Parallel()

		q := pacqueue.New()
		_, err := q.Enqueue(context.Background(), nil, pacqueue.KindDefault, pacqueue.PriorityNormal)
		assert.ErrorIs(t, err, pacqueue.ErrNilOperation)
	})

	t.Run("full queue fails fast", func(t *testing.T) {
		t.Parallel()

		q := pacqueue.New(pacqueue.WithCapacity(2))

		_, err := q.Enqueue(context.Background(), noop, pacqueue.KindDefault, pacqueue.PriorityNormal)
		require.NoError(t, err)
		_, err = q.Enqueue(context.Background(), noop, pacqueue.KindDefault, pacqueue.PriorityNormal)
		require.NoError(t, err)

		_, err = q.Enqueue(context.Background(), noop, pacqueue.KindDefault, pacqueue.PriorityNormal)
		assert.ErrorIs(t, err, pacqueue.ErrQueueFull)
		assert.Equal(t, 2, q.Metrics().Depth)
	})

	t.Run("cancelled context rejected", func(t *testing.T) {
		t.Parallel()

		q := pacqueue.New()
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := q.Enqueue(ctx, noop, pacqueue.KindDefault, pacqueue.PriorityNormal)
		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestDispatchOrdering(t *testing.T) {
	t.Parallel()

	// One slot forces strictly sequential dispatch so the observed order is
	// the queue's ordering decision.
	q := pacqueue.New(fastOptions(pacqueue.WithMaxInFlight(1))...)

	var mu sync.Mutex
	var got []string
	record := func(name string) pacqueue.Operation {
		return func(ctx context.Context) (any, error) {
			mu.Lock()
			got = append(got, name)
			mu.Unlock()
			return name, nil
		}
	}

	ctx := context.Background()
	var promises []*pacqueue.Promise
	for _, tc := range []struct {
		name     string
		priority pacqueue.Priority
	}{
		{"low-1", pacqueue.PriorityLow},
		{"high-1", pacqueue.PriorityHigh},
		{"normal-1", pacqueue.PriorityNormal},
		{"high-2", pacqueue.PriorityHigh},
		{"normal-2", pacqueue.PriorityNormal},
	} {
		p, err := q.Enqueue(ctx, record(tc.name), pacqueue.KindQuick, tc.priority)
		require.NoError(t, err)
		promises = append(promises, p)
	}

	require.NoError(t, q.Start(ctx))
	defer func() { _ = q.Stop() }()

	waitCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	for _, p := range promises {
		_, err := p.Wait(waitCtx)
		require.NoError(t, err)
	}

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{"high-1", "high-2", "normal-1", "normal-2", "low-1"}, got)
}

func TestRetryBehavior(t *testing.T) {
	t.Parallel()

	t.Run("transient failure retried then succeeds", func(t *testing.T) {
		t.Parallel()

		q := startQueue(t, pacqueue.WithMaxRetries(3))

		var attempts atomic.Int32
		op := func(ctx context.Context) (any, error) {
			if attempts.Add(1) < 3 {
				return nil, pac.ErrUnavailable
			}
			return "stamped", nil
		}

		p, err := q.Enqueue(context.Background(), op, pacqueue.KindDefault, pacqueue.PriorityNormal)
		require.NoError(t, err)

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		result, err := p.Wait(ctx)
		require.NoError(t, err)
		assert.Equal(t, "stamped", result)
		assert.EqualValues(t, 3, attempts.Load())

		m := q.Metrics()
		assert.EqualValues(t, 1, m.Processed)
		assert.EqualValues(t, 2, m.Retried)
		assert.EqualValues(t, 0, m.Failed)
	})

	t.Run("retry budget bounds attempts", func(t *testing.T) {
		t.Parallel()

		const maxRetries = 2
		q := startQueue(t, pacqueue.WithMaxRetries(maxRetries))

		var attempts atomic.Int32
		op := func(ctx context.Context) (any, error) {
			attempts.Add(1)
			return nil, pac.ErrUnavailable
		}

		p, err := q.Enqueue(context.Background(), op, pacqueue.KindDefault, pacqueue.PriorityNormal)
		require.NoError(t, err)

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_, err = p.Wait(ctx)
		assert.ErrorIs(t, err, pac.ErrUnavailable)
		assert.EqualValues(t, maxRetries+1, attempts.Load())
		assert.EqualValues(t, 1, q.Metrics().Failed)
	})

	t.Run("rejection is never retried", func(t *testing.T) {
		t.Parallel()

		q := startQueue(t, pacqueue.WithMaxRetries(5))

		var attempts atomic.Int32
		rejection := &pac.RejectionError{Code: "CFDI33132", Message: "RFC no registrado"}
		op := func(ctx context.Context) (any, error) {
			attempts.Add(1)
			return nil, rejection
		}

		p, err := q.Enqueue(context.Background(), op, pacqueue.KindDefault, pacqueue.PriorityNormal)
		require.NoError(t, err)

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_, err = p.Wait(ctx)

		var got *pac.RejectionError
		require.ErrorAs(t, err, &got)
		assert.EqualValues(t, 1, attempts.Load())
	})

	t.Run("timeout classifies as transient", func(t *testing.T) {
		t.Parallel()

		q := startQueue(t,
			pacqueue.WithMaxRetries(1),
			pacqueue.WithTimeout(pacqueue.KindQuick, 10*time.Millisecond))

		var attempts atomic.Int32
		op := func(ctx context.Context) (any, error) {
			attempts.Add(1)
			<-ctx.Done()
			return nil, ctx.Err()
		}

		p, err := q.Enqueue(context.Background(), op, pacqueue.KindQuick, pacqueue.PriorityNormal)
		require.NoError(t, err)

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_, err = p.Wait(ctx)
		assert.ErrorIs(t, err, pacqueue.ErrOpTimeout)
		assert.EqualValues(t, 2, attempts.Load())
	})
}

func TestConcurrencyCap(t *testing.T) {
	t.Parallel()

	const maxInFlight = 3
	q := startQueue(t, pacqueue.WithMaxInFlight(maxInFlight), pacqueue.WithCapacity(50))

	var current, peak atomic.Int32
	op := func(ctx context.Context) (any, error) {
		n := current.Add(1)
		for {
			p := peak.Load()
			if n <= p || peak.CompareAndSwap(p, n) {
				break
			}
		}
		time.Sleep(10 * time.Millisecond)
		current.Add(-1)
		return nil, nil
	}

	ctx := context.Background()
	var promises []*pacqueue.Promise
	for i := 0; i < 12; i++ {
		p, err := q.Enqueue(ctx, op, pacqueue.KindDefault, pacqueue.PriorityNormal)
		require.NoError(t, err)
		promises = append(promises, p)
	}

	waitCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	for _, p := range promises {
		_, err := p.Wait(waitCtx)
		require.NoError(t, err)
	}

	assert.LessOrEqual(t, peak.Load(), int32(maxInFlight))
	assert.EqualValues(t, 12, q.Metrics().Processed)
}

func TestRetryBudget(t *testing.T) {
	t.Parallel()

	q := pacqueue.New(
		pacqueue.WithMaxRetries(2),
		pacqueue.WithRetryDelay(time.Second),
		pacqueue.WithTimeout(pacqueue.KindQuick, time.Second),
		pacqueue.WithTimeout(pacqueue.KindDefault, 10*time.Second),
	)

	// Three attempts of 10s plus two retry delays of 1s.
	assert.Equal(t, 32*time.Second, q.RetryBudget(pacqueue.KindDefault))
	// Three attempts of 1s plus two retry delays of 1s.
	assert.Equal(t, 5*time.Second, q.RetryBudget(pacqueue.KindQuick))
}

func TestStop(t *testing.T) {
	t.Parallel()

	t.Run("pending promises resolve with closed error", func(t *testing.T) {
		t.Parallel()

		// A one-minute tick guarantees nothing dispatches before Stop.
		q := pacqueue.New(pacqueue.WithTickInterval(time.Minute))
		require.NoError(t, q.Start(context.Background()))

		p, err := q.Enqueue(context.Background(), noop, pacqueue.KindDefault, pacqueue.PriorityNormal)
		require.NoError(t, err)
		p2, err := q.Enqueue(context.Background(), noop, pacqueue.KindQuick, pacqueue.PriorityLow)
		require.NoError(t, err)

		require.NoError(t, q.Stop())

		for _, promise := range []*pacqueue.Promise{p, p2} {
			select {
			case <-promise.Done():
				_, err := promise.Wait(context.Background())
				assert.ErrorIs(t, err, pacqueue.ErrQueueClosed)
			default:
				t.Fatal("promise not resolved after Stop")
			}
		}
	})

	t.Run("enqueue after stop fails", func(t *testing.T) {
		t.Parallel()

		q := pacqueue.New(fastOptions()...)
		require.NoError(t, q.Start(context.Background()))
		require.NoError(t, q.Stop())

		_, err := q.Enqueue(context.Background(), noop, pacqueue.KindDefault, pacqueue.PriorityNormal)
		assert.ErrorIs(t, err, pacqueue.ErrQueueClosed)
	})
}
