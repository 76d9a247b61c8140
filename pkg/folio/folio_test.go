package folio_test

import (
	"context"
	"sort"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/facturio/facturio/pkg/folio"
)

func TestAllocatorNext(t *testing.T) {
	t.Parallel()

	t.Run("first allocation returns seed", func(t *testing.T) {
		t.Parallel()

		a, err := folio.NewAllocator(folio.NewMemoryStore())
		require.NoError(t, err)

		n, err := a.Next(context.Background(), uuid.New(), "A")
		require.NoError(t, err)
		assert.Equal(t, folio.Seed, n)
	})

	t.Run("sequential allocations are consecutive", func(t *testing.T) {
		t.Parallel()

		a, err := folio.NewAllocator(folio.NewMemoryStore())
		require.NoError(t, err)

		tenantID := uuid.New()
		for want := int64(1); want <= 5; want++ {
			n, err := a.Next(context.Background(), tenantID, "A")
			require.NoError(t, err)
			assert.Equal(t, want, n)
		}
	})

	t.Run("series have independent counters", func(t *testing.T) {
		t.Parallel()

		a, err := folio.NewAllocator(folio.NewMemoryStore())
		require.NoError(t, err)

		tenantID := uuid.New()
		ctx := context.Background()

		nA, err := a.Next(ctx, tenantID, "A")
		require.NoError(t, err)
		nB, err := a.Next(ctx, tenantID, "B")
		require.NoError(t, err)

		assert.Equal(t, folio.Seed, nA)
		assert.Equal(t, folio.Seed, nB)
	})

	t.Run("empty series rejected", func(t *testing.T) {
		t.Parallel()

		a, err := folio.NewAllocator(folio.NewMemoryStore())
		require.NoError(t, err)

		_, err = a.Next(context.Background(), uuid.New(), "")
		assert.ErrorIs(t, err, folio.ErrEmptySeries)
	})
}

func TestAllocatorConcurrentUniqueness(t *testing.T) {
	t.Parallel()

	// N parallel callers must receive N distinct, consecutive numbers with
	// no gaps and no duplicates, regardless of interleaving.
	run := func(t *testing.T, opts ...folio.Option) {
		t.Helper()

		a, err := folio.NewAllocator(folio.NewMemoryStore(), opts...)
		require.NoError(t, err)

		const callers = 100
		tenantID := uuid.New()

		var (
			mu      sync.Mutex
			results []int64
			wg      sync.WaitGroup
		)

		for ci := 0; ci < callers; ci++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				n, err := a.Next(context.Background(), tenantID, "A")
				assert.NoError(t, err)
				mu.Lock()
				results = append(results, n)
				mu.Unlock()
			}()
		}
		wg.Wait()

		require.Len(t, results, callers)
		sort.Slice(results, func(i, j int) bool { return results[i] < results[j] })
		for i, n := range results {
			assert.Equal(t, int64(i)+folio.Seed, n, "sequence must be dense and duplicate-free")
		}
	}

	t.Run("direct allocation", func(t *testing.T) {
		t.Parallel()
		run(t)
	})

	t.Run("batched allocation", func(t *testing.T) {
		t.Parallel()
		run(t, folio.WithBatchSize(10))
	})
}

func TestAllocatorBatching(t *testing.T) {
	t.Parallel()

	t.Run("batch reserves ahead in the store", func(t *testing.T) {
		t.Parallel()

		store := folio.NewMemoryStore()
		a, err := folio.NewAllocator(store, folio.WithBatchSize(10))
		require.NoError(t, err)

		tenantID := uuid.New()
		n, err := a.Next(context.Background(), tenantID, "A")
		require.NoError(t, err)

		assert.Equal(t, folio.Seed, n)
		// The whole batch must already be reserved in the backing store so a
		// crashed process can only create gaps, never duplicates.
		assert.Equal(t, int64(10), store.Current(tenantID, "A"))
	})
}

func TestString(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "A-42", folio.String("A", 42))
}
