package folio

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
)

// Seed is the first folio number issued for a new (tenant, series) pair.
const Seed int64 = 1

var (
	// ErrEmptySeries is returned when the series code is missing.
	ErrEmptySeries = errors.New("folio: series cannot be empty")

	// ErrAllocation wraps storage failures. Treated as infrastructure errors:
	// terminal for the current invocation, safe to retry from scratch.
	ErrAllocation = errors.New("folio: allocation failed")
)

// Store advances the persistent counter. Implementations must make NextN
// atomic with respect to concurrent callers for the same (tenant, series).
type Store interface {
	// NextN reserves n consecutive numbers and returns the first of the
	// block. The counter row is created lazily; the very first reservation
	// starts at Seed.
	NextN(ctx context.Context, tenantID uuid.UUID, series string, n int64) (int64, error)
}

// Allocator issues folio numbers, optionally serving them from pre-reserved
// in-process batches to cut database round-trips.
type Allocator struct {
	store     Store
	batchSize int64

	mu    sync.Mutex
	cache map[reservationKey]*reservation
}

type reservationKey struct {
	tenantID uuid.UUID
	series   string
}

type reservation struct {
	next      int64
	remaining int64
}

// Option configures an Allocator.
type Option func(*Allocator)

// WithBatchSize enables batch reservation of n folios per database round-trip.
// Values below 2 keep the default one-statement-per-folio behavior.
func WithBatchSize(n int64) Option {
	return func(a *Allocator) {
		if n >= 2 {
			a.batchSize = n
		}
	}
}

// NewAllocator creates an Allocator on top of the given Store.
func NewAllocator(store Store, opts ...Option) (*Allocator, error) {
	if store == nil {
		return nil, errors.New("folio: store cannot be nil")
	}

	a := &Allocator{
		store:     store,
		batchSize: 1,
		cache:     make(map[reservationKey]*reservation),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a, nil
}

// Next returns the next unused folio number for the tenant and series.
//
// Callers inside the invoice-creation sequence must hold the tenant lock:
// the statement itself is atomic, but the number only stays meaningful if the
// quota check and external call around it are serialized too.
func (a *Allocator) Next(ctx context.Context, tenantID uuid.UUID, series string) (int64, error) {
	if series == "" {
		return 0, ErrEmptySeries
	}

	if a.batchSize <= 1 {
		n, err := a.store.NextN(ctx, tenantID, series, 1)
		if err != nil {
			return 0, errors.Join(ErrAllocation, err)
		}
		return n, nil
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	key := reservationKey{tenantID: tenantID, series: series}
	res := a.cache[key]
	if res == nil || res.remaining == 0 {
		first, err := a.store.NextN(ctx, tenantID, series, a.batchSize)
		if err != nil {
			return 0, errors.Join(ErrAllocation, err)
		}
		res = &reservation{next: first, remaining: a.batchSize}
		a.cache[key] = res
	}

	n := res.next
	res.next++
	res.remaining--
	return n, nil
}

// String renders a folio for logs and user messages, e.g. "A-42".
func String(series string, number int64) string {
	return fmt.Sprintf("%s-%d", series, number)
}
