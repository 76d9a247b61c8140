package pacqueue

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/facturio/facturio/pkg/pac"
)

// Queue dispatches outbound provider operations with bounded concurrency.
type Queue struct {
	opts options

	mu       sync.Mutex
	pending  []*item
	seq      uint64
	inFlight int
	closed   bool
	metrics  metricsState

	sem    chan struct{}
	wg     sync.WaitGroup
	stopMu sync.Mutex // protects stopping state and WaitGroup operations

	ctx      context.Context
	cancel   context.CancelFunc
	stopping bool
}

// New creates a stopped queue; call Start to begin dispatching.
func New(opts ...Option) *Queue {
	o := options{
		capacity:     100,
		maxInFlight:  4,
		tickInterval: 100 * time.Millisecond,
		maxRetries:   3,
		retryDelay:   2 * time.Second,
		timeouts: map[OpKind]time.Duration{
			KindQuick:   5 * time.Second,
			KindDefault: 30 * time.Second,
			KindSlow:    2 * time.Minute,
		},
		isTransient: pac.IsTransient,
		logger:      slog.Default(),
	}
	for _, opt := range opts {
		opt(&o)
	}

	return &Queue{
		opts: o,
		sem:  make(chan struct{}, o.maxInFlight),
	}
}

// Enqueue admits an operation and returns its promise. It never blocks:
// a full queue fails immediately with ErrQueueFull so the caller can tell
// the user the system is busy rather than silently queueing forever.
func (q *Queue) Enqueue(ctx context.Context, op Operation, kind OpKind, priority Priority) (*Promise, error) {
	if op == nil {
		return nil, ErrNilOperation
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return nil, ErrQueueClosed
	}
	if len(q.pending) >= q.opts.capacity {
		return nil, ErrQueueFull
	}

	q.seq++
	it := &item{
		op:         op,
		kind:       kind,
		priority:   priority,
		seq:        q.seq,
		enqueuedAt: time.Now(),
		promise:    newPromise(),
	}
	q.pending = append(q.pending, it)
	if len(q.pending) > q.metrics.peakDepth {
		q.metrics.peakDepth = len(q.pending)
	}

	return it.promise, nil
}

// Start begins the dispatch loop in the background.
func (q *Queue) Start(ctx context.Context) error {
	q.mu.Lock()
	if q.cancel != nil {
		q.mu.Unlock()
		return fmt.Errorf("queue already started")
	}
	if q.closed {
		q.mu.Unlock()
		return ErrQueueClosed
	}
	q.ctx, q.cancel = context.WithCancel(ctx)
	q.mu.Unlock()

	q.stopMu.Lock()
	q.stopping = false
	q.stopMu.Unlock()

	go q.run()

	q.opts.logger.Info("outbound queue started",
		slog.Int("capacity", q.opts.capacity),
		slog.Int("max_in_flight", q.opts.maxInFlight),
		slog.Duration("tick", q.opts.tickInterval))

	return nil
}

// Stop halts dispatch, waits for in-flight operations to finish, and
// resolves every still-pending promise with ErrQueueClosed.
func (q *Queue) Stop() error {
	q.mu.Lock()
	if q.cancel == nil {
		q.mu.Unlock()
		return fmt.Errorf("queue not started")
	}
	cancel := q.cancel
	q.cancel = nil
	q.mu.Unlock()

	q.stopMu.Lock()
	q.stopping = true
	q.stopMu.Unlock()

	cancel()
	q.wg.Wait()

	q.mu.Lock()
	q.closed = true
	pending := q.pending
	q.pending = nil
	q.mu.Unlock()

	for _, it := range pending {
		it.promise.resolve(nil, ErrQueueClosed)
	}

	q.opts.logger.Info("outbound queue stopped",
		slog.Int("abandoned", len(pending)))

	return nil
}

// Run starts the queue and returns a function suitable for errgroup.
func (q *Queue) Run(ctx context.Context) func() error {
	return func() error {
		if err := q.Start(ctx); err != nil {
			return err
		}
		<-ctx.Done()
		return q.Stop()
	}
}

// Metrics returns a point-in-time snapshot.
func (q *Queue) Metrics() Metrics {
	q.mu.Lock()
	defer q.mu.Unlock()

	return Metrics{
		Processed: q.metrics.processed,
		Failed:    q.metrics.failed,
		Retried:   q.metrics.retried,
		Depth:     len(q.pending),
		PeakDepth: q.metrics.peakDepth,
		InFlight:  q.inFlight,
		AvgWait:   q.metrics.avgWait(),
	}
}

// RetryBudget returns the worst-case wall time one operation of the given
// kind can spend from first dispatch to terminal resolution: every attempt
// running to its timeout plus the delay before each retry. A caller that
// holds a lock across a promise Wait must use a TTL above this, or the lock
// can expire while the operation is still in flight.
func (q *Queue) RetryBudget(kind OpKind) time.Duration {
	attempts := time.Duration(q.opts.maxRetries + 1)
	return attempts*q.timeoutFor(kind) + time.Duration(q.opts.maxRetries)*q.opts.retryDelay
}

// run is the dispatch loop: every tick it fills as many in-flight slots as
// eligible work allows.
func (q *Queue) run() {
	ticker := time.NewTicker(q.opts.tickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-q.ctx.Done():
			return
		case <-ticker.C:
			q.fillSlots()
		}
	}
}

func (q *Queue) fillSlots() {
	for {
		select {
		case q.sem <- struct{}{}:
		default:
			return // all slots busy
		}

		it := q.pop()
		if it == nil {
			<-q.sem
			return
		}

		q.stopMu.Lock()
		if q.stopping {
			q.stopMu.Unlock()
			<-q.sem
			q.requeue(it) // Stop drains it with ErrQueueClosed
			return
		}
		q.wg.Add(1)
		q.stopMu.Unlock()

		go func() {
			defer q.wg.Done()
			defer func() { <-q.sem }()
			q.process(it)
		}()
	}
}

// pop removes and returns the best eligible item: highest priority first,
// then lowest sequence number. Items inside their retry delay are skipped.
func (q *Queue) pop() *item {
	q.mu.Lock()
	defer q.mu.Unlock()

	now := time.Now()
	best := -1
	for i, it := range q.pending {
		if it.notBefore.After(now) {
			continue
		}
		if best == -1 ||
			it.priority > q.pending[best].priority ||
			(it.priority == q.pending[best].priority && it.seq < q.pending[best].seq) {
			best = i
		}
	}
	if best == -1 {
		return nil
	}

	it := q.pending[best]
	q.pending = append(q.pending[:best], q.pending[best+1:]...)
	q.inFlight++
	q.metrics.recordWait(now.Sub(it.enqueuedAt))
	return it
}

func (q *Queue) requeue(it *item) {
	q.mu.Lock()
	q.inFlight--
	closed := q.closed
	if !closed {
		// Retries bypass the capacity check: the item was already admitted.
		q.pending = append(q.pending, it)
		if len(q.pending) > q.metrics.peakDepth {
			q.metrics.peakDepth = len(q.pending)
		}
	}
	q.mu.Unlock()

	if closed {
		it.promise.resolve(nil, ErrQueueClosed)
	}
}

// process executes one operation with its kind's deadline and decides
// between resolution and retry.
func (q *Queue) process(it *item) {
	// The deadline is detached from the queue lifecycle so graceful
	// shutdown lets in-flight calls finish.
	ctx, cancel := context.WithTimeout(context.Background(), q.timeoutFor(it.kind))
	defer cancel()

	result, err := q.execute(ctx, it)
	it.attempts++

	if err == nil {
		q.finish(it, func() { q.metrics.processed++ })
		it.promise.resolve(result, nil)
		return
	}

	if errors.Is(err, context.DeadlineExceeded) {
		err = fmt.Errorf("%w after %s (%s)", ErrOpTimeout, q.timeoutFor(it.kind), it.kind)
	}

	if q.retriable(err) && it.attempts <= q.opts.maxRetries {
		q.opts.logger.Warn("transient provider failure, retrying",
			slog.String("kind", string(it.kind)),
			slog.Int("attempt", it.attempts),
			slog.Int("max_retries", q.opts.maxRetries),
			slog.String("error", err.Error()))

		it.priority = it.priority.demote()
		it.notBefore = time.Now().Add(q.opts.retryDelay)

		q.mu.Lock()
		q.metrics.retried++
		q.mu.Unlock()
		q.requeue(it)
		return
	}

	q.opts.logger.Error("provider operation failed",
		slog.String("kind", string(it.kind)),
		slog.Int("attempts", it.attempts),
		slog.String("error", err.Error()))

	q.finish(it, func() { q.metrics.failed++ })
	it.promise.resolve(nil, err)
}

func (q *Queue) execute(ctx context.Context, it *item) (result any, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic in operation: %v", r)
			q.opts.logger.Error("operation panicked",
				slog.String("kind", string(it.kind)),
				slog.Any("panic", r))
		}
	}()
	return it.op(ctx)
}

func (q *Queue) finish(it *item, record func()) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.inFlight--
	record()
}

func (q *Queue) retriable(err error) bool {
	return errors.Is(err, ErrOpTimeout) || q.opts.isTransient(err)
}

func (q *Queue) timeoutFor(kind OpKind) time.Duration {
	if d, ok := q.opts.timeouts[kind]; ok {
		return d
	}
	return q.opts.timeouts[KindDefault]
}
