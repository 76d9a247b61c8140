package pacqueue

import (
	"context"
	"sync"
	"time"
)

// Operation is a unit of outbound work. The context carries the per-kind
// deadline; implementations must respect it.
type Operation func(ctx context.Context) (any, error)

// Priority orders dispatch. Higher dispatches first; equal priorities
// dispatch in enqueue order.
type Priority int

const (
	PriorityLow    Priority = 0
	PriorityNormal Priority = 1
	PriorityHigh   Priority = 2
)

// demote returns the next lower priority, bottoming out at PriorityLow.
func (p Priority) demote() Priority {
	if p > PriorityLow {
		return p - 1
	}
	return PriorityLow
}

// OpKind selects the timeout tier for an operation. Provider endpoints have
// very different latency profiles: catalog reads answer in milliseconds,
// stamping takes seconds, certificate registration can take minutes.
type OpKind string

const (
	// KindQuick is for catalog lookups and other cheap reads.
	KindQuick OpKind = "quick"
	// KindDefault is for stamping and cancellation calls.
	KindDefault OpKind = "default"
	// KindSlow is for certificate uploads.
	KindSlow OpKind = "slow"
)

// Promise is the caller's handle on an asynchronous operation result. It
// resolves exactly once. An operation already in flight is not cancellable:
// abandoning the promise lets the call run to completion or timeout, and the
// result is discarded.
type Promise struct {
	mu     sync.Mutex
	result any
	err    error
	done   chan struct{}
}

func newPromise() *Promise {
	return &Promise{done: make(chan struct{})}
}

// Wait blocks until the operation resolves or ctx is done. A ctx error
// abandons the wait, not the operation.
func (p *Promise) Wait(ctx context.Context) (any, error) {
	select {
	case <-p.done:
		return p.result, p.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Done returns a channel closed when the operation has resolved.
func (p *Promise) Done() <-chan struct{} {
	return p.done
}

func (p *Promise) resolve(result any, err error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	select {
	case <-p.done:
		return // already resolved
	default:
	}

	p.result = result
	p.err = err
	close(p.done)
}

// item is a queued operation with its dispatch metadata.
type item struct {
	op         Operation
	kind       OpKind
	priority   Priority
	seq        uint64 // insertion order, tiebreak within a priority
	attempts   int    // completed execution attempts
	enqueuedAt time.Time
	notBefore  time.Time // retry delay gate; zero means immediately eligible
	promise    *Promise
}
