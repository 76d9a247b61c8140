// Package pacqueue throttles outbound calls to the invoicing provider.
//
// The provider tolerates only a handful of concurrent requests per
// integration, so nothing in this codebase calls it directly. Callers enqueue
// an operation and receive a Promise; a background dispatch loop executes
// operations with a bounded in-flight set, per-kind timeouts, and bounded
// retry of transient failures.
//
// The queue is bounded: when it is full, Enqueue fails immediately with
// ErrQueueFull rather than blocking. That backpressure signal is distinct
// from a quota denial and callers surface it as "system busy, try again".
//
// Ordering is by priority, and stable within a priority level: two items at
// the same priority dispatch in the order they were enqueued. Retried items
// are demoted one priority level so a flapping operation cannot starve fresh
// work.
//
// All state is process-local. Each process gets its own queue and its own
// in-flight cap, so the effective provider concurrency is cap × processes;
// size the cap accordingly.
package pacqueue
