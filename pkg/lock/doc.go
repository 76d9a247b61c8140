// Package lock provides a TTL-bounded distributed mutual exclusion primitive.
//
// Worker processes are horizontally scaled and share no memory, so every
// multi-step invoicing sequence (quota re-check, folio allocation, external
// stamping call, persistence) is serialized per tenant through a lock held in
// a shared Redis instance. A lock is a key holding a random owner token with
// an expiry:
//
//   - Acquire is an atomic set-if-not-exists with TTL. If the key exists the
//     caller gets ErrNotAcquired immediately; waiting is the caller's job
//     (see WithLock).
//   - Release is an atomic compare-and-delete Lua script. Only the holder
//     whose token is still stored may delete the key, which protects against
//     releasing a lock that already expired and was re-acquired by someone
//     else.
//   - The TTL is a safety net for crashed holders, not a control mechanism.
//     It must exceed the worst-case critical section, including one queue
//     wait for the external call.
//
// WithLock wraps acquire/execute/release with capped exponential backoff
// retries. Note that backoff retries do not preserve arrival order: there is
// no FIFO fairness guarantee among competing operators of the same tenant.
//
// MemoryLocker is a single-process fallback for development and tests. It
// keeps the same TTL semantics but cannot coordinate across processes, and
// refuses to construct when the deployment declares itself multi-process.
package lock
