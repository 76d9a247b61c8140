package lock

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// releaseScript is the atomic compare-and-delete used by Release.
// KEYS[1] = lock key, ARGV[1] = owner token.
// Returns 1 if the key was deleted, 0 if the stored token differs or the key
// is gone (expired, or taken over by a new holder).
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
    return redis.call("DEL", KEYS[1])
end
return 0
`)

// RedisLocker enforces mutual exclusion through a shared Redis instance.
// Safe across any number of worker processes.
type RedisLocker struct {
	client redis.Cmdable
}

var _ Locker = (*RedisLocker)(nil)

// NewRedisLocker creates a Locker backed by the given Redis client.
// The client must already be connected; see pkg/redis.Connect.
func NewRedisLocker(client redis.Cmdable) *RedisLocker {
	if client == nil {
		panic("lock: redis client is required")
	}
	return &RedisLocker{client: client}
}

// Acquire sets the key to a fresh owner token only if absent (SET NX PX).
func (l *RedisLocker) Acquire(ctx context.Context, key string, ttl time.Duration) (*Handle, error) {
	if ttl <= 0 {
		return nil, ErrInvalidTTL
	}

	token := newToken()
	ok, err := l.client.SetNX(ctx, key, token, ttl).Result()
	if err != nil {
		return nil, fmt.Errorf("lock: acquire %q: %w", key, err)
	}
	if !ok {
		return nil, ErrNotAcquired
	}

	return &Handle{
		Key:        key,
		Token:      token,
		AcquiredAt: time.Now(),
		TTL:        ttl,
	}, nil
}

// Release deletes the key only while it still stores the handle's token.
func (l *RedisLocker) Release(ctx context.Context, h *Handle) error {
	if h == nil {
		return ErrNotHeld
	}

	deleted, err := releaseScript.Run(ctx, l.client, []string{h.Key}, h.Token).Int64()
	if err != nil {
		return fmt.Errorf("lock: release %q: %w", h.Key, err)
	}
	if deleted == 0 {
		return ErrNotHeld
	}
	return nil
}
