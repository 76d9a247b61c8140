package lock

import "time"

type Config struct {
	DefaultTTL   time.Duration `env:"LOCK_DEFAULT_TTL" envDefault:"30s"` // DefaultTTL must exceed the worst-case critical section, including one queue wait.
	MaxAttempts  int           `env:"LOCK_MAX_ATTEMPTS" envDefault:"5"`  // MaxAttempts bounds WithLock acquisition retries.
	MultiProcess bool          `env:"LOCK_MULTI_PROCESS" envDefault:"false"` // MultiProcess declares a horizontally scaled deployment; the in-process fallback refuses to start when true.
}
