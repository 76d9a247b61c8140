package pacqueue

import "time"

// Config holds queue settings loaded from the environment.
type Config struct {
	// Capacity bounds pending operations; Enqueue fails fast beyond it.
	Capacity int `env:"PACQUEUE_CAPACITY" envDefault:"100"`
	// MaxInFlight bounds concurrent provider calls per process.
	MaxInFlight int `env:"PACQUEUE_MAX_IN_FLIGHT" envDefault:"4"`
	// TickInterval is the dispatch loop period.
	TickInterval time.Duration `env:"PACQUEUE_TICK_INTERVAL" envDefault:"100ms"`
	// MaxRetries is the retry budget for transient failures.
	MaxRetries int `env:"PACQUEUE_MAX_RETRIES" envDefault:"3"`
	// RetryDelay gates how soon a retried operation may dispatch again.
	RetryDelay time.Duration `env:"PACQUEUE_RETRY_DELAY" envDefault:"2s"`

	// Timeout tiers per operation kind.
	QuickTimeout   time.Duration `env:"PACQUEUE_QUICK_TIMEOUT" envDefault:"5s"`
	DefaultTimeout time.Duration `env:"PACQUEUE_DEFAULT_TIMEOUT" envDefault:"30s"`
	SlowTimeout    time.Duration `env:"PACQUEUE_SLOW_TIMEOUT" envDefault:"2m"`
}

// Options expands the config into constructor options.
func (c Config) Options() []Option {
	return []Option{
		WithCapacity(c.Capacity),
		WithMaxInFlight(c.MaxInFlight),
		WithTickInterval(c.TickInterval),
		WithMaxRetries(c.MaxRetries),
		WithRetryDelay(c.RetryDelay),
		WithTimeout(KindQuick, c.QuickTimeout),
		WithTimeout(KindDefault, c.DefaultTimeout),
		WithTimeout(KindSlow, c.SlowTimeout),
	}
}
