package cache

import "time"

// Option applies a configuration option to the ResultCache.
type Option func(*ResultCache)

// WithMaxSize bounds the number of cached plans. Values <= 0 keep the default.
func WithMaxSize(maxSize int) Option {
	return func(c *ResultCache) {
		if maxSize > 0 {
			c.maxSize = maxSize
		}
	}
}

// WithTTL sets how long a plan stays cached after it was written.
// Values <= 0 keep the default.
func WithTTL(ttl time.Duration) Option {
	return func(c *ResultCache) {
		if ttl > 0 {
			c.ttl = ttl
		}
	}
}
