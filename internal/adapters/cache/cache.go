// Package cache memoizes scheduling results by request fingerprint.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/maypok86/otter/v2"
	"github.com/okian/tzmeet/internal/domain/model"
)

// Default cache configuration constants.
const (
	defaultMaxSize = 4096
	defaultTTL     = 10 * time.Minute
)

// ResultCache is a bounded, expiring store of scheduling results. Results
// depend only on the request and the tz database, so a hit is always
// equivalent to recomputing.
type ResultCache struct {
	cache   *otter.Cache[string, model.Result]
	maxSize int
	ttl     time.Duration
	hits    atomic.Int64
	misses  atomic.Int64
}

// New creates a ResultCache.
func New(opts ...Option) *ResultCache {
	c := &ResultCache{
		maxSize: defaultMaxSize,
		ttl:     defaultTTL,
	}

	for _, opt := range opts {
		opt(c)
	}

	c.cache = otter.Must(&otter.Options[string, model.Result]{
		MaximumSize:      c.maxSize,
		ExpiryCalculator: otter.ExpiryWriting[string, model.Result](c.ttl),
	})
	return c
}

// Get returns the cached result for key.
func (c *ResultCache) Get(key string) (model.Result, bool) {
	res, ok := c.cache.GetIfPresent(key)
	if ok {
		c.hits.Add(1)
	} else {
		c.misses.Add(1)
	}
	return res, ok
}

// Put stores res under key.
func (c *ResultCache) Put(key string, res model.Result) {
	c.cache.Set(key, res)
}

// Size returns the approximate number of cached entries.
func (c *ResultCache) Size() int {
	return c.cache.EstimatedSize()
}

// Hits returns the number of successful lookups.
func (c *ResultCache) Hits() int64 { return c.hits.Load() }

// Misses returns the number of failed lookups.
func (c *ResultCache) Misses() int64 { return c.misses.Load() }

// Fingerprint derives a stable key from everything that affects a result.
// Participant order is kept since it determines the order of participant
// times within each slot; unselected participants are ignored.
func Fingerprint(req model.Request) string {
	h := sha256.New()
	fmt.Fprintf(h, "ref=%s|date=%s|wh=%d-%d|d=%s",
		req.ReferenceTimezone,
		req.Date,
		req.WorkingHours.Start,
		req.WorkingHours.End,
		strconv.FormatFloat(req.DurationHours, 'g', -1, 64),
	)
	for _, p := range model.Selected(req.Participants) {
		fmt.Fprintf(h, "|%q:%q:%q:%t", p.ID, p.Name, p.Timezone, p.Host)
	}
	return hex.EncodeToString(h.Sum(nil))
}
