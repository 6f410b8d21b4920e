package timeconv

import (
	"fmt"
	"strings"
	"time"

	"github.com/maypok86/otter/v2"
)

// Default resolver configuration constants.
const (
	defaultResolverCacheSize = 1024
)

// Resolver maps an IANA zone name to a location. It is the injected
// timezone database; implementations must reject unknown names with
// ErrInvalidTimezone.
type Resolver interface {
	Resolve(name string) (*time.Location, error)
}

// ResolverFunc adapts a plain function to Resolver.
type ResolverFunc func(name string) (*time.Location, error)

// Resolve calls f(name).
func (f ResolverFunc) Resolve(name string) (*time.Location, error) { return f(name) }

// ResolverOption applies a configuration option to the CachedResolver.
type ResolverOption func(*CachedResolver)

// WithResolverCacheSize bounds the number of cached locations.
func WithResolverCacheSize(size int) ResolverOption {
	return func(r *CachedResolver) {
		if size > 0 {
			r.cacheSize = size
		}
	}
}

// WithLoader replaces time.LoadLocation as the source of zone data.
func WithLoader(load func(name string) (*time.Location, error)) ResolverOption {
	return func(r *CachedResolver) {
		if load != nil {
			r.load = load
		}
	}
}

// CachedResolver resolves zone names through the system tz database and
// keeps successful lookups in a bounded in-memory cache. Failures are never
// cached.
type CachedResolver struct {
	cache     *otter.Cache[string, *time.Location]
	cacheSize int
	load      func(name string) (*time.Location, error)
}

// NewCachedResolver creates a resolver backed by time.LoadLocation.
func NewCachedResolver(opts ...ResolverOption) *CachedResolver {
	r := &CachedResolver{
		cacheSize: defaultResolverCacheSize,
		load:      time.LoadLocation,
	}

	for _, opt := range opts {
		opt(r)
	}

	r.cache = otter.Must(&otter.Options[string, *time.Location]{
		MaximumSize: r.cacheSize,
	})
	return r
}

// Resolve returns the location for name.
func (r *CachedResolver) Resolve(name string) (*time.Location, error) {
	if loc, ok := r.cache.GetIfPresent(name); ok {
		return loc, nil
	}
	if err := checkName(name); err != nil {
		return nil, err
	}
	loc, err := r.load(name)
	if err != nil {
		return nil, fmt.Errorf("%w: %q: %v", ErrInvalidTimezone, name, err)
	}
	r.cache.Set(name, loc)
	return loc, nil
}

// Len returns the approximate number of cached locations.
func (r *CachedResolver) Len() int {
	return r.cache.EstimatedSize()
}

// checkName rejects names time.LoadLocation would silently map to UTC or
// to the host's zone.
func checkName(name string) error {
	switch trimmed := strings.TrimSpace(name); {
	case trimmed == "":
		return fmt.Errorf("%w: empty name", ErrInvalidTimezone)
	case trimmed != name:
		return fmt.Errorf("%w: %q has surrounding whitespace", ErrInvalidTimezone, name)
	case name == "Local":
		return fmt.Errorf("%w: %q is host dependent", ErrInvalidTimezone, name)
	}
	return nil
}
