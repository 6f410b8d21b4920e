package service

import (
	"time"

	"github.com/okian/tzmeet/internal/domain/model"
	"github.com/okian/tzmeet/internal/domain/timeconv"
	"github.com/okian/tzmeet/pkg/logger"
)

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithLogger sets a custom logger for the service.
func WithLogger(logger logger.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithWorkingHours sets the hours used when a request carries none.
func WithWorkingHours(start, end int) Option {
	return func(s *Service) {
		s.workingHours = model.WorkingHours{Start: start, End: end}
	}
}

// WithDefaultDuration sets the meeting length used when a request carries none.
func WithDefaultDuration(hours float64) Option {
	return func(s *Service) {
		if hours > 0 {
			s.defaultDuration = hours
		}
	}
}

// WithMaxParticipants caps the selected participants of one request.
func WithMaxParticipants(n int) Option {
	return func(s *Service) {
		if n > 1 {
			s.maxParticipants = n
		}
	}
}

// WithMaxSearchDays caps the number of days of one search.
func WithMaxSearchDays(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.maxSearchDays = n
		}
	}
}

// WithCacheSize bounds the result cache.
func WithCacheSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.cacheSize = size
		}
	}
}

// WithCacheTTL sets how long results stay cached.
func WithCacheTTL(ttl time.Duration) Option {
	return func(s *Service) {
		if ttl > 0 {
			s.cacheTTL = ttl
		}
	}
}

// WithZoneCacheSize bounds the cache of resolved locations. It has no
// effect when WithResolver supplies the resolver.
func WithZoneCacheSize(size int) Option {
	return func(s *Service) {
		s.zoneCacheSize = size
	}
}

// WithLabelCacheSize bounds the cache of display labels.
func WithLabelCacheSize(size int) Option {
	return func(s *Service) {
		s.labelCacheSize = size
	}
}

// WithQueueSize sets the maximum number of queued day jobs.
func WithQueueSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.queueSize = size
		}
	}
}

// WithWorkerCount sets the number of search workers.
func WithWorkerCount(count int) Option {
	return func(s *Service) {
		if count > 0 {
			s.workerCount = count
		}
	}
}

// WithAbbreviations overrides display abbreviations per zone.
func WithAbbreviations(overrides map[string]string) Option {
	return func(s *Service) {
		s.abbreviations = overrides
	}
}

// WithResolver replaces the timezone database.
func WithResolver(r timeconv.Resolver) Option {
	return func(s *Service) {
		if r != nil {
			s.resolver = r
		}
	}
}
