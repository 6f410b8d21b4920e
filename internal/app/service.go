// Package service ties the scheduling engine to caching, the multi-day
// search pipeline and metrics. It implements the dependencies of the HTTP
// API and the command line tool.
package service

import (
	"context"
	"runtime"
	"sync"
	"time"

	"github.com/okian/tzmeet/internal/adapters/cache"
	jobqueue "github.com/okian/tzmeet/internal/adapters/mq/queue"
	workerpool "github.com/okian/tzmeet/internal/adapters/mq/worker"
	"github.com/okian/tzmeet/internal/domain/model"
	"github.com/okian/tzmeet/internal/domain/scheduler"
	"github.com/okian/tzmeet/internal/domain/timeconv"
	"github.com/okian/tzmeet/pkg/logger"
	"github.com/okian/tzmeet/pkg/metrics"
)

// Default service configuration constants.
const (
	defaultWorkStart       = 9
	defaultWorkEnd         = 18
	defaultDurationHours   = 1.0
	defaultMaxParticipants = 50
	defaultMaxSearchDays   = 31
	defaultCacheSize       = 4096
	defaultCacheTTL        = 10 * time.Minute
	defaultQueueSize       = 1024
)

// Service implements the meeting-time API.
type Service struct {
	mu sync.RWMutex

	// Engine, built eagerly so one-off calls work without Start.
	resolver  timeconv.Resolver
	converter *timeconv.Converter
	labeler   *timeconv.Labeler
	scheduler *scheduler.Scheduler
	results   *cache.ResultCache

	// Search pipeline, built by Start.
	jobs    *jobqueue.InMemoryQueue
	workers *workerpool.Pool
	cancel  context.CancelFunc

	// Configuration
	workingHours    model.WorkingHours
	defaultDuration float64
	maxParticipants int
	maxSearchDays   int
	cacheSize       int
	cacheTTL        time.Duration
	zoneCacheSize   int
	labelCacheSize  int
	queueSize       int
	workerCount     int
	abbreviations   map[string]string

	started bool

	logger logger.Logger
}

// New constructs a new Service.
func New(opts ...Option) *Service {
	s := &Service{
		workingHours:    model.WorkingHours{Start: defaultWorkStart, End: defaultWorkEnd},
		defaultDuration: defaultDurationHours,
		maxParticipants: defaultMaxParticipants,
		maxSearchDays:   defaultMaxSearchDays,
		cacheSize:       defaultCacheSize,
		cacheTTL:        defaultCacheTTL,
		queueSize:       defaultQueueSize,
		workerCount:     runtime.NumCPU(),
	}

	for _, opt := range opts {
		opt(s)
	}

	if s.resolver == nil {
		s.resolver = timeconv.NewCachedResolver(timeconv.WithResolverCacheSize(s.zoneCacheSize))
	}
	s.converter = timeconv.NewConverter(s.resolver)
	s.labeler = timeconv.NewLabeler(s.resolver,
		timeconv.WithAbbreviations(s.abbreviations),
		timeconv.WithLabelCacheSize(s.labelCacheSize),
	)
	s.scheduler = scheduler.New(scheduler.WithResolver(s.resolver))
	s.results = cache.New(cache.WithMaxSize(s.cacheSize), cache.WithTTL(s.cacheTTL))

	return s
}

// Start launches the multi-day search workers.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}
	if s.logger == nil {
		s.logger = logger.Get()
	}

	s.logger.Info(ctx, "starting meeting scheduler service...")

	// Workers outlive the start request; they stop with Stop.
	workCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	s.cancel = cancel
	s.jobs = jobqueue.NewInMemoryQueue(jobqueue.WithCapacity(s.queueSize))
	s.workers = workerpool.NewPool(s.workerCount, s.jobs, dayPlanner{s: s},
		workerpool.WithLogger(s.logger.Named("worker")))
	s.workers.Start(workCtx)

	s.started = true
	s.logger.Info(ctx, "meeting scheduler service started",
		logger.Int("workers", s.workers.Size()),
		logger.Int("queueSize", s.queueSize),
		logger.Int("cacheSize", s.cacheSize),
		logger.Duration("cacheTTL", s.cacheTTL),
		logger.String("workingHours", formatHours(s.workingHours)),
	)
	return nil
}

// Stop drains the search queue and stops the workers.
func (s *Service) Stop() {
	s.mu.Lock()
	if !s.started {
		s.mu.Unlock()
		return
	}
	s.started = false
	workers, cancel, log := s.workers, s.cancel, s.logger
	s.mu.Unlock()

	// Workers still log through the service, so the lock is released first.
	ctx := context.Background()
	log.Info(ctx, "stopping meeting scheduler service...")

	if err := workers.Shutdown(ctx); err != nil {
		log.Warn(ctx, "worker pool did not drain", logger.Error(err))
	}
	cancel()

	log.Info(ctx, "meeting scheduler service stopped")
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]any {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := map[string]any{
		"started":         s.started,
		"workingHours":    formatHours(s.workingHours),
		"defaultDuration": s.defaultDuration,
		"maxParticipants": s.maxParticipants,
		"maxSearchDays":   s.maxSearchDays,
		"workerCount":     s.workerCount,
		"queueSize":       s.queueSize,
		"cacheEntries":    s.results.Size(),
		"cacheHits":       s.results.Hits(),
		"cacheMisses":     s.results.Misses(),
	}
	if cr, ok := s.resolver.(*timeconv.CachedResolver); ok {
		stats["resolvedZones"] = cr.Len()
	}

	if s.started {
		stats["queueLength"] = s.jobs.Len()
		stats["activeWorkers"] = s.workers.Active()
	}

	metrics.UpdateCacheSize(s.results.Size())
	return stats
}

// Defaults returns the working hours and duration applied to requests
// that leave them unset.
func (s *Service) Defaults() (model.WorkingHours, float64) {
	return s.workingHours, s.defaultDuration
}

// MaxSearchDays returns the configured search window cap.
func (s *Service) MaxSearchDays() int { return s.maxSearchDays }

func (s *Service) log() logger.Logger {
	s.mu.RLock()
	l := s.logger
	s.mu.RUnlock()
	if l == nil {
		return logger.Get()
	}
	return l
}
