// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Provide New(ctx) to build a Config with defaults.
// - Load layers a YAML file and the environment on top of the defaults.
// - Errors are wrapped with this package's sentinel kinds.
package config

import (
	"context"
	"fmt"
	"runtime"
	"strings"
	"time"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFormat selects text or json log output.
	LogFormat string `koanf:"log_format"`

	// Addr configures the HTTP listen address, e.g. ":9080".
	Addr string `koanf:"addr"`

	// WorkStart and WorkEnd are the default working hours, 0 <= start < end <= 24.
	WorkStart int `koanf:"work_start"`
	WorkEnd   int `koanf:"work_end"`

	// DefaultDurationHours is used when a request omits the meeting length.
	DefaultDurationHours float64 `koanf:"default_duration_hours"`

	// MaxParticipants caps the selected participants of one request.
	MaxParticipants int `koanf:"max_participants"`

	// MaxSearchDays caps POST /v1/meetings/search?days.
	MaxSearchDays int `koanf:"max_search_days"`

	// MaxSlotLimit caps the limit parameter of the find endpoint.
	MaxSlotLimit int `koanf:"max_slot_limit"`

	// CacheSize bounds the scheduling result cache.
	CacheSize int `koanf:"cache_size"`

	// CacheTTLSeconds sets how long a cached result stays valid.
	CacheTTLSeconds int `koanf:"cache_ttl_seconds"`

	// ZoneCacheSize bounds the resolved-location cache.
	ZoneCacheSize int `koanf:"zone_cache_size"`

	// LabelCacheSize bounds the display-label cache.
	LabelCacheSize int `koanf:"label_cache_size"`

	// QueueSize bounds the multi-day search job queue.
	QueueSize int `koanf:"queue_size"`

	// WorkerCount sets the number of search workers.
	WorkerCount int `koanf:"worker_count"`

	// RateLimitRPS limits each client's /v1 requests per second; 0 disables.
	RateLimitRPS float64 `koanf:"rate_limit_rps"`

	// RateLimitBurst is the request burst allowed above RateLimitRPS.
	RateLimitBurst int `koanf:"rate_limit_burst"`

	// Abbreviations overrides display abbreviations per IANA zone.
	Abbreviations map[string]string `koanf:"abbreviations"`
}

// New creates a Config with defaults. Context is accepted first to satisfy
// the project-wide convention.
func New(_ context.Context) *Config {
	return &Config{
		LogLevel:             "info",
		LogFormat:            "text",
		Addr:                 ":9080",
		WorkStart:            9,
		WorkEnd:              18,
		DefaultDurationHours: 1,
		MaxParticipants:      50,
		MaxSearchDays:        31,
		MaxSlotLimit:         24,
		CacheSize:            4096,
		CacheTTLSeconds:      600,
		ZoneCacheSize:        1024,
		LabelCacheSize:       4096,
		QueueSize:            1024,
		WorkerCount:          runtime.NumCPU(),
		RateLimitRPS:         20,
		RateLimitBurst:       40,
		Abbreviations:        map[string]string{},
	}
}

// CacheTTL returns CacheTTLSeconds as a duration.
func (c *Config) CacheTTL() time.Duration {
	return time.Duration(c.CacheTTLSeconds) * time.Second
}

// Validate checks ranges and returns ErrInvalidConfig on the first problem.
func (c *Config) Validate() error {
	switch {
	case strings.TrimSpace(c.Addr) == "":
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	case c.WorkStart < 0 || c.WorkEnd > 24 || c.WorkStart >= c.WorkEnd:
		return fmt.Errorf("%w: working hours %d-%d", ErrInvalidConfig, c.WorkStart, c.WorkEnd)
	case c.DefaultDurationHours <= 0 || c.DefaultDurationHours > 24:
		return fmt.Errorf("%w: default_duration_hours %v", ErrInvalidConfig, c.DefaultDurationHours)
	case c.MaxParticipants < 2:
		return fmt.Errorf("%w: max_participants must be at least 2", ErrInvalidConfig)
	case c.MaxSearchDays < 1:
		return fmt.Errorf("%w: max_search_days must be positive", ErrInvalidConfig)
	case c.MaxSlotLimit < 1:
		return fmt.Errorf("%w: max_slot_limit must be positive", ErrInvalidConfig)
	case c.CacheSize < 1 || c.CacheTTLSeconds < 1:
		return fmt.Errorf("%w: cache_size and cache_ttl_seconds must be positive", ErrInvalidConfig)
	case c.ZoneCacheSize < 1 || c.LabelCacheSize < 1:
		return fmt.Errorf("%w: zone_cache_size and label_cache_size must be positive", ErrInvalidConfig)
	case c.QueueSize < 1:
		return fmt.Errorf("%w: queue_size must be positive", ErrInvalidConfig)
	case c.RateLimitRPS < 0 || c.RateLimitBurst < 0:
		return fmt.Errorf("%w: rate limits must not be negative", ErrInvalidConfig)
	}
	switch strings.ToLower(c.LogFormat) {
	case "text", "json":
	default:
		return fmt.Errorf("%w: log_format %q", ErrInvalidConfig, c.LogFormat)
	}
	return nil
}
