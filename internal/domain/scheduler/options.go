package scheduler

import "github.com/okian/tzmeet/internal/domain/timeconv"

// Option applies a configuration option to the Scheduler.
type Option func(*Scheduler)

// WithResolver sets the timezone database used for conversions.
func WithResolver(r timeconv.Resolver) Option {
	return func(s *Scheduler) {
		if r != nil {
			s.resolver = r
		}
	}
}
