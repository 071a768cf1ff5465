package scheduler

import (
	"time"

	"github.com/abdulghaffar349/leaderboard-service/pkg/logger"
)

// Option applies a configuration option to the Scheduler.
type Option func(*Scheduler)

// WithInterval sets the tick interval.
func WithInterval(d time.Duration) Option {
	return func(s *Scheduler) {
		if d > 0 {
			s.interval = d
		}
	}
}

// WithName sets the scheduler name for logging.
func WithName(name string) Option {
	return func(s *Scheduler) {
		if name != "" {
			s.name = name
		}
	}
}

// WithExportOnShutdown toggles the final export when the loop stops.
func WithExportOnShutdown(enabled bool) Option {
	return func(s *Scheduler) {
		s.exportOnShutdown = enabled
	}
}

// WithShutdownTimeout bounds the final export.
func WithShutdownTimeout(d time.Duration) Option {
	return func(s *Scheduler) {
		if d > 0 {
			s.shutdownTimeout = d
		}
	}
}

// WithLogger sets a custom logger for the scheduler.
func WithLogger(l logger.Logger) Option {
	return func(s *Scheduler) {
		if l != nil {
			s.logger = l
		}
	}
}
