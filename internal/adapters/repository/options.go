package repository

import (
	"github.com/abdulghaffar349/leaderboard-service/pkg/logger"
)

// Default store configuration constants.
const (
	defaultKeyPrefix         = "leaderboard:"
	defaultExportConcurrency = 4
)

type settings struct {
	archive           Archive
	exportConcurrency int
	keyPrefix         string
	logger            logger.Logger
}

func newSettings(opts []Option) settings {
	s := settings{
		exportConcurrency: defaultExportConcurrency,
		keyPrefix:         defaultKeyPrefix,
	}
	for _, opt := range opts {
		opt(&s)
	}
	if s.logger == nil {
		s.logger = logger.Get().Named("repository")
	}
	return s
}

// Option applies a configuration option to a ranked store.
type Option func(*settings)

// WithArchive sets the durable store ExportAll writes to.
func WithArchive(a Archive) Option {
	return func(s *settings) {
		if a != nil {
			s.archive = a
		}
	}
}

// WithExportConcurrency bounds the number of games exported in parallel.
func WithExportConcurrency(n int) Option {
	return func(s *settings) {
		if n > 0 {
			s.exportConcurrency = n
		}
	}
}

// WithKeyPrefix sets the Redis key prefix for sorted sets (RedisStore only).
func WithKeyPrefix(prefix string) Option {
	return func(s *settings) {
		if prefix != "" {
			s.keyPrefix = prefix
		}
	}
}

// WithLogger sets a custom logger for the store.
func WithLogger(l logger.Logger) Option {
	return func(s *settings) {
		if l != nil {
			s.logger = l
		}
	}
}
