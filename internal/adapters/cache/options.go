package cache

import (
	"time"

	"github.com/abdulghaffar349/leaderboard-service/pkg/logger"
)

// Default cache configuration constants.
const (
	defaultThreshold   = 100
	defaultPopularTTL  = 24 * time.Hour
	defaultResponseTTL = time.Hour
	defaultLocalSize   = 10000
	defaultScanCount   = 100
)

type settings struct {
	threshold   int
	popularTTL  time.Duration
	responseTTL time.Duration
	size        int
	scanCount   int64
	logger      logger.Logger
}

func newSettings(opts []Option) settings {
	s := settings{
		threshold:   defaultThreshold,
		popularTTL:  defaultPopularTTL,
		responseTTL: defaultResponseTTL,
		size:        defaultLocalSize,
		scanCount:   defaultScanCount,
	}
	for _, opt := range opts {
		opt(&s)
	}
	if s.logger == nil {
		s.logger = logger.Get().Named("cache")
	}
	return s
}

// Option applies a configuration option to a cache.
type Option func(*settings)

// WithThreshold sets the member count at which a game becomes popular.
func WithThreshold(n int) Option {
	return func(s *settings) {
		if n > 0 {
			s.threshold = n
		}
	}
}

// WithPopularTTL sets how long a popularity flag lives.
func WithPopularTTL(d time.Duration) Option {
	return func(s *settings) {
		if d > 0 {
			s.popularTTL = d
		}
	}
}

// WithResponseTTL sets how long a cached leaderboard response lives.
func WithResponseTTL(d time.Duration) Option {
	return func(s *settings) {
		if d > 0 {
			s.responseTTL = d
		}
	}
}

// WithSize bounds the number of cached responses (LocalCache only).
func WithSize(n int) Option {
	return func(s *settings) {
		if n > 0 {
			s.size = n
		}
	}
}

// WithScanCount sets the SCAN batch hint (RedisCache only).
func WithScanCount(n int64) Option {
	return func(s *settings) {
		if n > 0 {
			s.scanCount = n
		}
	}
}

// WithLogger sets a custom logger for the cache.
func WithLogger(l logger.Logger) Option {
	return func(s *settings) {
		if l != nil {
			s.logger = l
		}
	}
}
