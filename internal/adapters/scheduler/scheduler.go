// Package scheduler runs the periodic export of dirty leaderboards.
package scheduler

import (
	"context"
	"fmt"
	"runtime/debug"
	"sync"
	"time"

	"github.com/abdulghaffar349/leaderboard-service/pkg/logger"
)

// Default scheduler configuration constants.
const (
	defaultInterval        = 10 * time.Minute
	defaultShutdownTimeout = 30 * time.Second
)

// Exporter is the job the scheduler triggers.
type Exporter interface {
	ExportDataToDB(ctx context.Context) error
}

// Scheduler calls Exporter on a fixed interval. Failures are logged and
// wait for the next tick; they never stop the loop.
type Scheduler struct {
	exporter         Exporter
	interval         time.Duration
	name             string
	exportOnShutdown bool
	shutdownTimeout  time.Duration

	// Shutdown control
	shutdown     chan struct{}
	done         chan struct{}
	shutdownOnce sync.Once

	logger logger.Logger
}

// New creates a scheduler for exporter.
func New(exporter Exporter, opts ...Option) *Scheduler {
	s := &Scheduler{
		exporter:         exporter,
		interval:         defaultInterval,
		name:             "export-scheduler",
		exportOnShutdown: true,
		shutdownTimeout:  defaultShutdownTimeout,
		shutdown:         make(chan struct{}),
		done:             make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = logger.Get().Named(s.name)
	}
	return s
}

// Run ticks until ctx is cancelled or Shutdown is called, then optionally
// performs one final export.
func (s *Scheduler) Run(ctx context.Context) {
	defer close(s.done)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.logger.Info(ctx, "export scheduler started", logger.Duration("interval", s.interval))
	for {
		select {
		case <-ctx.Done():
			s.final()
			return
		case <-s.shutdown:
			s.final()
			return
		case <-ticker.C:
			_ = s.RunOnce(ctx)
		}
	}
}

// RunOnce performs a single export, logging the outcome.
func (s *Scheduler) RunOnce(ctx context.Context) (err error) {
	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error(ctx, "panic during export",
				logger.Any("panic", r),
				logger.String("stack", string(debug.Stack())),
			)
			err = fmt.Errorf("panic: %v", r)
		}
	}()

	if err := s.exporter.ExportDataToDB(ctx); err != nil {
		s.logger.Error(ctx, "scheduled export failed",
			logger.Error(err),
			logger.Duration("took", time.Since(start)),
		)
		return err
	}
	s.logger.Debug(ctx, "scheduled export completed", logger.Duration("took", time.Since(start)))
	return nil
}

// Shutdown stops the loop and waits for it, including the final export.
func (s *Scheduler) Shutdown(ctx context.Context) error {
	s.shutdownOnce.Do(func() { close(s.shutdown) })

	select {
	case <-s.done:
		return nil
	case <-ctx.Done():
		s.logger.Warn(ctx, "scheduler shutdown timed out")
		return fmt.Errorf("shutdown timed out: %w", ctx.Err())
	}
}

func (s *Scheduler) final() {
	if !s.exportOnShutdown {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
	defer cancel()

	s.logger.Info(ctx, "running final export")
	_ = s.RunOnce(ctx)
}
