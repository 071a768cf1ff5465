package repository

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"

	"github.com/abdulghaffar349/leaderboard-service/internal/domain/types"
	"github.com/abdulghaffar349/leaderboard-service/pkg/logger"
	"github.com/abdulghaffar349/leaderboard-service/pkg/metrics"
)

// snapshotFunc reads a game's full ranking for export.
type snapshotFunc func(ctx context.Context, gameID string) ([]types.ScoreRecord, error)

// exporter is the drain-then-upsert loop shared by both stores.
type exporter struct {
	backend     string
	dirty       *DirtyTracker
	archive     Archive
	concurrency int
	logger      logger.Logger
}

func newExporter(backend string, dirty *DirtyTracker, s settings) *exporter {
	return &exporter{
		backend:     backend,
		dirty:       dirty,
		archive:     s.archive,
		concurrency: s.exportConcurrency,
		logger:      s.logger,
	}
}

func (e *exporter) exportAll(ctx context.Context, snapshot snapshotFunc) error {
	start := time.Now()
	games := e.dirty.Drain()
	if len(games) == 0 {
		return nil
	}
	if e.archive == nil {
		e.remark(games)
		return ErrNoArchive
	}

	pool, err := ants.NewPool(min(e.concurrency, len(games)))
	if err != nil {
		e.remark(games)
		return fmt.Errorf("%w: create pool: %w", ErrExportFailed, err)
	}
	defer pool.Release()

	results := make([]error, len(games))
	var wg sync.WaitGroup
	for i, gameID := range games {
		idx, id := i, gameID

		wg.Add(1)
		task := func() {
			defer wg.Done()
			results[idx] = e.exportGame(ctx, id, snapshot)
		}
		if err := pool.Submit(task); err != nil {
			wg.Done()
			results[idx] = err
		}
	}
	wg.Wait()

	var errs []error
	var failed []string
	for i, err := range results {
		if err != nil {
			failed = append(failed, games[i])
			errs = append(errs, fmt.Errorf("game %q: %w", games[i], err))
		}
	}
	e.remark(failed)

	metrics.RecordExportedGames(len(games)-len(failed), len(failed))
	metrics.RecordExportRun(len(failed) == 0, float64(time.Since(start).Milliseconds()))

	if len(errs) > 0 {
		e.logger.Error(ctx, "export finished with failures",
			logger.String("backend", e.backend),
			logger.Int("games", len(games)),
			logger.Int("failed", len(failed)),
		)
		return fmt.Errorf("%w: %d of %d games: %w", ErrExportFailed, len(failed), len(games), errors.Join(errs...))
	}

	e.logger.Info(ctx, "export finished",
		logger.String("backend", e.backend),
		logger.Int("games", len(games)),
		logger.Duration("took", time.Since(start)),
	)
	return nil
}

func (e *exporter) exportGame(ctx context.Context, gameID string, snapshot snapshotFunc) (err error) {
	defer func() {
		if r := recover(); r != nil {
			e.logger.Error(ctx, "panic while exporting game",
				logger.String("gameId", gameID),
				logger.Any("panic", r),
				logger.String("stack", string(debug.Stack())),
			)
			err = fmt.Errorf("panic: %v", r)
		}
	}()

	if err := ctx.Err(); err != nil {
		return err
	}
	records, err := snapshot(ctx, gameID)
	if err != nil {
		return fmt.Errorf("read ranking: %w", err)
	}
	if err := e.archive.Upsert(ctx, gameID, records); err != nil {
		return fmt.Errorf("upsert: %w", err)
	}
	return nil
}

func (e *exporter) remark(games []string) {
	for _, g := range games {
		e.dirty.Mark(g)
	}
}
