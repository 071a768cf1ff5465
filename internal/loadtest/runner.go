// Package loadtest drives the leaderboard API with concurrent score
// submissions and verifies the rankings it serves afterwards.
package loadtest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/panjf2000/ants/v2"

	"github.com/abdulghaffar349/leaderboard-service/pkg/logger"
)

// File permission constants.
const (
	directoryPermission = 0750
	filePermission      = 0600
)

// ErrVerification is returned when a served leaderboard disagrees with the
// submitted scores.
var ErrVerification = errors.New("leaderboard verification failed")

// Run executes the complete load run and returns its statistics.
func Run(ctx context.Context, cfg *Config) (*Stats, error) {
	log := logger.Get().Named("loadtest")
	stats := &Stats{StartTime: time.Now()}

	log.Info(ctx, "starting leaderboard load run",
		logger.String("baseURL", cfg.BaseURL),
		logger.Int("games", cfg.Games),
		logger.Int("usersPerGame", cfg.UsersPerGame),
		logger.Int("updatesPerUser", cfg.UpdatesPerUser),
		logger.Int("workers", cfg.Workers),
	)

	c := newClient(cfg.BaseURL, cfg.Timeout)
	if err := c.health(ctx); err != nil {
		return stats, fmt.Errorf("service health check failed: %w", err)
	}

	plans, want := generatePlans(cfg, time.Now().UTC())
	stats.EventsGenerated = len(plans) * cfg.UpdatesPerUser

	if err := submitPlans(ctx, cfg, c, plans, stats, log); err != nil {
		return stats, fmt.Errorf("submission failed: %w", err)
	}

	verifyErr := verifyAll(ctx, cfg, c, want, stats, log)

	if cfg.OutputFile != "" {
		if err := saveEvents(cfg.OutputFile, plans); err != nil {
			log.Warn(ctx, "failed to save events to file", logger.Error(err))
		}
	}

	stats.EndTime = time.Now()
	stats.Duration = stats.EndTime.Sub(stats.StartTime)
	displayFinalStats(ctx, log, stats)

	return stats, verifyErr
}

// submitPlans runs each user's plan sequentially on a bounded ants pool.
func submitPlans(ctx context.Context, cfg *Config, c *client, plans []userPlan, stats *Stats, log logger.Logger) error {
	pool, err := ants.NewPool(max(cfg.Workers, 1))
	if err != nil {
		return fmt.Errorf("create worker pool: %w", err)
	}
	defer pool.Release()

	var (
		wg         sync.WaitGroup
		submitted  atomic.Int64
		successful atomic.Int64
		failed     atomic.Int64
	)

	for _, plan := range plans {
		if ctx.Err() != nil {
			break
		}
		wg.Add(1)
		if err := pool.Submit(func() {
			defer wg.Done()
			for _, ev := range plan.Events {
				submitted.Add(1)
				if err := c.submit(ctx, ev); err != nil {
					failed.Add(1)
					if cfg.Verbose {
						log.Warn(ctx, "submit failed", logger.String("gameId", ev.GameID), logger.Error(err))
					}
					continue
				}
				successful.Add(1)
			}
		}); err != nil {
			wg.Done()
			return fmt.Errorf("submit job: %w", err)
		}
	}
	wg.Wait()

	stats.EventsSubmitted = int(submitted.Load())
	stats.EventsSuccessful = int(successful.Load())
	stats.EventsFailed = int(failed.Load())

	log.Info(ctx, "event submission completed",
		logger.Int("successful", stats.EventsSuccessful),
		logger.Int("failed", stats.EventsFailed),
	)
	if stats.EventsFailed > 0 {
		return fmt.Errorf("%d of %d submissions failed", stats.EventsFailed, stats.EventsSubmitted)
	}
	return ctx.Err()
}

func verifyAll(ctx context.Context, cfg *Config, c *client, want expected, stats *Stats, log logger.Logger) error {
	games := make([]string, 0, len(want))
	for g := range want {
		games = append(games, g)
	}
	sort.Strings(games)

	var errs []error
	for _, gameID := range games {
		lb, err := c.leaderboard(ctx, gameID, cfg.TopN)
		if err == nil {
			err = verifyGame(want[gameID], lb, cfg.TopN)
		}
		if err != nil {
			stats.GamesMismatched++
			errs = append(errs, fmt.Errorf("game %s: %w", gameID, err))
			log.Error(ctx, "leaderboard mismatch", logger.String("gameId", gameID), logger.Error(err))
			continue
		}
		stats.GamesVerified++
		if cfg.Verbose && len(lb.Leaderboard) > 0 {
			top := lb.Leaderboard[0]
			log.Info(ctx, "game verified",
				logger.String("gameId", gameID),
				logger.Int("count", lb.Count),
				logger.String("leader", top.UserID),
				logger.Int64("leaderScore", top.Score),
			)
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrVerification, errors.Join(errs...))
	}
	return nil
}

func saveEvents(filename string, plans []userPlan) error {
	if dir := filepath.Dir(filename); dir != "." {
		if err := os.MkdirAll(dir, directoryPermission); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}

	events := make([]ScoreEvent, 0, len(plans))
	for _, p := range plans {
		events = append(events, p.Events...)
	}
	data, err := json.MarshalIndent(events, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal events: %w", err)
	}
	if err := os.WriteFile(filename, data, filePermission); err != nil {
		return fmt.Errorf("failed to write events: %w", err)
	}
	return nil
}

func displayFinalStats(ctx context.Context, log logger.Logger, stats *Stats) {
	var eventsPerSecond float64
	if stats.Duration > 0 {
		eventsPerSecond = float64(stats.EventsSubmitted) / stats.Duration.Seconds()
	}

	log.Info(ctx, "final statistics",
		logger.Int("eventsGenerated", stats.EventsGenerated),
		logger.Int("eventsSubmitted", stats.EventsSubmitted),
		logger.Int("eventsSuccessful", stats.EventsSuccessful),
		logger.Int("eventsFailed", stats.EventsFailed),
		logger.Int("gamesVerified", stats.GamesVerified),
		logger.Int("gamesMismatched", stats.GamesMismatched),
		logger.Duration("duration", stats.Duration),
		logger.Float64("eventsPerSecond", eventsPerSecond),
	)
}
