package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/abdulghaffar349/leaderboard-service/internal/adapters/archive"
	"github.com/abdulghaffar349/leaderboard-service/internal/adapters/cache"
	"github.com/abdulghaffar349/leaderboard-service/internal/adapters/http/api"
	"github.com/abdulghaffar349/leaderboard-service/internal/adapters/repository"
	"github.com/abdulghaffar349/leaderboard-service/internal/adapters/scheduler"
	service "github.com/abdulghaffar349/leaderboard-service/internal/app"
	"github.com/abdulghaffar349/leaderboard-service/internal/config"
	"github.com/abdulghaffar349/leaderboard-service/pkg/logger"
)

// HTTP server timeout constants.
const (
	readTimeout            = 10 * time.Second
	writeTimeout           = 10 * time.Second
	idleTimeout            = 60 * time.Second
	readHeaderTimeout      = 5 * time.Second
	shutdownTimeout        = 30 * time.Second
	connectTimeout         = 10 * time.Second
	serviceMetricsInterval = 5 * time.Second
)

func main() {
	if err := run(); err != nil {
		_, _ = os.Stderr.WriteString(err.Error() + "\n")
		os.Exit(1)
	}
}

func run() error {
	// Root context with cancel on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Load configuration (defaults -> optional file -> env)
	cfg, err := config.Load(ctx)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if err := logger.Init(logOptions(cfg)...); err != nil {
		return fmt.Errorf("failed to initialize logging: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	log := logger.Get()
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		log.Warn(ctx, "invalid log_level; falling back to info", logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}

	app, err := build(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer app.close()

	if err := app.start(ctx); err != nil {
		return err
	}
	return app.serve(ctx)
}

// serve runs the HTTP server until ctx is cancelled or the listener fails,
// then drains it and shuts the application down. A listener failure is
// returned.
func (a *application) serve(ctx context.Context) error {
	log := a.log
	srv := &http.Server{
		Addr:              a.cfg.Addr,
		Handler:           a.handler,
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Info(ctx, "starting HTTP server", logger.String("addr", a.cfg.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	var runErr error
	select {
	case <-ctx.Done():
		log.Info(ctx, "shutting down server...")
	case err := <-serveErr:
		if err != nil {
			log.Error(ctx, "HTTP server failed", logger.Error(err))
			runErr = fmt.Errorf("http server: %w", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error(shutdownCtx, "server shutdown failed", logger.Error(err))
	}
	a.shutdown(shutdownCtx)

	log.Info(shutdownCtx, "server stopped")
	return runErr
}

// application holds the process-wide singletons built from config.
type application struct {
	cfg     *config.Config
	log     logger.Logger
	svc     *service.Service
	sched   *scheduler.Scheduler
	handler http.Handler

	closers []func()
	cancel  context.CancelFunc
}

// build wires archive, ranked store, popularity cache, service, scheduler
// and HTTP routes. On error everything already opened is closed.
func build(ctx context.Context, cfg *config.Config, log logger.Logger) (_ *application, err error) {
	app := &application{cfg: cfg, log: log}
	defer func() {
		if err != nil {
			app.close()
		}
	}()

	arch, err := app.openArchive(ctx)
	if err != nil {
		return nil, err
	}

	var rdb *redis.Client
	if cfg.MemoryAdapter == config.BackendRedis || cfg.CacheBackend == config.BackendRedis {
		if rdb, err = app.openRedis(ctx); err != nil {
			return nil, err
		}
	}

	storeOpts := []repository.Option{
		repository.WithArchive(arch),
		repository.WithExportConcurrency(cfg.ExportConcurrency),
		repository.WithLogger(log.Named("store")),
	}
	var store repository.Store
	if cfg.MemoryAdapter == config.BackendRedis {
		store = repository.NewRedisStore(rdb, storeOpts...)
	} else {
		store = repository.NewMemoryStore(storeOpts...)
	}

	cacheOpts := []cache.Option{
		cache.WithThreshold(cfg.PopularThreshold),
		cache.WithPopularTTL(cfg.PopularGameTTL),
		cache.WithResponseTTL(cfg.PopularGameResponseTTL),
		cache.WithSize(cfg.LocalCacheSize),
		cache.WithLogger(log.Named("cache")),
	}
	var popularity cache.PopularityCache
	if cfg.CacheBackend == config.BackendRedis {
		popularity = cache.NewRedisCache(rdb, cacheOpts...)
	} else {
		popularity = cache.NewLocalCache(cacheOpts...)
	}

	app.svc = service.New(store, popularity, service.WithLogger(log.Named("service")))
	app.sched = scheduler.New(app.svc,
		scheduler.WithInterval(cfg.ExportInterval),
		scheduler.WithExportOnShutdown(cfg.ExportOnShutdown),
		scheduler.WithLogger(log.Named("scheduler")),
	)
	app.handler = api.NewServer(app.svc, app.svc,
		api.WithMaxLimit(cfg.MaxLeaderboardLimit),
		api.WithDevelopment(cfg.IsDevelopment()),
		api.WithLogger(log.Named("api")),
	).Routes()

	log.Info(ctx, "components wired",
		logger.String("store", store.Backend()),
		logger.String("cache", popularity.Backend()),
	)
	return app, nil
}

// openArchive connects and migrates PostgreSQL, or falls back to memory
// when no database is configured.
func (a *application) openArchive(ctx context.Context) (repository.Archive, error) {
	if a.cfg.DatabaseURL == "" {
		a.log.Warn(ctx, "database_url empty; archives kept in memory only")
		return archive.NewMemoryArchive(), nil
	}

	connectCtx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()

	if err := archive.Migrate(connectCtx, a.cfg.DatabaseURL, a.log.Named("migrate")); err != nil {
		return nil, fmt.Errorf("failed to migrate archive: %w", err)
	}
	pool, err := archive.Connect(connectCtx, a.cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect archive: %w", err)
	}
	pg := archive.NewPostgresArchive(pool, archive.WithLogger(a.log.Named("archive")))
	a.closers = append(a.closers, pg.Close)
	return pg, nil
}

func (a *application) openRedis(ctx context.Context) (*redis.Client, error) {
	opt, err := redis.ParseURL(a.cfg.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("invalid redis_url: %w", err)
	}
	rdb := redis.NewClient(opt)
	a.closers = append(a.closers, func() { _ = rdb.Close() })

	pingCtx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect redis: %w", err)
	}
	a.log.Info(ctx, "connected to redis", logger.String("addr", opt.Addr))
	return rdb, nil
}

// start marks the service live, optionally clears the cache and launches
// the export scheduler and the stats refresher.
func (a *application) start(ctx context.Context) error {
	if err := a.svc.Start(ctx); err != nil {
		return fmt.Errorf("failed to start service: %w", err)
	}
	if a.cfg.ClearCacheOnStart {
		a.svc.ResetCache(ctx)
	}

	bg, cancel := context.WithCancel(context.WithoutCancel(ctx))
	a.cancel = cancel
	go a.sched.Run(bg)
	go refreshServiceMetrics(bg, a.svc)
	return nil
}

// shutdown stops the scheduler (running the final export) and the service.
func (a *application) shutdown(ctx context.Context) {
	if err := a.sched.Shutdown(ctx); err != nil {
		a.log.Error(ctx, "scheduler shutdown failed", logger.Error(err))
	}
	if a.cancel != nil {
		a.cancel()
	}
	a.svc.Stop()
}

func (a *application) close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}

// refreshServiceMetrics keeps the stats-derived gauges current.
func refreshServiceMetrics(ctx context.Context, svc *service.Service) {
	ticker := time.NewTicker(serviceMetricsInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			_ = svc.GetStats()
		}
	}
}

func logOptions(cfg *config.Config) []logger.Option {
	var opts []logger.Option
	if cfg.LogFile != "" {
		opts = append(opts, logger.WithFile(cfg.LogFile, cfg.LogMaxSizeMB))
	}
	if cfg.ErrorLogFile != "" {
		opts = append(opts, logger.WithErrorFile(cfg.ErrorLogFile, cfg.LogMaxSizeMB))
	}
	return opts
}
