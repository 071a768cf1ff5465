package archive

import (
	"context"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/abdulghaffar349/leaderboard-service/internal/adapters/repository"
	"github.com/abdulghaffar349/leaderboard-service/internal/domain/types"
	"github.com/abdulghaffar349/leaderboard-service/pkg/logger"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

const (
	upsertSQL = `INSERT INTO leaderboards (game_id, scores, updated_at)
VALUES ($1, $2, now())
ON CONFLICT (game_id) DO UPDATE SET scores = EXCLUDED.scores, updated_at = EXCLUDED.updated_at`

	loadSQL = `SELECT scores FROM leaderboards WHERE game_id = $1`

	defaultQueryTimeout = 10 * time.Second
)

var _ repository.Archive = (*PostgresArchive)(nil)

// PostgresArchive stores one JSONB document per game in the leaderboards table.
type PostgresArchive struct {
	pool         *pgxpool.Pool
	queryTimeout time.Duration
	logger       logger.Logger
}

// Option applies a configuration option to the PostgresArchive.
type Option func(*PostgresArchive)

// WithQueryTimeout bounds every statement.
func WithQueryTimeout(d time.Duration) Option {
	return func(a *PostgresArchive) {
		if d > 0 {
			a.queryTimeout = d
		}
	}
}

// WithLogger sets a custom logger for the archive.
func WithLogger(l logger.Logger) Option {
	return func(a *PostgresArchive) {
		if l != nil {
			a.logger = l
		}
	}
}

// Connect opens a pgx pool on dsn and pings it.
func Connect(ctx context.Context, dsn string) (*pgxpool.Pool, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("%w: parse dsn: %w", ErrArchive, err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("%w: create pool: %w", ErrArchive, err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("%w: ping: %w", ErrArchive, err)
	}
	return pool, nil
}

// Migrate applies the embedded migrations to the database at dsn.
func Migrate(ctx context.Context, dsn string, log logger.Logger) error {
	source, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("%w: open source: %w", ErrMigrate, err)
	}

	m, err := migrate.NewWithSourceInstance("iofs", source, migrateURL(dsn))
	if err != nil {
		return fmt.Errorf("%w: init: %w", ErrMigrate, err)
	}
	defer m.Close()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("%w: up: %w", ErrMigrate, err)
	}

	version, dirty, _ := m.Version()
	log.Info(ctx, "archive migrations applied",
		logger.Int64("version", int64(version)),
		logger.Bool("dirty", dirty),
	)
	return nil
}

// migrateURL rewrites a postgres:// DSN to the pgx5:// scheme golang-migrate expects.
func migrateURL(dsn string) string {
	for _, scheme := range []string{"postgresql://", "postgres://"} {
		if strings.HasPrefix(dsn, scheme) {
			return "pgx5://" + strings.TrimPrefix(dsn, scheme)
		}
	}
	return dsn
}

// NewPostgresArchive wraps an open pool.
func NewPostgresArchive(pool *pgxpool.Pool, opts ...Option) *PostgresArchive {
	a := &PostgresArchive{
		pool:         pool,
		queryTimeout: defaultQueryTimeout,
	}
	for _, opt := range opts {
		opt(a)
	}
	if a.logger == nil {
		a.logger = logger.Get().Named("archive")
	}
	return a
}

// Upsert replaces the document for gameID.
func (a *PostgresArchive) Upsert(ctx context.Context, gameID string, scores []types.ScoreRecord) error {
	if scores == nil {
		scores = []types.ScoreRecord{}
	}
	doc, err := json.Marshal(scores)
	if err != nil {
		return fmt.Errorf("%w: encode %s: %w", ErrArchive, gameID, err)
	}

	ctx, cancel := context.WithTimeout(ctx, a.queryTimeout)
	defer cancel()

	if _, err := a.pool.Exec(ctx, upsertSQL, gameID, doc); err != nil {
		return fmt.Errorf("%w: upsert %s: %w", ErrArchive, gameID, err)
	}
	a.logger.Debug(ctx, "leaderboard archived",
		logger.String("gameId", gameID),
		logger.Int("members", len(scores)),
	)
	return nil
}

// Load returns the archived document for gameID.
func (a *PostgresArchive) Load(ctx context.Context, gameID string) ([]types.ScoreRecord, error) {
	ctx, cancel := context.WithTimeout(ctx, a.queryTimeout)
	defer cancel()

	var doc []byte
	if err := a.pool.QueryRow(ctx, loadSQL, gameID).Scan(&doc); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: load %s: %w", ErrArchive, gameID, err)
	}

	var scores []types.ScoreRecord
	if err := json.Unmarshal(doc, &scores); err != nil {
		return nil, fmt.Errorf("%w: decode %s: %w", ErrArchive, gameID, err)
	}
	return scores, nil
}

// Ping checks database reachability.
func (a *PostgresArchive) Ping(ctx context.Context) error {
	return a.pool.Ping(ctx)
}

// Close releases the pool.
func (a *PostgresArchive) Close() {
	a.pool.Close()
}
