package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/abdulghaffar349/leaderboard-service/internal/domain/scoring"
	"github.com/abdulghaffar349/leaderboard-service/internal/domain/types"
	"github.com/abdulghaffar349/leaderboard-service/pkg/logger"
	"github.com/abdulghaffar349/leaderboard-service/pkg/metrics"
)

const backendRedis = "redis"

// RedisStore keeps each game in a Redis sorted set keyed by prefix+gameID.
// Members are user ids; the sorted-set score is the composite of score and
// timestamp, so equal scores order by recency without a second comparator.
//
// Redis stores scores as doubles. Ordering by score stays exact for epoch
// timestamps in use today; the decoded timestamp loses millisecond resolution
// once the composite exceeds 2^53 (scores above 900).
type RedisStore struct {
	client    redis.Cmdable
	keyPrefix string
	dirty     *DirtyTracker
	exporter  *exporter
	logger    logger.Logger
}

// NewRedisStore constructs a store on client.
func NewRedisStore(client redis.Cmdable, opts ...Option) *RedisStore {
	s := newSettings(opts)
	dirty := NewDirtyTracker()
	return &RedisStore{
		client:    client,
		keyPrefix: s.keyPrefix,
		dirty:     dirty,
		exporter:  newExporter(backendRedis, dirty, s),
		logger:    s.logger,
	}
}

// Backend implements Store.
func (s *RedisStore) Backend() string { return backendRedis }

// SelectGame implements Store.
func (s *RedisStore) SelectGame(gameID string) Board {
	return &redisBoard{store: s, gameID: gameID, key: s.keyPrefix + gameID}
}

// MarkDirty implements Store.
func (s *RedisStore) MarkDirty(gameID string) { s.dirty.Mark(gameID) }

// ResetDirty implements Store.
func (s *RedisStore) ResetDirty() { s.dirty.Reset() }

// DirtyGames implements Store.
func (s *RedisStore) DirtyGames() []string { return s.dirty.Games() }

// ExportAll implements Store.
func (s *RedisStore) ExportAll(ctx context.Context) error {
	return s.exporter.exportAll(ctx, func(ctx context.Context, gameID string) ([]types.ScoreRecord, error) {
		return s.SelectGame(gameID).GetMembers(ctx, 0)
	})
}

// redisBoard is a RedisStore handle bound to one game.
type redisBoard struct {
	store  *RedisStore
	gameID string
	key    string
}

func (b *redisBoard) GameID() string { return b.gameID }

func (b *redisBoard) UpdateMemberScore(ctx context.Context, userID string, score int64, ts time.Time) error {
	start := time.Now()
	defer func() {
		metrics.RecordStoreLatency(backendRedis, "update", float64(time.Since(start).Microseconds())/1000)
	}()

	// Sorted-set scores are doubles; later timestamps would round into the next score.
	if err := validateMember(userID, score, ts, scoring.MaxFloatTimestampMillis); err != nil {
		metrics.RecordStoreError(backendRedis, "update")
		return err
	}
	composite, err := scoring.EncodeTime(score, ts)
	if err != nil {
		metrics.RecordStoreError(backendRedis, "update")
		return fmt.Errorf("%w: %w", ErrInvalidScore, err)
	}

	if err := b.store.client.ZAdd(ctx, b.key, redis.Z{
		Score:  scoring.Float(composite),
		Member: userID,
	}).Err(); err != nil {
		metrics.RecordStoreError(backendRedis, "update")
		return fmt.Errorf("%w: zadd %s: %w", ErrBackend, b.key, err)
	}

	b.store.dirty.Mark(b.gameID)
	return nil
}

func (b *redisBoard) GetMembers(ctx context.Context, limit int) ([]types.ScoreRecord, error) {
	start := time.Now()
	defer func() {
		metrics.RecordStoreLatency(backendRedis, "read", float64(time.Since(start).Microseconds())/1000)
	}()

	stop := int64(-1)
	if limit > 0 {
		stop = int64(limit) - 1
	}
	zs, err := b.store.client.ZRevRangeWithScores(ctx, b.key, 0, stop).Result()
	if err != nil {
		metrics.RecordStoreError(backendRedis, "read")
		return nil, fmt.Errorf("%w: zrevrange %s: %w", ErrBackend, b.key, err)
	}

	out := make([]types.ScoreRecord, 0, len(zs))
	for _, z := range zs {
		member, ok := z.Member.(string)
		if !ok {
			member = fmt.Sprint(z.Member)
		}
		score, ms, err := scoring.DecodeFloat(z.Score)
		if err != nil {
			// Not written by this store; skip rather than fail the whole read.
			b.store.logger.Warn(ctx, "skipping undecodable member",
				logger.String("key", b.key),
				logger.String("userId", member),
				logger.Error(err),
			)
			continue
		}
		out = append(out, types.ScoreRecord{
			UserID:    member,
			Score:     score,
			Timestamp: scoring.Time(ms),
		})
	}
	return out, nil
}

func (b *redisBoard) GetMemberCount(ctx context.Context) (int, error) {
	n, err := b.store.client.ZCard(ctx, b.key).Result()
	if err != nil {
		metrics.RecordStoreError(backendRedis, "count")
		return 0, fmt.Errorf("%w: zcard %s: %w", ErrBackend, b.key, err)
	}
	return int(n), nil
}
