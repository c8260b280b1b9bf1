package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"

	"github.com/stunity/feed-service/internal/platform/logger"
)

const keyPrefix = "feed:precomputed:"

// FeedCache stores precomputed first-page post orderings per user. The
// cache is an optimization only; callers must tolerate misses and a nil
// cache.
type FeedCache interface {
	GetPrecomputed(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error)
	SetPrecomputed(ctx context.Context, userID uuid.UUID, postIDs []uuid.UUID, ttl time.Duration) error
	Close() error
}

type feedCache struct {
	log *logger.Logger
	rdb *goredis.Client
}

func NewFeedCache(log *logger.Logger) (FeedCache, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}

	addr := strings.TrimSpace(os.Getenv("REDIS_ADDR"))
	if addr == "" {
		return nil, fmt.Errorf("missing REDIS_ADDR")
	}

	rdb := goredis.NewClient(&goredis.Options{
		Addr:        addr,
		DialTimeout: 5 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	return &feedCache{
		log: log.With("service", "RedisFeedCache"),
		rdb: rdb,
	}, nil
}

func (c *feedCache) GetPrecomputed(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error) {
	raw, err := c.rdb.Get(ctx, keyPrefix+userID.String()).Bytes()
	if err == goredis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("redis get: %w", err)
	}

	var ids []uuid.UUID
	if err := json.Unmarshal(raw, &ids); err != nil {
		// A corrupt entry is dropped rather than surfaced.
		c.log.Warn("discarding unreadable cache entry", "user_id", userID, "error", err)
		_ = c.rdb.Del(ctx, keyPrefix+userID.String()).Err()
		return nil, nil
	}
	return ids, nil
}

func (c *feedCache) SetPrecomputed(ctx context.Context, userID uuid.UUID, postIDs []uuid.UUID, ttl time.Duration) error {
	raw, err := json.Marshal(postIDs)
	if err != nil {
		return fmt.Errorf("marshal post ids: %w", err)
	}
	if err := c.rdb.Set(ctx, keyPrefix+userID.String(), raw, ttl).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

func (c *feedCache) Close() error {
	return c.rdb.Close()
}
