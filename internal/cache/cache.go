// Package cache keeps the full shutdown list in Redis so list and map reads
// skip the database between writes.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"shutdown-tracker/internal/config"
	"shutdown-tracker/internal/models"
)

const listKey = "shutdowns:all"

// Connect dials Redis and pings it. An empty address returns (nil, nil); a nil
// *ShutdownCache is a valid, disabled cache.
func Connect(ctx context.Context, cfg *config.Config, logr *zap.Logger) (*goredis.Client, error) {
	if cfg.RedisAddr == "" {
		return nil, nil
	}
	rdb := goredis.NewClient(&goredis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		logr.Error("Failed to ping Redis", zap.Error(err))
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}
	logr.Info("Connected to Redis", zap.String("addr", cfg.RedisAddr))
	return rdb, nil
}

type ShutdownCache struct {
	client *goredis.Client
	key    string
	ttl    time.Duration
}

// New returns nil when client is nil.
func New(client *goredis.Client, ttl time.Duration) *ShutdownCache {
	if client == nil {
		return nil
	}
	return &ShutdownCache{client: client, key: listKey, ttl: ttl}
}

// GetAll returns the cached list, or ok=false on a miss.
func (c *ShutdownCache) GetAll(ctx context.Context) ([]models.Shutdown, bool, error) {
	if c == nil {
		return nil, false, nil
	}
	data, err := c.client.Get(ctx, c.key).Bytes()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return nil, false, nil
		}
		return nil, false, err
	}

	var recs []models.Shutdown
	if err := json.Unmarshal(data, &recs); err != nil {
		return nil, false, err
	}
	return recs, true, nil
}

func (c *ShutdownCache) SetAll(ctx context.Context, recs []models.Shutdown) error {
	if c == nil {
		return nil
	}
	b, err := json.Marshal(recs)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, c.key, b, c.ttl).Err()
}

// Invalidate drops the cached list after any write.
func (c *ShutdownCache) Invalidate(ctx context.Context) error {
	if c == nil {
		return nil
	}
	return c.client.Del(ctx, c.key).Err()
}
