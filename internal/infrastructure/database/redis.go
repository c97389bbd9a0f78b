package database

import (
	"context"
	"fmt"
	"time"

	"github.com/bsm/redislock"
	"github.com/redis/go-redis/v9"
	"github.com/sangkips/billbook-api/internal/config"
	"github.com/sangkips/billbook-api/pkg/logger"
)

// NewRedisClient connects to Redis and returns the client together with a lock client
func NewRedisClient(ctx context.Context, cfg *config.RedisConfig) (*redis.Client, *redislock.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Address,
		Password: cfg.Password,
		DB:       cfg.DB,
		PoolSize: 100,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, nil, fmt.Errorf("failed to connect to redis at %s: %w", cfg.Address, err)
	}

	logger.Get().WithField("addr", cfg.Address).Info("Successfully connected to Redis")
	return rdb, redislock.New(rdb), nil
}
