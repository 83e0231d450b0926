// Package lock implements core/lock.Locker on Redis and in-process.
package lock

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bsm/redislock"
	"github.com/redis/go-redis/v9"

	"restoledger/internal/core/apperror"
	corelock "restoledger/internal/core/lock"
	"restoledger/pkg/logger"
)

// RedisLocker obtains locks through redislock.
type RedisLocker struct {
	client *redislock.Client
	retry  redislock.RetryStrategy
}

var _ corelock.Locker = (*RedisLocker)(nil)

// RedisConfig holds Redis lock settings.
type RedisConfig struct {
	URL        string
	RetryDelay time.Duration
	MaxRetries int
}

// ConnectRedis parses url, pings the server and returns the client.
func ConnectRedis(ctx context.Context, url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	rdb := redis.NewClient(opts)
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return rdb, nil
}

// NewRedisLocker wraps an existing go-redis client.
func NewRedisLocker(rdb redis.UniversalClient, cfg RedisConfig) *RedisLocker {
	if cfg.RetryDelay <= 0 {
		cfg.RetryDelay = 100 * time.Millisecond
	}
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = 30
	}
	return &RedisLocker{
		client: redislock.New(rdb),
		retry:  redislock.LimitRetry(redislock.LinearBackoff(cfg.RetryDelay), cfg.MaxRetries),
	}
}

// Obtain implements lock.Locker.
func (l *RedisLocker) Obtain(ctx context.Context, key string, ttl time.Duration) (corelock.Lease, error) {
	held, err := l.client.Obtain(ctx, key, ttl, &redislock.Options{RetryStrategy: l.retry})
	if errors.Is(err, redislock.ErrNotObtained) {
		logger.Warn(ctx, "register lock busy", "key", key)
		return nil, apperror.NewLockNotObtained(key)
	}
	if err != nil {
		return nil, fmt.Errorf("obtain lock %s: %w", key, err)
	}
	return redisLease{lock: held}, nil
}

type redisLease struct {
	lock *redislock.Lock
}

func (r redisLease) Release(ctx context.Context) error {
	err := r.lock.Release(ctx)
	if errors.Is(err, redislock.ErrLockNotHeld) {
		logger.Warn(ctx, "register lock expired before release", "key", r.lock.Key())
		return nil
	}
	return err
}
