package database

import (
	"context"
	"fmt"
	"time"

	"github.com/birthdaysrun/reminder/internal/config"
	"github.com/redis/go-redis/v9"
)

// Redis wraps the Redis client
type Redis struct {
	*redis.Client
}

// NewRedis creates a new Redis connection
func NewRedis(cfg config.RedisConfig) (*Redis, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr(),
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolSize:     20,
		MinIdleConns: 2,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to ping Redis: %w", err)
	}

	return &Redis{Client: client}, nil
}

// HealthCheck verifies the Redis connection is healthy
func (r *Redis) HealthCheck(ctx context.Context) error {
	return r.Ping(ctx).Err()
}

// IncrWindow increments key and returns the new count with the time left in its window.
// A key found without an expiry, such as one whose first Expire failed, gets a fresh window.
func (r *Redis) IncrWindow(ctx context.Context, key string, window time.Duration) (int64, time.Duration, error) {
	count, err := r.Incr(ctx, key).Result()
	if err != nil {
		return 0, 0, err
	}

	ttl, err := r.TTL(ctx, key).Result()
	if err != nil {
		return count, window, nil
	}

	remaining, expire := windowRemaining(ttl, window)
	if expire {
		if err := r.Expire(ctx, key, window).Err(); err != nil {
			return count, window, err
		}
	}
	return count, remaining, nil
}

// windowRemaining maps a TTL reply to the time left in the window.
// Redis answers negative TTLs for keys without an expiry.
func windowRemaining(ttl, window time.Duration) (time.Duration, bool) {
	if ttl < 0 {
		return window, true
	}
	return ttl, false
}
