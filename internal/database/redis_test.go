package database

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWindowRemaining(t *testing.T) {
	tests := []struct {
		name       string
		ttl        time.Duration
		wantLeft   time.Duration
		wantExpire bool
	}{
		{name: "running window", ttl: 42 * time.Second, wantLeft: 42 * time.Second},
		{name: "no expiry", ttl: -1, wantLeft: time.Minute, wantExpire: true},
		{name: "missing key", ttl: -2, wantLeft: time.Minute, wantExpire: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			left, expire := windowRemaining(tt.ttl, time.Minute)
			assert.Equal(t, tt.wantLeft, left)
			assert.Equal(t, tt.wantExpire, expire)
		})
	}
}

// setupTestRedis connects to TEST_REDIS_ADDR.
func setupTestRedis(t *testing.T) *Redis {
	t.Helper()

	addr := os.Getenv("TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("TEST_REDIS_ADDR not set")
	}

	client := redis.NewClient(&redis.Options{Addr: addr})
	t.Cleanup(func() { client.Close() })

	if err := client.Ping(context.Background()).Err(); err != nil {
		t.Skipf("test redis unreachable: %v", err)
	}
	return &Redis{Client: client}
}

func TestRedis_IncrWindow(t *testing.T) {
	rdb := setupTestRedis(t)
	ctx := context.Background()
	key := "test:ratelimit:window"
	t.Cleanup(func() { rdb.Del(context.Background(), key) })
	require.NoError(t, rdb.Del(ctx, key).Err())

	count, left, err := rdb.IncrWindow(ctx, key, time.Minute)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
	assert.Equal(t, time.Minute, left)

	count, left, err = rdb.IncrWindow(ctx, key, time.Minute)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)
	assert.LessOrEqual(t, left, time.Minute)
	assert.Positive(t, left)
}

func TestRedis_IncrWindow_RepairsMissingExpiry(t *testing.T) {
	rdb := setupTestRedis(t)
	ctx := context.Background()
	key := "test:ratelimit:stuck"
	t.Cleanup(func() { rdb.Del(context.Background(), key) })

	// a counter left behind without an expiry
	require.NoError(t, rdb.Set(ctx, key, 100, 0).Err())

	count, _, err := rdb.IncrWindow(ctx, key, time.Minute)
	require.NoError(t, err)
	assert.Equal(t, int64(101), count)

	ttl, err := rdb.TTL(ctx, key).Result()
	require.NoError(t, err)
	assert.Positive(t, ttl)
	assert.LessOrEqual(t, ttl, time.Minute)
}
