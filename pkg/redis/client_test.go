package redis

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/staybook-backend/pkg/config"
)

type memoryCommands struct {
	values  map[string]string
	counts  map[string]int64
	expired []string
}

func newMemoryCommands() *memoryCommands {
	return &memoryCommands{values: map[string]string{}, counts: map[string]int64{}}
}

func (m *memoryCommands) Ping(context.Context) *redis.StatusCmd {
	return redis.NewStatusResult("PONG", nil)
}

func (m *memoryCommands) Get(_ context.Context, key string) *redis.StringCmd {
	if v, ok := m.values[key]; ok {
		return redis.NewStringResult(v, nil)
	}
	return redis.NewStringResult("", redis.Nil)
}

func (m *memoryCommands) Set(_ context.Context, key string, value any, _ time.Duration) *redis.StatusCmd {
	m.values[key] = fmt.Sprint(value)
	return redis.NewStatusResult("OK", nil)
}

func (m *memoryCommands) SetNX(_ context.Context, key string, value any, _ time.Duration) *redis.BoolCmd {
	if _, ok := m.values[key]; ok {
		return redis.NewBoolResult(false, nil)
	}
	m.values[key] = fmt.Sprint(value)
	return redis.NewBoolResult(true, nil)
}

func (m *memoryCommands) Incr(_ context.Context, key string) *redis.IntCmd {
	m.counts[key]++
	return redis.NewIntResult(m.counts[key], nil)
}

func (m *memoryCommands) Expire(_ context.Context, key string, _ time.Duration) *redis.BoolCmd {
	m.expired = append(m.expired, key)
	return redis.NewBoolResult(true, nil)
}

func (m *memoryCommands) Del(_ context.Context, keys ...string) *redis.IntCmd {
	for _, k := range keys {
		delete(m.values, k)
	}
	return redis.NewIntResult(int64(len(keys)), nil)
}

func TestFixedWindowAllowExpiresOnFirstHitOnly(t *testing.T) {
	ctx := context.Background()
	cmds := newMemoryCommands()
	client := &Client{cmds: cmds}

	for i, want := range []bool{true, true, false} {
		allowed, hits, err := client.FixedWindowAllow(ctx, "payments:10.0.0.1", 2, time.Minute)
		require.NoError(t, err)
		assert.Equal(t, want, allowed, "hit %d", i+1)
		assert.EqualValues(t, i+1, hits)
	}
	assert.Equal(t, []string{"sb:rate_limit:payments:10.0.0.1"}, cmds.expired)
}

func TestSetNXThenDelReleasesKey(t *testing.T) {
	ctx := context.Background()
	client := &Client{cmds: newMemoryCommands()}
	k := client.IdempotencyKey("evt:processed:razorpay-webhook", "evt_1")

	won, err := client.SetNX(ctx, k, "1", time.Hour)
	require.NoError(t, err)
	assert.True(t, won)

	won, err = client.SetNX(ctx, k, "1", time.Hour)
	require.NoError(t, err)
	assert.False(t, won)

	require.NoError(t, client.Set(ctx, k, "done", time.Hour))
	got, err := client.Get(ctx, k)
	require.NoError(t, err)
	assert.Equal(t, "done", got)

	require.NoError(t, client.Del(ctx, k))
	_, err = client.Get(ctx, k)
	assert.ErrorIs(t, err, redis.Nil)
}

func TestKeysSkipBlankParts(t *testing.T) {
	client := &Client{}
	assert.Equal(t, "sb:idempotency:POST|/api/v1/bookings:abc", client.IdempotencyKey("POST|/api/v1/bookings", "abc"))
	assert.Equal(t, "sb:rate_limit:coupons:1.2.3.4", client.RateLimitKey("coupons:1.2.3.4"))
	assert.Equal(t, "sb:lock:prod", client.LockKey("prod", " "))
}

func TestZeroClientReportsNotInitialized(t *testing.T) {
	client := &Client{}
	assert.ErrorIs(t, client.Ping(context.Background()), errNotInitialized)
	assert.NoError(t, client.Close())
}

func TestBuildOptionsFillsFromConfig(t *testing.T) {
	opts, err := buildOptions(config.RedisConfig{URL: "redis://localhost:6379/3", PoolSize: 25, DB: 1, DialTimeout: 2 * time.Second})
	require.NoError(t, err)
	assert.Equal(t, 3, opts.DB)
	assert.Equal(t, 25, opts.PoolSize)
	assert.Equal(t, 2*time.Second, opts.DialTimeout)

	opts, err = buildOptions(config.RedisConfig{Address: "cache:6379", DB: 2})
	require.NoError(t, err)
	assert.Equal(t, "cache:6379", opts.Addr)
	assert.Equal(t, 2, opts.DB)

	_, err = buildOptions(config.RedisConfig{})
	assert.Error(t, err)
}
