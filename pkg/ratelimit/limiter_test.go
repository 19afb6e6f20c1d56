package ratelimit

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/richxcame/pokedex/pkg/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() config.RateLimitConfig {
	return config.RateLimitConfig{
		Enabled:       true,
		WindowSeconds: 60,
		Limit:         3,
		RedisPrefix:   "rl",
	}
}

func fixedNow() time.Time {
	return time.Date(2024, 5, 1, 12, 0, 15, 0, time.UTC)
}

func newTestLimiter() (*Limiter, redismock.ClientMock, string) {
	client, mock := redismock.NewClientMock()
	limiter := NewLimiter(client, testConfig())
	limiter.now = fixedNow
	key := fmt.Sprintf("rl:login:10.0.0.1:%d", fixedNow().Truncate(time.Minute).Unix())
	return limiter, mock, key
}

func TestNewLimiter_Defaults(t *testing.T) {
	client, _ := redismock.NewClientMock()
	limiter := NewLimiter(client, config.RateLimitConfig{})

	assert.Equal(t, 60, limiter.cfg.WindowSeconds)
	assert.Equal(t, 10, limiter.cfg.Limit)
	assert.Equal(t, "rl", limiter.cfg.RedisPrefix)
	assert.False(t, limiter.Enabled())
	assert.NotNil(t, limiter.now)
}

func TestAllow_FirstHitSetsExpiry(t *testing.T) {
	limiter, mock, key := newTestLimiter()
	mock.ExpectIncr(key).SetVal(1)
	mock.ExpectExpire(key, time.Minute).SetVal(true)

	res, err := limiter.Allow(context.Background(), "login", "10.0.0.1")

	require.NoError(t, err)
	assert.True(t, res.Allowed)
	assert.Equal(t, 2, res.Remaining)
	assert.Equal(t, time.Duration(0), res.RetryAfter)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAllow_AtLimit(t *testing.T) {
	limiter, mock, key := newTestLimiter()
	mock.ExpectIncr(key).SetVal(3)

	res, err := limiter.Allow(context.Background(), "login", "10.0.0.1")

	require.NoError(t, err)
	assert.True(t, res.Allowed)
	assert.Equal(t, 0, res.Remaining)
}

func TestAllow_OverLimit(t *testing.T) {
	limiter, mock, key := newTestLimiter()
	mock.ExpectIncr(key).SetVal(4)

	res, err := limiter.Allow(context.Background(), "login", "10.0.0.1")

	require.NoError(t, err)
	assert.False(t, res.Allowed)
	assert.Equal(t, 45*time.Second, res.RetryAfter)
}

func TestAllow_RedisError(t *testing.T) {
	limiter, mock, key := newTestLimiter()
	mock.ExpectIncr(key).SetErr(errors.New("connection refused"))

	_, err := limiter.Allow(context.Background(), "login", "10.0.0.1")

	assert.Error(t, err)
}

func TestAllow_ExpireError(t *testing.T) {
	limiter, mock, key := newTestLimiter()
	mock.ExpectIncr(key).SetVal(1)
	mock.ExpectExpire(key, time.Minute).SetErr(errors.New("READONLY"))

	_, err := limiter.Allow(context.Background(), "login", "10.0.0.1")

	assert.Error(t, err)
}
