package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/richxcame/pokedex/pkg/config"
)

// Result describes the outcome of a rate limit check
type Result struct {
	Allowed    bool
	Limit      int
	Remaining  int
	RetryAfter time.Duration
}

// Limiter is a Redis-backed fixed-window rate limiter
type Limiter struct {
	client redis.Cmdable
	cfg    config.RateLimitConfig
	now    func() time.Time
}

// NewLimiter creates a new limiter
func NewLimiter(client redis.Cmdable, cfg config.RateLimitConfig) *Limiter {
	if cfg.WindowSeconds <= 0 {
		cfg.WindowSeconds = 60
	}
	if cfg.Limit <= 0 {
		cfg.Limit = 10
	}
	if cfg.RedisPrefix == "" {
		cfg.RedisPrefix = "rl"
	}
	return &Limiter{client: client, cfg: cfg, now: time.Now}
}

// Enabled reports whether limiting is switched on
func (l *Limiter) Enabled() bool {
	return l.cfg.Enabled
}

// Allow counts one hit for scope/identifier in the current window
func (l *Limiter) Allow(ctx context.Context, scope, identifier string) (Result, error) {
	window := time.Duration(l.cfg.WindowSeconds) * time.Second
	now := l.now()
	windowStart := now.Truncate(window)
	key := l.key(scope, identifier, windowStart)

	count, err := l.client.Incr(ctx, key).Result()
	if err != nil {
		return Result{}, fmt.Errorf("failed to increment rate limit counter: %w", err)
	}
	if count == 1 {
		if err := l.client.Expire(ctx, key, window).Err(); err != nil {
			return Result{}, fmt.Errorf("failed to set rate limit expiry: %w", err)
		}
	}

	res := Result{
		Allowed: count <= int64(l.cfg.Limit),
		Limit:   l.cfg.Limit,
	}
	if remaining := l.cfg.Limit - int(count); remaining > 0 {
		res.Remaining = remaining
	}
	if !res.Allowed {
		res.RetryAfter = windowStart.Add(window).Sub(now)
	}
	return res, nil
}

func (l *Limiter) key(scope, identifier string, windowStart time.Time) string {
	return fmt.Sprintf("%s:%s:%s:%d", l.cfg.RedisPrefix, scope, identifier, windowStart.Unix())
}
