package health

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// DefaultTimeout bounds each dependency check
const DefaultTimeout = 2 * time.Second

// Checker reports a dependency's health
type Checker func() error

// Pinger is satisfied by *pgxpool.Pool
type Pinger interface {
	Ping(ctx context.Context) error
}

// DatabaseChecker pings the Postgres pool
func DatabaseChecker(db Pinger) Checker {
	return func() error {
		if db == nil {
			return errors.New("database not configured")
		}
		ctx, cancel := context.WithTimeout(context.Background(), DefaultTimeout)
		defer cancel()
		return db.Ping(ctx)
	}
}

// RedisChecker pings Redis
func RedisChecker(client redis.Cmdable) Checker {
	return func() error {
		if client == nil {
			return errors.New("redis not configured")
		}
		ctx, cancel := context.WithTimeout(context.Background(), DefaultTimeout)
		defer cancel()
		return client.Ping(ctx).Err()
	}
}

// CachedChecker memoizes a check result for ttl so readiness probes
// don't hit the backing store on every request.
type CachedChecker struct {
	check Checker
	ttl   time.Duration
	now   func() time.Time

	mu        sync.Mutex
	lastErr   error
	checkedAt time.Time
}

// NewCachedChecker wraps check
func NewCachedChecker(check Checker, ttl time.Duration) *CachedChecker {
	return &CachedChecker{check: check, ttl: ttl, now: time.Now}
}

// Check returns the cached result or runs the check when stale
func (c *CachedChecker) Check() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.checkedAt.IsZero() && c.now().Sub(c.checkedAt) < c.ttl {
		return c.lastErr
	}
	c.lastErr = c.check()
	c.checkedAt = c.now()
	return c.lastErr
}
