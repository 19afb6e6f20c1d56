package health

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
)

type fakePinger struct{ err error }

func (f fakePinger) Ping(ctx context.Context) error {
	if _, ok := ctx.Deadline(); !ok {
		return errors.New("ping without deadline")
	}
	return f.err
}

func TestDatabaseChecker(t *testing.T) {
	assert.NoError(t, DatabaseChecker(fakePinger{})())
	assert.EqualError(t, DatabaseChecker(fakePinger{err: errors.New("refused")})(), "refused")
	assert.Error(t, DatabaseChecker(nil)())
}

func TestRedisChecker(t *testing.T) {
	client, mock := redismock.NewClientMock()

	mock.ExpectPing().SetVal("PONG")
	assert.NoError(t, RedisChecker(client)())

	mock.ExpectPing().SetErr(errors.New("connection refused"))
	assert.Error(t, RedisChecker(client)())

	assert.NoError(t, mock.ExpectationsWereMet())
	assert.Error(t, RedisChecker(nil)())
}

func TestCachedChecker(t *testing.T) {
	calls := 0
	failing := errors.New("down")
	c := NewCachedChecker(func() error {
		calls++
		return failing
	}, time.Minute)

	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }

	assert.ErrorIs(t, c.Check(), failing)
	assert.ErrorIs(t, c.Check(), failing)
	assert.Equal(t, 1, calls, "result is cached within ttl")

	now = now.Add(2 * time.Minute)
	assert.ErrorIs(t, c.Check(), failing)
	assert.Equal(t, 2, calls)
}
