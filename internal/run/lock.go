package run

import (
	"context"
	"time"

	"github.com/bsm/redislock"
	"github.com/redis/go-redis/v9"
)

// ErrLockNotObtained signals that another coordinator holds the sweep lock.
var ErrLockNotObtained = redislock.ErrNotObtained

// Locker serializes coordinator sweeps per check across instances.
// The redis implementation is in this file; tests use MockLocker.
type Locker interface {
	// Obtain acquires the named lock for at most ttl and returns a release
	// function. Returns ErrLockNotObtained when the lock is already held.
	Obtain(ctx context.Context, key string, ttl time.Duration) (func(), error)
}

// RedisLocker backs Locker with redislock.
type RedisLocker struct {
	client *redislock.Client
}

func NewRedisLocker(rdb *redis.Client) *RedisLocker {
	return &RedisLocker{client: redislock.New(rdb)}
}

func (l *RedisLocker) Obtain(ctx context.Context, key string, ttl time.Duration) (func(), error) {
	lock, err := l.client.Obtain(ctx, key, ttl, nil)
	if err != nil {
		return nil, err
	}
	return func() {
		// Release with a fresh context: the sweep's context may already be
		// cancelled on the shutdown path.
		_ = lock.Release(context.Background())
	}, nil
}

// MockLocker is an always-granting Locker for unit tests.
type MockLocker struct {
	// ObtainErr makes Obtain fail. Set to ErrLockNotObtained to simulate
	// a concurrent sweep.
	ObtainErr error

	Obtained []string
}

func (m *MockLocker) Obtain(_ context.Context, key string, _ time.Duration) (func(), error) {
	if m.ObtainErr != nil {
		return nil, m.ObtainErr
	}
	m.Obtained = append(m.Obtained, key)
	return func() {}, nil
}

var (
	_ Locker = (*RedisLocker)(nil)
	_ Locker = (*MockLocker)(nil)
)
