package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bsm/redislock"
	"github.com/redis/go-redis/v9"
)

// ErrLocked is returned when another process already holds the lock.
var ErrLocked = errors.New("lock held by another process")

// Locker guards work that must not run concurrently across processes.
type Locker interface {
	Obtain(ctx context.Context, key string, ttl time.Duration) (Unlocker, error)
}

// Unlocker releases an obtained lock.
type Unlocker interface {
	Release(ctx context.Context) error
}

type redisLocker struct {
	client *redislock.Client
}

// NewRedisLocker returns a locker backed by redislock.
func NewRedisLocker(client *redis.Client) Locker {
	return &redisLocker{client: redislock.New(client)}
}

func (l *redisLocker) Obtain(ctx context.Context, key string, ttl time.Duration) (Unlocker, error) {
	lock, err := l.client.Obtain(ctx, key, ttl, nil)
	if errors.Is(err, redislock.ErrNotObtained) {
		return nil, fmt.Errorf("%s: %w", key, ErrLocked)
	}
	if err != nil {
		return nil, fmt.Errorf("obtain lock %s: %w", key, err)
	}
	return lock, nil
}

type noopLocker struct{}

type noopUnlocker struct{}

// NewNoopLocker returns a locker that always succeeds, for single-process runs.
func NewNoopLocker() Locker {
	return noopLocker{}
}

func (noopLocker) Obtain(ctx context.Context, key string, ttl time.Duration) (Unlocker, error) {
	return noopUnlocker{}, nil
}

func (noopUnlocker) Release(ctx context.Context) error {
	return nil
}
