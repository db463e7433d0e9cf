package cron

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const defaultLockTTL = 5 * time.Minute

var (
	errLockStoreRequired = errors.New("lock store is required")
	errLockKeyRequired   = errors.New("lock key is required")
)

// Lock makes sure a single worker instance runs a cycle at a time.
type Lock interface {
	Acquire(ctx context.Context) (bool, error)
	Release(ctx context.Context) error
}

type lockStore interface {
	SetNX(ctx context.Context, key string, value any, ttl time.Duration) (bool, error)
	Get(ctx context.Context, key string) (string, error)
	Del(ctx context.Context, keys ...string) error
}

// RedisLock is a SETNX lock whose value identifies the holder.
type RedisLock struct {
	store lockStore
	key   string
	ttl   time.Duration

	mu    sync.Mutex
	owner string
}

func NewRedisLock(store lockStore, key string, ttl time.Duration) (*RedisLock, error) {
	if store == nil {
		return nil, errLockStoreRequired
	}

	if key == "" {
		return nil, errLockKeyRequired
	}

	if ttl <= 0 {
		ttl = defaultLockTTL
	}

	return &RedisLock{store: store, key: key, ttl: ttl}, nil
}

func (l *RedisLock) Acquire(ctx context.Context) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	owner := uuid.NewString()

	ok, err := l.store.SetNX(ctx, l.key, owner, l.ttl)
	if err != nil {
		return false, fmt.Errorf("failed to acquire cron lock: %w", err)
	}

	if ok {
		l.owner = owner
	}

	return ok, nil
}

// Release deletes the key only while this instance still owns it.
func (l *RedisLock) Release(ctx context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.owner == "" {
		return nil
	}

	value, err := l.store.Get(ctx, l.key)
	if err != nil {
		if errors.Is(err, redis.Nil) {
			l.owner = ""

			return nil
		}

		return fmt.Errorf("failed to read cron lock owner: %w", err)
	}

	if value != l.owner {
		l.owner = ""

		return nil
	}

	if err = l.store.Del(ctx, l.key); err != nil {
		return fmt.Errorf("failed to release cron lock: %w", err)
	}

	l.owner = ""

	return nil
}
