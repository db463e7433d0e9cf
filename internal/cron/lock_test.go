package cron

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memoryStore struct {
	mu     sync.Mutex
	values map[string]string
	getErr error
}

func newMemoryStore() *memoryStore {
	return &memoryStore{values: map[string]string{}}
}

func (m *memoryStore) SetNX(_ context.Context, key string, value any, _ time.Duration) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.values[key]; ok {
		return false, nil
	}

	m.values[key] = fmt.Sprint(value)

	return true, nil
}

func (m *memoryStore) Get(_ context.Context, key string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.getErr != nil {
		return "", m.getErr
	}

	value, ok := m.values[key]
	if !ok {
		return "", fmt.Errorf("failed to get lock key: %w", redis.Nil)
	}

	return value, nil
}

func (m *memoryStore) Del(_ context.Context, keys ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, key := range keys {
		delete(m.values, key)
	}

	return nil
}

func TestNewRedisLock_Validation(t *testing.T) {
	_, err := NewRedisLock(nil, "key", time.Minute)
	assert.ErrorIs(t, err, errLockStoreRequired)

	_, err = NewRedisLock(newMemoryStore(), "", time.Minute)
	assert.ErrorIs(t, err, errLockKeyRequired)

	lock, err := NewRedisLock(newMemoryStore(), "key", 0)
	require.NoError(t, err)
	assert.Equal(t, defaultLockTTL, lock.ttl)
}

func TestRedisLock_ExclusiveBetweenInstances(t *testing.T) {
	ctx := context.Background()
	store := newMemoryStore()

	first, err := NewRedisLock(store, "toolrent:cron:lock", time.Minute)
	require.NoError(t, err)
	second, err := NewRedisLock(store, "toolrent:cron:lock", time.Minute)
	require.NoError(t, err)

	ok, err := first.Acquire(ctx)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = second.Acquire(ctx)
	require.NoError(t, err)
	assert.False(t, ok)

	// the non-owner must not free the key
	require.NoError(t, second.Release(ctx))
	assert.Contains(t, store.values, "toolrent:cron:lock")

	require.NoError(t, first.Release(ctx))
	assert.NotContains(t, store.values, "toolrent:cron:lock")

	ok, err = second.Acquire(ctx)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestRedisLock_ReleaseAfterExpiry(t *testing.T) {
	ctx := context.Background()
	store := newMemoryStore()

	lock, err := NewRedisLock(store, "key", time.Minute)
	require.NoError(t, err)

	ok, err := lock.Acquire(ctx)
	require.NoError(t, err)
	require.True(t, ok)

	// key expired and was taken by another holder
	store.values["key"] = "someone-else"

	require.NoError(t, lock.Release(ctx))
	assert.Equal(t, "someone-else", store.values["key"])

	delete(store.values, "key")
	require.NoError(t, lock.Release(ctx))
}

func TestRedisLock_ReleaseReadError(t *testing.T) {
	ctx := context.Background()
	store := newMemoryStore()

	lock, err := NewRedisLock(store, "key", time.Minute)
	require.NoError(t, err)

	_, err = lock.Acquire(ctx)
	require.NoError(t, err)

	store.getErr = errors.New("connection reset")

	assert.Error(t, lock.Release(ctx))
}
