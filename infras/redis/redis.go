package redis

import (
	"context"
	"fmt"
	"net"
	"time"

	"toolrent/config"

	goRedis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

func New(config *config.Config) *goRedis.Client {
	ctx := context.Background()
	primary := config.Cache.Redis.Primary

	client := goRedis.NewClient(&goRedis.Options{
		Addr:     net.JoinHostPort(primary.Host, primary.Port),
		Password: primary.Password,
		DB:       primary.DB,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		log.Fatal().Err(err).Str("host", primary.Host).Msg("Failed to connect to Redis")
	}

	log.Info().
		Int("db", primary.DB).
		Str("host", primary.Host).
		Str("port", primary.Port).
		Msg("Connected to Redis")

	return client
}

// LockStore exposes the few key operations a distributed lock needs.
type LockStore struct {
	client *goRedis.Client
}

func NewLockStore(client *goRedis.Client) *LockStore {
	return &LockStore{client: client}
}

func (s *LockStore) SetNX(ctx context.Context, key string, value any, ttl time.Duration) (bool, error) {
	ok, err := s.client.SetNX(ctx, key, value, ttl).Result()
	if err != nil {
		return false, fmt.Errorf("failed to set lock key: %w", err)
	}

	return ok, nil
}

// Get returns goRedis.Nil (wrapped) when the key is absent.
func (s *LockStore) Get(ctx context.Context, key string) (string, error) {
	value, err := s.client.Get(ctx, key).Result()
	if err != nil {
		return "", fmt.Errorf("failed to get lock key: %w", err)
	}

	return value, nil
}

func (s *LockStore) Del(ctx context.Context, keys ...string) error {
	if err := s.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("failed to delete lock key: %w", err)
	}

	return nil
}
