package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/angelmondragon/rocketshoes/pkg/redis"
)

// RedisStorage persists entries as plain Redis strings without expiry.
type RedisStorage struct {
	client *redis.Client
}

// NewRedisStorage binds the storage to the provided client.
func NewRedisStorage(client *redis.Client) *RedisStorage {
	return &RedisStorage{client: client}
}

func (s *RedisStorage) Get(ctx context.Context, key string) (string, error) {
	value, err := s.client.Get(ctx, s.client.StorageKey(key))
	if errors.Is(err, redis.ErrNil) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("redis get %q: %w", key, err)
	}
	return value, nil
}

func (s *RedisStorage) Set(ctx context.Context, key, value string) error {
	if err := s.client.Set(ctx, s.client.StorageKey(key), value, 0); err != nil {
		return fmt.Errorf("redis set %q: %w", key, err)
	}
	return nil
}
