// Package redisstore keeps the user store keys in Redis, for setups where the data
// directory is not durable.
package redisstore

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/idilsaglam/taskdeck/internal/store"
)

const DefaultPrefix = "taskdeck:"

type Store struct {
	redis  *redis.Client
	prefix string
}

// New wraps client. Values never expire.
func New(client *redis.Client, prefix string) *Store {
	if client == nil {
		panic("redisstore.New: client is nil")
	}
	return &Store{redis: client, prefix: prefix}
}

func (s *Store) Get(ctx context.Context, k store.Key) ([]byte, error) {
	if !store.ValidKey(k) {
		return nil, fmt.Errorf("%w: %s", store.ErrUnknownKey, k)
	}
	data, err := s.redis.Get(ctx, s.key(k)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, store.ErrNotFound
		}
		return nil, fmt.Errorf("redis get %s: %w", k, err)
	}
	return data, nil
}

func (s *Store) Put(ctx context.Context, k store.Key, v []byte) error {
	if !store.ValidKey(k) {
		return fmt.Errorf("%w: %s", store.ErrUnknownKey, k)
	}
	if err := s.redis.Set(ctx, s.key(k), v, 0).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", k, err)
	}
	return nil
}

func (s *Store) Delete(ctx context.Context, k store.Key) error {
	if !store.ValidKey(k) {
		return fmt.Errorf("%w: %s", store.ErrUnknownKey, k)
	}
	n, err := s.redis.Del(ctx, s.key(k)).Result()
	if err != nil {
		return fmt.Errorf("redis del %s: %w", k, err)
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (s *Store) key(k store.Key) string {
	return s.prefix + string(k)
}
