package store

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	appErrors "github.com/danielpj17/junior-ledger/pkg/errors"
)

// RedisStore persists values in Redis without expiry; entries live until the
// reconcilers rewrite or remove them.
type RedisStore struct {
	client *redis.Client
	logger *zap.Logger
}

// NewRedisStore constructs a Redis-backed store.
func NewRedisStore(client *redis.Client, logger *zap.Logger) *RedisStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RedisStore{client: client, logger: logger}
}

var _ Store = (*RedisStore)(nil)

// Get retrieves and unmarshals the value into dest.
func (s *RedisStore) Get(ctx context.Context, key string, dest interface{}) error {
	raw, err := s.client.Get(ctx, key).Bytes()
	if err != nil {
		if err == redis.Nil {
			return appErrors.ErrCacheMiss
		}
		return fmt.Errorf("redis get %s: %w", key, err)
	}

	if err := json.Unmarshal(raw, dest); err != nil {
		s.logger.Warn("resetting corrupted store entry",
			zap.String("key", key), zap.Error(err))
		_ = s.client.Del(ctx, key).Err()
		return appErrors.ErrCacheMiss
	}

	return nil
}

// Set marshals and stores the value without TTL.
func (s *RedisStore) Set(ctx context.Context, key string, value interface{}) error {
	payload, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("marshal store value for %s: %w", key, err)
	}

	if err := s.client.Set(ctx, key, payload, 0).Err(); err != nil {
		if strings.Contains(err.Error(), "OOM") {
			s.logger.Warn("redis memory quota exhausted", zap.String("key", key), zap.Error(err))
			return appErrors.ErrQuotaExceeded
		}
		return fmt.Errorf("redis set %s: %w", key, err)
	}

	return nil
}

// Remove deletes the key; removing an absent key is not an error.
func (s *RedisStore) Remove(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("redis del %s: %w", key, err)
	}
	return nil
}

// Keys lists stored keys under the given prefix.
func (s *RedisStore) Keys(ctx context.Context, prefix string) ([]string, error) {
	var keys []string
	iter := s.client.Scan(ctx, 0, prefix+"*", 0).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("redis scan prefix %s: %w", prefix, err)
	}
	return keys, nil
}
