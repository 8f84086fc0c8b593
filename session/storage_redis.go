package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStorage keeps the snapshot under one Redis key so every client process
// pointed at the same key shares a session.
type RedisStorage struct {
	redis  redis.UniversalClient
	prefix string
	key    string
	ttl    time.Duration
}

// NewRedisStorage creates a [RedisStorage]. The snapshot lives at "<prefix>:<key>";
// a ttl of zero keeps it until overwritten.
func NewRedisStorage(client redis.UniversalClient, prefix, key string, ttl time.Duration) *RedisStorage {
	return &RedisStorage{
		redis:  client,
		prefix: prefix,
		key:    key,
		ttl:    ttl,
	}
}

func (s *RedisStorage) redisKey() string {
	if s.prefix == "" {
		return s.key
	}
	return s.prefix + ":" + s.key
}

// Load performs one GET.
func (s *RedisStorage) Load(ctx context.Context) ([]byte, error) {
	data, err := s.redis.Get(ctx, s.redisKey()).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrNoSnapshot
		}
		return nil, fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}
	return data, nil
}

// Save performs one SET, replacing the whole snapshot.
func (s *RedisStorage) Save(ctx context.Context, data []byte) error {
	if err := s.redis.Set(ctx, s.redisKey(), data, s.ttl).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}
	return nil
}
