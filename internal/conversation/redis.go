package conversation

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// redisClient is the subset of redis.UniversalClient the store uses.
type redisClient interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
}

// RedisStore keeps each history as a JSON document under chat:{id}. Keys never
// expire.
type RedisStore struct {
	client redisClient
}

// NewRedisStore wraps an existing client.
func NewRedisStore(client redis.UniversalClient) *RedisStore {
	return &RedisStore{client: client}
}

// NewRedisClient parses a redis:// URL into a client.
func NewRedisClient(url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	return redis.NewClient(opts), nil
}

func redisKey(id string) string {
	return "chat:" + id
}

func (s *RedisStore) Get(ctx context.Context, id string) (History, error) {
	data, err := s.client.Get(ctx, redisKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return History{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("redis get %s: %w", redisKey(id), err)
	}
	return UnmarshalHistory(data)
}

func (s *RedisStore) Put(ctx context.Context, id string, history History) error {
	data, err := MarshalHistory(history)
	if err != nil {
		return fmt.Errorf("encode history: %w", err)
	}
	if err := s.client.Set(ctx, redisKey(id), data, 0).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", redisKey(id), err)
	}
	return nil
}
