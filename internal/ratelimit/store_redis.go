package ratelimit

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStore keeps window counters in Redis so multiple instances share one
// arena. INCR gives the atomic increment; the key TTL retires old buckets.
type RedisStore struct {
	client *redis.Client
	prefix string
}

// NewRedisStore wraps an existing go-redis client. The client's lifecycle
// belongs to the caller; Close here is a no-op.
func NewRedisStore(client *redis.Client, prefix string) *RedisStore {
	return &RedisStore{client: client, prefix: prefix}
}

func (s *RedisStore) Incr(ctx context.Context, key string, ttl time.Duration) (int64, error) {
	pipe := s.client.TxPipeline()
	incr := pipe.Incr(ctx, s.prefix+key)
	pipe.Expire(ctx, s.prefix+key, ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, err
	}
	return incr.Val(), nil
}

func (s *RedisStore) Decr(ctx context.Context, key string) (int64, error) {
	return s.client.Decr(ctx, s.prefix+key).Result()
}

func (s *RedisStore) Close() error {
	return nil
}
