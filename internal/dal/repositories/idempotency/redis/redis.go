package redis

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	redisclient "github.com/yashraj9595/zyntherraa/order/internal/dal/redis"
)

// IdempotencyStore remembers which order an idempotency key produced.
type IdempotencyStore struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewIdempotencyStore(client *redisclient.Client, ttl time.Duration) *IdempotencyStore {
	return &IdempotencyStore{rdb: client.RDB(), ttl: ttl}
}

// TryLock claims scope/key. It returns false when another request holds it.
func (s *IdempotencyStore) TryLock(ctx context.Context, scope, key string) (bool, error) {
	return s.rdb.SetNX(ctx, "idemp:"+scope+":"+key, "1", s.ttl).Result()
}

// Unlock releases a claim whose request failed, so the client may retry with the same key.
func (s *IdempotencyStore) Unlock(ctx context.Context, scope, key string) error {
	return s.rdb.Del(ctx, "idemp:"+scope+":"+key).Err()
}

func (s *IdempotencyStore) Remember(ctx context.Context, scope, key, value string) error {
	return s.rdb.Set(ctx, "idemp:map:"+scope+":"+key, value, s.ttl).Err()
}

func (s *IdempotencyStore) Recall(ctx context.Context, scope, key string) (string, bool, error) {
	val, err := s.rdb.Get(ctx, "idemp:map:"+scope+":"+key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}

	return val, true, nil
}
