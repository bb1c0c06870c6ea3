package storage

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisDedupStore backs the idempotency guard of the ingestion paths.
type RedisDedupStore struct {
	client redis.UniversalClient
	prefix string
}

func NewRedisDedupStore(c redis.UniversalClient, prefix string) *RedisDedupStore {
	return &RedisDedupStore{client: c, prefix: prefix}
}

func (r *RedisDedupStore) SetNX(ctx context.Context, key string, value interface{}, expiration time.Duration) (bool, error) {
	return r.client.SetNX(ctx, r.prefix+key, value, expiration).Result()
}

func (r *RedisDedupStore) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	return r.client.Set(ctx, r.prefix+key, value, expiration).Err()
}

func (r *RedisDedupStore) Del(ctx context.Context, key string) error {
	return r.client.Del(ctx, r.prefix+key).Err()
}
