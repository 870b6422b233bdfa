package session

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/redis/go-redis/v9"
)

var _ Backend = (*RedisBackend)(nil)

// RedisBackend stores each session as a Redis hash "session:<id>" whose
// fields are the session keys.
type RedisBackend struct {
	client redis.UniversalClient
}

// NewRedisBackend returns a RedisBackend using client.
func NewRedisBackend(client redis.UniversalClient) *RedisBackend {
	return &RedisBackend{client: client}
}

// Get returns the value of field key in the session hash.
func (r *RedisBackend) Get(ctx context.Context, id, key string) ([]byte, error) {
	v, err := r.client.HGet(ctx, sessionKey(id), key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "redis hget")
	}
	return v, nil
}

// Set writes the field and resets the hash TTL in one transaction.
func (r *RedisBackend) Set(ctx context.Context, id, key string, value []byte, ttl time.Duration) error {
	k := sessionKey(id)
	_, err := r.client.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.HSet(ctx, k, key, value)
		p.Expire(ctx, k, ttl)
		return nil
	})
	if err != nil {
		return errors.Wrap(err, "redis hset")
	}
	return nil
}

// Ping checks connectivity; used as a readiness check.
func (r *RedisBackend) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

func sessionKey(id string) string {
	return "session:" + id
}
