package storage

import (
	"context"
	"errors"
	"time"

	"github.com/Domenick1991/showtickets/config"
	"github.com/redis/go-redis/v9"
)

type RedisKV struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisKV(cfg config.RedisConfig, ttl time.Duration) *RedisKV {
	return NewRedisKVWithClient(redis.NewClient(&redis.Options{Addr: cfg.Addr, Password: cfg.Password, DB: cfg.DB}), ttl)
}

// NewRedisKVWithClient wraps an existing client. A zero ttl keeps keys until deleted.
func NewRedisKVWithClient(client *redis.Client, ttl time.Duration) *RedisKV {
	return &RedisKV{client: client, ttl: ttl}
}

func (r *RedisKV) Get(ctx context.Context, key string) (string, bool, error) {
	v, err := r.client.Get(ctx, key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", false, nil
		}
		return "", false, err
	}
	return v, true, nil
}

func (r *RedisKV) Set(ctx context.Context, key, value string) error {
	return r.client.Set(ctx, key, value, r.ttl).Err()
}

func (r *RedisKV) Delete(ctx context.Context, key string) error {
	return r.client.Del(ctx, key).Err()
}

func (r *RedisKV) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

func (r *RedisKV) Close() error {
	return r.client.Close()
}

var _ KV = (*RedisKV)(nil)
