package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/Domenick1991/showtickets/config"
	"github.com/Domenick1991/showtickets/internal/domain"
	"github.com/redis/go-redis/v9"
)

// RedisCache keeps event listings for a short while so the catalogue does not hit the API on every page view.
type RedisCache struct {
	client    redis.Cmdable
	eventsTTL time.Duration
}

func NewRedisCache(cfg config.RedisConfig, eventsTTL time.Duration) *RedisCache {
	return NewRedisCacheWithClient(
		redis.NewClient(&redis.Options{Addr: cfg.Addr, Password: cfg.Password, DB: cfg.DB}),
		eventsTTL,
	)
}

func NewRedisCacheWithClient(client redis.Cmdable, eventsTTL time.Duration) *RedisCache {
	return &RedisCache{client: client, eventsTTL: eventsTTL}
}

// GetEvents returns nil without error on a cache miss.
func (c *RedisCache) GetEvents(ctx context.Context, upcoming bool) ([]domain.Event, error) {
	data, err := c.client.Get(ctx, eventsKey(upcoming)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, err
	}

	var events []domain.Event
	if err := json.Unmarshal(data, &events); err != nil {
		return nil, err
	}
	return events, nil
}

func (c *RedisCache) SetEvents(ctx context.Context, upcoming bool, events []domain.Event) error {
	payload, err := json.Marshal(events)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, eventsKey(upcoming), payload, c.eventsTTL).Err()
}

// InvalidateEvents drops both listings, used after an admin changes an order and availability moves.
func (c *RedisCache) InvalidateEvents(ctx context.Context) error {
	return c.client.Del(ctx, eventsKey(false), eventsKey(true)).Err()
}

func eventsKey(upcoming bool) string {
	if upcoming {
		return "cache:events:upcoming"
	}
	return "cache:events:all"
}
