package redisx

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

func New(addr string) *redis.Client {
	r := redis.NewClient(&redis.Options{Addr: addr})
	_ = r.WithTimeout(2 * time.Second)
	return r
}

// Cache is the small caching port the HTTP layer and the projector
// depend on; Client adapts it over go-redis so tests can swap in a map.
type Cache interface {
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	SetNX(ctx context.Context, key, value string, ttl time.Duration) (bool, error)
	Del(ctx context.Context, key string) error
}

type Client struct{ R *redis.Client }

func (c Client) Get(ctx context.Context, key string) (string, bool, error) {
	v, err := c.R.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return v, true, nil
}

func (c Client) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	return c.R.Set(ctx, key, value, ttl).Err()
}

func (c Client) SetNX(ctx context.Context, key, value string, ttl time.Duration) (bool, error) {
	return c.R.SetNX(ctx, key, value, ttl).Result()
}

func (c Client) Del(ctx context.Context, key string) error {
	return c.R.Del(ctx, key).Err()
}
