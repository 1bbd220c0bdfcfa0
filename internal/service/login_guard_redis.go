package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisLoginGuard counts failed logins in Redis with a rolling window.
// The first failure sets the window expiry; the counter disappears on
// its own once the window passes.
type RedisLoginGuard struct {
	client      redis.UniversalClient
	prefix      string
	maxFailures int
	window      time.Duration
}

func NewRedisLoginGuard(client redis.UniversalClient, maxFailures int, window time.Duration) *RedisLoginGuard {
	return &RedisLoginGuard{
		client:      client,
		prefix:      "login_guard",
		maxFailures: maxFailures,
		window:      window,
	}
}

func (g *RedisLoginGuard) key(key string) string {
	return fmt.Sprintf("%s:%s", g.prefix, guardKey(key))
}

func (g *RedisLoginGuard) Allow(ctx context.Context, key string) (bool, error) {
	count, err := g.client.Get(ctx, g.key(key)).Int()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return true, nil
		}
		return false, fmt.Errorf("login guard get: %w", err)
	}
	return count < g.maxFailures, nil
}

func (g *RedisLoginGuard) RecordFailure(ctx context.Context, key string) error {
	k := g.key(key)
	count, err := g.client.Incr(ctx, k).Result()
	if err != nil {
		return fmt.Errorf("login guard incr: %w", err)
	}
	if count == 1 {
		if err := g.client.Expire(ctx, k, g.window).Err(); err != nil {
			return fmt.Errorf("login guard expire: %w", err)
		}
	}
	return nil
}

func (g *RedisLoginGuard) Reset(ctx context.Context, key string) error {
	if err := g.client.Del(ctx, g.key(key)).Err(); err != nil {
		return fmt.Errorf("login guard reset: %w", err)
	}
	return nil
}
