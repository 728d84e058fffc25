package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/koushalk6/whatsapp-saas-api-v2-extended/internal/constants"
)

// fixed window: INCR the window counter, arm its expiry on first hit, and
// report the remaining TTL for Retry-After.
var luaFixedWindow = redis.NewScript(`
local current = redis.call('INCR', KEYS[1])
if current == 1 then redis.call('PEXPIRE', KEYS[1], ARGV[1]) end
local ttl = redis.call('PTTL', KEYS[1])
return {current, ttl}
`)

// RedisStore counts requests in fixed windows shared by all replicas.
type RedisStore struct {
	client *redis.Client
	limit  int64
	window time.Duration
}

func NewRedisStore(client *redis.Client, cfg Config) *RedisStore {
	cfg = cfg.withDefaults()
	limit := int64(cfg.RPS * cfg.Window.Seconds())
	if limit < 1 {
		limit = 1
	}
	return &RedisStore{
		client: client,
		limit:  limit,
		window: cfg.Window,
	}
}

func (s *RedisStore) Allow(ctx context.Context, key string) (Decision, error) {
	res, err := luaFixedWindow.Run(ctx, s.client,
		[]string{constants.RateLimitKeyPrefix + key},
		s.window.Milliseconds(),
	).Result()
	if err != nil {
		return Decision{}, fmt.Errorf("redis rate limit check failed: %w", err)
	}

	arr, ok := res.([]interface{})
	if !ok || len(arr) != 2 {
		return Decision{}, fmt.Errorf("unexpected rate limit script result: %v", res)
	}

	current, _ := arr[0].(int64)
	ttlMillis, _ := arr[1].(int64)

	if current <= s.limit {
		return Decision{Allowed: true, Remaining: int(s.limit - current)}, nil
	}

	retryAfter := time.Duration(ttlMillis) * time.Millisecond
	if retryAfter <= 0 {
		retryAfter = s.window
	}
	return Decision{Allowed: false, RetryAfter: retryAfter}, nil
}
