package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStore counts requests in fixed windows shared by every API instance.
type RedisStore struct {
	client redis.Cmdable
	prefix string
	now    func() time.Time
}

// NewRedisStore creates a store using client; keys are namespaced by prefix.
func NewRedisStore(client redis.Cmdable, prefix string) *RedisStore {
	if prefix == "" {
		prefix = "ratelimit"
	}
	return &RedisStore{client: client, prefix: prefix, now: time.Now}
}

// Take increments key's counter for the current window.
func (s *RedisStore) Take(ctx context.Context, key string, rule EndpointConfig) (Info, error) {
	now := s.now()
	window := rule.Window
	windowStart := now.Truncate(window)
	resetAt := windowStart.Add(window)
	redisKey := fmt.Sprintf("%s:%s:%d", s.prefix, key, windowStart.Unix())

	var incr *redis.IntCmd
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		incr = pipe.Incr(ctx, redisKey)
		pipe.PExpireAt(ctx, redisKey, resetAt)
		return nil
	})
	if err != nil {
		return Info{}, fmt.Errorf("failed to increment rate limit counter: %w", err)
	}

	count := int(incr.Val())
	allowed := count <= rule.Limit
	info := Info{
		Allowed:   allowed,
		Limit:     rule.Limit,
		Remaining: max(0, rule.Limit-count),
		ResetTime: resetAt,
	}
	if !allowed {
		info.RetryAfter = resetAt.Sub(now)
	}
	return info, nil
}
