package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// slidingWindowScript evicts expired entries, then checks and records in one
// atomic step. Returns 1 when the request is admitted.
var slidingWindowScript = redis.NewScript(`
redis.call('ZREMRANGEBYSCORE', KEYS[1], '-inf', ARGV[1])
local count = redis.call('ZCARD', KEYS[1])
if count >= tonumber(ARGV[2]) then
	return 0
end
redis.call('ZADD', KEYS[1], ARGV[3], ARGV[4])
redis.call('PEXPIRE', KEYS[1], ARGV[5])
return 1
`)

// RedisLimiter implements a sliding window over a Redis sorted set, shared
// across gateway instances.
type RedisLimiter struct {
	client *redis.Client
	window time.Duration
	max    int
}

func NewRedisLimiter(client *redis.Client, window time.Duration, max int) *RedisLimiter {
	return &RedisLimiter{
		client: client,
		window: window,
		max:    max,
	}
}

func (l *RedisLimiter) Allow(ctx context.Context, key string, now time.Time) error {
	nowMs := now.UnixMilli()
	minScore := nowMs - l.window.Milliseconds()
	member := fmt.Sprintf("%d-%s", now.UnixNano(), uuid.NewString())

	admitted, err := slidingWindowScript.Run(ctx, l.client, []string{key},
		minScore,
		l.max,
		nowMs,
		member,
		l.window.Milliseconds(),
	).Int()
	if err != nil {
		return fmt.Errorf("rate limit check: %w", err)
	}

	if admitted != 1 {
		return ErrLimitExceeded
	}
	return nil
}
