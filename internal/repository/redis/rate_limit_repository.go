package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Sliding window over a sorted set. Returns the count in the window after
// this request, or -1 when the limit is already reached.
// KEYS[1]=key ARGV[1]=now ms ARGV[2]=window start ms ARGV[3]=ttl sec ARGV[4]=member ARGV[5]=limit
const luaRateLimit = `
local key = KEYS[1]
local now = tonumber(ARGV[1])
local windowStart = tonumber(ARGV[2])
local ttl = tonumber(ARGV[3])
local member = ARGV[4]

redis.call('ZREMRANGEBYSCORE', key, '0', windowStart)

local count = redis.call('ZCARD', key)
if count < tonumber(ARGV[5]) then
  redis.call('ZADD', key, now, member)
  redis.call('EXPIRE', key, ttl)
  return count + 1
end
return -1
`

type RateLimitRepository struct {
	client *redis.Client
	script *redis.Script
}

func NewRateLimitRepository(client *redis.Client) *RateLimitRepository {
	return &RateLimitRepository{
		client: client,
		script: redis.NewScript(luaRateLimit),
	}
}

// Allow records one hit for key and reports whether it fits in limit hits per
// window.
func (r *RateLimitRepository) Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	now := time.Now()
	nowMs := now.UnixMilli()
	windowStart := nowMs - window.Milliseconds()
	ttl := int64(window.Seconds())
	if ttl < 1 {
		ttl = 1
	}
	member := fmt.Sprintf("%d-%d", nowMs, now.UnixNano())

	res, err := r.script.Run(ctx, r.client, []string{"rate_limit:" + key},
		nowMs, windowStart, ttl, member, limit).Int()
	if err != nil {
		return false, fmt.Errorf("failed to run rate limit script: %w", err)
	}

	return res >= 0, nil
}
