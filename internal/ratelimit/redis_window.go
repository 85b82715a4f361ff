package ratelimit

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/google/uuid"
	redis "github.com/redis/go-redis/v9"
	"github.com/smallbiznis/greenleaf/internal/clock"
	"github.com/smallbiznis/greenleaf/internal/config"
)

const slidingWindowScript = `
local now = tonumber(ARGV[1])
local window = tonumber(ARGV[2])
local limit = tonumber(ARGV[3])

redis.call("ZREMRANGEBYSCORE", KEYS[1], "-inf", now - window)
redis.call("ZADD", KEYS[1], now, ARGV[4])
local count = redis.call("ZCARD", KEYS[1])
redis.call("PEXPIRE", KEYS[1], window)

local oldest = redis.call("ZRANGE", KEYS[1], 0, 0, "WITHSCORES")

local allowed = 0
if count <= limit then
  allowed = 1
end

-- Return: allowed, count, oldest score (milliseconds)
return {allowed, count, oldest[2]}
`

// RedisSlidingWindow shares one sliding window per key across instances.
type RedisSlidingWindow struct {
	client    *redis.Client
	script    *redis.Script
	clock     clock.Clock
	keyPrefix string
}

func NewRedisSlidingWindow(client *redis.Client, clk clock.Clock, keyPrefix string) *RedisSlidingWindow {
	if client == nil {
		return nil
	}
	return &RedisSlidingWindow{
		client:    client,
		script:    redis.NewScript(slidingWindowScript),
		clock:     clk,
		keyPrefix: keyPrefix,
	}
}

func (r *RedisSlidingWindow) Allow(ctx context.Context, key string, policy config.RatePolicy) (Decision, error) {
	if r == nil || r.client == nil {
		return Decision{}, errors.New("rate limiter not configured")
	}
	if key == "" {
		return Decision{}, errors.New("rate limiter key is empty")
	}

	now := r.clock.Now().UnixMilli()
	windowMs := policy.Window.Milliseconds()
	res, err := r.script.Run(
		ctx,
		r.client,
		[]string{r.keyPrefix + ":" + key},
		now,
		windowMs,
		policy.Limit,
		strconv.FormatInt(now, 10)+"-"+uuid.NewString(),
	).Slice()
	if err != nil {
		return Decision{}, err
	}
	return parseWindowResult(res, policy, now)
}

func parseWindowResult(res []interface{}, policy config.RatePolicy, nowMs int64) (Decision, error) {
	if len(res) < 3 {
		return Decision{}, errors.New("invalid rate limit script response")
	}
	d := Decision{
		Allowed: castToInt(res[0]) == 1,
		Limit:   policy.Limit,
		Count:   int(castToInt(res[1])),
	}
	if !d.Allowed {
		oldest := castToInt(res[2])
		d.RetryAfter = time.Duration(oldest+policy.Window.Milliseconds()-nowMs) * time.Millisecond
	}
	return d, nil
}

func castToInt(v interface{}) int64 {
	switch val := v.(type) {
	case int64:
		return val
	case int:
		return int64(val)
	case float64:
		return int64(val)
	case string:
		// ZRANGE WITHSCORES returns scores as strings
		f, err := strconv.ParseFloat(val, 64)
		if err != nil {
			return 0
		}
		return int64(f)
	default:
		return 0
	}
}
