package ratelimit

import (
	"context"
	"errors"
	"strings"

	redis "github.com/redis/go-redis/v9"
	"github.com/smallbiznis/greenleaf/internal/clock"
	"github.com/smallbiznis/greenleaf/internal/config"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

const (
	BackendMemory = "memory"
	BackendRedis  = "redis"
)

var Module = fx.Module("rate.limit",
	fx.Provide(NewRedisClient),
	fx.Provide(NewLimiter),
	fx.Provide(func(client *redis.Client, cfg config.Config) *Locker {
		return NewLocker(client, cfg.RateLimit.KeyPrefix)
	}),
	fx.Provide(NewGuard),
)

// NewRedisClient returns nil when no Redis address is configured.
func NewRedisClient(lc fx.Lifecycle, cfg config.Config) (*redis.Client, error) {
	limitCfg := cfg.RateLimit
	addr := strings.TrimSpace(limitCfg.RedisAddr)
	if addr == "" {
		if strings.EqualFold(limitCfg.Backend, BackendRedis) {
			return nil, errors.New("rate limit redis addr is required")
		}
		return nil, nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: strings.TrimSpace(limitCfg.RedisPassword),
		DB:       limitCfg.RedisDB,
	})
	lc.Append(fx.Hook{
		OnStop: func(context.Context) error {
			return client.Close()
		},
	})
	return client, nil
}

func NewLimiter(cfg config.Config, client *redis.Client, clk clock.Clock, log *zap.Logger) (Limiter, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.RateLimit.Backend)) {
	case "", BackendMemory:
		return NewSlidingWindow(clk), nil
	case BackendRedis:
		log.Info("rate limiter using redis", zap.String("addr", cfg.RateLimit.RedisAddr))
		return NewRedisSlidingWindow(client, clk, cfg.RateLimit.KeyPrefix), nil
	default:
		return nil, errors.New("unknown rate limit backend: " + cfg.RateLimit.Backend)
	}
}
