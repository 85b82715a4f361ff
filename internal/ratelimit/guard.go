package ratelimit

import (
	"context"
	"strings"

	"github.com/smallbiznis/greenleaf/internal/config"
	"go.uber.org/zap"
)

// Guard applies the configured policy of an endpoint class to a client.
type Guard struct {
	enabled  bool
	limiter  Limiter
	policies *config.PolicyHolder
	log      *zap.Logger
}

func NewGuard(cfg config.Config, limiter Limiter, policies *config.PolicyHolder, log *zap.Logger) *Guard {
	return &Guard{
		enabled:  cfg.RateLimit.Enabled,
		limiter:  limiter,
		policies: policies,
		log:      log.Named("ratelimit"),
	}
}

func (g *Guard) Enabled() bool {
	return g != nil && g.enabled && g.limiter != nil
}

// Check counts one call of client against class. Limiter errors fail open.
func (g *Guard) Check(ctx context.Context, class, client string) Decision {
	if !g.Enabled() {
		return Decision{Allowed: true}
	}
	policy := g.policies.Get().Lookup(class)
	client = strings.TrimSpace(client)
	if client == "" {
		client = "unknown"
	}

	d, err := g.limiter.Allow(ctx, class+":"+client, policy)
	if err != nil {
		g.log.Warn("rate limiter unavailable, allowing request",
			zap.String("class", class),
			zap.Error(err),
		)
		return Decision{Allowed: true, Limit: policy.Limit}
	}
	return d
}
