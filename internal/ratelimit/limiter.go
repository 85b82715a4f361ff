package ratelimit

import (
	"context"
	"time"

	"github.com/smallbiznis/greenleaf/internal/config"
)

// Decision is the outcome of one counted call.
type Decision struct {
	Allowed    bool
	Limit      int
	Count      int
	RetryAfter time.Duration
}

// Limiter counts a call against key under policy. Every call is counted,
// including denied ones.
type Limiter interface {
	Allow(ctx context.Context, key string, policy config.RatePolicy) (Decision, error)
}
