package ratelimit

import (
	"context"
	"sync"
	"time"

	"github.com/smallbiznis/greenleaf/internal/clock"
	"github.com/smallbiznis/greenleaf/internal/config"
)

const defaultSweepInterval = 5 * time.Minute

// SlidingWindow keeps per-key call timestamps in process memory.
type SlidingWindow struct {
	mu    sync.Mutex
	clock clock.Clock
	hits  map[string][]time.Time

	sweepInterval time.Duration
	lastSweep     time.Time
	maxWindow     time.Duration
}

func NewSlidingWindow(clk clock.Clock) *SlidingWindow {
	return &SlidingWindow{
		clock:         clk,
		hits:          make(map[string][]time.Time),
		sweepInterval: defaultSweepInterval,
		lastSweep:     clk.Now(),
	}
}

func (s *SlidingWindow) Allow(_ context.Context, key string, policy config.RatePolicy) (Decision, error) {
	now := s.clock.Now()

	s.mu.Lock()
	defer s.mu.Unlock()

	if policy.Window > s.maxWindow {
		s.maxWindow = policy.Window
	}
	if now.Sub(s.lastSweep) >= s.sweepInterval {
		s.sweepLocked(now)
	}

	hits := prune(s.hits[key], now, policy.Window)
	hits = append(hits, now)
	s.hits[key] = hits

	d := Decision{
		Allowed: len(hits) <= policy.Limit,
		Limit:   policy.Limit,
		Count:   len(hits),
	}
	if !d.Allowed {
		d.RetryAfter = hits[0].Add(policy.Window).Sub(now)
	}
	return d, nil
}

// Keys reports how many keys are tracked.
func (s *SlidingWindow) Keys() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.hits)
}

// Sweep drops keys with no call inside the largest window seen so far.
func (s *SlidingWindow) Sweep() {
	now := s.clock.Now()
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sweepLocked(now)
}

func (s *SlidingWindow) sweepLocked(now time.Time) {
	for key, hits := range s.hits {
		if len(hits) == 0 || now.Sub(hits[len(hits)-1]) >= s.maxWindow {
			delete(s.hits, key)
		}
	}
	s.lastSweep = now
}

// prune drops entries with now-ts >= window. hits is ordered oldest first.
func prune(hits []time.Time, now time.Time, window time.Duration) []time.Time {
	i := 0
	for i < len(hits) && now.Sub(hits[i]) >= window {
		i++
	}
	if i == 0 {
		return hits
	}
	return append(hits[:0], hits[i:]...)
}
