package scheduler

import (
	"time"
)

// Config controls the scheduler interval and job budgets.
type Config struct {
	RunInterval time.Duration
	JobTimeout  time.Duration
	// LeaseTTL bounds how long one instance holds the shared job lease.
	LeaseTTL    time.Duration
	EnabledJobs []string
}

func DefaultConfig() Config {
	return Config{
		RunInterval: 15 * time.Minute,
		JobTimeout:  2 * time.Minute,
		LeaseTTL:    5 * time.Minute,
	}
}

func (c Config) withDefaults() Config {
	defaults := DefaultConfig()
	if c.RunInterval <= 0 {
		c.RunInterval = defaults.RunInterval
	}
	if c.JobTimeout <= 0 {
		c.JobTimeout = defaults.JobTimeout
	}
	if c.LeaseTTL <= 0 {
		c.LeaseTTL = defaults.LeaseTTL
	}
	if c.LeaseTTL < c.JobTimeout {
		c.LeaseTTL = c.JobTimeout
	}
	return c
}
