package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// Endpoint classes guarded by the rate limiter.
const (
	PolicySave  = "save"
	PolicyRead  = "read"
	PolicyPrint = "print"
	PolicyAdmin = "admin"
)

type RatePolicy struct {
	Limit  int           `mapstructure:"limit"`
	Window time.Duration `mapstructure:"window"`
}

type RatePolicies map[string]RatePolicy

func DefaultRatePolicies() RatePolicies {
	return RatePolicies{
		PolicySave:  {Limit: 20, Window: time.Minute},
		PolicyRead:  {Limit: 30, Window: time.Minute},
		PolicyPrint: {Limit: 20, Window: time.Minute},
		PolicyAdmin: {Limit: 30, Window: time.Minute},
	}
}

// Lookup returns the policy for class, falling back to the default table.
func (p RatePolicies) Lookup(class string) RatePolicy {
	if policy, ok := p[class]; ok && policy.Limit > 0 && policy.Window > 0 {
		return policy
	}
	if policy, ok := DefaultRatePolicies()[class]; ok {
		return policy
	}
	return RatePolicy{Limit: 20, Window: time.Minute}
}

type PolicyHolder struct {
	current atomic.Value // holds RatePolicies
}

// NewStaticPolicyHolder returns a holder that never reloads.
func NewStaticPolicyHolder(policies RatePolicies) *PolicyHolder {
	holder := &PolicyHolder{}
	holder.current.Store(policies)
	return holder
}

func NewPolicyHolder(cfg Config, log *zap.Logger) (*PolicyHolder, error) {
	v := viper.New()

	if cfg.RateLimit.PolicyFile != "" {
		v.SetConfigFile(cfg.RateLimit.PolicyFile)
	} else {
		v.SetConfigName("ratelimit")
		v.SetConfigType("yml")
		v.AddConfigPath("/etc/greenleaf")
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix("GREENLEAF")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	defaults := DefaultRatePolicies()
	for class, policy := range defaults {
		v.SetDefault("ratelimit."+class+".limit", policy.Limit)
		v.SetDefault("ratelimit."+class+".window", policy.Window)
	}

	fileLoaded := true
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) || cfg.RateLimit.PolicyFile != "" {
			return nil, fmt.Errorf("read rate limit policy: %w", err)
		}
		fileLoaded = false
	}

	policies, err := readPolicies(v)
	if err != nil {
		return nil, err
	}

	holder := NewStaticPolicyHolder(policies)
	if !fileLoaded {
		return holder, nil
	}

	log = log.Named("config.ratelimit")
	v.OnConfigChange(func(e fsnotify.Event) {
		updated, err := readPolicies(v)
		if err != nil {
			log.Warn("rate limit policy reload ignored", zap.String("file", filepath.Base(e.Name)), zap.Error(err))
			return
		}
		holder.current.Store(updated)
		log.Info("rate limit policy reloaded", zap.String("file", filepath.Base(e.Name)))
	})
	v.WatchConfig()

	return holder, nil
}

func (h *PolicyHolder) Get() RatePolicies {
	if h == nil {
		return DefaultRatePolicies()
	}
	policies, ok := h.current.Load().(RatePolicies)
	if !ok {
		return DefaultRatePolicies()
	}
	return policies
}

func readPolicies(v *viper.Viper) (RatePolicies, error) {
	policies := RatePolicies{}
	for class := range DefaultRatePolicies() {
		policy := RatePolicy{
			Limit:  v.GetInt("ratelimit." + class + ".limit"),
			Window: v.GetDuration("ratelimit." + class + ".window"),
		}
		if err := validatePolicy(class, policy); err != nil {
			return nil, err
		}
		policies[class] = policy
	}
	return policies, nil
}

func validatePolicy(class string, policy RatePolicy) error {
	if policy.Limit <= 0 {
		return fmt.Errorf("ratelimit.%s.limit must be positive", class)
	}
	if policy.Window <= 0 {
		return fmt.Errorf("ratelimit.%s.window must be positive", class)
	}
	return nil
}
