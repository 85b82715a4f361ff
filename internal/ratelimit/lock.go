package ratelimit

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	redis "github.com/redis/go-redis/v9"
)

// Deletes the lease only while it still holds the caller's token.
const leaseReleaseScript = `
if redis.call("GET", KEYS[1]) == ARGV[1] then
  return redis.call("DEL", KEYS[1])
end
return 0
`

// Locker hands out short Redis leases so that one instance at a time runs
// a shared maintenance job. A nil Locker grants every lease.
type Locker struct {
	client    *redis.Client
	script    *redis.Script
	keyPrefix string
}

func NewLocker(client *redis.Client, keyPrefix string) *Locker {
	if client == nil {
		return nil
	}
	return &Locker{
		client:    client,
		script:    redis.NewScript(leaseReleaseScript),
		keyPrefix: keyPrefix,
	}
}

// Acquire returns a token and true when the lease on name was taken.
func (l *Locker) Acquire(ctx context.Context, name string, ttl time.Duration) (string, bool, error) {
	if l == nil {
		return "", true, nil
	}
	if name == "" {
		return "", false, errors.New("lease name is empty")
	}
	if ttl <= 0 {
		return "", false, errors.New("lease ttl must be positive")
	}

	token := uuid.NewString()
	ok, err := l.client.SetNX(ctx, l.key(name), token, ttl).Result()
	if err != nil {
		return "", false, err
	}
	return token, ok, nil
}

func (l *Locker) Release(ctx context.Context, name, token string) error {
	if l == nil || name == "" || token == "" {
		return nil
	}
	return l.script.Run(ctx, l.client, []string{l.key(name)}, token).Err()
}

func (l *Locker) key(name string) string {
	return l.keyPrefix + ":lease:" + name
}
