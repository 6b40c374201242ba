package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const loginFailurePrefix = "login:fail:"

// incrWithExpiry increments the counter and sets the expiry only when the
// key is created, so the window starts at the first failure.
var incrWithExpiry = redis.NewScript(`
	local n = redis.call('INCR', KEYS[1])
	if n == 1 then
		redis.call('PEXPIRE', KEYS[1], ARGV[1])
	end
	return n
`)

// RecordLoginFailure increments the failure counter for identity and
// returns the new count. The counter expires window after the first failure.
func (c *Cache) RecordLoginFailure(ctx context.Context, identity string, window time.Duration) (int64, error) {
	n, err := incrWithExpiry.Run(ctx, c.client,
		[]string{loginFailurePrefix + hashKey(identity)},
		window.Milliseconds(),
	).Int64()
	if err != nil {
		return 0, fmt.Errorf("record login failure: %w", err)
	}
	return n, nil
}

// LoginFailures returns the current failure count and the time until the
// counter resets.
func (c *Cache) LoginFailures(ctx context.Context, identity string) (int64, time.Duration, error) {
	key := loginFailurePrefix + hashKey(identity)

	n, err := c.client.Get(ctx, key).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, 0, nil
	}
	if err != nil {
		return 0, 0, fmt.Errorf("get login failures: %w", err)
	}

	ttl, err := c.client.PTTL(ctx, key).Result()
	if err != nil {
		return 0, 0, fmt.Errorf("get login failure ttl: %w", err)
	}
	if ttl < 0 {
		ttl = 0
	}
	return n, ttl, nil
}

// ResetLoginFailures clears the failure counter for identity.
func (c *Cache) ResetLoginFailures(ctx context.Context, identity string) error {
	if err := c.client.Del(ctx, loginFailurePrefix+hashKey(identity)).Err(); err != nil {
		return fmt.Errorf("reset login failures: %w", err)
	}
	return nil
}
