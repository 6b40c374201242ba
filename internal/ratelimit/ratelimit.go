// Package ratelimit decides whether a keyed action may proceed. Keys are
// user IDs for authenticated routes and client IPs for public ones.
package ratelimit

import (
	"context"
	"time"

	"github.com/alphabank/alphabank-api/internal/cache"
)

// Decision is the outcome of a single Allow call.
type Decision struct {
	Allowed   bool
	Remaining int64
	// RetryAfter is the suggested wait when Allowed is false. Zero means
	// no recommendation.
	RetryAfter time.Duration
}

// Limiter consumes one unit of budget for key.
type Limiter interface {
	Allow(ctx context.Context, key string) (Decision, error)
}

// Scope selects which Redis bucket family a RedisLimiter uses.
type Scope int

const (
	ScopeUser Scope = iota
	ScopeIP
)

// RedisLimiter is a Limiter shared across API instances.
type RedisLimiter struct {
	cache *cache.Cache
	scope Scope
	rate  int
	burst int
}

// NewRedisUserLimiter limits per user at ratePerMinute.
func NewRedisUserLimiter(c *cache.Cache, ratePerMinute, burst int) *RedisLimiter {
	return &RedisLimiter{cache: c, scope: ScopeUser, rate: ratePerMinute, burst: burst}
}

// NewRedisIPLimiter limits per client IP at ratePerSecond.
func NewRedisIPLimiter(c *cache.Cache, ratePerSecond, burst int) *RedisLimiter {
	return &RedisLimiter{cache: c, scope: ScopeIP, rate: ratePerSecond, burst: burst}
}

// Allow implements Limiter.
func (l *RedisLimiter) Allow(ctx context.Context, key string) (Decision, error) {
	var (
		res *cache.RateLimitResult
		err error
	)
	switch l.scope {
	case ScopeIP:
		res, err = l.cache.CheckIPRateLimit(ctx, key, l.rate, l.burst)
	default:
		res, err = l.cache.CheckUserRateLimit(ctx, key, l.rate, l.burst)
	}
	if err != nil {
		return Decision{}, err
	}
	return Decision{Allowed: res.Allowed, Remaining: res.Remaining, RetryAfter: res.RetryAfter}, nil
}
