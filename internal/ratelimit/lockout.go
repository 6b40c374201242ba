package ratelimit

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/alphabank/alphabank-api/internal/cache"
)

// Lockout tracks failed login attempts per identity and blocks further
// attempts once maxAttempts is reached within the window.
type Lockout interface {
	// Locked reports whether identity is locked and for how long.
	Locked(ctx context.Context, identity string) (bool, time.Duration, error)
	// Fail records a failed attempt.
	Fail(ctx context.Context, identity string) error
	// Reset clears the failures after a successful login.
	Reset(ctx context.Context, identity string) error
}

func normalizeIdentity(identity string) string {
	return strings.ToLower(strings.TrimSpace(identity))
}

// RedisLockout keeps failure counters in Redis.
type RedisLockout struct {
	cache       *cache.Cache
	maxAttempts int64
	window      time.Duration
}

// NewRedisLockout creates a Redis-backed Lockout.
func NewRedisLockout(c *cache.Cache, maxAttempts int, window time.Duration) *RedisLockout {
	return &RedisLockout{cache: c, maxAttempts: int64(maxAttempts), window: window}
}

// Locked implements Lockout.
func (l *RedisLockout) Locked(ctx context.Context, identity string) (bool, time.Duration, error) {
	n, ttl, err := l.cache.LoginFailures(ctx, normalizeIdentity(identity))
	if err != nil {
		return false, 0, err
	}
	if n >= l.maxAttempts {
		return true, ttl, nil
	}
	return false, 0, nil
}

// Fail implements Lockout.
func (l *RedisLockout) Fail(ctx context.Context, identity string) error {
	_, err := l.cache.RecordLoginFailure(ctx, normalizeIdentity(identity), l.window)
	return err
}

// Reset implements Lockout.
func (l *RedisLockout) Reset(ctx context.Context, identity string) error {
	return l.cache.ResetLoginFailures(ctx, normalizeIdentity(identity))
}

// MemoryLockout is an in-process Lockout for single-instance deployments.
type MemoryLockout struct {
	mu          sync.Mutex
	failures    map[string]*failureWindow
	maxAttempts int
	window      time.Duration
	now         func() time.Time
}

type failureWindow struct {
	count   int
	expires time.Time
}

// NewMemoryLockout creates an in-process Lockout.
func NewMemoryLockout(maxAttempts int, window time.Duration) *MemoryLockout {
	return &MemoryLockout{
		failures:    make(map[string]*failureWindow),
		maxAttempts: maxAttempts,
		window:      window,
		now:         time.Now,
	}
}

// Locked implements Lockout.
func (l *MemoryLockout) Locked(_ context.Context, identity string) (bool, time.Duration, error) {
	key := normalizeIdentity(identity)
	now := l.now()

	l.mu.Lock()
	defer l.mu.Unlock()

	fw, ok := l.failures[key]
	if !ok {
		return false, 0, nil
	}
	if !now.Before(fw.expires) {
		delete(l.failures, key)
		return false, 0, nil
	}
	if fw.count >= l.maxAttempts {
		return true, fw.expires.Sub(now), nil
	}
	return false, 0, nil
}

// Fail implements Lockout.
func (l *MemoryLockout) Fail(_ context.Context, identity string) error {
	key := normalizeIdentity(identity)
	now := l.now()

	l.mu.Lock()
	defer l.mu.Unlock()

	fw, ok := l.failures[key]
	if !ok || !now.Before(fw.expires) {
		l.failures[key] = &failureWindow{count: 1, expires: now.Add(l.window)}
		return nil
	}
	fw.count++
	return nil
}

// Reset implements Lockout.
func (l *MemoryLockout) Reset(_ context.Context, identity string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.failures, normalizeIdentity(identity))
	return nil
}

var (
	_ Limiter = (*Store)(nil)
	_ Limiter = (*RedisLimiter)(nil)
	_ Lockout = (*MemoryLockout)(nil)
	_ Lockout = (*RedisLockout)(nil)
)
