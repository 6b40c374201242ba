package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) now() time.Time { return c.t }
func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func TestStore_BurstThenDeny(t *testing.T) {
	t.Parallel()
	clock := &fakeClock{t: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
	s := NewStore(1, 3, WithClock(clock.now))
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		d, err := s.Allow(ctx, "u1")
		require.NoError(t, err)
		assert.True(t, d.Allowed, "request %d", i)
	}

	d, err := s.Allow(ctx, "u1")
	require.NoError(t, err)
	assert.False(t, d.Allowed)
	assert.Equal(t, time.Second, d.RetryAfter)

	clock.advance(time.Second)
	d, err = s.Allow(ctx, "u1")
	require.NoError(t, err)
	assert.True(t, d.Allowed, "one token refilled after a second")
}

func TestStore_KeysAreIndependent(t *testing.T) {
	t.Parallel()
	clock := &fakeClock{t: time.Unix(0, 0)}
	s := NewStore(1, 1, WithClock(clock.now))
	ctx := context.Background()

	d, _ := s.Allow(ctx, "a")
	assert.True(t, d.Allowed)
	d, _ = s.Allow(ctx, "a")
	assert.False(t, d.Allowed)
	d, _ = s.Allow(ctx, "b")
	assert.True(t, d.Allowed)
}

func TestStore_DeniedRequestDoesNotConsume(t *testing.T) {
	t.Parallel()
	clock := &fakeClock{t: time.Unix(0, 0)}
	s := NewStore(1, 1, WithClock(clock.now))
	ctx := context.Background()

	_, _ = s.Allow(ctx, "a")
	for i := 0; i < 5; i++ {
		d, _ := s.Allow(ctx, "a")
		assert.False(t, d.Allowed)
	}

	clock.advance(time.Second)
	d, _ := s.Allow(ctx, "a")
	assert.True(t, d.Allowed)
}

func TestNewPerMinuteStore(t *testing.T) {
	t.Parallel()
	clock := &fakeClock{t: time.Unix(0, 0)}
	s := NewPerMinuteStore(60, 1, WithClock(clock.now))
	ctx := context.Background()

	d, _ := s.Allow(ctx, "a")
	assert.True(t, d.Allowed)
	d, _ = s.Allow(ctx, "a")
	assert.False(t, d.Allowed)
	clock.advance(time.Second)
	d, _ = s.Allow(ctx, "a")
	assert.True(t, d.Allowed)
}

func TestStore_Cleanup(t *testing.T) {
	t.Parallel()
	clock := &fakeClock{t: time.Unix(0, 0)}
	s := NewStore(1, 1, WithClock(clock.now), WithIdleTTL(time.Minute))
	ctx := context.Background()

	_, _ = s.Allow(ctx, "old")
	clock.advance(2 * time.Minute)
	_, _ = s.Allow(ctx, "new")
	require.Equal(t, 2, s.Len())

	s.Cleanup()
	assert.Equal(t, 1, s.Len())
}

func TestCeilSecond(t *testing.T) {
	t.Parallel()
	assert.Equal(t, time.Second, ceilSecond(300*time.Millisecond))
	assert.Equal(t, 2*time.Second, ceilSecond(2*time.Second))
	assert.Equal(t, 3*time.Second, ceilSecond(2*time.Second+time.Nanosecond))
}
