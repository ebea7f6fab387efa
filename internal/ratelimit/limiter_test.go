package ratelimit_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/A3toros/tutorcat-auth/internal/ratelimit"
)

func newTestLimiter(t *testing.T) (*ratelimit.Limiter, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})

	return ratelimit.NewLimiter(client), mr
}

func TestCheck_SlidingWindow(t *testing.T) {
	limiter, _ := newTestLimiter(t)
	ctx := context.Background()

	const maxAttempts = 3
	window := time.Minute

	// Each recorded attempt shrinks the budget the next check sees.
	for i := 0; i < maxAttempts; i++ {
		res := limiter.Check(ctx, "failed-login", "10.0.0.1", maxAttempts, window)
		require.True(t, res.Allowed, "attempt %d should be allowed", i+1)
		assert.Equal(t, maxAttempts-i-1, res.Remaining)

		limiter.Record(ctx, "failed-login", "10.0.0.1", window)
	}

	res := limiter.Check(ctx, "failed-login", "10.0.0.1", maxAttempts, window)
	assert.False(t, res.Allowed)
	assert.Equal(t, 0, res.Remaining)
	assert.Greater(t, res.RetryAfter, 0)
	assert.True(t, res.ResetAt.After(time.Now()))
}

// Check only reads: no number of checks consumes the budget.
func TestCheck_DoesNotConsumeBudget(t *testing.T) {
	limiter, _ := newTestLimiter(t)
	ctx := context.Background()

	for i := 0; i < 20; i++ {
		res := limiter.Check(ctx, "failed-login", "10.0.0.1", 1, time.Minute)
		require.True(t, res.Allowed, "check %d must not count as an attempt", i+1)
		assert.Equal(t, 0, res.Remaining)
	}
}

func TestCheck_IdentitiesAreIndependent(t *testing.T) {
	limiter, _ := newTestLimiter(t)
	ctx := context.Background()

	limiter.Record(ctx, "failed-login", "10.0.0.1", time.Minute)
	res := limiter.Check(ctx, "failed-login", "10.0.0.1", 1, time.Minute)
	require.False(t, res.Allowed)

	// A different client is unaffected.
	res = limiter.Check(ctx, "failed-login", "10.0.0.2", 1, time.Minute)
	assert.True(t, res.Allowed)

	// Same client, different namespace is unaffected too.
	res = limiter.Check(ctx, "login", "10.0.0.1", 1, time.Minute)
	assert.True(t, res.Allowed)
}

func TestCheck_WindowExpiry(t *testing.T) {
	limiter, _ := newTestLimiter(t)
	ctx := context.Background()

	window := 50 * time.Millisecond

	limiter.Record(ctx, "failed-login", "10.0.0.1", window)
	res := limiter.Check(ctx, "failed-login", "10.0.0.1", 1, window)
	require.False(t, res.Allowed)

	// Once the attempt falls out of the window it no longer counts.
	time.Sleep(60 * time.Millisecond)

	res = limiter.Check(ctx, "failed-login", "10.0.0.1", 1, window)
	assert.True(t, res.Allowed)
}

func TestCheck_FailOpenOnStorageError(t *testing.T) {
	limiter, mr := newTestLimiter(t)
	ctx := context.Background()

	// Exhaust the budget while Redis is healthy.
	limiter.Record(ctx, "failed-login", "10.0.0.1", time.Minute)
	res := limiter.Check(ctx, "failed-login", "10.0.0.1", 1, time.Minute)
	require.False(t, res.Allowed)

	mr.Close()

	res = limiter.Check(ctx, "failed-login", "10.0.0.1", 1, time.Minute)
	assert.True(t, res.Allowed, "storage outage must fail open")
	assert.Equal(t, 1, res.Remaining)
}

func TestCheck_EmptyIdentityFailsOpen(t *testing.T) {
	limiter, _ := newTestLimiter(t)

	for i := 0; i < 5; i++ {
		res := limiter.Check(context.Background(), "failed-login", "", 1, time.Minute)
		assert.True(t, res.Allowed)
	}
}

func TestRecord_CountsTowardCheck(t *testing.T) {
	limiter, _ := newTestLimiter(t)
	ctx := context.Background()

	// Record never enforces the cap, it only bookkeeps.
	for i := 0; i < 5; i++ {
		limiter.Record(ctx, "failed-login", "10.0.0.1", time.Minute)
	}

	res := limiter.Check(ctx, "failed-login", "10.0.0.1", 3, time.Minute)
	assert.False(t, res.Allowed)
}

func TestRecord_SetsPhysicalTTL(t *testing.T) {
	limiter, mr := newTestLimiter(t)

	window := time.Minute
	limiter.Record(context.Background(), "failed-login", "10.0.0.1", window)

	ttl := mr.TTL("ratelimit:failed-login:10.0.0.1")
	assert.Equal(t, 2*window, ttl)
}

func TestRecord_SameMillisecondAttemptsAllCount(t *testing.T) {
	limiter, _ := newTestLimiter(t)
	ctx := context.Background()

	// Unique member suffixes keep simultaneous attempts from
	// collapsing into one sorted-set entry.
	for i := 0; i < 3; i++ {
		limiter.Record(ctx, "failed-login", "10.0.0.1", time.Minute)
	}

	res := limiter.Check(ctx, "failed-login", "10.0.0.1", 10, time.Minute)
	require.True(t, res.Allowed)
	assert.Equal(t, 10-3-1, res.Remaining)
}
