package ratelimit

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/A3toros/tutorcat-auth/internal/auth/domain"
)

// Limiter counts attempts in a sliding window backed by a Redis sorted
// set per (namespace, identity). Every storage failure degrades to
// allowing the request: the limiter must never lock out all users
// because Redis is down.
type Limiter struct {
	redis redis.UniversalClient
}

func NewLimiter(redisClient redis.UniversalClient) *Limiter {
	return &Limiter{redis: redisClient}
}

func key(namespace, identity string) string {
	return "ratelimit:" + namespace + ":" + identity
}

// Check prunes entries older than the window and counts the survivors.
// It never writes an attempt itself; Record is the only writer, so a
// namespace fed only on failures never throttles successful traffic.
// On denial ResetAt is derived from the oldest surviving entry.
func (l *Limiter) Check(ctx context.Context, namespace, identity string, maxAttempts int, window time.Duration) domain.RateLimitResult {
	now := time.Now()

	// Unidentifiable clients are never throttled.
	if identity == "" {
		return failOpen(maxAttempts, now, window)
	}

	k := key(namespace, identity)
	windowStart := now.Add(-window).UnixMilli()

	pipe := l.redis.TxPipeline()
	pipe.ZRemRangeByScore(ctx, k, "0", fmt.Sprintf("%d", windowStart))
	countCmd := pipe.ZCard(ctx, k)
	if _, err := pipe.Exec(ctx); err != nil {
		log.Printf("warn: rate limit check failed for %s, allowing request: %v", k, err)
		return failOpen(maxAttempts, now, window)
	}

	current := int(countCmd.Val())
	if current >= maxAttempts {
		resetAt := now.Add(window)
		if oldest, err := l.redis.ZRangeWithScores(ctx, k, 0, 0).Result(); err == nil && len(oldest) > 0 {
			resetAt = time.UnixMilli(int64(oldest[0].Score)).Add(window)
		}

		retryAfter := int((time.Until(resetAt) + time.Second - 1) / time.Second)
		if retryAfter < 0 {
			retryAfter = 0
		}

		return domain.RateLimitResult{
			Allowed:    false,
			Remaining:  0,
			ResetAt:    resetAt,
			RetryAfter: retryAfter,
		}
	}

	// Remaining accounts for the attempt under consideration, which
	// only lands in the set if the caller Records it afterwards.
	remaining := maxAttempts - current - 1
	if remaining < 0 {
		remaining = 0
	}

	return domain.RateLimitResult{
		Allowed:   true,
		Remaining: remaining,
		ResetAt:   now.Add(window),
	}
}

// Record is write-only bookkeeping: it always appends, regardless of the
// current count. The failed-login gate only reads it back via Check.
func (l *Limiter) Record(ctx context.Context, namespace, identity string, window time.Duration) {
	if identity == "" {
		return
	}

	k := key(namespace, identity)
	if err := l.record(ctx, k, time.Now(), window); err != nil {
		log.Printf("warn: rate limit record failed for %s: %v", k, err)
	}
}

func (l *Limiter) record(ctx context.Context, k string, now time.Time, window time.Duration) error {
	// The random suffix keeps two attempts landing in the same
	// millisecond from collapsing into one member.
	member := fmt.Sprintf("%d-%s", now.UnixMilli(), randomSuffix())

	pipe := l.redis.TxPipeline()
	pipe.ZAdd(ctx, k, redis.Z{Score: float64(now.UnixMilli()), Member: member})
	// Physical TTL outlives the logical window so entries are bounded
	// even when pruning is skipped.
	pipe.Expire(ctx, k, 2*window)
	_, err := pipe.Exec(ctx)

	return err
}

func failOpen(maxAttempts int, now time.Time, window time.Duration) domain.RateLimitResult {
	return domain.RateLimitResult{
		Allowed:   true,
		Remaining: maxAttempts,
		ResetAt:   now.Add(window),
	}
}

func randomSuffix() string {
	b := make([]byte, 4)
	if _, err := rand.Read(b); err != nil {
		return "0"
	}
	return hex.EncodeToString(b)
}
