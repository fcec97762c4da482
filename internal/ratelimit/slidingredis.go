package ratelimit

import (
	"context"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// DefaultPrefix namespaces limiter keys in the shared Redis instance.
const DefaultPrefix = "quotes:ratelimit:"

// Result is the limiter decision for a single request.
type Result struct {
	Allowed   bool
	Remaining int
	ResetAt   time.Time
}

// Limiter is a sliding-window rate limiter over Redis sorted sets: one set
// per key, one member per request, scored by arrival time. Requests older
// than the window are trimmed before counting.
type Limiter struct {
	Client *redis.Client
	Prefix string
}

// Allow registers a request under key and reports whether it fits the limit.
// A nil client or non-positive limit disables limiting.
func (l Limiter) Allow(ctx context.Context, key string, window time.Duration, max int) (Result, error) {
	reset := time.Now().Add(window)
	if l.Client == nil || max <= 0 || window <= 0 {
		return Result{Allowed: true, Remaining: max, ResetAt: reset}, nil
	}

	prefix := l.Prefix
	if prefix == "" {
		prefix = DefaultPrefix
	}
	now := time.Now()
	bucket := prefix + key

	pipe := l.Client.TxPipeline()
	pipe.ZRemRangeByScore(ctx, bucket, "-inf", strconv.FormatInt(now.Add(-window).UnixNano(), 10))
	pipe.ZAdd(ctx, bucket, redis.Z{
		Score:  float64(now.UnixNano()),
		Member: uuid.NewString(),
	})
	count := pipe.ZCard(ctx, bucket)
	pipe.Expire(ctx, bucket, window)
	if _, err := pipe.Exec(ctx); err != nil {
		return Result{ResetAt: reset}, err
	}

	seen := int(count.Val())
	remaining := max - seen
	if remaining < 0 {
		remaining = 0
	}
	return Result{Allowed: seen <= max, Remaining: remaining, ResetAt: reset}, nil
}
