package service

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/prperemyshlev/notes-service/pkg/database"
	"github.com/redis/go-redis/v9"
)

// RateLimitError is returned when a key has used up its window
type RateLimitError struct {
	RetryAfter time.Duration
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("rate limit exceeded, try again in %v", e.RetryAfter)
}

// RateLimiter handles rate limiting using Redis
type RateLimiter struct {
	redis *database.Redis
	now   func() time.Time
}

// NewRateLimiter creates a new rate limiter
func NewRateLimiter(redis *database.Redis) *RateLimiter {
	return &RateLimiter{redis: redis, now: time.Now}
}

// Allow records a request for key using a sliding window log and returns how many
// requests remain. A *RateLimitError means the request must be refused.
func (r *RateLimiter) Allow(ctx context.Context, key string, limit int, window time.Duration) (int, error) {
	now := r.now()
	redisKey := fmt.Sprintf("ratelimit:%s", key)

	var count *redis.IntCmd
	_, err := r.redis.Client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.ZRemRangeByScore(ctx, redisKey, "-inf", strconv.FormatInt(now.Add(-window).UnixMicro(), 10))
		count = pipe.ZCard(ctx, redisKey)
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("failed to count entries: %w", err)
	}

	if count.Val() >= int64(limit) {
		retryAfter := window
		oldest, err := r.redis.Client.ZRangeWithScores(ctx, redisKey, 0, 0).Result()
		if err == nil && len(oldest) > 0 {
			retryAfter = window - now.Sub(time.UnixMicro(int64(oldest[0].Score)))
		}
		return 0, &RateLimitError{RetryAfter: retryAfter.Round(time.Second)}
	}

	_, err = r.redis.Client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.ZAdd(ctx, redisKey, redis.Z{
			Score:  float64(now.UnixMicro()),
			Member: fmt.Sprintf("%d-%s", now.UnixMicro(), uuid.NewString()),
		})
		pipe.Expire(ctx, redisKey, window+time.Minute)
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("failed to add entry: %w", err)
	}

	return limit - int(count.Val()) - 1, nil
}
