package service

import (
	"context"
	"fmt"
	"time"

	"github.com/prperemyshlev/notes-service/internal/domain"
	"github.com/prperemyshlev/notes-service/pkg/database"
	"github.com/redis/go-redis/v9"
)

// OTPAttemptService counts failed OTP verifications per email in Redis
type OTPAttemptService struct {
	redis       *database.Redis
	maxAttempts int
	window      time.Duration
}

// NewOTPAttemptService creates a limiter allowing maxAttempts failures per issued code.
// Counters expire after window, normally the OTP lifetime.
func NewOTPAttemptService(redis *database.Redis, maxAttempts int, window time.Duration) *OTPAttemptService {
	return &OTPAttemptService{
		redis:       redis,
		maxAttempts: maxAttempts,
		window:      window,
	}
}

func attemptsKey(email string) string {
	return fmt.Sprintf("otp:attempts:%s", email)
}

// Check fails with domain.ErrTooManyAttempts once the failure budget is spent
func (s *OTPAttemptService) Check(ctx context.Context, email string) error {
	count, err := s.redis.Client.Get(ctx, attemptsKey(email)).Int()
	if err == redis.Nil {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read otp attempts: %w", err)
	}
	if count >= s.maxAttempts {
		return domain.ErrTooManyAttempts
	}
	return nil
}

// RecordFailure counts one rejected verification
func (s *OTPAttemptService) RecordFailure(ctx context.Context, email string) error {
	key := attemptsKey(email)
	_, err := s.redis.Client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Incr(ctx, key)
		pipe.Expire(ctx, key, s.window)
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to record otp attempt: %w", err)
	}
	return nil
}

// Reset clears the counter, called whenever a new code is issued or one is accepted
func (s *OTPAttemptService) Reset(ctx context.Context, email string) error {
	if err := s.redis.Client.Del(ctx, attemptsKey(email)).Err(); err != nil {
		return fmt.Errorf("failed to reset otp attempts: %w", err)
	}
	return nil
}
