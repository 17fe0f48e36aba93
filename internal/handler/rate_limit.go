package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prperemyshlev/notes-service/internal/dto"
	"github.com/prperemyshlev/notes-service/internal/service"
	"go.uber.org/zap"
)

// RateLimiter counts requests per key within a sliding window
type RateLimiter interface {
	Allow(ctx context.Context, key string, limit int, window time.Duration) (int, error)
}

// RateLimitMiddleware creates a rate limiting middleware.
// When the limiter itself fails the request is let through and the failure logged.
func RateLimitMiddleware(rateLimiter RateLimiter, limit int, window time.Duration, keyFunc func(*gin.Context) string, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := c.FullPath() + ":" + keyFunc(c)

		remaining, err := rateLimiter.Allow(c.Request.Context(), key, limit, window)
		c.Header("X-RateLimit-Limit", strconv.Itoa(limit))

		var limited *service.RateLimitError
		switch {
		case errors.As(err, &limited):
			c.Header("X-RateLimit-Remaining", "0")
			c.Header("Retry-After", strconv.Itoa(int(limited.RetryAfter.Seconds())))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, dto.ErrorResponse{
				Error:   "Too Many Requests",
				Code:    "RATE_LIMITED",
				Message: limited.Error(),
			})
			return
		case err != nil:
			logger.Warn("rate limiter unavailable", zap.String("key", key), zap.Error(err))
		default:
			c.Header("X-RateLimit-Remaining", strconv.Itoa(remaining))
		}

		c.Next()
	}
}

// IPBasedKey extracts rate limit key from client IP
func IPBasedKey(c *gin.Context) string {
	// X-Forwarded-For can contain multiple IPs, take the first one
	if ip := c.GetHeader("X-Forwarded-For"); ip != "" {
		first, _, _ := strings.Cut(ip, ",")
		return strings.TrimSpace(first)
	}
	return c.ClientIP()
}
