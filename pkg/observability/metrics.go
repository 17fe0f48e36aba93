package observability

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// PrometheusHandler returns a Gin handler for Prometheus metrics
func PrometheusHandler(handler http.Handler) gin.HandlerFunc {
	return func(c *gin.Context) {
		if handler != nil {
			handler.ServeHTTP(c.Writer, c.Request)
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{
				"error": "metrics handler not initialized",
			})
		}
	}
}

// AuthMetrics holds the counters recorded by the identity flows.
// A nil *AuthMetrics records nothing.
type AuthMetrics struct {
	otpIssued         metric.Int64Counter
	otpVerifyFailures metric.Int64Counter
	tokensIssued      metric.Int64Counter
}

// NewAuthMetrics registers the identity flow instruments on meter
func NewAuthMetrics(meter metric.Meter) (*AuthMetrics, error) {
	otpIssued, err := meter.Int64Counter("auth.otp.issued",
		metric.WithDescription("One-time codes issued and dispatched"))
	if err != nil {
		return nil, fmt.Errorf("failed to create otp issued counter: %w", err)
	}

	otpVerifyFailures, err := meter.Int64Counter("auth.otp.verify.failures",
		metric.WithDescription("Rejected one-time code verifications"))
	if err != nil {
		return nil, fmt.Errorf("failed to create otp failure counter: %w", err)
	}

	tokensIssued, err := meter.Int64Counter("auth.tokens.issued",
		metric.WithDescription("Access tokens issued"))
	if err != nil {
		return nil, fmt.Errorf("failed to create tokens counter: %w", err)
	}

	return &AuthMetrics{
		otpIssued:         otpIssued,
		otpVerifyFailures: otpVerifyFailures,
		tokensIssued:      tokensIssued,
	}, nil
}

func (m *AuthMetrics) OTPIssued(ctx context.Context, flow string) {
	if m == nil {
		return
	}
	m.otpIssued.Add(ctx, 1, metric.WithAttributes(attribute.String("flow", flow)))
}

func (m *AuthMetrics) OTPVerifyFailed(ctx context.Context, flow, reason string) {
	if m == nil {
		return
	}
	m.otpVerifyFailures.Add(ctx, 1, metric.WithAttributes(
		attribute.String("flow", flow),
		attribute.String("reason", reason),
	))
}

func (m *AuthMetrics) TokenIssued(ctx context.Context, flow string) {
	if m == nil {
		return
	}
	m.tokensIssued.Add(ctx, 1, metric.WithAttributes(attribute.String("flow", flow)))
}
