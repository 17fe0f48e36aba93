package app

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/prperemyshlev/notes-service/internal/config"
	"github.com/prperemyshlev/notes-service/pkg/database"
	"github.com/prperemyshlev/notes-service/pkg/observability"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/sdk/metric"
	"go.uber.org/zap"
)

// testInfrastructure wraps connections owned by the test
type testInfrastructure struct {
	postgres       *database.Postgres
	redis          *database.Redis
	logger         *zap.Logger
	metricsHandler http.Handler
	meterProvider  *metric.MeterProvider
}

var _ Infrastructure = &testInfrastructure{}

func newTestInfrastructure(t *testing.T, pg *database.Postgres, redis *database.Redis, logger *zap.Logger) *testInfrastructure {
	t.Helper()

	meterProvider, metricsHandler, err := observability.InitTelemetry(serviceName + "-test")
	require.NoError(t, err)

	return &testInfrastructure{
		postgres:       pg,
		redis:          redis,
		logger:         logger,
		metricsHandler: metricsHandler,
		meterProvider:  meterProvider,
	}
}

func (i *testInfrastructure) Postgres() *database.Postgres {
	return i.postgres
}

func (i *testInfrastructure) Redis() *database.Redis {
	return i.redis
}

func (i *testInfrastructure) Logger() *zap.Logger {
	return i.logger
}

func (i *testInfrastructure) MetricsHandler() http.Handler {
	return i.metricsHandler
}

func (i *testInfrastructure) MeterProvider() *metric.MeterProvider {
	return i.meterProvider
}

func (i *testInfrastructure) Shutdown(ctx context.Context) error {
	return observability.Shutdown(ctx, i.meterProvider, i.logger)
}

func testConfig() *config.Config {
	return &config.Config{
		Server: config.ServerConfig{
			Host:         "localhost",
			Port:         "0",
			ReadTimeout:  config.Duration{Duration: 15 * time.Second},
			WriteTimeout: config.Duration{Duration: 15 * time.Second},
		},
		JWT: config.JWTConfig{
			Secret:            "test-secret-key-that-is-at-least-32-characters-long",
			AccessTokenExpiry: config.Duration{Duration: 10 * time.Minute},
		},
		OTP: config.OTPConfig{
			TTL:         config.Duration{Duration: 10 * time.Minute},
			MaxAttempts: 5,
		},
		Security: config.SecurityConfig{
			RateLimitRequests:   100,
			RateLimitWindow:     config.Duration{Duration: time.Minute},
			FederatedAssertions: true,
		},
		CORS: config.CORSConfig{
			AllowedOrigins: []string{"http://localhost:3000"},
			AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowedHeaders: []string{"Content-Type", "Authorization"},
		},
		FrontendURL: "http://localhost:3000",
		Env:         "test",
	}
}
