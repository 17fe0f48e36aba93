package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prperemyshlev/notes-service/internal/config"
	"github.com/prperemyshlev/notes-service/internal/handler"
	"github.com/prperemyshlev/notes-service/internal/mailer"
	"github.com/prperemyshlev/notes-service/internal/oauth"
	"github.com/prperemyshlev/notes-service/internal/repository"
	"github.com/prperemyshlev/notes-service/internal/service"
	"github.com/prperemyshlev/notes-service/internal/utils"
	"github.com/prperemyshlev/notes-service/pkg/observability"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.uber.org/zap"
)

const (
	serviceName     = "notes-service"
	shutdownTimeout = 5 * time.Second
)

type App struct {
	infra  Infrastructure
	config *config.Config
	router *gin.Engine
	server *http.Server
}

type handlers struct {
	auth   *handler.AuthHandler
	google *handler.GoogleHandler
	user   *handler.UserHandler
	note   *handler.NoteHandler
}

func NewApp(infra Infrastructure, cfg *config.Config) *App {
	logger := infra.Logger()
	repos := repository.NewRepositories(infra.Postgres())

	jwtManager := utils.NewJWTManager(cfg.JWT.Secret, cfg.JWT.AccessTokenExpiry.Duration)
	otpGenerator := utils.NewOTPGenerator(cfg.OTP.TTL.Duration, time.Now)
	attempts := service.NewOTPAttemptService(infra.Redis(), cfg.OTP.MaxAttempts, cfg.OTP.TTL.Duration)
	rateLimiter := service.NewRateLimiter(infra.Redis())
	healthChecker := NewHealthChecker(infra)

	metrics, err := observability.NewAuthMetrics(infra.MeterProvider().Meter(serviceName))
	if err != nil {
		logger.Warn("auth metrics disabled", zap.Error(err))
	}

	authService := service.NewAuthService(service.AuthServiceDeps{
		Users:    repos.User,
		OTP:      otpGenerator,
		Tokens:   jwtManager,
		Mailer:   newMailer(cfg, logger),
		Attempts: attempts,
		Metrics:  metrics,
		Logger:   logger,
	})
	gate := service.NewSessionGate(jwtManager, repos.User)

	h := handlers{
		auth: handler.NewAuthHandler(authService, logger),
		user: handler.NewUserHandler(service.NewUserService(repos.User), logger),
		note: handler.NewNoteHandler(service.NewNoteService(repos.Note), logger),
	}
	if !cfg.Security.FederatedAssertions {
		logger.Info("federated assertion routes disabled")
	}
	if cfg.Google.Enabled() {
		google := oauth.NewGoogleProvider(cfg.Google.ClientID, cfg.Google.ClientSecret, cfg.Google.RedirectURL)
		h.google = handler.NewGoogleHandler(google, authService, cfg.FrontendURL, cfg.Env == "production", logger)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(otelgin.Middleware(serviceName))
	router.Use(handler.LoggerMiddleware(logger))
	router.Use(handler.CORSMiddleware(cfg.CORS.AllowedOrigins, cfg.CORS.AllowedMethods, cfg.CORS.AllowedHeaders))

	setupRoutes(router, cfg, h, gate, rateLimiter, healthChecker, infra.MetricsHandler(), logger)

	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout.Duration,
		WriteTimeout: cfg.Server.WriteTimeout.Duration,
	}

	return &App{
		infra:  infra,
		config: cfg,
		router: router,
		server: srv,
	}
}

// newMailer delivers over SMTP when a host is configured and logs otherwise
func newMailer(cfg *config.Config, logger *zap.Logger) service.Mailer {
	if cfg.SMTP.Host == "" {
		logger.Warn("SMTP_HOST not set, emails will only be logged")
		return mailer.NewLogMailer(logger)
	}
	return mailer.NewSMTPMailer(mailer.Config{
		Host:        cfg.SMTP.Host,
		Port:        cfg.SMTP.Port,
		Username:    cfg.SMTP.Username,
		Password:    cfg.SMTP.Password,
		From:        cfg.SMTP.From,
		OTPValidity: cfg.OTP.TTL.Duration,
	}, logger)
}

func (a *App) Router() *gin.Engine {
	return a.router
}

func setupRoutes(
	router *gin.Engine,
	cfg *config.Config,
	h handlers,
	gate service.SessionGate,
	rateLimiter handler.RateLimiter,
	healthChecker *HealthChecker,
	metricsHandler http.Handler,
	logger *zap.Logger,
) {
	router.GET("/metrics", observability.PrometheusHandler(metricsHandler))
	router.GET("/health", healthChecker.Handler)

	limited := handler.RateLimitMiddleware(rateLimiter, cfg.Security.RateLimitRequests, cfg.Security.RateLimitWindow.Duration, handler.IPBasedKey, logger)
	requireAuth := handler.AuthMiddleware(gate, logger)

	api := router.Group("/api/v1")
	{
		auth := api.Group("/auth")
		{
			auth.POST("/signup", limited, h.auth.Signup)
			auth.POST("/verify-otp", limited, h.auth.VerifyOTP)
			auth.POST("/signin", limited, h.auth.Signin)
			auth.POST("/signin-verify", limited, h.auth.SigninVerify)
			auth.POST("/resend-otp", limited, h.auth.ResendOTP)

			if cfg.Security.FederatedAssertions {
				auth.POST("/federated", limited, h.auth.Federated)
				auth.POST("/google-firebase", limited, h.auth.GoogleFirebase)
			}

			if h.google != nil {
				auth.GET("/google", h.google.Login)
				auth.GET("/google/callback", h.google.Callback)
			}
		}

		user := api.Group("/user", requireAuth)
		{
			user.GET("/profile", h.user.GetProfile)
			user.PUT("/profile", h.user.UpdateProfile)
		}

		notes := api.Group("/notes", requireAuth)
		{
			notes.GET("", h.note.List)
			notes.GET("/search/:query", h.note.Search)
			notes.POST("", h.note.Create)
			notes.GET("/:id", h.note.Get)
			notes.PUT("/:id", h.note.Update)
			notes.DELETE("/:id", h.note.Delete)
		}
	}
}

func (a *App) Run(ctx context.Context) error {
	errChan := make(chan error, 1)

	go func() {
		a.infra.Logger().Info("Application starting",
			zap.String("host", a.config.Server.Host),
			zap.String("port", a.config.Server.Port),
		)

		if err := a.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			a.infra.Logger().Error("Server error", zap.Error(err))
			errChan <- err
		}
	}()

	var serverErr error
	select {
	case err := <-errChan:
		a.infra.Logger().Error("Application failed to start", zap.Error(err))
		serverErr = err
	case <-ctx.Done():
		a.infra.Logger().Info("Application stopped by context")
	}

	if err := a.Shutdown(); err != nil {
		a.infra.Logger().Error("Shutdown error", zap.Error(err))
		if serverErr != nil {
			return errors.Join(serverErr, err)
		}
		return err
	}

	return serverErr
}

func (a *App) Shutdown() error {
	a.infra.Logger().Info("Application shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	errs := make(chan error, 2)

	go func() {
		errs <- a.server.Shutdown(ctx)
	}()

	go func() {
		errs <- a.infra.Shutdown(ctx)
	}()

	err := errors.Join(<-errs, <-errs)
	if err != nil {
		a.infra.Logger().Error("Shutdown failed", zap.Error(err))
		return err
	}

	a.infra.Logger().Info("Application exited successfully")
	return nil
}
