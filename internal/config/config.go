package config

import (
	"context"
	"fmt"

	"github.com/sethvargo/go-envconfig"
)

type Config struct {
	Server      ServerConfig   `env:",prefix=SERVER_"`
	Postgres    PostgresConfig `env:",prefix=POSTGRES_"`
	Redis       RedisConfig    `env:",prefix=REDIS_"`
	JWT         JWTConfig      `env:",prefix=JWT_"`
	OTP         OTPConfig      `env:",prefix=OTP_"`
	Security    SecurityConfig `env:",prefix="`
	CORS        CORSConfig     `env:",prefix=CORS_"`
	SMTP        SMTPConfig     `env:",prefix=SMTP_"`
	Google      GoogleConfig   `env:",prefix=GOOGLE_"`
	FrontendURL string         `env:"FRONTEND_URL,default=http://localhost:3000"`
	Env         string         `env:"ENV,default=development"`
}

type ServerConfig struct {
	Port         string   `env:"PORT,default=5000"`
	Host         string   `env:"HOST,default=0.0.0.0"`
	ReadTimeout  Duration `env:"READ_TIMEOUT,default=15s"`
	WriteTimeout Duration `env:"WRITE_TIMEOUT,default=15s"`
}

type PostgresConfig struct {
	Host     string `env:"HOST,default=localhost"`
	Port     string `env:"PORT,default=5432"`
	User     string `env:"USER,default=notes_service"`
	Password string `env:"PASSWORD,default=notes_service_password"`
	DBName   string `env:"DB,default=notes_service_db"`
	SSLMode  string `env:"SSLMODE,default=disable"`
}

type RedisConfig struct {
	Host     string `env:"HOST,default=localhost"`
	Port     string `env:"PORT,default=6379"`
	Password string `env:"PASSWORD,default="`
	DB       int    `env:"DB,default=0"`
}

type JWTConfig struct {
	Secret            string   `env:"SECRET,required"`
	AccessTokenExpiry Duration `env:"ACCESS_TOKEN_EXPIRY,default=10m"`
}

type OTPConfig struct {
	TTL         Duration `env:"TTL,default=10m"`
	MaxAttempts int      `env:"MAX_ATTEMPTS,default=5"`
}

type SecurityConfig struct {
	RateLimitRequests int      `env:"RATE_LIMIT_REQUESTS,default=10"`
	RateLimitWindow   Duration `env:"RATE_LIMIT_WINDOW,default=1m"`
	// FederatedAssertions exposes the routes that trust a client supplied subject id and email.
	// Disable it unless a gateway verifies the provider token before requests reach the service.
	FederatedAssertions bool `env:"FEDERATED_ASSERTIONS_ENABLED,default=true"`
}

type CORSConfig struct {
	AllowedOrigins []string `env:"ALLOWED_ORIGINS,default=http://localhost:3000"`
	AllowedMethods []string `env:"ALLOWED_METHODS,default=GET,POST,PUT,DELETE,OPTIONS"`
	AllowedHeaders []string `env:"ALLOWED_HEADERS,default=Content-Type,Authorization"`
}

// SMTPConfig configures outgoing mail. An empty Host selects the log mailer.
type SMTPConfig struct {
	Host     string `env:"HOST,default="`
	Port     int    `env:"PORT,default=587"`
	Username string `env:"USERNAME,default="`
	Password string `env:"PASSWORD,default="`
	From     string `env:"FROM,default=no-reply@hdnotes.local"`
}

// GoogleConfig configures the server-side Google sign-in flow. It is disabled when ClientID is empty.
type GoogleConfig struct {
	ClientID     string `env:"CLIENT_ID,default="`
	ClientSecret string `env:"CLIENT_SECRET,default="`
	RedirectURL  string `env:"REDIRECT_URL,default=http://localhost:5000/api/v1/auth/google/callback"`
}

// DSN returns PostgreSQL connection string
func (p PostgresConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		p.Host, p.Port, p.User, p.Password, p.DBName, p.SSLMode)
}

// Address returns Redis connection address
func (r RedisConfig) Address() string {
	return fmt.Sprintf("%s:%s", r.Host, r.Port)
}

// Enabled reports whether Google sign-in is configured
func (g GoogleConfig) Enabled() bool {
	return g.ClientID != "" && g.ClientSecret != ""
}

// Load loads configuration from environment variables
func Load(ctx context.Context) (*Config, error) {
	var config Config

	if err := envconfig.Process(ctx, &config); err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	// Validate JWT secret length
	if len(config.JWT.Secret) < 32 {
		return nil, fmt.Errorf("JWT_SECRET must be at least 32 characters long")
	}

	if config.OTP.MaxAttempts < 1 {
		return nil, fmt.Errorf("OTP_MAX_ATTEMPTS must be positive")
	}

	return &config, nil
}
