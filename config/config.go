package config

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

// DevJWTSecret signs tokens when JWT_SECRET is unset and ENV=local.
// staging and production refuse to start without an explicit secret.
const DevJWTSecret = "local-dev-only-jwt-secret-change-me!!"

const minJWTSecretLen = 32

type Config struct {
	Env      string `env:"ENV"       envDefault:"local" validate:"required,oneof=local staging production"`
	Port     string `env:"PORT"      envDefault:"8080"  validate:"required"`
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"  validate:"oneof=debug info warn error"`

	DatabaseURL   string `env:"DATABASE_URL,required" validate:"required"`
	DBAutoMigrate bool   `env:"DB_AUTO_MIGRATE"       envDefault:"true"`
	DBMaxConns    int    `env:"DB_MAX_CONNS"          envDefault:"10" validate:"min=1,max=100"`

	// Empty REDIS_ADDR keeps OAuth state in process memory.
	RedisAddr     string `env:"REDIS_ADDR"`
	RedisPassword string `env:"REDIS_PASSWORD"`
	RedisDB       int    `env:"REDIS_DB" envDefault:"0" validate:"min=0,max=15"`

	MetricsPort       string `env:"METRICS_PORT"        envDefault:"9090"`
	RequestTimeoutSec int    `env:"REQUEST_TIMEOUT_SEC" envDefault:"10" validate:"min=1,max=120"`

	JWTSecret         string        `env:"JWT_SECRET"          validate:"required_unless=Env local"`
	TokenTTL          time.Duration `env:"TOKEN_TTL"           envDefault:"1h"    validate:"min=1m"`
	BcryptCost        int           `env:"BCRYPT_COST"         envDefault:"12"    validate:"min=4,max=31"`
	MaxProductCredits int           `env:"MAX_PRODUCT_CREDITS" envDefault:"10000" validate:"min=1"`
	AllowAdminSignup  bool          `env:"ALLOW_ADMIN_SIGNUP"  envDefault:"false"`

	ResendAPIKey string `env:"RESEND_API_KEY" validate:"required_if=Env production,required_if=Env staging"`
	ResendFrom   string `env:"RESEND_FROM"    validate:"required_if=Env production,required_if=Env staging"`

	OAuthRedirectBase   string `env:"OAUTH_REDIRECT_BASE" envDefault:"http://localhost:8080" validate:"http_url"`
	GoogleClientID      string `env:"GOOGLE_CLIENT_ID"`
	GoogleClientSecret  string `env:"GOOGLE_CLIENT_SECRET"`
	DiscordClientID     string `env:"DISCORD_CLIENT_ID"`
	DiscordClientSecret string `env:"DISCORD_CLIENT_SECRET"`
}

func Load() (*Config, error) {
	// A missing .env is normal outside local development.
	_ = godotenv.Load()

	cfg := &Config{}

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	switch {
	case cfg.JWTSecret == "":
		cfg.JWTSecret = DevJWTSecret
	case len(cfg.JWTSecret) < minJWTSecretLen:
		return nil, fmt.Errorf("invalid config: JWT_SECRET must be at least %d characters", minJWTSecretLen)
	}

	return cfg, nil
}

func (c *Config) SlogLevel() slog.Level {
	switch c.LogLevel {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func (c *Config) RequestTimeout() time.Duration {
	return time.Duration(c.RequestTimeoutSec) * time.Second
}
