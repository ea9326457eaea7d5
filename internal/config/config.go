// Package config loads application configuration from environment variables.
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/rs/zerolog"
)

// Config holds all configuration for the API server. It is parsed once at
// startup and passed into constructors explicitly.
type Config struct {
	HTTPPort      string `env:"HTTP_PORT"      envDefault:"8080"`
	Environment   string `env:"ENVIRONMENT"    envDefault:"development"`
	MongoURI      string `env:"MONGO_URI"`
	MongoDatabase string `env:"MONGO_DATABASE" envDefault:"expense_tracker"`

	Token TokenConfig
	OTP   OTPConfig
	SMTP  SMTPConfig
}

// TokenConfig holds session token signing settings.
type TokenConfig struct {
	Secret           string        `env:"JWT_SECRET"`
	SessionExpiresIn time.Duration `env:"SESSION_TOKEN_EXPIRES_IN" envDefault:"168h"`
	Issuer           string        `env:"TOKEN_ISSUER"             envDefault:"expense-tracker-api"`
}

// OTPConfig holds password-reset code settings.
type OTPConfig struct {
	ExpiresIn time.Duration `env:"OTP_EXPIRES_IN" envDefault:"10m"`
}

// SMTPConfig holds outbound mail settings.
type SMTPConfig struct {
	Host     string `env:"SMTP_HOST"`
	Port     int    `env:"SMTP_PORT"`
	Username string `env:"SMTP_USERNAME"`
	Password string `env:"SMTP_PASSWORD"`
	From     string `env:"SMTP_FROM"`
}

// New creates a Config instance from environment variables. Missing required
// settings are fatal, the server must not come up without them.
func New(logger *zerolog.Logger) *Config {
	cfg, err := env.ParseAs[Config]()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to parse environment variables")
	}

	if err := cfg.validate(); err != nil {
		logger.Fatal().Err(err).Msg("failed to validate configuration")
	}

	return &cfg
}

// validate checks that settings without a usable default are present.
func (c *Config) validate() error {
	if c.MongoURI == "" {
		return fmt.Errorf("missing MONGO_URI environment variable")
	}
	if c.Token.Secret == "" {
		return fmt.Errorf("missing JWT_SECRET environment variable")
	}
	if c.SMTP.Host == "" {
		return fmt.Errorf("missing SMTP_HOST environment variable")
	}
	if c.SMTP.Port == 0 {
		return fmt.Errorf("missing SMTP_PORT environment variable")
	}
	if c.SMTP.From == "" {
		return fmt.Errorf("missing SMTP_FROM environment variable")
	}

	return nil
}
