package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config holds runtime configuration sourced from env vars. Bootstrap-only
// variables (ADMIN_*, PARTY_*, QUORUM_INIT_*) are read by the bootstrap
// package itself so that fallbacks can be logged per variable.
type Config struct {
	Port        string `envconfig:"PORT" default:"8080"`
	DatabaseURL string `envconfig:"DATABASE_URL"`

	JWTSecret     string `envconfig:"JWT_SECRET"`
	JWTIssuer     string `envconfig:"JWT_ISSUER" default:"quorum-dashboard"`
	JWTTTLMinutes int    `envconfig:"JWT_TTL_MINUTES" default:"60"`

	AuthCookieName   string `envconfig:"AUTH_COOKIE_NAME" default:"qd_session"`
	AuthCookieDomain string `envconfig:"AUTH_COOKIE_DOMAIN"`
	AuthCookieSecure bool   `envconfig:"AUTH_COOKIE_SECURE" default:"false"`

	CORSOrigins []string `envconfig:"CORS_ALLOWED_ORIGINS" default:"*"`
}

// Load reads configuration from the environment and performs minimal
// validation.
func Load() (Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return Config{}, fmt.Errorf("process env: %w", err)
	}
	if cfg.DatabaseURL == "" {
		return Config{}, errors.New("DATABASE_URL is required")
	}
	if cfg.JWTSecret == "" {
		return Config{}, errors.New("JWT_SECRET is required")
	}
	if cfg.JWTTTLMinutes <= 0 {
		cfg.JWTTTLMinutes = 60
	}
	return cfg, nil
}

// HTTPAddress returns the host:port pair for the HTTP server to bind to.
func (c Config) HTTPAddress() string {
	return fmt.Sprintf(":%s", c.Port)
}

// JWTTTL returns the session token lifetime as a duration.
func (c Config) JWTTTL() time.Duration {
	return time.Duration(c.JWTTTLMinutes) * time.Minute
}
