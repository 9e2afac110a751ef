package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func setRequired(t *testing.T) {
	t.Helper()
	t.Setenv("DATABASE_URL", "postgres://localhost/dash")
	t.Setenv("JWT_SECRET", "secret")
}

func TestLoad_Defaults(t *testing.T) {
	setRequired(t)

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, ":8080", cfg.HTTPAddress())
	require.Equal(t, "quorum-dashboard", cfg.JWTIssuer)
	require.Equal(t, time.Hour, cfg.JWTTTL())
	require.Equal(t, "qd_session", cfg.AuthCookieName)
	require.Equal(t, []string{"*"}, cfg.CORSOrigins)
	require.False(t, cfg.AuthCookieSecure)
}

func TestLoad_RequiresDatabaseURL(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	t.Setenv("JWT_SECRET", "secret")

	_, err := Load()
	require.ErrorContains(t, err, "DATABASE_URL")
}

func TestLoad_RequiresJWTSecret(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/dash")
	t.Setenv("JWT_SECRET", "")

	_, err := Load()
	require.ErrorContains(t, err, "JWT_SECRET")
}

func TestLoad_ReadsOverrides(t *testing.T) {
	setRequired(t)
	t.Setenv("PORT", "9999")
	t.Setenv("JWT_TTL_MINUTES", "15")
	t.Setenv("AUTH_COOKIE_DOMAIN", "dashboard.example.com")
	t.Setenv("AUTH_COOKIE_SECURE", "true")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example.com,https://b.example.com")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, ":9999", cfg.HTTPAddress())
	require.Equal(t, 15*time.Minute, cfg.JWTTTL())
	require.Equal(t, "dashboard.example.com", cfg.AuthCookieDomain)
	require.True(t, cfg.AuthCookieSecure)
	require.Equal(t, []string{"https://a.example.com", "https://b.example.com"}, cfg.CORSOrigins)
}
