package config

import (
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func envOf(m map[string]string) func(string) string {
	return func(k string) string { return m[k] }
}

func TestFromEnv(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		cfg, err := FromEnv(envOf(map[string]string{
			"POSTGRES_URL": "postgres://localhost/maejang",
			"JWT_SECRET":   "0123456789abcdef0123456789abcdef",
		}))
		require.NoError(t, err)

		assert.Equal(t, "8080", cfg.Port)
		assert.Equal(t, 6*time.Hour, cfg.TokenTTL)
		assert.False(t, cfg.CookieSecure)
		assert.True(t, cfg.TracingEnabled)
		assert.Equal(t, slog.LevelInfo, cfg.LogLevel)
	})

	t.Run("overrides", func(t *testing.T) {
		cfg, err := FromEnv(envOf(map[string]string{
			"POSTGRES_URL":    "postgres://localhost/maejang",
			"JWT_SECRET":      "0123456789abcdef0123456789abcdef",
			"PORT":            "9000",
			"TOKEN_TTL":       "30m",
			"COOKIE_SECURE":   "true",
			"LOG_LEVEL":       "debug",
			"TRACING_ENABLED": "false",
		}))
		require.NoError(t, err)

		assert.Equal(t, "9000", cfg.Port)
		assert.Equal(t, 30*time.Minute, cfg.TokenTTL)
		assert.True(t, cfg.CookieSecure)
		assert.False(t, cfg.TracingEnabled)
		assert.Equal(t, slog.LevelDebug, cfg.LogLevel)
	})

	t.Run("missing secret is fatal", func(t *testing.T) {
		_, err := FromEnv(envOf(map[string]string{"POSTGRES_URL": "postgres://localhost/maejang"}))
		assert.ErrorContains(t, err, "JWT_SECRET")
	})

	t.Run("missing database", func(t *testing.T) {
		_, err := FromEnv(envOf(map[string]string{"JWT_SECRET": "x"}))
		assert.ErrorContains(t, err, "POSTGRES_URL")
	})

	t.Run("bad ttl", func(t *testing.T) {
		_, err := FromEnv(envOf(map[string]string{
			"POSTGRES_URL": "postgres://localhost/maejang",
			"JWT_SECRET":   "x",
			"TOKEN_TTL":    "-1h",
		}))
		assert.Error(t, err)
	})
}
