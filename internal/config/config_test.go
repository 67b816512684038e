package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{"APP_ENV", "PORT", "DATABASE_URL", "JWT_SECRET", "JWT_EXPIRY",
		"REDIS_URL", "ANALYTICS_CACHE_TTL", "STREAK_TIMEZONE", "PROGRESS_MAX_RETRIES", "SHUTDOWN_TIMEOUT", "AUTH_RATE_LIMIT"} {
		t.Setenv(key, "")
	}

	cfg := Load()

	assert.Equal(t, "development", cfg.AppEnv)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "goalmate.db", cfg.DatabaseURL)
	assert.Equal(t, 7*24*time.Hour, cfg.JWTExpiry)
	assert.Equal(t, "", cfg.RedisURL)
	assert.Equal(t, 5*time.Minute, cfg.AnalyticsCacheTTL)
	assert.Equal(t, 5, cfg.ProgressMaxRetries)
	assert.Equal(t, 15*time.Second, cfg.ShutdownTimeout)
	assert.Equal(t, 20, cfg.AuthRateLimit)
	assert.Equal(t, time.UTC, cfg.Location())
	assert.True(t, cfg.IsDevelopment())
	assert.NoError(t, cfg.Validate())
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	t.Setenv("PORT", "9000")
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("ANALYTICS_CACHE_TTL", "90s")
	t.Setenv("PROGRESS_MAX_RETRIES", "2")
	t.Setenv("STREAK_TIMEZONE", "Europe/Berlin")

	cfg := Load()

	assert.True(t, cfg.IsProduction())
	assert.Equal(t, "9000", cfg.Port)
	assert.Equal(t, 90*time.Second, cfg.AnalyticsCacheTTL)
	assert.Equal(t, 2, cfg.ProgressMaxRetries)
	assert.Equal(t, "Europe/Berlin", cfg.Location().String())
	require.NoError(t, cfg.Validate())
}

func TestLoadFallsBackOnMalformedValues(t *testing.T) {
	t.Setenv("ANALYTICS_CACHE_TTL", "soon")
	t.Setenv("PROGRESS_MAX_RETRIES", "many")

	cfg := Load()

	assert.Equal(t, 5*time.Minute, cfg.AnalyticsCacheTTL)
	assert.Equal(t, 5, cfg.ProgressMaxRetries)
}

func TestValidate(t *testing.T) {
	t.Run("production needs a real secret", func(t *testing.T) {
		cfg := &Config{AppEnv: "production", JWTSecret: defaultJWTSecret, StreakTimezone: "UTC"}
		assert.Error(t, cfg.Validate())
	})

	t.Run("bad time zone", func(t *testing.T) {
		cfg := &Config{AppEnv: "development", StreakTimezone: "Mars/Olympus"}
		assert.Error(t, cfg.Validate())
		assert.Equal(t, time.UTC, cfg.Location())
	})

	t.Run("negative retries", func(t *testing.T) {
		cfg := &Config{AppEnv: "development", StreakTimezone: "UTC", ProgressMaxRetries: -1}
		assert.Error(t, cfg.Validate())
	})
}
