package config

import (
	"errors"
	"log/slog"
	"os"
	"strconv"
	"time"
	_ "time/tzdata"

	"github.com/joho/godotenv"
)

const defaultJWTSecret = "your-secret-key-change-in-production"

type Config struct {
	AppEnv             string
	Port               string
	DatabaseURL        string
	JWTSecret          string
	JWTExpiry          time.Duration
	RedisURL           string
	AnalyticsCacheTTL  time.Duration
	StreakTimezone     string
	SentryDSN          string
	ProgressMaxRetries int
	ShutdownTimeout    time.Duration
	AuthRateLimit      int
}

// Load reads configuration from the environment, after loading a local .env
// file when one exists.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		slog.Debug("no .env file found, using environment variables")
	}

	return &Config{
		AppEnv:             getEnv("APP_ENV", "development"),
		Port:               getEnv("PORT", "8080"),
		DatabaseURL:        getEnv("DATABASE_URL", "goalmate.db"),
		JWTSecret:          getEnv("JWT_SECRET", defaultJWTSecret),
		JWTExpiry:          getEnvDuration("JWT_EXPIRY", 7*24*time.Hour),
		RedisURL:           getEnv("REDIS_URL", ""),
		AnalyticsCacheTTL:  getEnvDuration("ANALYTICS_CACHE_TTL", 5*time.Minute),
		StreakTimezone:     getEnv("STREAK_TIMEZONE", "UTC"),
		SentryDSN:          getEnv("SENTRY_DSN", ""),
		ProgressMaxRetries: getEnvInt("PROGRESS_MAX_RETRIES", 5),
		ShutdownTimeout:    getEnvDuration("SHUTDOWN_TIMEOUT", 15*time.Second),
		AuthRateLimit:      getEnvInt("AUTH_RATE_LIMIT", 20),
	}
}

// Validate rejects settings that are unsafe or unusable.
func (c *Config) Validate() error {
	if c.IsProduction() && (c.JWTSecret == "" || c.JWTSecret == defaultJWTSecret) {
		return errors.New("JWT_SECRET must be set in production")
	}
	if c.ProgressMaxRetries < 0 {
		return errors.New("PROGRESS_MAX_RETRIES cannot be negative")
	}
	if c.AuthRateLimit < 0 {
		return errors.New("AUTH_RATE_LIMIT cannot be negative")
	}
	if _, err := time.LoadLocation(c.StreakTimezone); err != nil {
		return errors.New("STREAK_TIMEZONE is not a valid IANA time zone")
	}
	return nil
}

// Location is the time zone calendar days are counted in for streaks.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.StreakTimezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

func (c *Config) IsDevelopment() bool {
	return c.AppEnv == "development"
}

func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists && value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		slog.Warn("config invalid int, using default", "key", key, "value", v, "default", fallback)
		return fallback
	}
	return n
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		slog.Warn("config invalid duration, using default", "key", key, "value", v, "default", fallback)
		return fallback
	}
	return d
}
