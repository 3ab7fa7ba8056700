// Package config handles loading application configuration from
// environment variables. All config is centralized here so no other
// package reads env vars directly. Sensible defaults are provided for
// development.
package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all application configuration, populated from environment
// variables at startup and passed to other packages via dependency
// injection.
type Config struct {
	// Env is the runtime environment: "development" or "production".
	Env string

	// Port is the HTTP listen port (default: 8080).
	Port int

	// LogLevel controls log verbosity: "debug", "info", "warn", "error".
	LogLevel string

	// Redis holds Redis connection settings.
	Redis RedisConfig

	// Store holds key-value namespace settings.
	Store StoreConfig

	// Session holds session lifecycle settings.
	Session SessionConfig
}

// RedisConfig holds Redis connection parameters.
type RedisConfig struct {
	// URL is the Redis connection URL (e.g. "redis://localhost:6379").
	URL string
}

// StoreConfig holds key-value namespace settings.
type StoreConfig struct {
	// Prefix is the application prefix applied to every key.
	Prefix string
}

// SessionConfig holds the session lifecycle timing knobs.
type SessionConfig struct {
	// Duration is how long a session lives without renewal.
	Duration time.Duration

	// ActivityCooldown throttles activity-based renewals: bursts of
	// activity inside one window collapse into a single renewal.
	ActivityCooldown time.Duration

	// PollInterval is how often the expiry poller runs.
	PollInterval time.Duration

	// WarnThreshold is the remaining-time threshold below which the
	// one-time expiry warning is emitted.
	WarnThreshold time.Duration
}

// Load reads configuration from environment variables with development
// defaults.
func Load() (*Config, error) {
	cfg := &Config{
		Env:      getEnv("ENV", "development"),
		Port:     getEnvInt("PORT", 8080),
		LogLevel: getEnv("LOG_LEVEL", "debug"),

		Redis: RedisConfig{
			URL: getEnv("REDIS_URL", "redis://localhost:6379"),
		},

		Store: StoreConfig{
			Prefix: getEnv("STORE_PREFIX", "printwise_"),
		},

		Session: SessionConfig{
			Duration:         getEnvDuration("SESSION_DURATION", 24*time.Hour),
			ActivityCooldown: getEnvDuration("SESSION_ACTIVITY_COOLDOWN", time.Minute),
			PollInterval:     getEnvDuration("SESSION_POLL_INTERVAL", 5*time.Minute),
			WarnThreshold:    getEnvDuration("SESSION_WARN_THRESHOLD", 10*time.Minute),
		},
	}

	return cfg, nil
}

// IsDevelopment returns true when running in development mode.
func (c *Config) IsDevelopment() bool {
	env := strings.ToLower(c.Env)
	return env == "development" || env == "dev"
}

// getEnv reads a string env var or returns the default.
func getEnv(key, defaultVal string) string {
	if val, ok := os.LookupEnv(key); ok {
		return val
	}
	return defaultVal
}

// getEnvInt reads an integer env var or returns the default.
func getEnvInt(key string, defaultVal int) int {
	if val, ok := os.LookupEnv(key); ok {
		if i, err := strconv.Atoi(val); err == nil {
			return i
		}
	}
	return defaultVal
}

// getEnvDuration reads a duration env var (e.g. "24h") or returns the
// default.
func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	if val, ok := os.LookupEnv(key); ok {
		if d, err := time.ParseDuration(val); err == nil {
			return d
		}
	}
	return defaultVal
}
