package config

import (
	"os"
	"strconv"
	"time"

	"focusgate/internal/errors"
	"focusgate/models"
)

// Config represents the complete application configuration
type Config struct {
	Database   DatabaseConfig `validate:"required"`
	Server     ServerConfig   `validate:"required"`
	Gate       GateConfig
	Reconciler ReconcilerConfig
	Defaults   models.Settings
}

// DatabaseConfig holds database connection settings
type DatabaseConfig struct {
	URL string `validate:"required"`
}

// ServerConfig holds web server settings
type ServerConfig struct {
	Port     string `validate:"required"`
	AuthPort string
	GinMode  string
}

// GateConfig holds the remote distraction-gate settings. APIKey and
// ProfileID may be empty, which leaves the gate unconfigured.
type GateConfig struct {
	APIKey    string
	ProfileID string
	Domain    string
	BaseURL   string
	Timeout   time.Duration
}

// Configured reports whether the gate has usable credentials
func (g GateConfig) Configured() bool {
	return g.APIKey != "" && g.ProfileID != ""
}

// ReconcilerConfig holds the background sweep intervals
type ReconcilerConfig struct {
	ExpiryInterval time.Duration
	CutoffInterval time.Duration
}

// Load reads configuration from environment variables and validates it
func Load() (*Config, error) {
	url := os.Getenv("DATABASE_URL")
	if url == "" {
		return nil, errors.ConfigInvalid("DATABASE_URL is required")
	}

	config := &Config{
		Database: DatabaseConfig{URL: url},
		Server: ServerConfig{
			Port:     getEnvOrDefault("PORT", "8080"),
			AuthPort: getEnvOrDefault("AUTH_PORT", "8081"),
			GinMode:  getEnvOrDefault("GIN_MODE", "release"),
		},
		Gate: GateConfig{
			APIKey:    os.Getenv("NEXTDNS_API_KEY"),
			ProfileID: os.Getenv("NEXTDNS_PROFILE_ID"),
			Domain:    getEnvOrDefault("BLOCKED_DOMAIN", "youtube.com"),
			BaseURL:   getEnvOrDefault("NEXTDNS_BASE_URL", "https://api.nextdns.io"),
			Timeout:   getEnvDurationOrDefault("GATE_TIMEOUT", 5*time.Second),
		},
		Reconciler: ReconcilerConfig{
			ExpiryInterval: getEnvDurationOrDefault("EXPIRY_SWEEP_INTERVAL", 30*time.Second),
			CutoffInterval: getEnvDurationOrDefault("CUTOFF_SWEEP_INTERVAL", 60*time.Second),
		},
		Defaults: models.Settings{
			DailyCap:            getEnvIntOrDefault("DAILY_SESSION_CAP", 6),
			HardMax:             getEnvIntOrDefault("HARD_SESSION_MAX", 8),
			EveningCutoff:       getEnvOrDefault("EVENING_CUTOFF", "21:30"),
			RabbitHoleThreshold: getEnvIntOrDefault("RABBIT_HOLE_THRESHOLD", 3),
			SessionMinutes:      getEnvIntOrDefault("SESSION_MINUTES", 25),
			ShortBreakMinutes:   getEnvIntOrDefault("SHORT_BREAK_MINUTES", 5),
			LongBreakMinutes:    getEnvIntOrDefault("LONG_BREAK_MINUTES", 15),
		},
	}

	if err := config.Defaults.Validate(); err != nil {
		return nil, errors.Wrap(err, "settings defaults validation failed")
	}

	return config, nil
}

// Helper functions for environment variable parsing
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
