// Package config loads runtime settings from the environment (optionally a .env file).
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Store drivers.
const (
	DriverSQLite = "sqlite"
	DriverMongo  = "mongo"
)

var (
	// ErrMissingSecret is returned when JWT_SECRET is not set.
	ErrMissingSecret = errors.New("JWT_SECRET is required")
	// ErrUnknownDriver is returned for an unsupported STORE_DRIVER value.
	ErrUnknownDriver = errors.New("unknown store driver")
)

// Config aggregates all runtime settings of the task tracker.
type Config struct {
	Environment     string
	ShutdownTimeout time.Duration
	HTTP            HTTPConfig
	JWT             JWTConfig
	Store           StoreConfig
	RateLimit       RateLimitConfig
	Logger          LoggerConfig
}

// HTTPConfig holds the HTTP listener settings.
type HTTPConfig struct {
	Port int
}

// JWTConfig holds the token signing secret and issuer.
type JWTConfig struct {
	Secret string
	Issuer string
}

// StoreConfig selects the task and credential store backend.
type StoreConfig struct {
	Driver        string
	SQLitePath    string
	MongoURI      string
	MongoDatabase string
	Debug         bool
}

// RateLimitConfig configures the Redis backed limiter. An empty RedisAddr disables it.
type RateLimitConfig struct {
	RedisAddr      string
	AuthPerMinute  int
	TasksPerMinute int
}

// LoggerConfig sets the zap level and encoding.
type LoggerConfig struct {
	Level    string
	Encoding string
}

// Enabled reports whether rate limiting should be wired in.
func (c RateLimitConfig) Enabled() bool {
	return c.RedisAddr != ""
}

// Load reads configuration from environment variables, after loading .env when present.
func Load() (*Config, error) {
	_ = godotenv.Load(".env")

	cfg := &Config{
		Environment:     getString("APP_ENV", "development"),
		ShutdownTimeout: getDuration("SHUTDOWN_TIMEOUT", 30*time.Second),
		HTTP: HTTPConfig{
			Port: getInt("HTTP_PORT", getInt("LAUNCH_PORT", 8080)),
		},
		JWT: JWTConfig{
			Secret: os.Getenv("JWT_SECRET"),
			Issuer: getString("JWT_ISSUER", "task-tracker"),
		},
		Store: StoreConfig{
			Driver:        getString("STORE_DRIVER", DriverSQLite),
			SQLitePath:    getString("SQLITE_PATH", "tasks.db"),
			MongoURI:      getString("MONGO_URI", ""),
			MongoDatabase: getString("MONGO_DATABASE", "tasks"),
			Debug:         getBool("DB_DEBUG", false),
		},
		RateLimit: RateLimitConfig{
			RedisAddr:      getString("REDIS_ADDR", ""),
			AuthPerMinute:  getInt("RATE_LIMIT_AUTH_PER_MINUTE", 20),
			TasksPerMinute: getInt("RATE_LIMIT_TASKS_PER_MINUTE", 120),
		},
		Logger: LoggerConfig{
			Level:    getString("LOG_LEVEL", "info"),
			Encoding: getString("LOG_ENCODING", "console"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the loaded values for consistency.
func (c *Config) Validate() error {
	if c.JWT.Secret == "" {
		return ErrMissingSecret
	}

	switch c.Store.Driver {
	case DriverSQLite:
		if c.Store.SQLitePath == "" {
			return fmt.Errorf("SQLITE_PATH must not be empty")
		}
	case DriverMongo:
		if c.Store.MongoURI == "" {
			return fmt.Errorf("MONGO_URI is required for the %s driver", DriverMongo)
		}
	default:
		return fmt.Errorf("%w: %q", ErrUnknownDriver, c.Store.Driver)
	}

	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("invalid HTTP port %d", c.HTTP.Port)
	}

	if c.RateLimit.Enabled() && (c.RateLimit.AuthPerMinute <= 0 || c.RateLimit.TasksPerMinute <= 0) {
		return fmt.Errorf("rate limits must be positive")
	}

	return nil
}

func getString(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getInt(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getBool(key string, fallback bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getDuration(key string, fallback time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := time.ParseDuration(value)
	if err != nil {
		return fallback
	}
	return parsed
}
