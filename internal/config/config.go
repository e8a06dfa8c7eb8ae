// Package config reads process configuration from the environment. A .env
// file, when present, is loaded first by the command layer.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/comitanigiacomo/kanso-analytics/internal/adapters/cache"
	"github.com/comitanigiacomo/kanso-analytics/internal/adapters/repository"
)

var ErrMissingSecret = errors.New("config: JWT_SECRET is required")

type Config struct {
	Port string

	DB repository.DBConfig

	// Redis is only used when RedisEnabled; REDIS_HOST switches it on.
	Redis        cache.Config
	RedisEnabled bool

	JWTSecret string
	JWTIssuer string
	TokenTTL  time.Duration

	RateLimit       int
	RateLimitWindow time.Duration

	LogLevel  string
	LogFormat string

	ShutdownTimeout time.Duration
}

// SetDefaults registers every key with its default so AutomaticEnv can find
// them and Unmarshal-style lookups never see a missing key.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("PORT", "8080")

	v.SetDefault("DB_DRIVER", repository.DriverPostgres)
	v.SetDefault("DB_PG_DRIVER", "pgx")
	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", "5432")
	v.SetDefault("DB_USER", "")
	v.SetDefault("DB_PASSWORD", "")
	v.SetDefault("DB_NAME", "kanso")
	v.SetDefault("DB_SSLMODE", "disable")
	v.SetDefault("SQLITE_PATH", "kanso.db")

	v.SetDefault("REDIS_HOST", "")
	v.SetDefault("REDIS_PORT", "6379")
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("JWT_SECRET", "")
	v.SetDefault("JWT_ISSUER", "kanso-analytics")
	v.SetDefault("TOKEN_TTL", 24*time.Hour)

	v.SetDefault("RATE_LIMIT", 100)
	v.SetDefault("RATE_LIMIT_WINDOW", time.Minute)

	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "text")

	v.SetDefault("SHUTDOWN_TIMEOUT", 5*time.Second)
}

// Load reads the configuration from v, which should already have defaults
// and environment binding in place. See New.
func Load(v *viper.Viper) (*Config, error) {
	cfg := &Config{
		Port: v.GetString("PORT"),
		DB: repository.DBConfig{
			Driver:         strings.ToLower(v.GetString("DB_DRIVER")),
			PostgresDriver: strings.ToLower(v.GetString("DB_PG_DRIVER")),
			Host:           v.GetString("DB_HOST"),
			Port:           v.GetString("DB_PORT"),
			User:           v.GetString("DB_USER"),
			Password:       v.GetString("DB_PASSWORD"),
			Name:           v.GetString("DB_NAME"),
			SSLMode:        v.GetString("DB_SSLMODE"),
			SQLitePath:     v.GetString("SQLITE_PATH"),
		},
		Redis: cache.Config{
			Host:     v.GetString("REDIS_HOST"),
			Port:     v.GetString("REDIS_PORT"),
			Password: v.GetString("REDIS_PASSWORD"),
			DB:       v.GetInt("REDIS_DB"),
		},
		JWTSecret:       v.GetString("JWT_SECRET"),
		JWTIssuer:       v.GetString("JWT_ISSUER"),
		TokenTTL:        v.GetDuration("TOKEN_TTL"),
		RateLimit:       v.GetInt("RATE_LIMIT"),
		RateLimitWindow: v.GetDuration("RATE_LIMIT_WINDOW"),
		LogLevel:        v.GetString("LOG_LEVEL"),
		LogFormat:       v.GetString("LOG_FORMAT"),
		ShutdownTimeout: v.GetDuration("SHUTDOWN_TIMEOUT"),
	}
	cfg.RedisEnabled = cfg.Redis.Host != ""

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// New returns a viper instance reading every key from the environment.
func New() *viper.Viper {
	v := viper.New()
	SetDefaults(v)
	v.AutomaticEnv()
	return v
}

func (c *Config) Validate() error {
	switch c.DB.Driver {
	case repository.DriverPostgres, repository.DriverSQLite, repository.DriverMemory:
	default:
		return fmt.Errorf("config: unsupported DB_DRIVER %q", c.DB.Driver)
	}

	switch c.DB.PostgresDriver {
	case "pgx", "pq":
	default:
		return fmt.Errorf("config: DB_PG_DRIVER must be pgx or pq, got %q", c.DB.PostgresDriver)
	}

	if c.JWTSecret == "" {
		return ErrMissingSecret
	}
	if c.TokenTTL <= 0 {
		return fmt.Errorf("config: TOKEN_TTL must be positive, got %s", c.TokenTTL)
	}
	if c.RateLimit < 0 {
		return fmt.Errorf("config: RATE_LIMIT cannot be negative, got %d", c.RateLimit)
	}
	return nil
}
