package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/comitanigiacomo/kanso-analytics/internal/adapters/repository"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "secret")

	cfg, err := Load(New())
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, repository.DriverPostgres, cfg.DB.Driver)
	assert.Equal(t, "pgx", cfg.DB.PostgresDriver)
	assert.Equal(t, "localhost", cfg.DB.Host)
	assert.Equal(t, "5432", cfg.DB.Port)
	assert.False(t, cfg.RedisEnabled)
	assert.Equal(t, 24*time.Hour, cfg.TokenTTL)
	assert.Equal(t, 100, cfg.RateLimit)
	assert.Equal(t, time.Minute, cfg.RateLimitWindow)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, 5*time.Second, cfg.ShutdownTimeout)
}

func TestLoad_FromEnvironment(t *testing.T) {
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("PORT", "9090")
	t.Setenv("DB_DRIVER", "SQLite")
	t.Setenv("SQLITE_PATH", "/tmp/kanso.db")
	t.Setenv("REDIS_HOST", "cache")
	t.Setenv("REDIS_DB", "3")
	t.Setenv("TOKEN_TTL", "90m")
	t.Setenv("RATE_LIMIT", "0")
	t.Setenv("LOG_FORMAT", "json")

	cfg, err := Load(New())
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, repository.DriverSQLite, cfg.DB.Driver)
	assert.Equal(t, "/tmp/kanso.db", cfg.DB.SQLitePath)
	assert.True(t, cfg.RedisEnabled)
	assert.Equal(t, "cache:6379", cfg.Redis.Addr())
	assert.Equal(t, 3, cfg.Redis.DB)
	assert.Equal(t, 90*time.Minute, cfg.TokenTTL)
	assert.Equal(t, 0, cfg.RateLimit)
	assert.Equal(t, "json", cfg.LogFormat)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{name: "Missing secret", env: map[string]string{}},
		{name: "Unknown driver", env: map[string]string{"JWT_SECRET": "s", "DB_DRIVER": "mysql"}},
		{name: "Unknown postgres driver", env: map[string]string{"JWT_SECRET": "s", "DB_PG_DRIVER": "odbc"}},
		{name: "Zero token ttl", env: map[string]string{"JWT_SECRET": "s", "TOKEN_TTL": "0s"}},
		{name: "Negative rate limit", env: map[string]string{"JWT_SECRET": "s", "RATE_LIMIT": "-1"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("JWT_SECRET", "")
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			cfg, err := Load(New())
			assert.Error(t, err)
			assert.Nil(t, cfg)
		})
	}
}

func TestLoad_MissingSecretSentinel(t *testing.T) {
	t.Setenv("JWT_SECRET", "")

	_, err := Load(New())
	assert.ErrorIs(t, err, ErrMissingSecret)
}
