package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func envOf(vars map[string]string) func(string) string {
	return func(key string) string { return vars[key] }
}

func TestFromEnv_Defaults(t *testing.T) {
	cfg, err := FromEnv(envOf(nil))
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, "sqlite", cfg.DatabaseDriver)
	assert.Equal(t, "taskit.db", cfg.DatabaseURL)
	assert.Equal(t, "sha256", cfg.PasswordHash)
	assert.Equal(t, 24*time.Hour, cfg.SessionTTL)
	assert.Equal(t, 10, cfg.AuthRatePerMinute)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Empty(t, cfg.RolloverAt)
	assert.Empty(t, cfg.RedisAddr)
}

func TestFromEnv_Overrides(t *testing.T) {
	cfg, err := FromEnv(envOf(map[string]string{
		"HTTP_ADDR":            " 127.0.0.1:9000 ",
		"DATABASE_DRIVER":      "Postgres",
		"DATABASE_URL":         "host=db user=taskit",
		"SESSION_TTL":          "90m",
		"PASSWORD_HASH":        "bcrypt",
		"REDIS_ADDR":           "redis:6379",
		"REDIS_DB":             "2",
		"ROLLOVER_AT":          "00:05",
		"AUTH_RATE_PER_MINUTE": "3",
	}))
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1:9000", cfg.HTTPAddr)
	assert.Equal(t, "postgres", cfg.DatabaseDriver)
	assert.Equal(t, 90*time.Minute, cfg.SessionTTL)
	assert.Equal(t, "bcrypt", cfg.PasswordHash)
	assert.Equal(t, 2, cfg.RedisDB)
	assert.Equal(t, "00:05", cfg.RolloverAt)
	assert.Equal(t, 3, cfg.AuthRatePerMinute)
}

func TestFromEnv_RejectsInvalidValues(t *testing.T) {
	cases := map[string]map[string]string{
		"driver":   {"DATABASE_DRIVER": "oracle"},
		"hasher":   {"PASSWORD_HASH": "md5"},
		"ttl":      {"SESSION_TTL": "forever"},
		"neg ttl":  {"SESSION_TTL": "-1h"},
		"redis db": {"REDIS_DB": "one"},
		"rate":     {"AUTH_RATE_PER_MINUTE": "0"},
		"rollover": {"ROLLOVER_AT": "25:99"},
	}
	for name, vars := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := FromEnv(envOf(vars))
			assert.Error(t, err)
		})
	}
}
