package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
)

// Config keeps runtime settings for the server.
type Config struct {
	HTTPAddr          string
	DatabaseDriver    string
	DatabaseURL       string
	SessionSecret     string
	SessionTTL        time.Duration
	PasswordHash      string
	RedisAddr         string
	RedisPassword     string
	RedisDB           int
	RolloverAt        string
	AuthRatePerMinute int
	LogLevel          string
}

// Load reads configuration from environment variables with sane defaults.
// A .env file in the working directory is applied first when present;
// variables already set in the environment win.
func Load() (Config, error) {
	_ = godotenv.Load()
	return FromEnv(os.Getenv)
}

// FromEnv builds a Config from the given lookup function.
func FromEnv(getenv func(string) string) (Config, error) {
	get := func(key string) string { return strings.TrimSpace(getenv(key)) }

	cfg := Config{
		HTTPAddr:       get("HTTP_ADDR"),
		DatabaseDriver: strings.ToLower(get("DATABASE_DRIVER")),
		DatabaseURL:    get("DATABASE_URL"),
		SessionSecret:  get("SESSION_SECRET"),
		PasswordHash:   strings.ToLower(get("PASSWORD_HASH")),
		RedisAddr:      get("REDIS_ADDR"),
		RedisPassword:  get("REDIS_PASSWORD"),
		RolloverAt:     get("ROLLOVER_AT"),
		LogLevel:       strings.ToLower(get("LOG_LEVEL")),
	}

	if cfg.HTTPAddr == "" {
		cfg.HTTPAddr = ":8080"
	}
	if cfg.DatabaseDriver == "" {
		cfg.DatabaseDriver = "sqlite"
	}
	if cfg.DatabaseURL == "" {
		cfg.DatabaseURL = "taskit.db"
	}
	if cfg.PasswordHash == "" {
		cfg.PasswordHash = "sha256"
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}

	switch cfg.DatabaseDriver {
	case "sqlite", "postgres", "mysql":
	default:
		return cfg, errors.Errorf("DATABASE_DRIVER %q is not supported", cfg.DatabaseDriver)
	}

	switch cfg.PasswordHash {
	case "sha256", "bcrypt":
	default:
		return cfg, errors.Errorf("PASSWORD_HASH %q is not supported", cfg.PasswordHash)
	}

	ttl, err := parseDuration(get("SESSION_TTL"), 24*time.Hour)
	if err != nil {
		return cfg, errors.Wrap(err, "SESSION_TTL")
	}
	cfg.SessionTTL = ttl

	cfg.RedisDB, err = parseInt(get("REDIS_DB"), 0)
	if err != nil {
		return cfg, errors.Wrap(err, "REDIS_DB")
	}

	cfg.AuthRatePerMinute, err = parseInt(get("AUTH_RATE_PER_MINUTE"), 10)
	if err != nil || cfg.AuthRatePerMinute <= 0 {
		return cfg, errors.New("AUTH_RATE_PER_MINUTE must be a positive integer")
	}

	if cfg.RolloverAt != "" {
		if _, err := time.Parse("15:04", cfg.RolloverAt); err != nil {
			return cfg, errors.Errorf("ROLLOVER_AT %q, expected HH:MM", cfg.RolloverAt)
		}
	}

	return cfg, nil
}

func parseDuration(raw string, def time.Duration) (time.Duration, error) {
	if raw == "" {
		return def, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, err
	}
	if d <= 0 {
		return 0, errors.Errorf("must be positive, got %s", raw)
	}
	return d, nil
}

func parseInt(raw string, def int) (int, error) {
	if raw == "" {
		return def, nil
	}
	return strconv.Atoi(raw)
}
