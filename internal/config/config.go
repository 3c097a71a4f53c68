// Package config loads server settings from the environment and an optional
// .env file.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// MemoryDB selects the in-memory store instead of SQLite.
const MemoryDB = ":memory:"

const devSecret = "pokerbank-dev-secret-change-me"

// Config holds server settings.
type Config struct {
	Port             int
	DBPath           string
	JWTSecret        string
	TokenTTL         time.Duration
	LogLevel         string
	LogFormat        string
	PublicURL        string
	AutoDeductCredit bool
}

// Load reads files (default ".env") if present, then the environment.
// Variables already set in the environment win over the file.
func Load(files ...string) (*Config, error) {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("failed to load %s: %w", f, err)
		}
	}

	cfg := &Config{
		DBPath:    getEnv("DB_PATH", "./data/pokerbank.db"),
		JWTSecret: getEnv("JWT_SECRET", ""),
		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "text"),
	}

	var err error
	if cfg.Port, err = strconv.Atoi(getEnv("PORT", "8080")); err != nil || cfg.Port <= 0 || cfg.Port > 65535 {
		return nil, fmt.Errorf("invalid PORT %q", os.Getenv("PORT"))
	}
	if cfg.TokenTTL, err = time.ParseDuration(getEnv("TOKEN_TTL", "12h")); err != nil || cfg.TokenTTL <= 0 {
		return nil, fmt.Errorf("invalid TOKEN_TTL %q", os.Getenv("TOKEN_TTL"))
	}
	if cfg.AutoDeductCredit, err = strconv.ParseBool(getEnv("AUTO_DEDUCT_CREDIT", "true")); err != nil {
		return nil, fmt.Errorf("invalid AUTO_DEDUCT_CREDIT: %w", err)
	}
	cfg.PublicURL = strings.TrimRight(getEnv("PUBLIC_URL", fmt.Sprintf("http://localhost:%d", cfg.Port)), "/")

	switch cfg.LogFormat {
	case "text", "json":
	default:
		return nil, fmt.Errorf("invalid LOG_FORMAT %q, want text or json", cfg.LogFormat)
	}

	if cfg.JWTSecret == "" {
		slog.Warn("JWT_SECRET not set, using development secret")
		cfg.JWTSecret = devSecret
	}
	return cfg, nil
}

// UseMemoryStore reports whether DBPath selects the in-memory store.
func (c *Config) UseMemoryStore() bool {
	return c.DBPath == MemoryDB
}

// Addr is the listen address.
func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
