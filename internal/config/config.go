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

type Config struct {
	Port           string
	PostgresURL    string
	JWTSecret      []byte
	TokenTTL       time.Duration
	CookieSecure   bool
	LogLevel       slog.Level
	ServiceVersion string
	TracingEnabled bool
	// OTLPEndpoint is the trace collector address; empty uses the exporter default.
	OTLPEndpoint string
}

// Load reads an optional .env file and then the process environment.
// POSTGRES_URL and JWT_SECRET are required.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("loading .env: %w", err)
	}
	return FromEnv(os.Getenv)
}

func FromEnv(getenv func(string) string) (*Config, error) {
	cfg := &Config{
		Port:           withDefault(getenv("PORT"), "8080"),
		PostgresURL:    getenv("POSTGRES_URL"),
		JWTSecret:      []byte(getenv("JWT_SECRET")),
		ServiceVersion: withDefault(getenv("SERVICE_VERSION"), "0.1.0"),
		OTLPEndpoint:   getenv("OTEL_EXPORTER_OTLP_ENDPOINT"),
	}

	if cfg.PostgresURL == "" {
		return nil, errors.New("POSTGRES_URL environment variable is required")
	}
	if len(cfg.JWTSecret) == 0 {
		return nil, errors.New("JWT_SECRET environment variable is required")
	}

	var err error
	if cfg.TokenTTL, err = time.ParseDuration(withDefault(getenv("TOKEN_TTL"), "6h")); err != nil {
		return nil, fmt.Errorf("parsing TOKEN_TTL: %w", err)
	}
	if cfg.TokenTTL <= 0 {
		return nil, errors.New("TOKEN_TTL must be positive")
	}
	if cfg.CookieSecure, err = strconv.ParseBool(withDefault(getenv("COOKIE_SECURE"), "false")); err != nil {
		return nil, fmt.Errorf("parsing COOKIE_SECURE: %w", err)
	}
	if cfg.TracingEnabled, err = strconv.ParseBool(withDefault(getenv("TRACING_ENABLED"), "true")); err != nil {
		return nil, fmt.Errorf("parsing TRACING_ENABLED: %w", err)
	}
	if err := cfg.LogLevel.UnmarshalText([]byte(strings.ToUpper(withDefault(getenv("LOG_LEVEL"), "info")))); err != nil {
		return nil, fmt.Errorf("parsing LOG_LEVEL: %w", err)
	}

	return cfg, nil
}

func withDefault(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}
