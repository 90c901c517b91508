// Package config loads runtime settings from SUPPLY_* environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	defaultAddr     = ":8080"
	defaultTokenTTL = 7 * 24 * time.Hour
	defaultIssuer   = "supply-admin"

	defaultRateBurst  = 20
	defaultRatePerSec = 10
)

// ErrMissingAuthSecret is returned when SUPPLY_AUTH_SECRET is absent. The
// service refuses to start without it; there is no fallback signing key.
var ErrMissingAuthSecret = errors.New("config: SUPPLY_AUTH_SECRET is required")

// Config holds runtime settings for the supply-admin API.
type Config struct {
	Addr        string
	DatabaseDSN string

	AuthSecret string
	TokenTTL   time.Duration
	Issuer     string

	RateBurst  int
	RatePerSec int

	S3Bucket    string
	S3Region    string
	S3Endpoint  string
	S3PublicURL string
	S3AccessKey string
	S3SecretKey string
}

// Load builds a Config from the environment. It fails fast when the signing
// secret is missing or a value cannot be parsed.
func Load() (*Config, error) {
	cfg := &Config{
		Addr:        envOr("SUPPLY_ADDR", defaultAddr),
		DatabaseDSN: strings.TrimSpace(os.Getenv("SUPPLY_PG_DSN")),
		AuthSecret:  strings.TrimSpace(os.Getenv("SUPPLY_AUTH_SECRET")),
		TokenTTL:    defaultTokenTTL,
		Issuer:      envOr("SUPPLY_TOKEN_ISSUER", defaultIssuer),
		RateBurst:   defaultRateBurst,
		RatePerSec:  defaultRatePerSec,
		S3Bucket:    strings.TrimSpace(os.Getenv("SUPPLY_S3_BUCKET")),
		S3Region:    envOr("SUPPLY_S3_REGION", "us-east-1"),
		S3Endpoint:  strings.TrimSpace(os.Getenv("SUPPLY_S3_ENDPOINT")),
		S3PublicURL: strings.TrimSpace(os.Getenv("SUPPLY_S3_PUBLIC_URL")),
		S3AccessKey: strings.TrimSpace(os.Getenv("SUPPLY_S3_ACCESS_KEY")),
		S3SecretKey: strings.TrimSpace(os.Getenv("SUPPLY_S3_SECRET_KEY")),
	}

	if cfg.AuthSecret == "" {
		return nil, ErrMissingAuthSecret
	}

	if raw := strings.TrimSpace(os.Getenv("SUPPLY_TOKEN_TTL")); raw != "" {
		ttl, err := time.ParseDuration(raw)
		if err != nil {
			return nil, fmt.Errorf("config: parse SUPPLY_TOKEN_TTL: %w", err)
		}
		if ttl <= 0 {
			return nil, errors.New("config: SUPPLY_TOKEN_TTL must be greater than zero")
		}
		cfg.TokenTTL = ttl
	}

	var err error
	if cfg.RateBurst, err = envInt("SUPPLY_RATE_BURST", defaultRateBurst); err != nil {
		return nil, err
	}
	if cfg.RatePerSec, err = envInt("SUPPLY_RATE_PER_SEC", defaultRatePerSec); err != nil {
		return nil, err
	}

	return cfg, nil
}

// BlobEnabled reports whether enough S3 settings are present to serve uploads.
func (c *Config) BlobEnabled() bool {
	return c.S3Bucket != "" && c.S3AccessKey != "" && c.S3SecretKey != ""
}

func envOr(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func envInt(key string, def int) (int, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("config: parse %s: %w", key, err)
	}
	if v <= 0 {
		return 0, fmt.Errorf("config: %s must be greater than zero", key)
	}
	return v, nil
}
