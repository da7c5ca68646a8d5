// Package config loads and validates application configuration from environment variables.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/netip"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration values for the API server.
// Values are populated by Load from environment variables.
type Config struct {
	// Port is the TCP port the HTTP server listens on. Defaults to "8080".
	Port string

	// DatabaseURL is the Postgres connection string. Required.
	DatabaseURL string

	// LogLevel controls the minimum log level. Defaults to "info".
	// Valid values: debug, info, warn, error.
	LogLevel string

	// CORSOrigins is the list of allowed cross-origin request origins.
	// Defaults to ["http://localhost:5173"] (Vite dev server).
	// Set CORS_ORIGINS to a comma-separated list to override.
	CORSOrigins []string

	// JWTSecret signs auth tokens. Required.
	JWTSecret string

	// TokenTTL is the lifetime of an issued auth token. Defaults to 24h.
	TokenTTL time.Duration

	// MediaDir is where uploaded recipe images are stored. Defaults to "./media".
	MediaDir string

	// MediaURL is the URL prefix images are served under. Defaults to "/media/".
	MediaURL string

	// MaxBodyBytes caps request bodies. Defaults to 10 MiB, enough for a
	// base64-encoded recipe photo.
	MaxBodyBytes int64

	// LoginRatePerMin is the number of login attempts allowed per client IP
	// per minute. Defaults to 10.
	LoginRatePerMin int

	// TrustedProxies lists the reverse proxies (IPs or CIDR prefixes) whose
	// X-Forwarded-For / X-Real-IP headers are believed. Empty by default,
	// which means the socket address is always the client address.
	TrustedProxies []netip.Prefix
}

// Load reads configuration from environment variables and returns a Config.
// A .env file in the working directory, if present, seeds variables that are
// not already set. Returns an error listing every required variable that is
// missing and every value that cannot be parsed.
func Load() (Config, error) {
	return LoadWithEnvFile(".env")
}

// LoadWithEnvFile is Load with an explicit .env path. A missing file is not an error.
func LoadWithEnvFile(path string) (Config, error) {
	if err := godotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("read %s: %w", path, err)
	}

	cfg := Config{
		Port:        getEnv("PORT", "8080"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		CORSOrigins: splitCSV(getEnv("CORS_ORIGINS", "http://localhost:5173")),
		MediaDir:    getEnv("MEDIA_DIR", "./media"),
		MediaURL:    getEnv("MEDIA_URL", "/media/"),
	}

	var missing, invalid []string

	cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	if cfg.DatabaseURL == "" {
		missing = append(missing, "DATABASE_URL")
	}
	cfg.JWTSecret = os.Getenv("JWT_SECRET")
	if cfg.JWTSecret == "" {
		missing = append(missing, "JWT_SECRET")
	}

	var err error
	if cfg.TokenTTL, err = time.ParseDuration(getEnv("TOKEN_TTL", "24h")); err != nil || cfg.TokenTTL <= 0 {
		invalid = append(invalid, "TOKEN_TTL")
	}
	if cfg.MaxBodyBytes, err = strconv.ParseInt(getEnv("MAX_BODY_BYTES", "10485760"), 10, 64); err != nil || cfg.MaxBodyBytes <= 0 {
		invalid = append(invalid, "MAX_BODY_BYTES")
	}
	if cfg.LoginRatePerMin, err = strconv.Atoi(getEnv("LOGIN_RATE_PER_MIN", "10")); err != nil || cfg.LoginRatePerMin <= 0 {
		invalid = append(invalid, "LOGIN_RATE_PER_MIN")
	}

	if cfg.TrustedProxies, err = parsePrefixes(splitCSV(os.Getenv("TRUSTED_PROXIES"))); err != nil {
		invalid = append(invalid, "TRUSTED_PROXIES")
	}

	var problems []string
	if len(missing) > 0 {
		problems = append(problems, "required environment variables not set: "+strings.Join(missing, ", "))
	}
	if len(invalid) > 0 {
		problems = append(problems, "invalid values for: "+strings.Join(invalid, ", "))
	}
	if len(problems) > 0 {
		return Config{}, errors.New(strings.Join(problems, "; "))
	}

	return cfg, nil
}

// getEnv returns the value of the environment variable named by key,
// or fallback if the variable is not set or is empty.
func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// parsePrefixes parses IPs or CIDR prefixes. A bare IP becomes a
// single-address prefix.
func parsePrefixes(entries []string) ([]netip.Prefix, error) {
	out := make([]netip.Prefix, 0, len(entries))
	for _, e := range entries {
		if strings.Contains(e, "/") {
			p, err := netip.ParsePrefix(e)
			if err != nil {
				return nil, err
			}
			out = append(out, p.Masked())
			continue
		}
		ip, err := netip.ParseAddr(e)
		if err != nil {
			return nil, err
		}
		ip = ip.Unmap()
		out = append(out, netip.PrefixFrom(ip, ip.BitLen()))
	}
	return out, nil
}

// splitCSV splits a comma-separated string into a trimmed slice, ignoring empty entries.
func splitCSV(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if t := strings.TrimSpace(part); t != "" {
			out = append(out, t)
		}
	}
	return out
}
