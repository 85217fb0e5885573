package config

import (
	"fmt"
	"log"
	"net/url"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config holds all environment-based configuration for collection-sync.
type Config struct {
	// Primary backend API (required).
	PrimaryAPIURL   string `env:"PRIMARY_API_URL"`
	PrimaryAPIToken string `env:"PRIMARY_API_TOKEN"`

	// Secondary cloud store. Optional: when SECONDARY_URL is empty the
	// fallback path degrades straight to the local cache.
	SecondaryURL    string `env:"SECONDARY_URL"`
	SecondaryAPIKey string `env:"SECONDARY_API_KEY"`

	// Realtime endpoint for change subscriptions. Derived from
	// SECONDARY_URL when empty (https -> wss, http -> ws).
	SecondaryRealtimeURL string `env:"SECONDARY_REALTIME_URL"`

	// Path to the local cache database. Defaults to
	// ~/.collection-sync/cache.db when empty.
	CachePath string `env:"CACHE_PATH"`

	// Environment controls log format.
	Environment string `env:"ENVIRONMENT" envDefault:"development"`
}

// warnInsecureEnvFile checks whether the .env file (if present) has
// overly permissive permissions. On Unix systems, group or world
// readable files risk exposing credentials to other users.
func warnInsecureEnvFile() {
	if runtime.GOOS == "windows" {
		return
	}

	info, err := os.Stat(".env")
	if err != nil {
		return // file does not exist, nothing to check
	}

	mode := info.Mode().Perm()
	if mode&0o077 != 0 {
		log.Printf("WARNING: .env file has insecure permissions %04o; recommended 0600", mode)
	}
}

// Load reads configuration from environment variables.
// It first attempts to load a .env file if present, then parses env vars.
func Load() (*Config, error) {
	_ = godotenv.Load()

	warnInsecureEnvFile()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	if cfg.SecondaryRealtimeURL == "" && cfg.SecondaryURL != "" {
		derived, err := deriveRealtimeURL(cfg.SecondaryURL)
		if err != nil {
			return nil, fmt.Errorf("deriving realtime URL: %w", err)
		}

		cfg.SecondaryRealtimeURL = derived
	}

	if cfg.CachePath == "" {
		path, err := DefaultCachePath()
		if err != nil {
			return nil, err
		}

		cfg.CachePath = path
	}

	return cfg, nil
}

func (c *Config) validate() error {
	if c.PrimaryAPIURL == "" {
		return fmt.Errorf("PRIMARY_API_URL is required")
	}

	if _, err := url.Parse(c.PrimaryAPIURL); err != nil {
		return fmt.Errorf("PRIMARY_API_URL is not a valid URL: %w", err)
	}

	if c.SecondaryURL != "" && c.SecondaryAPIKey == "" {
		return fmt.Errorf("SECONDARY_API_KEY is required when SECONDARY_URL is set")
	}

	return nil
}

// deriveRealtimeURL converts the secondary store's REST base URL into
// its websocket realtime endpoint.
func deriveRealtimeURL(base string) (string, error) {
	u, err := url.Parse(base)
	if err != nil {
		return "", err
	}

	switch u.Scheme {
	case "https":
		u.Scheme = "wss"
	case "http":
		u.Scheme = "ws"
	default:
		return "", fmt.Errorf("unsupported scheme %q", u.Scheme)
	}

	u.Path = strings.TrimSuffix(u.Path, "/") + "/realtime/v1"

	return u.String(), nil
}

// DefaultCachePath returns the default cache database location:
// ~/.collection-sync/cache.db
func DefaultCachePath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("determining home directory: %w", err)
	}

	return filepath.Join(home, ".collection-sync", "cache.db"), nil
}

// IsProduction returns true when the environment is set to production.
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}
