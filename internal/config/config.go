// Package config provides configuration management for the application.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/bgergo/reelcache/internal/constants"
	"github.com/joho/godotenv"
)

const defaultConfigFile = "config.json"

// Config holds the application configuration. Values are loaded from an
// optional JSON file and overridden by environment variables; a .env
// file in the working directory is honored when present.
type Config struct {
	// TMDB API key, required for any online operation
	TMDBAPIKey string `json:"TMDB_API_KEY"`

	// Remote marker store connection string; empty disables remote sync
	MongoURI string `json:"MONGO_URI"`

	// Storage settings
	DatabaseDir string `json:"DATABASE_DIR"`
	CacheSize   int    `json:"CACHE_SIZE"`
	CacheTTL    time.Duration

	// HTTP server
	Port string `json:"PORT"`

	// Connectivity probe target (host:port)
	ProbeHost string `json:"CONNECTIVITY_PROBE_HOST"`

	// Forces offline behavior regardless of the probe, mainly for tests
	// and air-gapped use
	ForceOffline bool `json:"FORCE_OFFLINE"`
}

// Load reads configuration from the optional JSON file and environment
// variables. Environment variables take precedence over file values.
func Load() (*Config, error) {
	// Missing .env is fine; env vars may come from elsewhere.
	_ = godotenv.Load()

	cfg := &Config{
		DatabaseDir: ".",
		CacheSize:   constants.DefaultCacheSize,
		CacheTTL:    time.Duration(constants.DefaultCacheTTL) * time.Hour,
		Port:        constants.DefaultPort,
	}

	if err := cfg.loadFile(defaultConfigFile); err != nil {
		return nil, err
	}
	cfg.loadEnv()

	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}
	if err := json.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}
	return nil
}

func (c *Config) loadEnv() {
	if v := os.Getenv("TMDB_API_KEY"); v != "" {
		c.TMDBAPIKey = v
	}
	if v := os.Getenv("MONGO_URI"); v != "" {
		c.MongoURI = v
	}
	if v := os.Getenv("DATABASE_DIR"); v != "" {
		c.DatabaseDir = v
	}
	if v := os.Getenv("PORT"); v != "" {
		c.Port = v
	}
	if v := os.Getenv("CONNECTIVITY_PROBE_HOST"); v != "" {
		c.ProbeHost = v
	}
	if v := os.Getenv("FORCE_OFFLINE"); v == "1" || v == "true" {
		c.ForceOffline = true
	}
}

// Validate checks that required settings are present.
func (c *Config) Validate() error {
	if c.TMDBAPIKey == "" && !c.ForceOffline {
		return fmt.Errorf("TMDB_API_KEY is required unless FORCE_OFFLINE is set")
	}
	return nil
}
