// Package config loads serve-mode configuration from the environment.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
)

// Config holds everything the serve command needs.
type Config struct {
	// Addr is the HTTP listen address, e.g. ":8080".
	Addr string

	// CorpusPath points at the corpus file to load at startup.
	CorpusPath string

	// DBPath is the session-history database path; empty disables history.
	DBPath string

	// LogMode selects the zap config ("dev" or "prod").
	LogMode string

	// ShutdownTimeout bounds graceful shutdown.
	ShutdownTimeout time.Duration
}

// Load reads configuration from the environment, honoring a .env file when
// one exists. QBANK_CORPUS is required; everything else has a default.
func Load() (*Config, error) {
	_ = godotenv.Load()

	corpus := os.Getenv("QBANK_CORPUS")
	if corpus == "" {
		return nil, fmt.Errorf("config: required environment variable QBANK_CORPUS is not set")
	}

	cfg := &Config{
		Addr:            getenvDefault("QBANK_ADDR", ":8080"),
		CorpusPath:      corpus,
		DBPath:          os.Getenv("QBANK_DB"),
		LogMode:         getenvDefault("QBANK_LOG_MODE", "dev"),
		ShutdownTimeout: 10 * time.Second,
	}

	if v := os.Getenv("QBANK_SHUTDOWN_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return nil, fmt.Errorf("config: QBANK_SHUTDOWN_TIMEOUT=%q is not a valid duration: %w", v, err)
		}
		cfg.ShutdownTimeout = d
	}
	return cfg, nil
}

func getenvDefault(k, fallback string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return fallback
}
