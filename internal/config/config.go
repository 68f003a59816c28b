package config

import (
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
)

// Config holds application configuration.
type Config struct {
	DataDir   string // directory holding the database and the event relay files
	NTPServer string // host:port of the time source; empty disables network time
}

// Load loads configuration from environment variables.
func Load() (*Config, error) {
	// Try to load .env file (ignore error if not exists)
	_ = godotenv.Load()

	dataDir := os.Getenv("GRINDLOG_DATA_DIR")
	if dataDir == "" {
		cfg, err := os.UserConfigDir()
		if err != nil {
			return nil, err
		}
		dataDir = filepath.Join(cfg, "grindlog")
	}

	ntp := os.Getenv("GRINDLOG_NTP_SERVER")
	if ntp == "" {
		ntp = "pool.ntp.org:123"
	}
	if os.Getenv("GRINDLOG_NO_NTP") != "" {
		ntp = ""
	}

	return &Config{
		DataDir:   dataDir,
		NTPServer: ntp,
	}, nil
}

// DBPath returns the sqlite database path under the data directory.
func (c *Config) DBPath() string {
	return filepath.Join(c.DataDir, "grindlog.db")
}

// EventDir returns the directory used for cross-process change relay files.
func (c *Config) EventDir() string {
	return filepath.Join(c.DataDir, "events")
}
