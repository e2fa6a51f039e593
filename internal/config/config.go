package config

import (
	"os"
	"path/filepath"
	"strconv"

	"quotefill/internal/errors"
)

// Config represents the complete application configuration
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Paths    PathConfig
	Fill     FillConfig
	Env      string
}

// ServerConfig holds web server settings
type ServerConfig struct {
	Port           string
	GinMode        string
	MaxUploadBytes int64
}

// DatabaseConfig holds the optional fill ledger connection. An empty URL
// disables the ledger.
type DatabaseConfig struct {
	URL string
}

// Enabled reports whether a ledger database was configured
func (d DatabaseConfig) Enabled() bool {
	return d.URL != ""
}

// PathConfig holds file system paths
type PathConfig struct {
	// DownloadDir is where the browser extension saves template downloads
	DownloadDir string
	// LayoutFile optionally overrides the built-in template layout
	LayoutFile string
}

// FillConfig holds template filling settings
type FillConfig struct {
	Concurrency int
}

// Load reads configuration from environment variables and validates it
func Load() (*Config, error) {
	config := &Config{
		Server:   *loadServerConfig(),
		Database: DatabaseConfig{URL: os.Getenv("DATABASE_URL")},
		Paths:    *loadPathConfig(),
		Fill:     FillConfig{Concurrency: getEnvIntOrDefault("FILL_CONCURRENCY", 4)},
		Env:      getEnvOrDefault("APP_ENV", "development"),
	}

	if err := validateConfig(config); err != nil {
		return nil, errors.Wrap(err, "configuration validation failed")
	}
	return config, nil
}

func loadServerConfig() *ServerConfig {
	return &ServerConfig{
		Port:           getEnvOrDefault("PORT", "8080"),
		GinMode:        getEnvOrDefault("GIN_MODE", "debug"),
		MaxUploadBytes: int64(getEnvIntOrDefault("MAX_UPLOAD_BYTES", 50<<20)),
	}
}

func loadPathConfig() *PathConfig {
	return &PathConfig{
		DownloadDir: getEnvOrDefault("DOWNLOAD_DIR", defaultDownloadDir()),
		LayoutFile:  getEnvOrDefault("LAYOUT_FILE", ""),
	}
}

func defaultDownloadDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", "downloads")
	}
	return filepath.Join(home, "Downloads", "TotalBot")
}

func validateConfig(config *Config) error {
	if config.Server.Port == "" {
		return errors.ConfigInvalid("PORT is required")
	}
	if config.Server.MaxUploadBytes <= 0 {
		return errors.ConfigInvalid("MAX_UPLOAD_BYTES must be positive")
	}
	if config.Fill.Concurrency < 1 {
		return errors.ConfigInvalid("FILL_CONCURRENCY must be at least 1")
	}
	if config.Paths.DownloadDir == "" {
		return errors.ConfigInvalid("DOWNLOAD_DIR is required")
	}
	return nil
}

// Helper functions for environment variable parsing
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}
