package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	// Server
	ServerPort string

	// Uploads
	UploadWorkers int // concurrent uploads per batch (default: 5)
	MaxUploadMB   int // per-request multipart size cap (default: 512)

	// Paths
	DataDir      string
	DatabaseFile string // $DATA_DIR/familyalbum.db

	// Logging
	LogLevel string
}

// Load loads configuration from environment variables and .env file
func Load() (*Config, error) {
	// Setup viper first so the .env file is available before paths are resolved
	viper.SetConfigName(".env")
	viper.SetConfigType("env")
	viper.AddConfigPath(".")
	viper.AutomaticEnv()

	// Load .env file if it exists (ignore if not found)
	_ = viper.ReadInConfig()

	// Set defaults
	viper.SetDefault("SERVER_PORT", "8080")
	viper.SetDefault("UPLOAD_WORKERS", 5)
	viper.SetDefault("MAX_UPLOAD_MB", 512)
	viper.SetDefault("LOG_LEVEL", "info")

	dataDir := viper.GetString("DATA_DIR")
	if dataDir == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to get home directory: %w", err)
		}
		dataDir = filepath.Join(homeDir, ".config", "familyalbum")
	} else {
		absPath, err := filepath.Abs(dataDir)
		if err != nil {
			return nil, fmt.Errorf("failed to get absolute path for DATA_DIR: %w", err)
		}
		dataDir = absPath
	}

	// Create data directory if it doesn't exist
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	config := &Config{
		ServerPort:    viper.GetString("SERVER_PORT"),
		UploadWorkers: viper.GetInt("UPLOAD_WORKERS"),
		MaxUploadMB:   viper.GetInt("MAX_UPLOAD_MB"),
		DataDir:       dataDir,
		DatabaseFile:  filepath.Join(dataDir, "familyalbum.db"),
		LogLevel:      viper.GetString("LOG_LEVEL"),
	}

	if config.UploadWorkers < 1 {
		return nil, fmt.Errorf("UPLOAD_WORKERS must be at least 1")
	}
	if config.MaxUploadMB < 1 {
		return nil, fmt.Errorf("MAX_UPLOAD_MB must be at least 1")
	}

	return config, nil
}
