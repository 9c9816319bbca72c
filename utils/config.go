package utils

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/caarlos0/env/v11"
)

// DefaultAPIBase is used when neither the config file nor the
// DOCCHAT_API_BASE environment variable provide a backend address.
const DefaultAPIBase = "http://localhost:8000/api"

// Config represents the application configuration
type Config struct {
	API  APIConfig  `json:"api"`
	UI   UIConfig   `json:"ui"`
	Data DataConfig `json:"data"`
}

// APIConfig represents backend connection configuration
type APIConfig struct {
	BaseURL        string `json:"base_url"`
	TimeoutSeconds int    `json:"timeout_seconds"`
}

// UIConfig represents UI configuration
type UIConfig struct {
	Theme        string `json:"theme"`
	FontSize     int    `json:"font_size"`
	WindowWidth  int    `json:"window_width"`
	WindowHeight int    `json:"window_height"`
}

// DataConfig represents local data storage configuration
type DataConfig struct {
	DBPath string `json:"db_path"`
}

// envOverrides are environment variables that take precedence over
// values from the config file.
type envOverrides struct {
	APIBase string `env:"DOCCHAT_API_BASE"`
	DBPath  string `env:"DOCCHAT_DB_PATH"`
}

// LoadConfig loads configuration from file and applies environment overrides
func LoadConfig(configPath string) (*Config, error) {
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := json.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	var overrides envOverrides
	if err := env.Parse(&overrides); err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}
	if overrides.APIBase != "" {
		config.API.BaseURL = overrides.APIBase
	}
	if overrides.DBPath != "" {
		config.Data.DBPath = overrides.DBPath
	}

	if config.API.BaseURL == "" {
		config.API.BaseURL = DefaultAPIBase
	}
	if config.API.TimeoutSeconds <= 0 {
		config.API.TimeoutSeconds = 30
	}
	if config.Data.DBPath != "" {
		config.Data.DBPath = expandPath(config.Data.DBPath)
	}

	return &config, nil
}

// SaveConfig saves configuration to file
func SaveConfig(configPath string, config *Config) error {
	data, err := json.MarshalIndent(config, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	// Ensure directory exists
	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// expandPath expands ~ and relative paths
func expandPath(path string) string {
	if len(path) == 0 {
		return path
	}

	// Expand ~
	if path[0] == '~' {
		home, err := os.UserHomeDir()
		if err == nil {
			path = filepath.Join(home, path[1:])
		}
	}

	// Make absolute
	absPath, err := filepath.Abs(path)
	if err == nil {
		return absPath
	}

	return path
}

// GetConfigPath returns the default config path
func GetConfigPath() string {
	// Try to get user config directory
	configDir, err := os.UserConfigDir()
	if err != nil {
		// Fallback to current directory
		return "./config/default.json"
	}

	return filepath.Join(configDir, "docchat-client", "config.json")
}

// EnsureDefaultConfig creates a default config file if it doesn't exist
func EnsureDefaultConfig() (string, error) {
	configPath := GetConfigPath()

	// Check if config exists
	if _, err := os.Stat(configPath); err == nil {
		return configPath, nil
	}

	// Create default config
	defaultConfig := &Config{
		API: APIConfig{
			BaseURL:        DefaultAPIBase,
			TimeoutSeconds: 30,
		},
		UI: UIConfig{
			Theme:        "light",
			FontSize:     14,
			WindowWidth:  1100,
			WindowHeight: 760,
		},
		Data: DataConfig{
			DBPath: "./data/docchat.db",
		},
	}

	if err := SaveConfig(configPath, defaultConfig); err != nil {
		return "", err
	}

	return configPath, nil
}
