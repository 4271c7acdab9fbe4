// Package config provides YAML-based configuration for the editor backend.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"gopkg.in/yaml.v3"
)

// AppConfig is the root configuration structure.
type AppConfig struct {
	Server  ServerConfig  `yaml:"server"`
	Storage StorageConfig `yaml:"storage"`
	Editor  EditorConfig  `yaml:"editor"`
	Logging LoggingConfig `yaml:"logging"`
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	Port         int    `yaml:"port"`
	BindAddress  string `yaml:"bindAddress"`
	EnableCORS   bool   `yaml:"enableCors"`
	AllowOrigins string `yaml:"allowOrigins"`
	ReadTimeout  int    `yaml:"readTimeoutSeconds"`
	WriteTimeout int    `yaml:"writeTimeoutSeconds"`
	IdleTimeout  int    `yaml:"idleTimeoutSeconds"`
	BodyLimit    string `yaml:"bodyLimit"`
}

// StorageConfig contains durable storage settings.
type StorageConfig struct {
	// Backend selects "file" or "sqlite".
	Backend       string `yaml:"backend"`
	DataDirectory string `yaml:"dataDirectory"`
	SQLitePath    string `yaml:"sqlitePath"`
	QuotaBytes    int64  `yaml:"quotaBytes"`
}

// EditorConfig contains canvas and session tuning.
type EditorConfig struct {
	CanvasWidth            float64 `yaml:"canvasWidth"`
	CanvasHeight           float64 `yaml:"canvasHeight"`
	MaxHistorySize         int     `yaml:"maxHistorySize"`
	AutosaveSeconds        int     `yaml:"autosaveSeconds"`
	SessionTimeoutMinutes  int     `yaml:"sessionTimeoutMinutes"`
	CleanupIntervalMinutes int     `yaml:"cleanupIntervalMinutes"`
	// ValidationRules optionally points at a YAML rule override file.
	ValidationRules string `yaml:"validationRules"`
}

// LoggingConfig contains log output settings.
type LoggingConfig struct {
	Level                string `yaml:"level"`
	Format               string `yaml:"format"` // "text" or "json"
	EnableRequestLogging bool   `yaml:"enableRequestLogging"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *AppConfig {
	return &AppConfig{
		Server: ServerConfig{
			Port:         8090,
			BindAddress:  "0.0.0.0",
			EnableCORS:   true,
			AllowOrigins: "*",
			ReadTimeout:  30,
			WriteTimeout: 30,
			IdleTimeout:  120,
			BodyLimit:    "16M",
		},
		Storage: StorageConfig{
			Backend:       "file",
			DataDirectory: "./data",
			SQLitePath:    "./data/pagecraft.db",
			QuotaBytes:    10 * 1024 * 1024,
		},
		Editor: EditorConfig{
			CanvasWidth:            1200,
			CanvasHeight:           800,
			MaxHistorySize:         50,
			AutosaveSeconds:        30,
			SessionTimeoutMinutes:  30,
			CleanupIntervalMinutes: 5,
		},
		Logging: LoggingConfig{
			Level:                "info",
			Format:               "text",
			EnableRequestLogging: true,
		},
	}
}

// LoadConfig loads configuration from a YAML file, creating the default on
// first run.
func LoadConfig(configPath string) (*AppConfig, error) {
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		config := DefaultConfig()
		if err := config.Save(configPath); err != nil {
			return nil, fmt.Errorf("failed to create default config: %w", err)
		}
		return config, nil
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	config.applyEnvironmentOverrides()
	config.resolvePaths(filepath.Dir(configPath))

	return config, nil
}

// Save writes the configuration to a YAML file.
func (c *AppConfig) Save(configPath string) error {
	output, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	header := []byte("# PageCraft backend configuration\n# This file is auto-generated on first run\n\n")
	if err := os.WriteFile(configPath, append(header, output...), 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// applyEnvironmentOverrides allows environment variables to override config
// values.
func (c *AppConfig) applyEnvironmentOverrides() {
	if port := os.Getenv("PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			c.Server.Port = p
		}
	}
	if dataDir := os.Getenv("DATA_DIR"); dataDir != "" {
		c.Storage.DataDirectory = dataDir
	}
	if backend := os.Getenv("STORAGE_BACKEND"); backend != "" {
		c.Storage.Backend = backend
	}
	if level := os.Getenv("LOG_LEVEL"); level != "" {
		c.Logging.Level = level
	}
}

// resolvePaths converts relative paths to absolute based on config file
// location.
func (c *AppConfig) resolvePaths(configDir string) {
	if !filepath.IsAbs(c.Storage.DataDirectory) {
		c.Storage.DataDirectory = filepath.Join(configDir, c.Storage.DataDirectory)
	}
	if !filepath.IsAbs(c.Storage.SQLitePath) {
		c.Storage.SQLitePath = filepath.Join(configDir, c.Storage.SQLitePath)
	}
	if c.Editor.ValidationRules != "" && !filepath.IsAbs(c.Editor.ValidationRules) {
		c.Editor.ValidationRules = filepath.Join(configDir, c.Editor.ValidationRules)
	}
}

// GetServerAddr returns the server bind address.
func (c *AppConfig) GetServerAddr() string {
	return fmt.Sprintf("%s:%d", c.Server.BindAddress, c.Server.Port)
}

// EnsureDirectories creates all necessary directories.
func (c *AppConfig) EnsureDirectories() error {
	dirs := []string{
		c.Storage.DataDirectory,
		filepath.Dir(c.Storage.SQLitePath),
	}
	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}
	return nil
}
