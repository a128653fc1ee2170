// Package config handles application configuration management.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config holds all application configuration.
type Config struct {
	// Base directory for all Till data (~/.till)
	BaseDir string `yaml:"-"`

	// Remote backend settings
	Remote RemoteConfig `yaml:"remote"`

	// Database debug logging
	Debug bool `yaml:"debug"`
}

// RemoteConfig holds backend gateway settings.
type RemoteConfig struct {
	// BaseURL of the sync backend, e.g. https://api.tillworks.dev
	BaseURL string `yaml:"base_url"`
	// APIKey authenticates this device.
	APIKey string `yaml:"api_key"`
	// TenantID pins the tenant locally instead of resolving it from the
	// backend session endpoint. Normally empty.
	TenantID string `yaml:"tenant_id"`
	// RequestsPerSecond caps outbound gateway traffic. 0 keeps the default.
	RequestsPerSecond float64 `yaml:"requests_per_second"`
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		BaseDir: DefaultBaseDir(),
	}
}

// Load reads configuration from the optional config file, then applies
// environment variable overrides.
func Load() (*Config, error) {
	cfg := DefaultConfig()

	if dir := os.Getenv("TILL_HOME"); dir != "" {
		cfg.BaseDir = dir
	}

	if err := loadFile(cfg); err != nil {
		return nil, err
	}

	if u := os.Getenv("TILL_REMOTE_URL"); u != "" {
		cfg.Remote.BaseURL = u
	}
	if key := os.Getenv("TILL_API_KEY"); key != "" {
		cfg.Remote.APIKey = key
	}
	if tenant := os.Getenv("TILL_TENANT_ID"); tenant != "" {
		cfg.Remote.TenantID = tenant
	}
	if os.Getenv("TILL_DEBUG") != "" {
		cfg.Debug = true
	}

	if err := os.MkdirAll(cfg.BaseDir, 0755); err != nil {
		return nil, fmt.Errorf("create base directory: %w", err)
	}

	return cfg, nil
}

// loadFile merges config.yaml from the base directory when present.
func loadFile(cfg *Config) error {
	path := filepath.Join(cfg.BaseDir, "config.yaml")
	raw, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}

	if err := yaml.Unmarshal(raw, cfg); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}
	return nil
}
