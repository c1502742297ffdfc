// Package config handles loading and saving fxb configuration.
//
// Configuration follows the XDG Base Directory specification:
//   - Config: ~/.config/fxb/config.yaml
//
// Jira credentials come from the environment first (FXB_USERNAME,
// FXB_API_TOKEN, FXB_BASE_URL) and from the config file as a fallback. They
// are read once at startup; a missing credential surfaces as an
// authentication failure on the first API call, not as a startup check.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Environment variable names for the Jira connection.
const (
	EnvUsername = "FXB_USERNAME"
	EnvAPIToken = "FXB_API_TOKEN"
	EnvBaseURL  = "FXB_BASE_URL"
)

// JiraConfig holds the upstream connection settings.
type JiraConfig struct {
	BaseURL  string `yaml:"base_url,omitempty"`
	Username string `yaml:"username,omitempty"`
	APIToken string `yaml:"api_token,omitempty"`
}

// UIConfig holds dashboard preference settings.
type UIConfig struct {
	DefaultInsights []string `yaml:"default_insights,omitempty"` // Pre-selected insight names
	ChartFormat     string   `yaml:"chart_format,omitempty"`     // svg or png for --charts
}

// Config is the top-level configuration for fxb.
type Config struct {
	Jira JiraConfig `yaml:"jira,omitempty"`
	UI   UIConfig   `yaml:"ui,omitempty"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		UI: UIConfig{
			DefaultInsights: []string{"Issue Distribution by Type"},
			ChartFormat:     "svg",
		},
	}
}

// ConfigDir returns the XDG config directory for fxb.
func ConfigDir() string {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, "fxb")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "fxb")
}

// ConfigPath returns the full path to config.yaml.
func ConfigPath() string {
	dir := ConfigDir()
	if dir == "" {
		return ""
	}
	return filepath.Join(dir, "config.yaml")
}

// Load reads the config file from the XDG config directory and applies the
// environment overrides. Returns DefaultConfig if the file doesn't exist.
func Load() (Config, error) {
	path := ConfigPath()
	if path == "" {
		cfg := DefaultConfig()
		applyEnv(&cfg)
		return cfg, nil
	}
	return LoadFrom(path)
}

// LoadFrom reads config from a specific path and applies the environment
// overrides. Returns DefaultConfig if the file doesn't exist.
func LoadFrom(path string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			applyEnv(&cfg)
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading config: %w", err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config: %w", err)
	}

	applyEnv(&cfg)
	return cfg, nil
}

// applyEnv lets the environment win over file values.
func applyEnv(cfg *Config) {
	if v := os.Getenv(EnvUsername); v != "" {
		cfg.Jira.Username = v
	}
	if v := os.Getenv(EnvAPIToken); v != "" {
		cfg.Jira.APIToken = v
	}
	if v := os.Getenv(EnvBaseURL); v != "" {
		cfg.Jira.BaseURL = v
	}
}

// Save writes the config to the XDG config directory.
func Save(cfg Config) error {
	path := ConfigPath()
	if path == "" {
		return fmt.Errorf("cannot determine config directory")
	}
	return SaveTo(cfg, path)
}

// SaveTo writes the config to a specific path.
func SaveTo(cfg Config, path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	return nil
}
