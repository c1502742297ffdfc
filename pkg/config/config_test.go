package config

import (
	"os"
	"path/filepath"
	"testing"
)

func clearEnv(t *testing.T) {
	t.Setenv(EnvUsername, "")
	t.Setenv(EnvAPIToken, "")
	t.Setenv(EnvBaseURL, "")
	os.Unsetenv(EnvUsername)
	os.Unsetenv(EnvAPIToken)
	os.Unsetenv(EnvBaseURL)
}

func TestLoadFromMissingFileReturnsDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := LoadFrom(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.UI.ChartFormat != "svg" {
		t.Errorf("ChartFormat = %q, expected svg", cfg.UI.ChartFormat)
	}
	if len(cfg.UI.DefaultInsights) != 1 || cfg.UI.DefaultInsights[0] != "Issue Distribution by Type" {
		t.Errorf("DefaultInsights = %v", cfg.UI.DefaultInsights)
	}
	if cfg.Jira.BaseURL != "" {
		t.Errorf("BaseURL = %q, expected empty", cfg.Jira.BaseURL)
	}
}

func TestLoadFromFile(t *testing.T) {
	clearEnv(t)

	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `jira:
  base_url: https://example.atlassian.net
  username: reporter@example.com
  api_token: file-token
ui:
  chart_format: png
  default_insights:
    - Issue Status Distribution
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFrom(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Jira.BaseURL != "https://example.atlassian.net" {
		t.Errorf("BaseURL = %q", cfg.Jira.BaseURL)
	}
	if cfg.Jira.APIToken != "file-token" {
		t.Errorf("APIToken = %q", cfg.Jira.APIToken)
	}
	if cfg.UI.ChartFormat != "png" {
		t.Errorf("ChartFormat = %q", cfg.UI.ChartFormat)
	}
	if len(cfg.UI.DefaultInsights) != 1 || cfg.UI.DefaultInsights[0] != "Issue Status Distribution" {
		t.Errorf("DefaultInsights = %v", cfg.UI.DefaultInsights)
	}
}

func TestEnvOverridesFile(t *testing.T) {
	clearEnv(t)

	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `jira:
  username: file-user
  api_token: file-token
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	t.Setenv(EnvAPIToken, "env-token")
	t.Setenv(EnvBaseURL, "https://env.atlassian.net")

	cfg, err := LoadFrom(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Jira.Username != "file-user" {
		t.Errorf("Username = %q, expected file value to survive", cfg.Jira.Username)
	}
	if cfg.Jira.APIToken != "env-token" {
		t.Errorf("APIToken = %q, expected env to win", cfg.Jira.APIToken)
	}
	if cfg.Jira.BaseURL != "https://env.atlassian.net" {
		t.Errorf("BaseURL = %q, expected env value", cfg.Jira.BaseURL)
	}
}

func TestLoadFromMalformedFileFails(t *testing.T) {
	clearEnv(t)

	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("jira: ["), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadFrom(path); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestSaveToLoadFromRoundTrip(t *testing.T) {
	clearEnv(t)

	cfg := DefaultConfig()
	cfg.Jira.BaseURL = "https://example.atlassian.net"
	cfg.Jira.Username = "reporter@example.com"
	cfg.UI.ChartFormat = "png"

	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	if err := SaveTo(cfg, path); err != nil {
		t.Fatal(err)
	}

	loaded, err := LoadFrom(path)
	if err != nil {
		t.Fatal(err)
	}
	if loaded.Jira.BaseURL != cfg.Jira.BaseURL ||
		loaded.Jira.Username != cfg.Jira.Username ||
		loaded.UI.ChartFormat != cfg.UI.ChartFormat {
		t.Errorf("round trip mismatch: %+v vs %+v", loaded, cfg)
	}
}

func TestConfigDirHonorsXDG(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/tmp/xdg-test")
	if got := ConfigDir(); got != "/tmp/xdg-test/fxb" {
		t.Errorf("ConfigDir = %q", got)
	}
	if got := ConfigPath(); got != "/tmp/xdg-test/fxb/config.yaml" {
		t.Errorf("ConfigPath = %q", got)
	}
}
