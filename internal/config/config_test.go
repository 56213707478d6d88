package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadAndValidate(t *testing.T) {
	path := writeConfig(t, `
server:
  bind_address: "127.0.0.1"
  port: 8080
upstream:
  base_url: "https://rdv.example.test"
  timeout: 5s
fetcher:
  interval: 30s
  concurrency: 4
log:
  level: debug
`)

	cfg, err := LoadAndValidate(path)
	if err != nil {
		t.Fatalf("LoadAndValidate failed: %v", err)
	}

	if cfg.Server.BindAddress != "127.0.0.1" || cfg.Server.Port != 8080 {
		t.Errorf("server = %+v", cfg.Server)
	}
	if cfg.Upstream.BaseURL != "https://rdv.example.test" {
		t.Errorf("base_url = %q", cfg.Upstream.BaseURL)
	}
	if cfg.Fetcher.Interval.Duration() != 30*time.Second {
		t.Errorf("interval = %v, want 30s", cfg.Fetcher.Interval)
	}
	if cfg.Fetcher.Concurrency != 4 {
		t.Errorf("concurrency = %d, want 4", cfg.Fetcher.Concurrency)
	}
	// Unset fields receive defaults.
	if cfg.Fetcher.Window != DefaultWindow {
		t.Errorf("window = %v, want default %v", cfg.Fetcher.Window, DefaultWindow)
	}
}

func TestLoadExpandsEnv(t *testing.T) {
	t.Setenv("SNCT_BASE_URL", "https://rdv.env.test")
	path := writeConfig(t, `
upstream:
  base_url: "${SNCT_BASE_URL}"
`)

	cfg, err := LoadWithDefaults(path)
	if err != nil {
		t.Fatalf("LoadWithDefaults failed: %v", err)
	}
	if cfg.Upstream.BaseURL != "https://rdv.env.test" {
		t.Errorf("base_url = %q, want env expansion", cfg.Upstream.BaseURL)
	}
}

func TestDefaults(t *testing.T) {
	cfg := Default()

	if cfg.Server.Port != DefaultPort {
		t.Errorf("port = %d, want %d", cfg.Server.Port, DefaultPort)
	}
	if cfg.Upstream.BaseURL != DefaultBaseURL {
		t.Errorf("base_url = %q, want %q", cfg.Upstream.BaseURL, DefaultBaseURL)
	}
	if cfg.Fetcher.Interval != DefaultInterval {
		t.Errorf("interval = %v, want %v", cfg.Fetcher.Interval, DefaultInterval)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should validate: %v", err)
	}
}

func TestValidateErrors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"bad port", func(c *Config) { c.Server.Port = 70000 }},
		{"missing base url", func(c *Config) { c.Upstream.BaseURL = "" }},
		{"zero interval", func(c *Config) { c.Fetcher.Interval = Duration(-time.Second) }},
		{"zero concurrency", func(c *Config) { c.Fetcher.Concurrency = 0 }},
		{"bad log level", func(c *Config) { c.Log.Level = "verbose" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}
