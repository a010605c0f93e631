package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestConfigYAMLRoundTrip(t *testing.T) {
	tmpDir := t.TempDir()

	cfg := DefaultConfig()
	cfg.Server.URL = "https://docs.example.com/api"
	cfg.Generation.PollIntervalMs = 500

	if err := WriteConfig(tmpDir, cfg); err != nil {
		t.Fatalf("WriteConfig failed: %v", err)
	}

	loaded, err := ReadConfig(tmpDir)
	if err != nil {
		t.Fatalf("ReadConfig failed: %v", err)
	}

	if loaded.Server.URL != "https://docs.example.com/api" {
		t.Errorf("Server.URL: got %q, want %q", loaded.Server.URL, "https://docs.example.com/api")
	}
	if loaded.Generation.PollIntervalMs != 500 {
		t.Errorf("PollIntervalMs: got %d, want 500", loaded.Generation.PollIntervalMs)
	}
}

func TestDefaultConfigGenerationTimings(t *testing.T) {
	cfg := DefaultConfig()
	if got := cfg.Generation.PollInterval().Milliseconds(); got != 2000 {
		t.Errorf("default poll interval: got %dms, want 2000ms", got)
	}
	if got := cfg.Generation.Timeout().Milliseconds(); got != 300000 {
		t.Errorf("default timeout: got %dms, want 300000ms", got)
	}
}

func TestReadConfigPartialFileKeepsDefaults(t *testing.T) {
	tmpDir := t.TempDir()
	partial := `server:
  url: http://10.0.0.5:8080/api
`
	if err := os.WriteFile(filepath.Join(tmpDir, "config.yaml"), []byte(partial), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	cfg, err := ReadConfig(tmpDir)
	if err != nil {
		t.Fatalf("ReadConfig failed: %v", err)
	}
	if cfg.Server.URL != "http://10.0.0.5:8080/api" {
		t.Errorf("Server.URL: got %q", cfg.Server.URL)
	}
	if cfg.Download.Format != "markdown" {
		t.Errorf("Download.Format should keep default, got %q", cfg.Download.Format)
	}
}

func TestLoadMissingDefaultFileUsesDefaults(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Server.URL != DefaultConfig().Server.URL {
		t.Errorf("Server.URL: got %q, want default", cfg.Server.URL)
	}
}

func TestLoadExplicitMissingFileFails(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err == nil {
		t.Fatal("expected error for explicit missing config file")
	}
}

func TestLoadEnvOverridesFile(t *testing.T) {
	tmpDir := t.TempDir()
	cfg := DefaultConfig()
	cfg.Server.URL = "http://file.example/api"
	if err := WriteConfig(tmpDir, cfg); err != nil {
		t.Fatalf("WriteConfig failed: %v", err)
	}

	t.Setenv("REPOSCRIBE_SERVER_URL", "http://env.example/api")
	t.Setenv("REPOSCRIBE_GENERATION_TIMEOUT_MS", "1000")

	loaded, err := Load(filepath.Join(tmpDir, "config.yaml"))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if loaded.Server.URL != "http://env.example/api" {
		t.Errorf("Server.URL: got %q, want env override", loaded.Server.URL)
	}
	if loaded.Generation.TimeoutMs != 1000 {
		t.Errorf("TimeoutMs: got %d, want 1000", loaded.Generation.TimeoutMs)
	}
	if loaded.Generation.PollIntervalMs != 2000 {
		t.Errorf("PollIntervalMs: got %d, want file value 2000", loaded.Generation.PollIntervalMs)
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"empty url", func(c *Config) { c.Server.URL = "  " }},
		{"zero interval", func(c *Config) { c.Generation.PollIntervalMs = 0 }},
		{"negative timeout", func(c *Config) { c.Generation.TimeoutMs = -1 }},
		{"unknown format", func(c *Config) { c.Download.Format = "pdf" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}
