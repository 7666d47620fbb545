package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Index.BaseURL != "https://pypi.org" {
		t.Errorf("Index.BaseURL = %q", cfg.Index.BaseURL)
	}
	if cfg.Target.RuntimeVersion != "3.10" || cfg.Target.Platform != "win_amd64" {
		t.Errorf("Target = %+v, want built-in runtime/platform defaults", cfg.Target)
	}
	if cfg.Vendor.Root == "" {
		t.Error("Vendor.Root should have a default")
	}
	if cfg.RequestTimeout() != 30*time.Second {
		t.Errorf("RequestTimeout() = %v, want 30s", cfg.RequestTimeout())
	}
}

func TestLoadConfigFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
index:
  base_url: https://mirror.example
  timeout: 5s
target:
  runtime_version: "3.11"
  platform: linux_x86_64
vendor:
  root: /tmp/vend
logging:
  level: debug
  format: text
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}

	if cfg.Index.BaseURL != "https://mirror.example" {
		t.Errorf("Index.BaseURL = %q", cfg.Index.BaseURL)
	}
	if cfg.RequestTimeout() != 5*time.Second {
		t.Errorf("RequestTimeout() = %v, want 5s", cfg.RequestTimeout())
	}
	if cfg.Target.RuntimeVersion != "3.11" || cfg.Target.Platform != "linux_x86_64" {
		t.Errorf("Target = %+v", cfg.Target)
	}
	if cfg.Vendor.Root != "/tmp/vend" {
		t.Errorf("Vendor.Root = %q", cfg.Vendor.Root)
	}
}

func TestRequestTimeoutFallback(t *testing.T) {
	cfg := &Config{Index: IndexConfig{Timeout: "not-a-duration"}}
	if cfg.RequestTimeout() != 30*time.Second {
		t.Errorf("RequestTimeout() = %v, want fallback 30s", cfg.RequestTimeout())
	}
}
