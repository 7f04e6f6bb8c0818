package cliconfig

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadFileConfig(t *testing.T) {
	path := writeConfig(t, `
base_url = "https://file.example.com"
auth_token = "file-token"
timeout = "10s"
max_retries = 5
store = "sqlite"
sync_interval = "1m"
verbose = true
`)

	fc, err := LoadFileConfig(path)
	if err != nil {
		t.Fatalf("LoadFileConfig: %v", err)
	}

	cfg := DefaultConfig()
	if err := ApplyFileConfig(&cfg, fc, nil); err != nil {
		t.Fatalf("ApplyFileConfig: %v", err)
	}
	if cfg.BaseURL != "https://file.example.com" {
		t.Errorf("BaseURL = %s", cfg.BaseURL)
	}
	if cfg.AuthToken != "file-token" {
		t.Errorf("AuthToken = %s", cfg.AuthToken)
	}
	if cfg.Timeout != 10*time.Second {
		t.Errorf("Timeout = %v", cfg.Timeout)
	}
	if cfg.MaxRetries != 5 {
		t.Errorf("MaxRetries = %d", cfg.MaxRetries)
	}
	if cfg.StoreBackend != StoreSQLite {
		t.Errorf("StoreBackend = %s", cfg.StoreBackend)
	}
	if cfg.SyncInterval != time.Minute {
		t.Errorf("SyncInterval = %v", cfg.SyncInterval)
	}
	if !cfg.Verbose {
		t.Error("Verbose not applied")
	}
}

func TestFileLosesToChangedFlags(t *testing.T) {
	path := writeConfig(t, `base_url = "https://file.example.com"`)

	fc, err := LoadFileConfig(path)
	if err != nil {
		t.Fatal(err)
	}
	cfg := DefaultConfig()
	cfg.BaseURL = "https://flag.example.com"
	if err := ApplyFileConfig(&cfg, fc, map[string]bool{"base-url": true}); err != nil {
		t.Fatal(err)
	}
	if cfg.BaseURL != "https://flag.example.com" {
		t.Errorf("BaseURL = %s, want flag value kept", cfg.BaseURL)
	}
}

func TestLoadFileConfigBadTOML(t *testing.T) {
	path := writeConfig(t, `base_url = [not toml`)
	if _, err := LoadFileConfig(path); err == nil {
		t.Error("expected parse error")
	}
}

func TestLoadFileConfigBadDuration(t *testing.T) {
	path := writeConfig(t, `timeout = "soon"`)
	fc, err := LoadFileConfig(path)
	if err != nil {
		t.Fatal(err)
	}
	cfg := DefaultConfig()
	if err := ApplyFileConfig(&cfg, fc, nil); err == nil {
		t.Error("expected duration parse error")
	}
}

func TestFileExists(t *testing.T) {
	path := writeConfig(t, ``)
	if !FileExists(path) {
		t.Error("FileExists = false for existing file")
	}
	if FileExists(filepath.Join(t.TempDir(), "nope.toml")) {
		t.Error("FileExists = true for missing file")
	}
}
