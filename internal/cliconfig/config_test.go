package cliconfig

import (
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.Timeout != 30*time.Second {
		t.Errorf("Timeout = %v", cfg.Timeout)
	}
	if cfg.MaxRetries != 3 {
		t.Errorf("MaxRetries = %d", cfg.MaxRetries)
	}
	if cfg.StoreBackend != StoreFile {
		t.Errorf("StoreBackend = %s", cfg.StoreBackend)
	}
}

func TestValidate(t *testing.T) {
	valid := DefaultConfig()
	valid.BaseURL = "https://registry.example.com"
	if err := valid.Validate(); err != nil {
		t.Fatalf("valid config rejected: %v", err)
	}

	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"missing base-url", func(c *Config) { c.BaseURL = "" }},
		{"unknown store", func(c *Config) { c.StoreBackend = "redis" }},
		{"zero timeout", func(c *Config) { c.Timeout = 0 }},
		{"zero max-retries", func(c *Config) { c.MaxRetries = 0 }},
		{"zero sync-interval", func(c *Config) { c.SyncInterval = 0 }},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			cfg := valid
			c.mutate(&cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestApplyEnvConfig(t *testing.T) {
	t.Setenv("GUARDSYNC_BASE_URL", "https://env.example.com")
	t.Setenv("GUARDSYNC_TIMEOUT", "5s")
	t.Setenv("GUARDSYNC_STORE", "sqlite")

	cfg := DefaultConfig()
	if err := ApplyEnvConfig(&cfg, nil); err != nil {
		t.Fatalf("ApplyEnvConfig: %v", err)
	}
	if cfg.BaseURL != "https://env.example.com" {
		t.Errorf("BaseURL = %s", cfg.BaseURL)
	}
	if cfg.Timeout != 5*time.Second {
		t.Errorf("Timeout = %v", cfg.Timeout)
	}
	if cfg.StoreBackend != StoreSQLite {
		t.Errorf("StoreBackend = %s", cfg.StoreBackend)
	}
}

func TestEnvLosesToChangedFlags(t *testing.T) {
	t.Setenv("GUARDSYNC_BASE_URL", "https://env.example.com")

	cfg := DefaultConfig()
	cfg.BaseURL = "https://flag.example.com"
	changed := map[string]bool{"base-url": true}
	if err := ApplyEnvConfig(&cfg, changed); err != nil {
		t.Fatalf("ApplyEnvConfig: %v", err)
	}
	if cfg.BaseURL != "https://flag.example.com" {
		t.Errorf("BaseURL = %s, want flag value kept", cfg.BaseURL)
	}
}
