package cliconfig

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestWatcherReloadsOnChange(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	if err := os.WriteFile(path, []byte(`auth_token = "old"`), 0o600); err != nil {
		t.Fatal(err)
	}

	reloaded := make(chan FileConfig, 1)
	w := NewWatcher(path, func(fc FileConfig) {
		select {
		case reloaded <- fc:
		default:
		}
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go w.Run(ctx)

	// Give the watcher time to install before the write.
	time.Sleep(100 * time.Millisecond)
	if err := os.WriteFile(path, []byte(`auth_token = "rotated"`), 0o600); err != nil {
		t.Fatal(err)
	}

	select {
	case fc := <-reloaded:
		if fc.AuthToken != "rotated" {
			t.Errorf("AuthToken = %q, want rotated", fc.AuthToken)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("reload not observed")
	}
}

func TestWatcherIgnoresOtherFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	if err := os.WriteFile(path, []byte(``), 0o600); err != nil {
		t.Fatal(err)
	}

	reloaded := make(chan FileConfig, 1)
	w := NewWatcher(path, func(fc FileConfig) { reloaded <- fc })

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go w.Run(ctx)

	time.Sleep(100 * time.Millisecond)
	if err := os.WriteFile(filepath.Join(dir, "other.toml"), []byte(`x = 1`), 0o600); err != nil {
		t.Fatal(err)
	}

	select {
	case <-reloaded:
		t.Fatal("reload fired for unrelated file")
	case <-time.After(500 * time.Millisecond):
	}
}
