package kv

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func testStore(t *testing.T, s Store) {
	t.Helper()

	if _, err := s.Get("missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Get(missing) error = %v, want ErrNotFound", err)
	}

	if err := s.Set("a", []byte("one")); err != nil {
		t.Fatalf("Set: %v", err)
	}
	got, err := s.Get("a")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if string(got) != "one" {
		t.Errorf("Get(a) = %q, want %q", got, "one")
	}

	if err := s.Set("a", []byte("two")); err != nil {
		t.Fatalf("overwrite: %v", err)
	}
	got, _ = s.Get("a")
	if string(got) != "two" {
		t.Errorf("Get(a) after overwrite = %q, want %q", got, "two")
	}

	if err := s.Delete("a"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := s.Get("a"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get after delete error = %v, want ErrNotFound", err)
	}
	if err := s.Delete("a"); err != nil {
		t.Errorf("Delete of absent key: %v", err)
	}
}

func TestMemoryStore(t *testing.T) {
	testStore(t, NewMemory())
}

func TestFileStore(t *testing.T) {
	testStore(t, NewFileStore(t.TempDir()))
}

func TestSQLiteStore(t *testing.T) {
	s, err := OpenSQLite(filepath.Join(t.TempDir(), "kv.db"))
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	defer s.Close()
	testStore(t, s)
}

func TestFileStoreSanitizesKeys(t *testing.T) {
	dir := t.TempDir()
	s := NewFileStore(dir)
	if err := s.Set("guardsync/offline queue", []byte("x")); err != nil {
		t.Fatalf("Set: %v", err)
	}
	want := filepath.Join(dir, "guardsync_offline_queue.json")
	if s.Path("guardsync/offline queue") != want {
		t.Errorf("Path = %s, want %s", s.Path("guardsync/offline queue"), want)
	}
	if _, err := os.Stat(want); err != nil {
		t.Errorf("backing file missing: %v", err)
	}
}

func TestFileStoreSurvivesReopen(t *testing.T) {
	dir := t.TempDir()
	if err := NewFileStore(dir).Set("k", []byte("persisted")); err != nil {
		t.Fatalf("Set: %v", err)
	}
	got, err := NewFileStore(dir).Get("k")
	if err != nil {
		t.Fatalf("Get after reopen: %v", err)
	}
	if string(got) != "persisted" {
		t.Errorf("Get = %q, want %q", got, "persisted")
	}
}
