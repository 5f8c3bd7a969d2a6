// ABOUTME: Tests for durable key-value storage
// ABOUTME: Validates XDG config dir, round-trips, erase and corrupt-file handling

package storage

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultConfigDir_XDG(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/tmp/xdg")

	if got := DefaultConfigDir(); got != filepath.Join("/tmp/xdg", "examctl") {
		t.Errorf("expected XDG path, got %s", got)
	}
}

func TestFileGetMissing(t *testing.T) {
	f := NewFile(t.TempDir())

	value, ok, err := f.Get("token")
	if err != nil {
		t.Fatalf("Get() error: %v", err)
	}
	if ok || value != "" {
		t.Errorf("expected no entry, got %q", value)
	}
}

func TestFileSetSurvivesNewInstance(t *testing.T) {
	dir := t.TempDir()
	if err := NewFile(dir).Set("token", "tok123"); err != nil {
		t.Fatalf("Set() error: %v", err)
	}

	value, ok, err := NewFile(dir).Get("token")
	if err != nil {
		t.Fatalf("Get() error: %v", err)
	}
	if !ok || value != "tok123" {
		t.Errorf("expected tok123, got %q (present=%v)", value, ok)
	}
}

func TestFilePermissions(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested")
	f := NewFile(dir)
	if err := f.Set("token", "secret"); err != nil {
		t.Fatalf("Set() error: %v", err)
	}

	info, err := os.Stat(f.Path())
	if err != nil {
		t.Fatalf("Stat() error: %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0600 {
		t.Errorf("expected mode 0600, got %o", perm)
	}
}

func TestFileDeleteRemovesEntry(t *testing.T) {
	f := NewFile(t.TempDir())
	f.Set("token", "tok123")

	if err := f.Delete("token"); err != nil {
		t.Fatalf("Delete() error: %v", err)
	}
	if _, ok, _ := f.Get("token"); ok {
		t.Error("expected entry to be gone")
	}
	if _, err := os.Stat(f.Path()); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("expected empty document to be removed, stat err = %v", err)
	}
}

func TestFileDeleteKeepsOtherEntries(t *testing.T) {
	f := NewFile(t.TempDir())
	f.Set("token", "tok123")
	f.Set("other", "value")

	if err := f.Delete("token"); err != nil {
		t.Fatalf("Delete() error: %v", err)
	}
	if value, ok, _ := f.Get("other"); !ok || value != "value" {
		t.Errorf("expected other entry to survive, got %q", value)
	}
}

func TestFileDeleteMissingIsNoop(t *testing.T) {
	f := NewFile(t.TempDir())

	if err := f.Delete("token"); err != nil {
		t.Errorf("expected no error deleting missing key, got %v", err)
	}
	if err := f.Delete("token"); err != nil {
		t.Errorf("expected second delete to be a no-op, got %v", err)
	}
}

func TestFileCorruptDocument(t *testing.T) {
	dir := t.TempDir()
	f := NewFile(dir)
	os.WriteFile(f.Path(), []byte("{not json"), 0600)

	_, _, err := f.Get("token")
	var perr *PersistenceError
	if !errors.As(err, &perr) {
		t.Fatalf("expected PersistenceError, got %v", err)
	}
	if perr.Op != "read" {
		t.Errorf("expected read op, got %s", perr.Op)
	}

	// A write replaces the corrupt document
	if err := f.Set("token", "fresh"); err != nil {
		t.Fatalf("Set() error: %v", err)
	}
	if value, _, _ := f.Get("token"); value != "fresh" {
		t.Errorf("expected fresh, got %q", value)
	}
}

func TestFileSetUnwritableDir(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "file")
	os.WriteFile(blocker, []byte("x"), 0600)

	// configDir is a regular file, so MkdirAll fails
	f := NewFile(blocker)
	err := f.Set("token", "tok")
	var perr *PersistenceError
	if !errors.As(err, &perr) || perr.Op != "write" {
		t.Errorf("expected write PersistenceError, got %v", err)
	}
}

func TestMemory(t *testing.T) {
	m := NewMemory()
	m.Set("token", "tok")

	if value, ok, _ := m.Get("token"); !ok || value != "tok" {
		t.Errorf("expected tok, got %q", value)
	}
	m.Delete("token")
	if _, ok, _ := m.Get("token"); ok {
		t.Error("expected entry to be deleted")
	}
}
