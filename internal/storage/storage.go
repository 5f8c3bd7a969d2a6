// ABOUTME: Durable key-value storage for client state such as the session token
// ABOUTME: Persists a small JSON document in the XDG config directory

package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// FileName is the name of the JSON document inside the config directory
const FileName = "session.json"

// Store is a string key-value store that survives process restarts
type Store interface {
	Get(key string) (string, bool, error)
	Set(key, value string) error
	Delete(key string) error
}

// PersistenceError reports a failed durable read, write or erase
type PersistenceError struct {
	Op  string
	Key string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("storage %s %q: %v", e.Op, e.Key, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}

// DefaultConfigDir returns the default config directory following XDG base directory conventions
func DefaultConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "examctl")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "examctl")
}

// File keeps entries in a single JSON file
type File struct {
	configDir string
	mu        sync.Mutex
}

// NewFile creates a file-backed store rooted at configDir
func NewFile(configDir string) *File {
	return &File{configDir: configDir}
}

// Path returns the location of the backing file
func (f *File) Path() string {
	return filepath.Join(f.configDir, FileName)
}

// Get returns the value for key. A missing file or entry is not an error.
func (f *File) Get(key string) (string, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	entries, err := f.load()
	if err != nil {
		return "", false, &PersistenceError{Op: "read", Key: key, Err: err}
	}
	value, ok := entries[key]
	return value, ok, nil
}

// Set writes value under key
func (f *File) Set(key, value string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	entries, err := f.load()
	if err != nil {
		// Corrupt documents are replaced rather than blocking the write
		entries = map[string]string{}
	}
	entries[key] = value
	if err := f.save(entries); err != nil {
		return &PersistenceError{Op: "write", Key: key, Err: err}
	}
	return nil
}

// Delete erases key. Deleting a missing key is a no-op.
func (f *File) Delete(key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	entries, err := f.load()
	if err != nil {
		entries = map[string]string{}
	}
	if _, ok := entries[key]; !ok && err == nil {
		return nil
	}
	delete(entries, key)

	if len(entries) == 0 {
		if err := os.Remove(f.Path()); err != nil && !errors.Is(err, os.ErrNotExist) {
			return &PersistenceError{Op: "erase", Key: key, Err: err}
		}
		return nil
	}
	if err := f.save(entries); err != nil {
		return &PersistenceError{Op: "erase", Key: key, Err: err}
	}
	return nil
}

func (f *File) load() (map[string]string, error) {
	data, err := os.ReadFile(f.Path())
	if errors.Is(err, os.ErrNotExist) {
		return map[string]string{}, nil
	}
	if err != nil {
		return nil, err
	}

	entries := map[string]string{}
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("invalid %s: %w", FileName, err)
	}
	return entries, nil
}

func (f *File) save(entries map[string]string) error {
	if err := os.MkdirAll(f.configDir, 0700); err != nil {
		return err
	}

	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return err
	}

	// Write to a temp file and rename so a crash never leaves a torn document
	tmp, err := os.CreateTemp(f.configDir, FileName+".*")
	if err != nil {
		return err
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Chmod(0600); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), f.Path())
}

// Memory is an in-process store, used when no config directory is available
type Memory struct {
	mu      sync.Mutex
	entries map[string]string
}

// NewMemory creates an empty in-memory store
func NewMemory() *Memory {
	return &Memory{entries: map[string]string{}}
}

func (m *Memory) Get(key string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	value, ok := m.entries[key]
	return value, ok, nil
}

func (m *Memory) Set(key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[key] = value
	return nil
}

func (m *Memory) Delete(key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries, key)
	return nil
}
