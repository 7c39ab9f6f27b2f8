// Package prefs is a best-effort key/value preference store backed by a JSON
// file. Every failure is tolerated silently: preferences are a convenience,
// never a dependency.
package prefs

import (
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
)

// Store reads and writes preferences under a single JSON file.
type Store struct {
	mu     sync.Mutex
	path   string
	logger *slog.Logger
}

// New creates a store at path. An empty path resolves to
// <user config dir>/inventory-app/prefs.json; when even that fails the store
// degrades to a no-op.
func New(path string, logger *slog.Logger) *Store {
	if path == "" {
		if dir, err := os.UserConfigDir(); err == nil {
			path = filepath.Join(dir, "inventory-app", "prefs.json")
		}
	}
	return &Store{path: path, logger: logger.With("component", "prefs")}
}

// Get returns the stored value for key, or "" when absent or unreadable.
func (s *Store) Get(key string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load()[key]
}

// Set stores a value for key. Failures are logged at debug level only.
func (s *Store) Set(key, value string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	m := s.load()
	m[key] = value
	s.save(m)
}

func (s *Store) load() map[string]string {
	m := make(map[string]string)
	if s.path == "" {
		return m
	}
	raw, err := os.ReadFile(s.path)
	if err != nil {
		if !os.IsNotExist(err) {
			s.logger.Debug("preference read failed", "path", s.path, "error", err)
		}
		return m
	}
	if err := json.Unmarshal(raw, &m); err != nil {
		s.logger.Debug("preference file corrupt, starting over", "path", s.path, "error", err)
		return make(map[string]string)
	}
	return m
}

func (s *Store) save(m map[string]string) {
	if s.path == "" {
		return
	}
	raw, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		s.logger.Debug("preference encode failed", "error", err)
		return
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		s.logger.Debug("preference dir create failed", "path", s.path, "error", err)
		return
	}
	if err := os.WriteFile(s.path, raw, 0o644); err != nil {
		s.logger.Debug("preference write failed", "path", s.path, "error", err)
	}
}
