package local

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/felixgeelhaar/learnhub/internal/storage"
)

// Store keeps one JSON file per key. Prefixed keys ("ns/key") become
// subdirectories.
type Store struct {
	basePath string
	mu       sync.RWMutex
}

var _ storage.Store = (*Store)(nil)

// NewStore creates a new local JSON store
func NewStore(basePath string) (*Store, error) {
	if err := os.MkdirAll(basePath, 0755); err != nil {
		return nil, fmt.Errorf("create store directory: %w", err)
	}
	return &Store{basePath: basePath}, nil
}

// BasePath returns the store directory
func (s *Store) BasePath() string {
	return s.basePath
}

func (s *Store) path(key string) (string, error) {
	rel := filepath.FromSlash(key) + ".json"
	if key == "" || !filepath.IsLocal(rel) || strings.ContainsRune(key, '\\') {
		return "", fmt.Errorf("invalid key %q", key)
	}
	return filepath.Join(s.basePath, rel), nil
}

// Get implements storage.Store
func (s *Store) Get(ctx context.Context, key string) (json.RawMessage, error) {
	path, err := s.path(key)
	if err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("read file: %w", err)
	}
	return bytes.TrimSpace(data), nil
}

// Set implements storage.Store. Values are written indented through a
// temp file and renamed into place.
func (s *Store) Set(ctx context.Context, key string, value json.RawMessage) error {
	path, err := s.path(key)
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	if err := json.Indent(&buf, value, "", "  "); err != nil {
		return fmt.Errorf("encode json: %w", err)
	}
	buf.WriteByte('\n')

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create collection directory: %w", err)
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("write file: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("rename file: %w", err)
	}
	return nil
}

// Remove implements storage.Store
func (s *Store) Remove(ctx context.Context, key string) error {
	path, err := s.path(key)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove file: %w", err)
	}
	return nil
}

// List returns the keys stored under a namespace ("" for the root)
func (s *Store) List(namespace string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	dir := filepath.Join(s.basePath, filepath.FromSlash(namespace))
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return []string{}, nil
		}
		return nil, fmt.Errorf("read directory: %w", err)
	}

	var keys []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if filepath.Ext(name) == ".json" {
			keys = append(keys, strings.TrimSuffix(name, ".json"))
		}
	}
	return keys, nil
}
