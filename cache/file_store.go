// ABOUTME: JSON flat-file Store: a single map from request key to response.
// ABOUTME: Put rewrites the whole file so every miss is durable before the call returns.
package cache

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// FileStore persists the cache as one JSON object in a single file. The file
// is rewritten on every Put; with one writer per process this keeps the
// on-disk state consistent without a journal.
type FileStore struct {
	mu   sync.Mutex
	path string
}

// NewFileStore creates a store backed by the JSON file at path. The file is
// created lazily on first Put.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Load reads the full entry map. A missing file is an empty cache, not an error.
func (s *FileStore) Load() (map[string]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return make(map[string]string), nil
	}
	if err != nil {
		return nil, fmt.Errorf("read cache file: %w", err)
	}

	entries := make(map[string]string)
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("parse cache file %s: %w", s.path, err)
	}
	return entries, nil
}

// Put merges the entry into the file's current contents and rewrites it.
// Entries written by a concurrent process since our Load are preserved.
func (s *FileStore) Put(key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries := make(map[string]string)
	if data, err := os.ReadFile(s.path); err == nil {
		// Unreadable existing content is dropped, matching load-time behavior.
		_ = json.Unmarshal(data, &entries)
	}
	entries[key] = value

	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return fmt.Errorf("encode cache: %w", err)
	}
	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create cache dir: %w", err)
		}
	}
	if err := os.WriteFile(s.path, data, 0o644); err != nil {
		return fmt.Errorf("write cache file: %w", err)
	}
	return nil
}
