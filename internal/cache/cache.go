package cache

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/jakobng/showtimes/internal/domain"
)

// Store is the persistent title→metadata cache shared by all enrichment
// lookups within and across runs. Entries are replaced whole; two writers
// racing on the same key leave one complete entry, never a blend.
type Store struct {
	mu      sync.RWMutex
	path    string
	entries map[string]domain.CacheEntry
	dirty   bool
}

// NewStore builds an empty store backed by the given file path.
func NewStore(path string) *Store {
	return &Store{
		path:    path,
		entries: make(map[string]domain.CacheEntry),
	}
}

// Load reads the cache file. A missing file is not an error; a corrupt or
// unreadable one is, and the caller degrades to an empty in-memory cache.
func (s *Store) Load() error {
	raw, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("read cache %s: %w", s.path, err)
	}

	entries := make(map[string]domain.CacheEntry)
	if err := json.Unmarshal(raw, &entries); err != nil {
		return fmt.Errorf("parse cache %s: %w", s.path, err)
	}

	s.mu.Lock()
	s.entries = entries
	s.dirty = false
	s.mu.Unlock()
	return nil
}

// Get returns the entry for key. The second return reports whether the key
// has been resolved before, positively or negatively.
func (s *Store) Get(key string) (domain.CacheEntry, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.entries[key]
	return e, ok
}

// Put records the lookup outcome for key, replacing any prior entry.
func (s *Store) Put(key string, e domain.CacheEntry) {
	if key == "" {
		return
	}
	s.mu.Lock()
	s.entries[key] = e
	s.dirty = true
	s.mu.Unlock()
}

// DropNegatives removes every "no match" marker so those titles get retried
// this run. Positive entries are never dropped. Returns how many were
// removed.
func (s *Store) DropNegatives() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	dropped := 0
	for key, e := range s.entries {
		if !e.Found {
			delete(s.entries, key)
			dropped++
		}
	}
	if dropped > 0 {
		s.dirty = true
	}
	return dropped
}

// Len reports the number of cached entries.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// Save persists the cache atomically (temp file + rename). A clean store is
// not rewritten.
func (s *Store) Save() error {
	s.mu.RLock()
	if !s.dirty {
		s.mu.RUnlock()
		return nil
	}
	raw, err := json.MarshalIndent(s.entries, "", "  ")
	s.mu.RUnlock()
	if err != nil {
		return fmt.Errorf("encode cache: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create cache dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".cache-*")
	if err != nil {
		return fmt.Errorf("create temp cache: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write temp cache: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close temp cache: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("replace cache %s: %w", s.path, err)
	}

	s.mu.Lock()
	s.dirty = false
	s.mu.Unlock()
	return nil
}
