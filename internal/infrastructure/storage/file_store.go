package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/jakobng/showtimes/internal/domain"
	"github.com/jakobng/showtimes/internal/ports"
)

// FileStore persists the run dataset as one JSON document, replacing the
// previous run's file wholesale via temp file + rename.
type FileStore struct {
	path string
}

var _ ports.DatasetStore = (*FileStore)(nil)

// NewFileStore targets the given file path.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// ReplaceDataset writes the dataset atomically.
func (s *FileStore) ReplaceDataset(_ context.Context, ds domain.Dataset) error {
	raw, err := json.MarshalIndent(ds, "", "  ")
	if err != nil {
		return fmt.Errorf("encode dataset: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".dataset-*")
	if err != nil {
		return fmt.Errorf("create temp dataset: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write temp dataset: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close temp dataset: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("replace dataset %s: %w", s.path, err)
	}
	return nil
}
