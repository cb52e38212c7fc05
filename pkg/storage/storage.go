// Package storage persists opaque binary attachments by path. The attendance
// evidence flow writes blobs here before committing the database transaction
// and deletes them again when that transaction rolls back.
package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/BheemChand1/attendance-backend/prometheus"
)

// Store is the attachment persistence boundary.
type Store interface {
	// Save writes data at path, creating parent directories as needed.
	Save(path string, data []byte) error
	// Delete removes the blob at path. Deleting a missing blob is not an error.
	Delete(path string) error
}

// LocalStore keeps blobs on the local filesystem under a base directory.
type LocalStore struct {
	baseDir string
}

// NewLocalStore creates a LocalStore rooted at baseDir.
func NewLocalStore(baseDir string) (*LocalStore, error) {
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create storage directory: %w", err)
	}
	return &LocalStore{baseDir: baseDir}, nil
}

func (s *LocalStore) Save(path string, data []byte) error {
	defer prometheus.TrackStorageOperation("save")(time.Now())

	full := filepath.Join(s.baseDir, filepath.FromSlash(path))
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return fmt.Errorf("failed to create directory for %s: %w", path, err)
	}
	if err := os.WriteFile(full, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

func (s *LocalStore) Delete(path string) error {
	defer prometheus.TrackStorageOperation("delete")(time.Now())

	full := filepath.Join(s.baseDir, filepath.FromSlash(path))
	if err := os.Remove(full); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete %s: %w", path, err)
	}
	return nil
}
