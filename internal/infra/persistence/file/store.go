// Package file persists the animal collection as an indented JSON document on
// the local filesystem.
package file

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"zookeeper/pkg/domain"
)

var _ domain.SnapshotStore = (*Store)(nil)

const (
	defaultPath  = "data/animals.json"
	documentPerm = 0o644
)

// Store reads and rewrites a single JSON document of the form
// {"animals": [...]}. Writes go to a temp file in the same directory and are
// renamed into place so a failed write never truncates the previous document.
type Store struct {
	mu   sync.Mutex
	path string
}

// New returns a file-backed store for path, creating parent directories.
func New(path string) (*Store, error) {
	if path == "" {
		path = defaultPath
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create dirs: %w", err)
	}
	return &Store{path: path}, nil
}

// Path returns the configured document path.
func (s *Store) Path() string { return s.path }

// Load decodes the document. A missing file yields an empty snapshot.
func (s *Store) Load(_ context.Context) (domain.Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return domain.Snapshot{Animals: []domain.Animal{}}, nil
	}
	if err != nil {
		return domain.Snapshot{}, fmt.Errorf("read %s: %w", s.path, err)
	}
	return Decode(data)
}

// Save rewrites the whole document atomically.
func (s *Store) Save(_ context.Context, snapshot domain.Snapshot) error {
	data, err := Encode(snapshot)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".animals-*.tmp")
	if err != nil {
		return err
	}
	defer func() { _ = os.Remove(tmp.Name()) }()
	if err := tmp.Chmod(s.documentMode()); err != nil {
		_ = tmp.Close()
		return err
	}
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), s.path)
}

// documentMode keeps the permissions of an existing document; new documents
// are created 0644.
func (s *Store) documentMode() fs.FileMode {
	if info, err := os.Stat(s.path); err == nil {
		return info.Mode().Perm()
	}
	return documentPerm
}

// Close is a no-op; the file is not held open between operations.
func (s *Store) Close() error { return nil }

// Encode renders the snapshot as the human-readable persisted form: two-space
// indentation, struct key order, trailing newline.
func Encode(snapshot domain.Snapshot) ([]byte, error) {
	if snapshot.Animals == nil {
		snapshot.Animals = []domain.Animal{}
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(snapshot); err != nil {
		return nil, fmt.Errorf("encode animals: %w", err)
	}
	return buf.Bytes(), nil
}

// Decode parses a persisted document.
func Decode(data []byte) (domain.Snapshot, error) {
	var snapshot domain.Snapshot
	if err := json.Unmarshal(data, &snapshot); err != nil {
		return domain.Snapshot{}, fmt.Errorf("decode animals: %w", err)
	}
	if snapshot.Animals == nil {
		snapshot.Animals = []domain.Animal{}
	}
	return snapshot, nil
}
