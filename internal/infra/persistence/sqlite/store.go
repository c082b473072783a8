// Package sqlite persists the animal collection to an embedded SQLite file.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"zookeeper/pkg/domain"

	_ "modernc.org/sqlite" // pure go sqlite driver
)

var _ domain.SnapshotStore = (*Store)(nil)

const animalsBucket = "animals"

// Store keeps the full collection as a JSON blob in a single-row bucket of the
// state table. Every save rewrites the row inside one transaction.
type Store struct {
	db   *sql.DB
	mu   sync.Mutex
	path string
}

// NewStore opens (or creates) the SQLite file at path.
func NewStore(path string) (*Store, error) {
	if path == "" {
		path = "zookeeper.db"
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil && !errors.Is(err, os.ErrExist) {
		return nil, fmt.Errorf("create dirs: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS state (
		bucket TEXT PRIMARY KEY,
		payload BLOB NOT NULL
	)`); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create state table: %w", err)
	}
	return &Store{db: db, path: path}, nil
}

// Load reads the animals bucket. An absent row yields an empty snapshot.
func (s *Store) Load(ctx context.Context) (domain.Snapshot, error) {
	var payload []byte
	err := s.db.QueryRowContext(ctx, `SELECT payload FROM state WHERE bucket = ?`, animalsBucket).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Snapshot{Animals: []domain.Animal{}}, nil
	}
	if err != nil {
		return domain.Snapshot{}, fmt.Errorf("select state: %w", err)
	}
	var animals []domain.Animal
	if err := json.Unmarshal(payload, &animals); err != nil {
		return domain.Snapshot{}, fmt.Errorf("decode animals: %w", err)
	}
	if animals == nil {
		animals = []domain.Animal{}
	}
	return domain.Snapshot{Animals: animals}, nil
}

// Save upserts the whole collection.
func (s *Store) Save(ctx context.Context, snapshot domain.Snapshot) (retErr error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	animals := snapshot.Animals
	if animals == nil {
		animals = []domain.Animal{}
	}
	data, err := json.Marshal(animals)
	if err != nil {
		return fmt.Errorf("encode animals: %w", err)
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if retErr != nil {
			_ = tx.Rollback()
		}
	}()
	if _, err = tx.ExecContext(ctx, `INSERT INTO state(bucket,payload) VALUES(?,?) ON CONFLICT(bucket) DO UPDATE SET payload=excluded.payload`, animalsBucket, data); err != nil {
		return fmt.Errorf("upsert %s: %w", animalsBucket, err)
	}
	return tx.Commit()
}

// Close releases the database handle.
func (s *Store) Close() error { return s.db.Close() }

// DB exposes the underlying sql.DB for integration testing hooks.
func (s *Store) DB() *sql.DB { return s.db }

// Path returns the configured database path.
func (s *Store) Path() string { return s.path }
