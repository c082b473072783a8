// Package bolt persists the animal collection to a BoltDB file.
package bolt

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	bolt "go.etcd.io/bbolt"

	"zookeeper/pkg/domain"
)

var _ domain.SnapshotStore = (*Store)(nil)

var (
	animalsBucket = []byte("animals")
	snapshotKey   = []byte("snapshot")
)

// Store keeps the JSON-encoded collection under a single key. Save recreates
// the bucket so the stored value always reflects the given snapshot exactly.
type Store struct {
	db   *bolt.DB
	path string
}

// Open opens (or creates) the bolt file at path.
func Open(path string) (*Store, error) {
	if path == "" {
		path = "zookeeper.bolt"
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create dirs: %w", err)
	}
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: 2 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("open bolt: %w", err)
	}
	return &Store{db: db, path: path}, nil
}

// Load decodes the stored snapshot; a missing bucket yields an empty one.
func (s *Store) Load(_ context.Context) (domain.Snapshot, error) {
	animals := []domain.Animal{}
	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(animalsBucket)
		if b == nil {
			return nil
		}
		v := b.Get(snapshotKey)
		if len(v) == 0 {
			return nil
		}
		return json.Unmarshal(v, &animals)
	})
	if err != nil {
		return domain.Snapshot{}, fmt.Errorf("load animals: %w", err)
	}
	if animals == nil {
		animals = []domain.Animal{}
	}
	return domain.Snapshot{Animals: animals}, nil
}

// Save rewrites the snapshot in a single bolt transaction.
func (s *Store) Save(_ context.Context, snapshot domain.Snapshot) error {
	animals := snapshot.Animals
	if animals == nil {
		animals = []domain.Animal{}
	}
	enc, err := json.Marshal(animals)
	if err != nil {
		return fmt.Errorf("encode animals: %w", err)
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		if tx.Bucket(animalsBucket) != nil {
			if err := tx.DeleteBucket(animalsBucket); err != nil {
				return err
			}
		}
		b, err := tx.CreateBucket(animalsBucket)
		if err != nil {
			return err
		}
		return b.Put(snapshotKey, enc)
	})
}

// Close releases the file lock.
func (s *Store) Close() error { return s.db.Close() }

// Path returns the configured bolt file path.
func (s *Store) Path() string { return s.path }
