// Package memory provides an in-memory snapshot backend used for tests and
// ephemeral environments.
package memory

import (
	"context"
	"sync"

	"zookeeper/pkg/domain"
)

// Compile-time contract assertion ensuring memory.Store adheres to the domain persistence interface.
var _ domain.SnapshotStore = (*Store)(nil)

// Store keeps the last saved snapshot in process memory.
type Store struct {
	mu       sync.RWMutex
	snapshot domain.Snapshot
	saves    int
}

// NewStore constructs a memory backend preloaded with the supplied animals.
func NewStore(animals ...domain.Animal) *Store {
	return &Store{snapshot: domain.Snapshot{Animals: domain.CloneAnimals(animals)}}
}

// Load returns a clone of the last saved snapshot.
func (s *Store) Load(_ context.Context) (domain.Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshot.Clone(), nil
}

// Save replaces the held snapshot with a clone of the supplied one.
func (s *Store) Save(_ context.Context, snapshot domain.Snapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snapshot = snapshot.Clone()
	s.saves++
	return nil
}

// Saves reports how many times Save has succeeded.
func (s *Store) Saves() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.saves
}

// Close is a no-op.
func (s *Store) Close() error { return nil }
