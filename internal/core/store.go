package core

import (
	"context"
	"fmt"
	"strconv"
	"sync"

	"zookeeper/pkg/domain"
)

// Store owns the authoritative in-memory animal collection and keeps it in
// sync with a SnapshotStore backend. Appends are serialized and commit to
// memory only after the backend confirmed the write.
type Store struct {
	mu      sync.RWMutex
	animals []domain.Animal
	nextID  uint64
	backend domain.SnapshotStore
}

// OpenStore bulk-loads the backend's snapshot. Loaded records are not
// re-validated.
func OpenStore(ctx context.Context, backend domain.SnapshotStore) (*Store, error) {
	if backend == nil {
		return nil, fmt.Errorf("snapshot store cannot be nil")
	}
	snapshot, err := backend.Load(ctx)
	if err != nil {
		return nil, &domain.PersistenceError{Op: "load", Err: err}
	}
	animals := snapshot.Animals
	if animals == nil {
		animals = []domain.Animal{}
	}
	return &Store{
		animals: animals,
		nextID:  initialID(animals),
		backend: backend,
	}, nil
}

// initialID picks the first id to hand out: the collection length, bumped
// past the highest numeric id already present so ids are never reissued.
func initialID(animals []domain.Animal) uint64 {
	next := uint64(len(animals))
	for _, a := range animals {
		n, err := strconv.ParseUint(a.ID, 10, 64)
		if err == nil && n >= next {
			next = n + 1
		}
	}
	return next
}

// Backend returns the persistence backend.
func (s *Store) Backend() domain.SnapshotStore { return s.backend }

// Len returns the number of animals held.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.animals)
}

// NextID reports the id the next append will receive.
func (s *Store) NextID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return strconv.FormatUint(s.nextID, 10)
}

// List returns a copy of the whole collection in insertion order.
func (s *Store) List() []domain.Animal {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return domain.CloneAnimals(s.animals)
}

// Query applies the filter engine to the current collection.
func (s *Store) Query(criteria domain.Criteria) []domain.Animal {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return domain.CloneAnimals(domain.Filter(criteria, s.animals))
}

// FindByID returns the first animal with the given id.
func (s *Store) FindByID(id string) (domain.Animal, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := domain.FindByID(id, s.animals)
	if !ok {
		return domain.Animal{}, false
	}
	return a.Clone(), true
}

// Append assigns the next id, persists the full staged collection and only
// then commits it to memory. On a persistence failure the collection and the
// id counter are left unchanged.
func (s *Store) Append(ctx context.Context, candidate domain.NewAnimal) (domain.Animal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	animal := candidate.WithID(strconv.FormatUint(s.nextID, 10))
	staged := make([]domain.Animal, len(s.animals), len(s.animals)+1)
	copy(staged, s.animals)
	staged = append(staged, animal)

	if err := s.backend.Save(ctx, domain.Snapshot{Animals: staged}); err != nil {
		return domain.Animal{}, &domain.PersistenceError{Op: "append", Err: err}
	}
	s.animals = staged
	s.nextID++
	return animal.Clone(), nil
}

// Close releases the backend.
func (s *Store) Close() error {
	return s.backend.Close()
}
