package domain

import "context"

// Snapshot is the persisted document: the full ordered animal collection
// under a single field.
type Snapshot struct {
	Animals []Animal `json:"animals" yaml:"animals"`
}

// Clone returns a deep copy of the snapshot.
func (s Snapshot) Clone() Snapshot {
	return Snapshot{Animals: CloneAnimals(s.Animals)}
}

// SnapshotStore is the durable backend behind the in-memory collection. Save
// always receives the entire collection and must either persist all of it or
// return an error.
type SnapshotStore interface {
	Load(ctx context.Context) (Snapshot, error)
	Save(ctx context.Context, snapshot Snapshot) error
	Close() error
}
