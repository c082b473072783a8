package bolt

import (
	"context"
	"path/filepath"
	"testing"

	"zookeeper/pkg/domain"
)

func TestBoltStorePersistAndReload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "zk", "animals.bolt")
	store, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	ctx := context.Background()
	snap, err := store.Load(ctx)
	if err != nil {
		t.Fatalf("Load empty: %v", err)
	}
	if snap.Animals == nil || len(snap.Animals) != 0 {
		t.Fatalf("expected empty non-nil collection, got %#v", snap.Animals)
	}
	animals := []domain.Animal{
		{ID: "0", Name: "Erica", Species: "gorilla", Diet: "omnivore", PersonalityTraits: []string{"quirky"}},
		{ID: "1", Name: "Max", Species: "bear", Diet: "omnivore", PersonalityTraits: []string{"rash"}},
	}
	if err := store.Save(ctx, domain.Snapshot{Animals: animals}); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if err := store.Save(ctx, domain.Snapshot{Animals: animals[:1]}); err != nil {
		t.Fatalf("second Save: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	reopened, err := Open(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer func() { _ = reopened.Close() }()
	if reopened.Path() != path {
		t.Fatalf("expected path %s, got %s", path, reopened.Path())
	}
	got, err := reopened.Load(ctx)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(got.Animals) != 1 || got.Animals[0].Name != "Erica" {
		t.Fatalf("expected the last saved snapshot, got %#v", got.Animals)
	}
}
