package core

import (
	"context"
	"fmt"
	"os"

	"zookeeper/internal/config"
	"zookeeper/internal/infra/persistence/bolt"
	"zookeeper/internal/infra/persistence/file"
	"zookeeper/internal/infra/persistence/memory"
	"zookeeper/internal/infra/persistence/postgres"
	"zookeeper/internal/infra/persistence/s3"
	"zookeeper/internal/infra/persistence/sqlite"
	"zookeeper/pkg/domain"
)

// OpenSnapshotStore selects a backend from the storage section of cfg.
//
//	storage.driver: memory|file|sqlite|postgres|bolt|s3 (default file)
//	storage.file.path, storage.sqlite.path, storage.bolt.path: backing files
//	storage.postgres.dsn: postgres DSN when driver=postgres
//	storage.s3.*: bucket, region, endpoint, key and path_style when driver=s3
func OpenSnapshotStore(ctx context.Context, cfg *config.Config) (domain.SnapshotStore, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	st := cfg.Storage
	switch st.Driver {
	case config.StorageMemory:
		return memory.NewStore(), nil
	case config.StorageFile, "":
		return file.New(st.File.Path)
	case config.StorageSQLite:
		return sqlite.NewStore(st.SQLite.Path)
	case config.StoragePostgres:
		return postgres.NewStore(ctx, st.Postgres.DSN)
	case config.StorageBolt:
		return bolt.Open(st.Bolt.Path)
	case config.StorageS3:
		return s3.New(ctx, s3.Config{
			Region:          st.S3.Region,
			Bucket:          st.S3.Bucket,
			Key:             st.S3.Key,
			Endpoint:        st.S3.Endpoint,
			AccessKeyID:     os.Getenv("AWS_ACCESS_KEY_ID"),
			SecretAccessKey: os.Getenv("AWS_SECRET_ACCESS_KEY"),
			SessionToken:    os.Getenv("AWS_SESSION_TOKEN"),
			PathStyle:       st.S3.PathStyle,
		})
	default:
		return nil, fmt.Errorf("unknown storage driver %s", st.Driver)
	}
}

// SeedIfEmpty imports the animals document at seedPath into backend when the
// backend holds no animals yet. It reports whether a seed was written.
func SeedIfEmpty(ctx context.Context, backend domain.SnapshotStore, seedPath string) (bool, error) {
	if seedPath == "" {
		return false, nil
	}
	current, err := backend.Load(ctx)
	if err != nil {
		return false, &domain.PersistenceError{Op: "load", Err: err}
	}
	if len(current.Animals) > 0 {
		return false, nil
	}
	data, err := os.ReadFile(seedPath)
	if err != nil {
		return false, fmt.Errorf("read seed %s: %w", seedPath, err)
	}
	seed, err := file.Decode(data)
	if err != nil {
		return false, fmt.Errorf("decode seed %s: %w", seedPath, err)
	}
	if len(seed.Animals) == 0 {
		return false, nil
	}
	if err := backend.Save(ctx, seed); err != nil {
		return false, &domain.PersistenceError{Op: "seed", Err: err}
	}
	return true, nil
}

// Open wires a ready Store from configuration: it opens the configured
// backend, applies the optional seed and loads the collection.
func Open(ctx context.Context, cfg *config.Config) (*Store, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	backend, err := OpenSnapshotStore(ctx, cfg)
	if err != nil {
		return nil, err
	}
	if _, err := SeedIfEmpty(ctx, backend, cfg.Storage.Seed); err != nil {
		_ = backend.Close()
		return nil, err
	}
	store, err := OpenStore(ctx, backend)
	if err != nil {
		_ = backend.Close()
		return nil, err
	}
	return store, nil
}
