// Package config loads service settings from defaults, an optional YAML file
// and ZOOKEEPER_* environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// StorageDriver identifies a concrete persistence backend.
type StorageDriver string

const (
	StorageMemory   StorageDriver = "memory"   // in-memory only (tests / ephemeral)
	StorageFile     StorageDriver = "file"     // indented JSON document on disk
	StorageSQLite   StorageDriver = "sqlite"   // embedded sqlite file
	StoragePostgres StorageDriver = "postgres" // PostgreSQL server
	StorageBolt     StorageDriver = "bolt"     // embedded bbolt file
	StorageS3       StorageDriver = "s3"       // S3 / MinIO object
)

// Drivers lists every supported storage driver.
var Drivers = []StorageDriver{StorageMemory, StorageFile, StorageSQLite, StoragePostgres, StorageBolt, StorageS3}

type Config struct {
	Port      int           `mapstructure:"port"`
	PublicDir string        `mapstructure:"public_dir"`
	Log       LogConfig     `mapstructure:"log"`
	Storage   StorageConfig `mapstructure:"storage"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

type StorageConfig struct {
	Driver   StorageDriver  `mapstructure:"driver"`
	Seed     string         `mapstructure:"seed"`
	File     PathConfig     `mapstructure:"file"`
	SQLite   PathConfig     `mapstructure:"sqlite"`
	Bolt     PathConfig     `mapstructure:"bolt"`
	Postgres PostgresConfig `mapstructure:"postgres"`
	S3       S3Config       `mapstructure:"s3"`
}

type PathConfig struct {
	Path string `mapstructure:"path"`
}

type PostgresConfig struct {
	DSN string `mapstructure:"dsn"`
}

type S3Config struct {
	Bucket    string `mapstructure:"bucket"`
	Region    string `mapstructure:"region"`
	Endpoint  string `mapstructure:"endpoint"`
	Key       string `mapstructure:"key"`
	PathStyle bool   `mapstructure:"path_style"`
}

var defaults = map[string]any{
	"port":                  3001,
	"public_dir":            "./public",
	"log.level":             "info",
	"log.format":            "text",
	"storage.driver":        string(StorageFile),
	"storage.seed":          "",
	"storage.file.path":     "./data/animals.json",
	"storage.sqlite.path":   "./zookeeper.db",
	"storage.bolt.path":     "./zookeeper.bolt",
	"storage.postgres.dsn":  "postgres://localhost/zookeeper?sslmode=disable",
	"storage.s3.bucket":     "",
	"storage.s3.region":     "us-east-1",
	"storage.s3.endpoint":   "",
	"storage.s3.key":        "animals.json",
	"storage.s3.path_style": false,
}

// Default returns the configuration used when nothing is overridden.
func Default() *Config {
	cfg, err := decode(newViper())
	if err != nil {
		panic(fmt.Errorf("config defaults: %w", err))
	}
	return cfg
}

func newViper() *viper.Viper {
	v := viper.New()
	for key, val := range defaults {
		v.SetDefault(key, val)
	}
	v.SetEnvPrefix("ZOOKEEPER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	// PORT is honoured for parity with common hosting platforms.
	_ = v.BindEnv("port", "ZOOKEEPER_PORT", "PORT")
	return v
}

// Load reads configuration. When path is empty, zookeeper.yaml is looked up in
// the working directory and $XDG_CONFIG_HOME/zookeeper; a missing file is not
// an error. An explicit path must exist.
func Load(path string) (*Config, error) {
	v := newViper()
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("zookeeper")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
			v.AddConfigPath(filepath.Join(xdg, "zookeeper"))
		}
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}
	cfg, err := decode(v)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func decode(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	return &cfg, nil
}

// Addr returns the listen address for the HTTP server.
func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if c.Port < 0 || c.Port > 65535 {
		return fmt.Errorf("config: port %d out of range", c.Port)
	}
	known := false
	for _, d := range Drivers {
		if c.Storage.Driver == d {
			known = true
			break
		}
	}
	if !known {
		return fmt.Errorf("config: unknown storage driver %q", c.Storage.Driver)
	}
	switch c.Storage.Driver {
	case StorageFile:
		if c.Storage.File.Path == "" {
			return fmt.Errorf("config: storage.file.path is required for the file driver")
		}
	case StorageS3:
		if c.Storage.S3.Bucket == "" {
			return fmt.Errorf("config: storage.s3.bucket is required for the s3 driver")
		}
	}
	switch strings.ToLower(c.Log.Format) {
	case "text", "json":
	default:
		return fmt.Errorf("config: log.format %q must be text or json", c.Log.Format)
	}
	return nil
}
