// Package config loads the archview configuration file.
//
// The file is TOML and lives at $XDG_CONFIG_HOME/archview/config.toml
// (~/.config/archview/config.toml when XDG_CONFIG_HOME is unset). A missing
// file is not an error: every field has a default.
//
//	[layout]
//	node_width = 250
//	node_height = 100
//
//	[layout.top]
//	rank_sep = 150
//	node_sep = 100
//
//	[cache]
//	backend = "redis"
//	redis_addr = "localhost:6379"
//	ttl = "24h"
//
//	[server]
//	addr = ":8080"
package config

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/go-playground/validator/v10"

	"github.com/matzehuels/archview/pkg/cache"
	"github.com/matzehuels/archview/pkg/errors"
	"github.com/matzehuels/archview/pkg/layout"
)

const appName = "archview"

// Cache backends.
const (
	BackendFile  = "file"
	BackendNone  = "none"
	BackendRedis = "redis"
	BackendMongo = "mongo"
)

// Config is the decoded configuration file.
type Config struct {
	Layout layout.Config `toml:"layout"`
	Cache  CacheConfig   `toml:"cache"`
	Server ServerConfig  `toml:"server"`
}

// CacheConfig selects and configures the graph cache backend.
type CacheConfig struct {
	Backend string   `toml:"backend" validate:"oneof=file none redis mongo"`
	Dir     string   `toml:"dir"`
	TTL     Duration `toml:"ttl"`

	RedisAddr     string `toml:"redis_addr" validate:"required_if=Backend redis"`
	RedisPassword string `toml:"redis_password"`
	RedisDB       int    `toml:"redis_db" validate:"gte=0"`
	RedisPrefix   string `toml:"redis_prefix"`

	MongoURI        string `toml:"mongo_uri" validate:"required_if=Backend mongo"`
	MongoDatabase   string `toml:"mongo_database"`
	MongoCollection string `toml:"mongo_collection"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Addr string `toml:"addr" validate:"required"`
}

// Duration is a time.Duration that decodes from TOML strings like "24h".
type Duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// Default returns the configuration used when no file is present.
func Default() Config {
	return Config{
		Layout: layout.DefaultConfig(),
		Cache: CacheConfig{
			Backend:         BackendFile,
			TTL:             Duration{cache.TTLGraph},
			RedisPrefix:     appName + ":",
			MongoDatabase:   appName,
			MongoCollection: "cache",
		},
		Server: ServerConfig{Addr: ":8080"},
	}
}

// Path returns the default config file location.
func Path() (string, error) {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, appName, "config.toml"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", appName, "config.toml"), nil
}

// CacheDir returns the default file cache directory (~/.cache/archview/).
func CacheDir() (string, error) {
	if dir := os.Getenv("XDG_CACHE_HOME"); dir != "" {
		return filepath.Join(dir, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}

// Load reads the file at path over the defaults. An empty path means the
// default location, where a missing file yields the defaults. An explicitly
// named file must exist.
func Load(path string) (Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		p, err := Path()
		if err != nil {
			return cfg, nil
		}
		path = p
	}

	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) && !explicit {
			return cfg, nil
		}
		return cfg, errors.Wrap(errors.ErrCodeFileNotFound, err, "config file %s", path)
	}

	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return cfg, errors.Wrap(errors.ErrCodeInvalidConfig, err, "decode %s", path)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

var validate = validator.New()

// Validate checks every section.
func (c Config) Validate() error {
	if err := c.Layout.Validate(); err != nil {
		return err
	}
	if err := validate.Struct(c.Cache); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfig, err, "invalid cache config")
	}
	if err := validate.Struct(c.Server); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfig, err, "invalid server config")
	}
	return nil
}

// OpenCache opens the configured backend. noCache forces the null cache.
func (c CacheConfig) OpenCache(ctx context.Context, noCache bool) (cache.Cache, error) {
	if noCache {
		return cache.NewNullCache(), nil
	}
	switch c.Backend {
	case BackendNone:
		return cache.NewNullCache(), nil
	case BackendRedis:
		return cache.NewRedisCache(ctx, cache.RedisOptions{
			Addr:     c.RedisAddr,
			Password: c.RedisPassword,
			DB:       c.RedisDB,
			Prefix:   c.RedisPrefix,
		})
	case BackendMongo:
		return cache.NewMongoCache(ctx, cache.MongoOptions{
			URI:        c.MongoURI,
			Database:   c.MongoDatabase,
			Collection: c.MongoCollection,
		})
	default:
		dir := c.Dir
		if dir == "" {
			d, err := CacheDir()
			if err != nil {
				return cache.NewNullCache(), nil
			}
			dir = d
		}
		return cache.NewFileCache(dir)
	}
}

// GraphTTL returns the configured TTL, falling back to cache.TTLGraph.
func (c CacheConfig) GraphTTL() time.Duration {
	if c.TTL.Duration <= 0 {
		return cache.TTLGraph
	}
	return c.TTL.Duration
}
