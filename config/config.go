// Package config builds a provider-backed cache from a YAML document.
//
//	namespace: app:prod:chat
//	backend: redis          # memory | ristretto | bigcache | redis | sqlite
//	ttl: 24h
//	codec: msgpack          # json | sonic | cbor | msgpack
//	redis:
//	  addr: localhost:6379
//	  shared_lock: true     # serialize migrations across processes
package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

const (
	BackendMemory    = "memory"
	BackendRistretto = "ristretto"
	BackendBigCache  = "bigcache"
	BackendRedis     = "redis"
	BackendSQLite    = "sqlite"
)

type Config struct {
	Namespace      string        `yaml:"namespace" validate:"required"`
	Backend        string        `yaml:"backend" validate:"required,oneof=memory ristretto bigcache redis sqlite"`
	TTL            time.Duration `yaml:"ttl" validate:"gte=0"`
	Codec          string        `yaml:"codec" validate:"oneof=json sonic cbor msgpack"`
	MaxDecodeBytes int           `yaml:"max_decode_bytes" validate:"gte=0"`
	Disabled       bool          `yaml:"disabled"`

	Ristretto RistrettoConfig `yaml:"ristretto"`
	BigCache  BigCacheConfig  `yaml:"bigcache"`
	Redis     RedisConfig     `yaml:"redis"`
	SQLite    SQLiteConfig    `yaml:"sqlite"`
}

type RistrettoConfig struct {
	NumCounters int64 `yaml:"num_counters" validate:"gte=0"`
	MaxCost     int64 `yaml:"max_cost" validate:"gte=0"`
	BufferItems int64 `yaml:"buffer_items" validate:"gte=0"`
	Metrics     bool  `yaml:"metrics"`
}

type BigCacheConfig struct {
	LifeWindow         time.Duration `yaml:"life_window" validate:"gte=0"`
	CleanWindow        time.Duration `yaml:"clean_window" validate:"gte=0"`
	Shards             int           `yaml:"shards" validate:"gte=0"`
	MaxEntrySize       int           `yaml:"max_entry_size" validate:"gte=0"`
	HardMaxCacheSizeMB int           `yaml:"hard_max_cache_size_mb" validate:"gte=0"`
}

type RedisConfig struct {
	Addr       string        `yaml:"addr"`
	Username   string        `yaml:"username"`
	Password   string        `yaml:"password"`
	DB         int           `yaml:"db" validate:"gte=0"`
	SharedLock bool          `yaml:"shared_lock"`
	LockLease  time.Duration `yaml:"lock_lease" validate:"gte=0"`
}

type SQLiteConfig struct {
	Path string `yaml:"path"`
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterStructValidation(backendSection, Config{})
	return v
}

// backendSection checks the settings the selected backend cannot run without.
func backendSection(sl validator.StructLevel) {
	c := sl.Current().Interface().(Config)
	switch c.Backend {
	case BackendRedis:
		if c.Redis.Addr == "" {
			sl.ReportError(c.Redis.Addr, "Redis.Addr", "Addr", "required_for_backend", c.Backend)
		}
	case BackendSQLite:
		if c.SQLite.Path == "" {
			sl.ReportError(c.SQLite.Path, "SQLite.Path", "Path", "required_for_backend", c.Backend)
		}
	}
}

// Default returns an in-memory config for namespace. Handy in tests.
func Default(namespace string) Config {
	c := Config{Namespace: namespace, Backend: BackendMemory}
	c.applyDefaults()
	return c
}

func (c *Config) applyDefaults() {
	if c.Codec == "" {
		c.Codec = "json"
	}
	if c.Ristretto.NumCounters == 0 {
		c.Ristretto.NumCounters = 1e5
	}
	if c.Ristretto.MaxCost == 0 {
		c.Ristretto.MaxCost = 1 << 26
	}
	if c.Ristretto.BufferItems == 0 {
		c.Ristretto.BufferItems = 64
	}
	if c.BigCache.LifeWindow == 0 {
		c.BigCache.LifeWindow = 10 * time.Minute
	}
}

// Validate reports every invalid field at once.
func (c Config) Validate() error {
	err := validate.Struct(c)
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		errs := make([]error, 0, len(verrs))
		for _, fe := range verrs {
			errs = append(errs, fmt.Errorf("%s: failed %q (value %v)", fe.Namespace(), fe.Tag(), fe.Value()))
		}
		return fmt.Errorf("config: invalid: %w", errors.Join(errs...))
	}
	return err
}

// Parse decodes YAML strictly (unknown keys are errors), fills defaults and
// validates the result.
func Parse(b []byte) (Config, error) {
	var c Config
	dec := yaml.NewDecoder(bytes.NewReader(b))
	dec.KnownFields(true)
	if err := dec.Decode(&c); err != nil {
		return Config{}, fmt.Errorf("config: decode: %w", err)
	}
	c.applyDefaults()
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

func Load(path string) (Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: read %s: %w", path, err)
	}
	return Parse(b)
}
