// Package config reads runtime settings from ACHERON_* environment variables.
package config

import (
	"encoding/base64"
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Prefix is prepended to every variable name.
const Prefix = "ACHERON_"

// Store kinds.
const (
	StoreMemory = "memory"
	StoreFile   = "file"
	StoreRedis  = "redis"
)

// Config holds every setting shared by the commands. Flags override it.
type Config struct {
	Scenario string `env:"SCENARIO" envDefault:"scenario.json"`
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`

	Store    string `env:"STORE" envDefault:"file"`
	StoreDir string `env:"STORE_DIR" envDefault:".acheron/saves"`
	StateKey string `env:"STATE_KEY" envDefault:"acheron-red-team-sim-state-v2"`

	RedisAddr     string        `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	RedisPassword string        `env:"REDIS_PASSWORD"`
	RedisDB       int           `env:"REDIS_DB" envDefault:"0"`
	RedisPrefix   string        `env:"REDIS_PREFIX" envDefault:"acheron:record:"`
	RedisTTL      time.Duration `env:"REDIS_TTL" envDefault:"0s"`
	RedisLock     bool          `env:"REDIS_LOCK" envDefault:"true"`
	RedisLockTTL  time.Duration `env:"REDIS_LOCK_TTL" envDefault:"30s"`

	HTTPAddr string `env:"HTTP_ADDR" envDefault:":8080"`
	Metrics  bool   `env:"METRICS" envDefault:"true"`

	Hints int   `env:"HINTS" envDefault:"3"`
	Seed  int64 `env:"SEED" envDefault:"0"`

	// EncryptionKey is a base64 AES-256 key. When set, saved records are encrypted.
	EncryptionKey          string   `env:"ENCRYPTION_KEY"`
	EncryptionFallbackKeys []string `env:"ENCRYPTION_FALLBACK_KEYS" envSeparator:","`
}

// Load reads the process environment.
func Load() (Config, error) {
	return parse(env.Options{Prefix: Prefix})
}

// LoadFrom reads the given variables instead of the process environment.
func LoadFrom(vars map[string]string) (Config, error) {
	return parse(env.Options{Prefix: Prefix, Environment: vars})
}

func parse(opts env.Options) (Config, error) {
	var cfg Config
	if err := env.ParseWithOptions(&cfg, opts); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate rejects values no command can work with.
func (c Config) Validate() error {
	switch c.Store {
	case StoreMemory, StoreFile, StoreRedis:
	default:
		return fmt.Errorf("unknown store %q (want memory, file or redis)", c.Store)
	}
	if c.RedisLockTTL <= 0 {
		return fmt.Errorf("redis lock ttl must be positive, got %s", c.RedisLockTTL)
	}
	if c.Hints < 0 {
		return fmt.Errorf("hints must not be negative, got %d", c.Hints)
	}
	if _, _, err := c.EncryptionKeys(); err != nil {
		return err
	}
	return nil
}

// EncryptionKeys decodes the active and fallback keys. A nil active key means
// encryption is off.
func (c Config) EncryptionKeys() (active []byte, fallback [][]byte, err error) {
	if c.EncryptionKey == "" {
		return nil, nil, nil
	}
	if active, err = decodeKey(c.EncryptionKey); err != nil {
		return nil, nil, fmt.Errorf("encryption key: %w", err)
	}
	for i, k := range c.EncryptionFallbackKeys {
		key, err := decodeKey(k)
		if err != nil {
			return nil, nil, fmt.Errorf("fallback key %d: %w", i+1, err)
		}
		fallback = append(fallback, key)
	}
	return active, fallback, nil
}

func decodeKey(s string) ([]byte, error) {
	key, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("not base64: %w", err)
	}
	if len(key) != 32 {
		return nil, fmt.Errorf("want 32 bytes, got %d", len(key))
	}
	return key, nil
}
