// Package config provides configuration helpers and TOML parsing.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
)

// FileConfig represents the TOML configuration file.
type FileConfig struct {
	Player PlayerConfig `toml:"player"`
	Store  StoreConfig  `toml:"store"`
	Server ServerConfig `toml:"server"`
}

// PlayerConfig maps settings for local play.
type PlayerConfig struct {
	User       *string `toml:"user"`
	LevelsFile *string `toml:"levels-file"`
}

// StoreConfig selects and configures the progress backend.
type StoreConfig struct {
	Backend       *string `toml:"backend"`
	Path          *string `toml:"path"`
	RedisAddr     *string `toml:"redis-addr"`
	RedisPassword *string `toml:"redis-password"`
	RedisDB       *int    `toml:"redis-db"`
	RedisTTL      *string `toml:"redis-ttl"`
}

// ServerConfig maps settings for the HTTP server.
type ServerConfig struct {
	Addr       *string `toml:"addr"`
	Revalidate *bool   `toml:"revalidate"`
	LogLevel   *string `toml:"log-level"`
}

// Backend names accepted in [store].
const (
	BackendSQLite = "sqlite"
	BackendRedis  = "redis"
)

// LoadConfig reads a TOML config from the given path. Missing file is not an error.
func LoadConfig(path string) (FileConfig, error) {
	if path == "" {
		return FileConfig{}, fmt.Errorf("config path is empty")
	}
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return FileConfig{}, nil
		}
		return FileConfig{}, fmt.Errorf("failed to stat config: %w", err)
	}
	var cfg FileConfig
	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return FileConfig{}, fmt.Errorf("failed to decode config: %w", err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return FileConfig{}, fmt.Errorf("unknown config key %q", undecoded[0].String())
	}
	if err := cfg.Store.validate(); err != nil {
		return FileConfig{}, err
	}
	return cfg, nil
}

func (s StoreConfig) validate() error {
	if s.Backend != nil {
		switch *s.Backend {
		case BackendSQLite, BackendRedis:
		default:
			return fmt.Errorf("invalid store backend %q (want %s or %s)", *s.Backend, BackendSQLite, BackendRedis)
		}
	}
	if s.RedisTTL != nil {
		if _, err := ParseTTL(*s.RedisTTL); err != nil {
			return err
		}
	}
	return nil
}

// ParseTTL parses a redis TTL. Empty and "0" mean no expiry.
func ParseTTL(raw string) (time.Duration, error) {
	if raw == "" || raw == "0" {
		return 0, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid redis ttl %q: %w", raw, err)
	}
	if d < 0 {
		return 0, fmt.Errorf("invalid redis ttl %q: must not be negative", raw)
	}
	return d, nil
}

// Template is written by `typechallenge config` when no file exists yet.
const Template = `# typechallenge configuration.
# Every key is optional; command-line flags win over values set here.

[player]
# Username used by play, progress and reset.
# user = "ada1a2b"
# Alternative YAML level catalog.
# levels-file = "/path/to/levels.yaml"

[store]
# "sqlite" or "redis". Accounts always live in sqlite.
# backend = "sqlite"
# path = "~/.local/share/typechallenge/typechallenge.db"
# redis-addr = "localhost:6379"
# redis-password = ""
# redis-db = 0
# redis-ttl = "720h"

[server]
# addr = ":8080"
# revalidate = false
# log-level = "info"
`
