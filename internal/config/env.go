package config

import (
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

const envPrefix = "TYPECHALLENGE_"

// Server is the resolved configuration for `typechallenge serve`.
type Server struct {
	Addr          string
	Backend       string
	DBPath        string
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	RedisTTL      time.Duration
	LogLevel      string
	Revalidate    bool
	LevelsFile    string
}

// ResolveServer layers defaults, the config file, a .env file (if present) and
// the environment, in that order. Command-line flags are applied by the caller.
func ResolveServer(file FileConfig) (Server, error) {
	// A missing .env is the normal case outside development.
	_ = godotenv.Load()

	cfg := Server{
		Addr:      ":8080",
		Backend:   BackendSQLite,
		DBPath:    DefaultDBPath(),
		RedisAddr: "localhost:6379",
		LogLevel:  "info",
	}
	if v := file.Server.Addr; v != nil {
		cfg.Addr = *v
	}
	if v := file.Server.Revalidate; v != nil {
		cfg.Revalidate = *v
	}
	if v := file.Server.LogLevel; v != nil {
		cfg.LogLevel = *v
	}
	if v := file.Store.Backend; v != nil {
		cfg.Backend = *v
	}
	if v := file.Store.Path; v != nil {
		cfg.DBPath = *v
	}
	if v := file.Store.RedisAddr; v != nil {
		cfg.RedisAddr = *v
	}
	if v := file.Store.RedisPassword; v != nil {
		cfg.RedisPassword = *v
	}
	if v := file.Store.RedisDB; v != nil {
		cfg.RedisDB = *v
	}
	if v := file.Store.RedisTTL; v != nil {
		ttl, err := ParseTTL(*v)
		if err != nil {
			return Server{}, err
		}
		cfg.RedisTTL = ttl
	}
	if v := file.Player.LevelsFile; v != nil {
		cfg.LevelsFile = *v
	}

	cfg.Addr = envOr("ADDR", cfg.Addr)
	cfg.Backend = envOr("STORE", cfg.Backend)
	cfg.DBPath = envOr("DB_PATH", cfg.DBPath)
	cfg.RedisAddr = envOr("REDIS_ADDR", cfg.RedisAddr)
	cfg.RedisPassword = envOr("REDIS_PASSWORD", cfg.RedisPassword)
	cfg.RedisDB = envIntOr("REDIS_DB", cfg.RedisDB)
	cfg.LogLevel = envOr("LOG_LEVEL", cfg.LogLevel)
	cfg.Revalidate = envBoolOr("REVALIDATE", cfg.Revalidate)
	cfg.LevelsFile = envOr("LEVELS_FILE", cfg.LevelsFile)

	if err := (StoreConfig{Backend: &cfg.Backend}).validate(); err != nil {
		return Server{}, err
	}
	return cfg, nil
}

func envOr(key, def string) string {
	if v := os.Getenv(envPrefix + key); v != "" {
		return v
	}
	return def
}

func envIntOr(key string, def int) int {
	if v := os.Getenv(envPrefix + key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
		slog.Warn("invalid integer in environment, using default", slog.String("key", envPrefix+key), slog.String("value", v), slog.Int("default", def))
	}
	return def
}

func envBoolOr(key string, def bool) bool {
	if v := os.Getenv(envPrefix + key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
		slog.Warn("invalid boolean in environment, using default", slog.String("key", envPrefix+key), slog.String("value", v), slog.Bool("default", def))
	}
	return def
}
