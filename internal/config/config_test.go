package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadConfigMissingFile(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "absent.toml"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Player.User != nil || cfg.Store.Backend != nil {
		t.Fatalf("expected empty config, got %+v", cfg)
	}
}

func TestLoadConfigSections(t *testing.T) {
	path := writeConfig(t, `
[player]
user = "ada1a2b"

[store]
backend = "redis"
redis-db = 2
redis-ttl = "1h"

[server]
addr = ":9090"
revalidate = true
`)
	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Player.User == nil || *cfg.Player.User != "ada1a2b" {
		t.Fatalf("unexpected user: %v", cfg.Player.User)
	}
	if cfg.Store.RedisDB == nil || *cfg.Store.RedisDB != 2 {
		t.Fatalf("unexpected redis db: %v", cfg.Store.RedisDB)
	}
	if cfg.Server.Revalidate == nil || !*cfg.Server.Revalidate {
		t.Fatalf("expected revalidate")
	}
	if cfg.Store.Path != nil {
		t.Fatalf("unset path should stay nil")
	}
}

func TestLoadConfigRejectsBadValues(t *testing.T) {
	cases := map[string]string{
		"backend": "[store]\nbackend = \"postgres\"\n",
		"ttl":     "[store]\nredis-ttl = \"soon\"\n",
		"unknown": "[player]\nlang = \"en\"\n",
	}
	for name, body := range cases {
		if _, err := LoadConfig(writeConfig(t, body)); err == nil {
			t.Fatalf("%s: expected error", name)
		}
	}
}

func TestLoadConfigEmptyPath(t *testing.T) {
	if _, err := LoadConfig(""); err == nil {
		t.Fatalf("expected error for empty path")
	}
}

func TestParseTTL(t *testing.T) {
	if d, err := ParseTTL(""); err != nil || d != 0 {
		t.Fatalf("empty ttl: %v %v", d, err)
	}
	if d, err := ParseTTL("90m"); err != nil || d != 90*time.Minute {
		t.Fatalf("90m ttl: %v %v", d, err)
	}
	if _, err := ParseTTL("-1h"); err == nil {
		t.Fatalf("expected negative ttl error")
	}
}

func TestResolveServerLayers(t *testing.T) {
	chdirForTest(t, t.TempDir())
	t.Setenv("XDG_DATA_HOME", "/data")
	t.Setenv("TYPECHALLENGE_ADDR", ":7070")
	t.Setenv("TYPECHALLENGE_REDIS_DB", "nope")

	addr := ":9090"
	db := 3
	ttl := "2h"
	file := FileConfig{
		Server: ServerConfig{Addr: &addr},
		Store:  StoreConfig{RedisDB: &db, RedisTTL: &ttl},
	}
	cfg, err := ResolveServer(file)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if cfg.Addr != ":7070" {
		t.Fatalf("env should win over file, got %q", cfg.Addr)
	}
	if cfg.RedisDB != 3 {
		t.Fatalf("invalid env int should keep file value, got %d", cfg.RedisDB)
	}
	if cfg.RedisTTL != 2*time.Hour {
		t.Fatalf("unexpected ttl %v", cfg.RedisTTL)
	}
	if cfg.Backend != BackendSQLite || cfg.DBPath != filepath.Join("/data", "typechallenge", "typechallenge.db") {
		t.Fatalf("unexpected defaults %+v", cfg)
	}
}

func TestResolveServerRejectsBackend(t *testing.T) {
	chdirForTest(t, t.TempDir())
	t.Setenv("TYPECHALLENGE_STORE", "mongo")
	if _, err := ResolveServer(FileConfig{}); err == nil || !strings.Contains(err.Error(), "mongo") {
		t.Fatalf("expected backend error, got %v", err)
	}
}

func TestDefaultPaths(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/cfg")
	if got := DefaultConfigPath(); got != filepath.Join("/cfg", "typechallenge", "config.toml") {
		t.Fatalf("unexpected config path %q", got)
	}
}

// chdirForTest changes the working directory for the duration of the test,
// restoring the previous one on cleanup (equivalent to testing.T.Chdir).
func chdirForTest(t *testing.T, dir string) {
	t.Helper()
	prev, err := os.Getwd()
	if err != nil {
		t.Fatalf("getwd: %v", err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("chdir %s: %v", dir, err)
	}
	t.Cleanup(func() {
		if err := os.Chdir(prev); err != nil {
			t.Fatalf("restore working directory: %v", err)
		}
	})
}
