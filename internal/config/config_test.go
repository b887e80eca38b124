package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formbuilder/pkg/storage"
	"github.com/goliatone/go-formbuilder/pkg/validation"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "formbuilder.yaml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoad_ExpandsEnvAndAppliesDefaults(t *testing.T) {
	t.Setenv("FB_REDIS_ADDR", "cache:6379")
	path := writeConfig(t, `
env: prod
storage:
  driver: redis
  redis:
    addrs: ["${FB_REDIS_ADDR}"]
    password: "${FB_REDIS_PASSWORD:-secret}"
autosave:
  delay: 2s
validation:
  pattern_policy: skip
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	want := storage.Config{
		Driver: storage.DriverRedis,
		Dir:    cfg.Storage.Dir,
		Redis: storage.RedisConfig{
			Addrs:    []string{"cache:6379"},
			Password: "secret",
			Prefix:   storage.DefaultRedisPrefix,
		},
	}
	if diff := cmp.Diff(want, cfg.StorageConfig()); diff != "" {
		t.Fatalf("storage config mismatch (-want +got):\n%s", diff)
	}
	if cfg.Autosave.Delay != 2*time.Second {
		t.Fatalf("expected 2s autosave delay, got %s", cfg.Autosave.Delay)
	}
	if cfg.Preview.Delay != time.Second {
		t.Fatalf("expected default preview delay, got %s", cfg.Preview.Delay)
	}
	if cfg.PatternPolicy() != validation.PatternSkip {
		t.Fatalf("expected skip policy")
	}
	if cfg.Server.Origin != "http://localhost:8080" {
		t.Fatalf("unexpected origin %q", cfg.Server.Origin)
	}
}

func TestLoad_MissingFiles(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatalf("expected error for missing explicit file")
	}

	t.Chdir(t.TempDir())
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("load defaults: %v", err)
	}
	if cfg.Storage.Driver != storage.DriverFile || cfg.Env != "local" {
		t.Fatalf("unexpected defaults %+v", cfg)
	}
}

func TestValidate(t *testing.T) {
	cases := map[string]func(*Config){
		"env":     func(c *Config) { c.Env = "staging" },
		"driver":  func(c *Config) { c.Storage.Driver = "sqlite" },
		"redis":   func(c *Config) { c.Storage.Driver = storage.DriverRedis },
		"pattern": func(c *Config) { c.Validation.PatternPolicy = "loose" },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			cfg := Default()
			mutate(&cfg)
			if err := cfg.Validate(); err == nil {
				t.Fatalf("expected validation error")
			}
		})
	}

	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("defaults must validate: %v", err)
	}
}
