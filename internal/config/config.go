// Package config loads the formbuilder configuration file.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-formbuilder/internal/logger"
	"github.com/goliatone/go-formbuilder/pkg/storage"
	"github.com/goliatone/go-formbuilder/pkg/validation"
)

// DefaultFile is looked up in the working directory when no path is given.
const DefaultFile = "formbuilder.yaml"

// Config holds the CLI and share server settings.
type Config struct {
	Env        string           `yaml:"env"`
	Logging    LoggingConfig    `yaml:"logging"`
	Storage    StorageConfig    `yaml:"storage"`
	Server     ServerConfig     `yaml:"server"`
	Autosave   AutosaveConfig   `yaml:"autosave"`
	Preview    PreviewConfig    `yaml:"preview"`
	Validation ValidationConfig `yaml:"validation"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error
}

// StorageConfig selects the key-value backend.
type StorageConfig struct {
	Driver string      `yaml:"driver"` // memory, file, redis (default: file)
	Dir    string      `yaml:"dir"`
	Redis  RedisConfig `yaml:"redis"`
}

// RedisConfig holds redis connection settings.
type RedisConfig struct {
	Addrs    []string `yaml:"addrs"`
	Username string   `yaml:"username"`
	Password string   `yaml:"password"`
	DB       int      `yaml:"db"`
	Prefix   string   `yaml:"prefix"`
}

// ServerConfig holds share server settings.
type ServerConfig struct {
	Addr            string `yaml:"addr"`
	Origin          string `yaml:"origin"`
	ReadTimeoutSec  int    `yaml:"read_timeout_sec"`
	WriteTimeoutSec int    `yaml:"write_timeout_sec"`
	ShutdownSec     int    `yaml:"shutdown_timeout_sec"`
}

// AutosaveConfig holds the editor autosave delay.
type AutosaveConfig struct {
	Delay time.Duration `yaml:"delay"`
}

// PreviewConfig holds the step transition delay of previews.
type PreviewConfig struct {
	Delay time.Duration `yaml:"delay"`
}

// ValidationConfig selects how malformed patterns are treated.
type ValidationConfig struct {
	PatternPolicy string `yaml:"pattern_policy"` // fail_closed, skip
}

// Pattern policy names.
const (
	PatternFailClosed = "fail_closed"
	PatternSkip       = "skip"
)

// Load reads path, expands ${VAR} references, applies defaults and
// validates. An empty path tries DefaultFile and falls back to defaults when
// it does not exist.
func Load(path string) (Config, error) {
	explicit := path != ""
	if !explicit {
		path = DefaultFile
	}

	var cfg Config
	data, err := os.ReadFile(filepath.Clean(path))
	switch {
	case err == nil:
		data = expandEnvVars(data)
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("failed to parse config %s: %w", path, err)
		}
	case errors.Is(err, os.ErrNotExist) && !explicit:
	default:
		return Config{}, fmt.Errorf("failed to read config %s: %w", path, err)
	}

	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// Default returns the configuration used without a file.
func Default() Config {
	var cfg Config
	cfg.ApplyDefaults()
	return cfg
}

// ApplyDefaults fills empty fields.
func (c *Config) ApplyDefaults() {
	if c.Env == "" {
		c.Env = logger.EnvLocal
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Storage.Driver == "" {
		c.Storage.Driver = storage.DriverFile
	}
	if c.Storage.Dir == "" {
		c.Storage.Dir = defaultDir()
	}
	if c.Storage.Redis.Prefix == "" {
		c.Storage.Redis.Prefix = storage.DefaultRedisPrefix
	}
	if c.Server.Addr == "" {
		c.Server.Addr = ":8080"
	}
	if c.Server.Origin == "" {
		c.Server.Origin = "http://localhost" + c.Server.Addr
		if !strings.HasPrefix(c.Server.Addr, ":") {
			c.Server.Origin = "http://" + c.Server.Addr
		}
	}
	if c.Server.ReadTimeoutSec <= 0 {
		c.Server.ReadTimeoutSec = 10
	}
	if c.Server.WriteTimeoutSec <= 0 {
		c.Server.WriteTimeoutSec = 10
	}
	if c.Server.ShutdownSec <= 0 {
		c.Server.ShutdownSec = 10
	}
	if c.Autosave.Delay <= 0 {
		c.Autosave.Delay = 5 * time.Second
	}
	if c.Preview.Delay <= 0 {
		c.Preview.Delay = time.Second
	}
	if c.Validation.PatternPolicy == "" {
		c.Validation.PatternPolicy = PatternFailClosed
	}
}

// Validate checks the configuration for correctness.
func (c *Config) Validate() error {
	switch c.Env {
	case logger.EnvProduction, logger.EnvDevelopment, logger.EnvLocal, logger.EnvTest:
	default:
		return fmt.Errorf("env must be one of prod, dev, local, test, got %q", c.Env)
	}
	switch c.Storage.Driver {
	case storage.DriverMemory, storage.DriverFile:
	case storage.DriverRedis:
		if len(c.Storage.Redis.Addrs) == 0 {
			return errors.New("storage.redis.addrs is required for the redis driver")
		}
	default:
		return fmt.Errorf("storage.driver must be memory, file or redis, got %q", c.Storage.Driver)
	}
	switch c.Validation.PatternPolicy {
	case PatternFailClosed, PatternSkip:
	default:
		return fmt.Errorf("validation.pattern_policy must be %q or %q, got %q",
			PatternFailClosed, PatternSkip, c.Validation.PatternPolicy)
	}
	return nil
}

// StorageConfig converts the storage section for storage.Open.
func (c Config) StorageConfig() storage.Config {
	return storage.Config{
		Driver: c.Storage.Driver,
		Dir:    c.Storage.Dir,
		Redis: storage.RedisConfig{
			Addrs:    append([]string(nil), c.Storage.Redis.Addrs...),
			Username: c.Storage.Redis.Username,
			Password: c.Storage.Redis.Password,
			DB:       c.Storage.Redis.DB,
			Prefix:   c.Storage.Redis.Prefix,
		},
	}
}

// PatternPolicy converts the validation section.
func (c Config) PatternPolicy() validation.PatternPolicy {
	if c.Validation.PatternPolicy == PatternSkip {
		return validation.PatternSkip
	}
	return validation.PatternFailClosed
}

func defaultDir() string {
	if dir, err := os.UserConfigDir(); err == nil && dir != "" {
		return filepath.Join(dir, "formbuilder")
	}
	return ".formbuilder"
}

var envVarRegex = regexp.MustCompile(`\$\{([^}]+)\}`)

// expandEnvVars replaces ${VAR} and ${VAR:-default} with environment values.
func expandEnvVars(data []byte) []byte {
	return envVarRegex.ReplaceAllFunc(data, func(match []byte) []byte {
		expr := string(match[2 : len(match)-1])
		name, def, hasDefault := strings.Cut(expr, ":-")
		val := os.Getenv(name)
		if val == "" && hasDefault {
			val = def
		}
		return []byte(val)
	})
}
