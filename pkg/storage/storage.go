// Package storage is the raw key-value layer under persistence. Values are
// opaque byte slices; the persistence package owns their JSON encoding.
package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for storage operations.
var (
	ErrKeyNotFound   = errors.New("storage: key not found")
	ErrInvalidKey    = errors.New("storage: invalid key")
	ErrUnknownDriver = errors.New("storage: unknown driver")
)

// Op names used in Error.
const (
	OpLoad   = "load"
	OpSave   = "save"
	OpDelete = "delete"
)

// Error wraps a backend failure with the operation and key.
type Error struct {
	Op  string
	Key string
	Err error
}

func (e *Error) Error() string { return e.Op + " " + e.Key + ": " + e.Err.Error() }
func (e *Error) Unwrap() error { return e.Err }

// Adapter is a key-value store. Load returns ErrKeyNotFound for absent keys;
// Delete of an absent key is not an error.
type Adapter interface {
	Load(ctx context.Context, key string) ([]byte, error)
	Save(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}

// Driver names accepted by Open.
const (
	DriverMemory = "memory"
	DriverFile   = "file"
	DriverRedis  = "redis"
)

// Config selects and configures a backend.
type Config struct {
	Driver string
	Dir    string
	Redis  RedisConfig
}

// Open builds the adapter named by cfg.Driver.
func Open(cfg Config) (Adapter, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Driver)) {
	case "", DriverMemory:
		return NewMemory(), nil
	case DriverFile:
		return NewFile(cfg.Dir)
	case DriverRedis:
		return NewRedis(cfg.Redis)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownDriver, cfg.Driver)
	}
}

// Close releases backend resources when the adapter holds any.
func Close(a Adapter) {
	if c, ok := a.(interface{ Close() }); ok {
		c.Close()
	}
}

func checkKey(key string) error {
	if strings.TrimSpace(key) == "" || strings.ContainsAny(key, `/\`) || key == "." || key == ".." {
		return fmt.Errorf("%w: %q", ErrInvalidKey, key)
	}
	return nil
}
