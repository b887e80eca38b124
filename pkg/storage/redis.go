package storage

import (
	"context"
	"fmt"

	"github.com/redis/rueidis"
)

// DefaultRedisPrefix namespaces keys written by the redis driver.
const DefaultRedisPrefix = "formbuilder:"

// RedisConfig holds connection parameters for the redis driver.
type RedisConfig struct {
	Addrs    []string
	Username string
	Password string
	DB       int
	Prefix   string
}

// Redis stores values as plain strings through rueidis.
type Redis struct {
	client rueidis.Client
	prefix string
}

var _ Adapter = (*Redis)(nil)

// NewRedis connects to the configured server.
func NewRedis(cfg RedisConfig) (*Redis, error) {
	if len(cfg.Addrs) == 0 {
		return nil, fmt.Errorf("storage: redis addrs is required")
	}
	client, err := rueidis.NewClient(rueidis.ClientOption{
		InitAddress:  cfg.Addrs,
		Username:     cfg.Username,
		Password:     cfg.Password,
		SelectDB:     cfg.DB,
		DisableCache: true,
	})
	if err != nil {
		return nil, fmt.Errorf("storage: create redis client: %w", err)
	}
	return newRedis(client, cfg.Prefix), nil
}

func newRedis(client rueidis.Client, prefix string) *Redis {
	if prefix == "" {
		prefix = DefaultRedisPrefix
	}
	return &Redis{client: client, prefix: prefix}
}

func (r *Redis) key(key string) string { return r.prefix + key }

func (r *Redis) Load(ctx context.Context, key string) ([]byte, error) {
	cmd := r.client.B().Get().Key(r.key(key)).Build()
	data, err := r.client.Do(ctx, cmd).AsBytes()
	if err != nil {
		if rueidis.IsRedisNil(err) {
			return nil, ErrKeyNotFound
		}
		return nil, &Error{Op: OpLoad, Key: key, Err: err}
	}
	return data, nil
}

func (r *Redis) Save(ctx context.Context, key string, value []byte) error {
	if err := checkKey(key); err != nil {
		return &Error{Op: OpSave, Key: key, Err: err}
	}
	cmd := r.client.B().Set().Key(r.key(key)).Value(string(value)).Build()
	if err := r.client.Do(ctx, cmd).Error(); err != nil {
		return &Error{Op: OpSave, Key: key, Err: err}
	}
	return nil
}

func (r *Redis) Delete(ctx context.Context, key string) error {
	cmd := r.client.B().Del().Key(r.key(key)).Build()
	if err := r.client.Do(ctx, cmd).Error(); err != nil {
		return &Error{Op: OpDelete, Key: key, Err: err}
	}
	return nil
}

// Ping checks connectivity.
func (r *Redis) Ping(ctx context.Context) error {
	if err := r.client.Do(ctx, r.client.B().Ping().Build()).Error(); err != nil {
		return fmt.Errorf("storage: ping: %w", err)
	}
	return nil
}

// Close shuts down the client.
func (r *Redis) Close() {
	r.client.Close()
}
