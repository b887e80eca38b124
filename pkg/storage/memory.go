package storage

import (
	"context"
	"sync"
)

// Memory is an in-process Adapter.
type Memory struct {
	mu    sync.RWMutex
	items map[string][]byte
}

var _ Adapter = (*Memory)(nil)

// NewMemory returns an empty Memory adapter.
func NewMemory() *Memory {
	return &Memory{items: make(map[string][]byte)}
}

func (m *Memory) Load(ctx context.Context, key string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, &Error{Op: OpLoad, Key: key, Err: err}
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	value, ok := m.items[key]
	if !ok {
		return nil, ErrKeyNotFound
	}
	return append([]byte(nil), value...), nil
}

func (m *Memory) Save(ctx context.Context, key string, value []byte) error {
	if err := checkKey(key); err != nil {
		return &Error{Op: OpSave, Key: key, Err: err}
	}
	if err := ctx.Err(); err != nil {
		return &Error{Op: OpSave, Key: key, Err: err}
	}
	m.mu.Lock()
	m.items[key] = append([]byte(nil), value...)
	m.mu.Unlock()
	return nil
}

func (m *Memory) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return &Error{Op: OpDelete, Key: key, Err: err}
	}
	m.mu.Lock()
	delete(m.items, key)
	m.mu.Unlock()
	return nil
}

// Keys lists stored keys in no particular order.
func (m *Memory) Keys() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]string, 0, len(m.items))
	for key := range m.items {
		out = append(out, key)
	}
	return out
}
