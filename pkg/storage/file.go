package storage

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

const fileExt = ".json"

// File stores one file per key inside a directory. Writes go to a temporary
// file that is renamed into place, so readers never see a partial value.
type File struct {
	dir string
}

var _ Adapter = (*File)(nil)

// NewFile creates dir when needed and returns an adapter rooted there.
func NewFile(dir string) (*File, error) {
	if dir == "" {
		return nil, fmt.Errorf("storage: file driver requires a directory")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("storage: create %s: %w", dir, err)
	}
	return &File{dir: dir}, nil
}

// Dir returns the root directory.
func (f *File) Dir() string { return f.dir }

func (f *File) path(key string) string {
	return filepath.Join(f.dir, key+fileExt)
}

func (f *File) Load(ctx context.Context, key string) ([]byte, error) {
	if err := checkKey(key); err != nil {
		return nil, &Error{Op: OpLoad, Key: key, Err: err}
	}
	if err := ctx.Err(); err != nil {
		return nil, &Error{Op: OpLoad, Key: key, Err: err}
	}
	data, err := os.ReadFile(f.path(key))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrKeyNotFound
		}
		return nil, &Error{Op: OpLoad, Key: key, Err: err}
	}
	return data, nil
}

func (f *File) Save(ctx context.Context, key string, value []byte) error {
	if err := checkKey(key); err != nil {
		return &Error{Op: OpSave, Key: key, Err: err}
	}
	if err := ctx.Err(); err != nil {
		return &Error{Op: OpSave, Key: key, Err: err}
	}

	tmp, err := os.CreateTemp(f.dir, "."+key+".tmp.*")
	if err != nil {
		return &Error{Op: OpSave, Key: key, Err: err}
	}
	tmpName := tmp.Name()
	cleanup := func() { _ = os.Remove(tmpName) }

	if _, err := tmp.Write(value); err != nil {
		_ = tmp.Close()
		cleanup()
		return &Error{Op: OpSave, Key: key, Err: fmt.Errorf("write temp file: %w", err)}
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		cleanup()
		return &Error{Op: OpSave, Key: key, Err: fmt.Errorf("sync temp file: %w", err)}
	}
	if err := tmp.Close(); err != nil {
		cleanup()
		return &Error{Op: OpSave, Key: key, Err: fmt.Errorf("close temp file: %w", err)}
	}
	if err := os.Rename(tmpName, f.path(key)); err != nil {
		cleanup()
		return &Error{Op: OpSave, Key: key, Err: fmt.Errorf("rename temp file: %w", err)}
	}
	return nil
}

func (f *File) Delete(ctx context.Context, key string) error {
	if err := checkKey(key); err != nil {
		return &Error{Op: OpDelete, Key: key, Err: err}
	}
	if err := ctx.Err(); err != nil {
		return &Error{Op: OpDelete, Key: key, Err: err}
	}
	if err := os.Remove(f.path(key)); err != nil && !errors.Is(err, os.ErrNotExist) {
		return &Error{Op: OpDelete, Key: key, Err: err}
	}
	return nil
}
