package storage_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formbuilder/pkg/storage"
)

func exerciseAdapter(t *testing.T, a storage.Adapter) {
	t.Helper()
	ctx := context.Background()

	if _, err := a.Load(ctx, "liveForm"); !errors.Is(err, storage.ErrKeyNotFound) {
		t.Fatalf("expected ErrKeyNotFound, got %v", err)
	}

	if err := a.Save(ctx, "liveForm", []byte(`[{"id":"a"}]`)); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := a.Save(ctx, "liveForm", []byte(`[]`)); err != nil {
		t.Fatalf("overwrite: %v", err)
	}
	got, err := a.Load(ctx, "liveForm")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if diff := cmp.Diff("[]", string(got)); diff != "" {
		t.Fatalf("value mismatch (-want +got):\n%s", diff)
	}

	if err := a.Delete(ctx, "liveForm"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := a.Delete(ctx, "liveForm"); err != nil {
		t.Fatalf("delete of absent key must succeed: %v", err)
	}
	if _, err := a.Load(ctx, "liveForm"); !errors.Is(err, storage.ErrKeyNotFound) {
		t.Fatalf("expected ErrKeyNotFound after delete, got %v", err)
	}

	err = a.Save(ctx, "../escape", []byte("x"))
	var serr *storage.Error
	if !errors.As(err, &serr) || !errors.Is(err, storage.ErrInvalidKey) {
		t.Fatalf("expected invalid key error, got %v", err)
	}
}

func TestMemory(t *testing.T) {
	exerciseAdapter(t, storage.NewMemory())
}

func TestMemory_ValuesAreCopied(t *testing.T) {
	ctx := context.Background()
	m := storage.NewMemory()
	value := []byte("abc")
	if err := m.Save(ctx, "k", value); err != nil {
		t.Fatalf("save: %v", err)
	}
	value[0] = 'z'
	got, _ := m.Load(ctx, "k")
	if string(got) != "abc" {
		t.Fatalf("memory adapter aliased caller slice: %q", got)
	}
}

func TestFile(t *testing.T) {
	dir := t.TempDir()
	a, err := storage.NewFile(filepath.Join(dir, "state"))
	if err != nil {
		t.Fatalf("new file adapter: %v", err)
	}
	exerciseAdapter(t, a)
}

func TestFile_LeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	a, err := storage.NewFile(dir)
	if err != nil {
		t.Fatalf("new file adapter: %v", err)
	}
	if err := a.Save(context.Background(), "theme", []byte(`"dark"`)); err != nil {
		t.Fatalf("save: %v", err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("read dir: %v", err)
	}
	var names []string
	for _, e := range entries {
		names = append(names, e.Name())
	}
	if diff := cmp.Diff([]string{"theme.json"}, names); diff != "" {
		t.Fatalf("directory mismatch (-want +got):\n%s", diff)
	}
}

func TestOpen(t *testing.T) {
	a, err := storage.Open(storage.Config{Driver: "memory"})
	if err != nil {
		t.Fatalf("open memory: %v", err)
	}
	if _, ok := a.(*storage.Memory); !ok {
		t.Fatalf("expected *storage.Memory, got %T", a)
	}

	a, err = storage.Open(storage.Config{Driver: "FILE", Dir: t.TempDir()})
	if err != nil {
		t.Fatalf("open file: %v", err)
	}
	if _, ok := a.(*storage.File); !ok {
		t.Fatalf("expected *storage.File, got %T", a)
	}

	if _, err := storage.Open(storage.Config{Driver: "redis"}); err == nil {
		t.Fatalf("expected error for redis without addrs")
	}
	if _, err := storage.Open(storage.Config{Driver: "etcd"}); !errors.Is(err, storage.ErrUnknownDriver) {
		t.Fatalf("expected ErrUnknownDriver, got %v", err)
	}
}
