// Package testsupport loads the shared form fixtures under testdata so
// package tests exercise the same documents.
package testsupport

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/goliatone/go-formbuilder/pkg/model"
)

// FixturePath returns the absolute path of a fixture under testdata.
func FixturePath(name string) string {
	_, file, _, ok := runtime.Caller(0)
	if !ok {
		return filepath.Join("testdata", name)
	}
	return filepath.Join(filepath.Dir(file), "testdata", name)
}

// MustReadFixture returns the raw bytes of a fixture.
func MustReadFixture(t *testing.T, name string) []byte {
	t.Helper()
	data, err := os.ReadFile(FixturePath(name))
	if err != nil {
		t.Fatalf("read fixture: %v", err)
	}
	return data
}

// LoadDocument decodes a fixture into a form document.
func LoadDocument(t *testing.T, name string) model.Document {
	t.Helper()

	doc, err := LoadDocumentFromPath(FixturePath(name))
	if err != nil {
		t.Fatalf("load document: %v", err)
	}
	return doc
}

// LoadDocumentFromPath returns a document without requiring testing.T, so
// callers can load fixtures in setup functions.
func LoadDocumentFromPath(path string) (model.Document, error) {
	if path == "" {
		return model.Document{}, errors.New("testsupport: document path is required")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return model.Document{}, fmt.Errorf("testsupport: read document: %w", err)
	}
	var doc model.Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return model.Document{}, fmt.Errorf("testsupport: unmarshal document: %w", err)
	}
	return doc, nil
}
