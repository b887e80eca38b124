// Package theme resolves the light and dark appearance of the form preview.
// Both variants live in a single go-theme manifest; the selected variant is
// persisted under the theme key and turned into renderer tokens and CSS
// variables.
package theme

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	gotheme "github.com/goliatone/go-theme"

	"github.com/goliatone/go-formbuilder/pkg/persistence"
)

// Name is the name of the built-in manifest.
const Name = "formbuilder"

var (
	// ErrUnknownTheme is returned when selecting a manifest that was never
	// registered.
	ErrUnknownTheme = errors.New("theme: unknown theme")
	// ErrUnknownVariant is returned for a variant the manifest does not
	// declare.
	ErrUnknownVariant = errors.New("theme: unknown variant")
)

// Manifest returns the built-in manifest. The base tokens are the light
// palette; the dark variant overrides them.
func Manifest() *gotheme.Manifest {
	return &gotheme.Manifest{
		Name:    Name,
		Version: "1.0.0",
		Tokens: map[string]string{
			"background":   "#ffffff",
			"surface":      "#f4f4f5",
			"text":         "#18181b",
			"muted":        "#71717a",
			"border":       "#d4d4d8",
			"accent":       "#2563eb",
			"error":        "#dc2626",
			"radius":       "0.375rem",
			"font-family":  "system-ui, sans-serif",
			"control-gap":  "1rem",
			"button-text":  "#ffffff",
			"focus-shadow": "0 0 0 2px #93c5fd",
		},
		Assets: gotheme.Assets{
			Prefix: AssetPrefix,
			Files: map[string]string{
				"html.stylesheet": "form.css",
			},
		},
		Variants: map[string]gotheme.Variant{
			persistence.ThemeLight: {},
			persistence.ThemeDark: {
				Tokens: map[string]string{
					"background":   "#18181b",
					"surface":      "#27272a",
					"text":         "#fafafa",
					"muted":        "#a1a1aa",
					"border":       "#3f3f46",
					"accent":       "#60a5fa",
					"error":        "#f87171",
					"focus-shadow": "0 0 0 2px #1d4ed8",
				},
				Assets: gotheme.Assets{
					Files: map[string]string{
						"html.stylesheet": "form.dark.css",
					},
				},
			},
		},
	}
}

// Selector implements gotheme.ThemeSelector over a fixed set of manifests.
type Selector struct {
	mu             sync.RWMutex
	manifests      map[string]*gotheme.Manifest
	defaultTheme   string
	defaultVariant string
}

var _ gotheme.ThemeSelector = (*Selector)(nil)

// NewSelector validates manifests with a go-theme registry and returns a
// selector defaulting to the first manifest and the light variant. With no
// manifests the built-in one is used.
func NewSelector(manifests ...*gotheme.Manifest) (*Selector, error) {
	if len(manifests) == 0 {
		manifests = []*gotheme.Manifest{Manifest()}
	}
	registry := gotheme.NewRegistry()
	s := &Selector{
		manifests:      make(map[string]*gotheme.Manifest, len(manifests)),
		defaultVariant: persistence.ThemeLight,
	}
	for _, m := range manifests {
		if m == nil {
			continue
		}
		if err := registry.Register(m); err != nil {
			return nil, fmt.Errorf("theme: register %q: %w", m.Name, err)
		}
		if s.defaultTheme == "" {
			s.defaultTheme = m.Name
		}
		s.manifests[m.Name] = m
	}
	if s.defaultTheme == "" {
		return nil, errors.New("theme: at least one manifest is required")
	}
	return s, nil
}

// Select resolves name and variant, falling back to the defaults when empty.
func (s *Selector) Select(name, variant string, _ ...gotheme.QueryOption) (*gotheme.Selection, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if name == "" {
		name = s.defaultTheme
	}
	if variant == "" {
		variant = s.defaultVariant
	}
	manifest, ok := s.manifests[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownTheme, name)
	}
	if _, ok := manifest.Variants[variant]; !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownVariant, variant)
	}
	return &gotheme.Selection{Theme: name, Variant: variant, Manifest: manifest}, nil
}

// Variants lists the variants of the named manifest.
func (s *Selector) Variants(name string) []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if name == "" {
		name = s.defaultTheme
	}
	manifest, ok := s.manifests[name]
	if !ok {
		return nil
	}
	out := make([]string, 0, len(manifest.Variants))
	for v := range manifest.Variants {
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}

// RendererConfig merges the variant over the base manifest and derives CSS
// variables from the tokens.
func RendererConfig(selection *gotheme.Selection) *gotheme.RendererConfig {
	if selection == nil || selection.Manifest == nil {
		return nil
	}
	m := selection.Manifest
	variant := m.Variants[selection.Variant]

	tokens := merge(m.Tokens, variant.Tokens)
	partials := merge(m.Templates, variant.Templates)
	files := merge(m.Assets.Files, variant.Assets.Files)
	prefix := m.Assets.Prefix
	if variant.Assets.Prefix != "" {
		prefix = variant.Assets.Prefix
	}

	cssVars := make(map[string]string, len(tokens))
	for key, value := range tokens {
		cssVars["--"+key] = value
	}

	return &gotheme.RendererConfig{
		Theme:    selection.Theme,
		Variant:  selection.Variant,
		Partials: partials,
		Tokens:   tokens,
		CSSVars:  cssVars,
		AssetURL: func(key string) string {
			file, ok := files[key]
			if !ok || file == "" {
				return ""
			}
			return strings.TrimRight(prefix, "/") + "/" + strings.TrimLeft(file, "/")
		},
	}
}

func merge(base, override map[string]string) map[string]string {
	out := make(map[string]string, len(base)+len(override))
	for k, v := range base {
		out[k] = v
	}
	for k, v := range override {
		out[k] = v
	}
	return out
}

// Store persists the selected variant. *persistence.Repository satisfies it.
type Store interface {
	Theme(ctx context.Context) (string, error)
	SetTheme(ctx context.Context, theme string) error
}

// Opposite returns dark for light and light for anything else.
func Opposite(variant string) string {
	if variant == persistence.ThemeLight {
		return persistence.ThemeDark
	}
	return persistence.ThemeLight
}

// Toggle flips the stored variant and returns the new one.
func Toggle(ctx context.Context, store Store) (string, error) {
	current, err := store.Theme(ctx)
	if err != nil && !errors.Is(err, persistence.ErrCorruptState) {
		return "", err
	}
	next := Opposite(current)
	if err := store.SetTheme(ctx, next); err != nil {
		return "", err
	}
	return next, nil
}

// Resolve reads the stored variant and returns its renderer configuration.
func Resolve(ctx context.Context, store Store, selector gotheme.ThemeSelector) (*gotheme.RendererConfig, error) {
	variant, err := store.Theme(ctx)
	if err != nil && !errors.Is(err, persistence.ErrCorruptState) {
		return nil, err
	}
	selection, err := selector.Select("", variant)
	if err != nil {
		return nil, err
	}
	return RendererConfig(selection), nil
}
