package orchestrator

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-formbuilder/pkg/document"
	"github.com/goliatone/go-formbuilder/pkg/model"
)

// Transformer mutates a document before decorators run.
type Transformer interface {
	Transform(ctx context.Context, doc *model.Document) error
}

// TransformerFunc adapts plain functions to the Transformer interface.
type TransformerFunc func(ctx context.Context, doc *model.Document) error

// Transform executes the wrapped function when non-nil.
func (fn TransformerFunc) Transform(ctx context.Context, doc *model.Document) error {
	if fn == nil {
		return nil
	}
	return fn(ctx, doc)
}

// PresetTransformer applies declarative overrides loaded from a YAML (or
// JSON) document:
//
//	name: Customer signup
//	fields:
//	  f1:
//	    label: Full name
//	    required: true
//	    max_length: "40"
//	  f2:
//	    options: [Red, Green]
//
// Patches go through the same checks as edits made in the builder, so a
// preset cannot smuggle in an invalid pattern or length.
type PresetTransformer struct {
	preset preset
}

type preset struct {
	Name   string                 `yaml:"name"`
	Fields map[string]fieldPreset `yaml:"fields"`
}

type fieldPreset struct {
	Label       *string  `yaml:"label"`
	Placeholder *string  `yaml:"placeholder"`
	HelpText    *string  `yaml:"help_text"`
	Required    *bool    `yaml:"required"`
	Options     []string `yaml:"options"`
	MinLength   *string  `yaml:"min_length"`
	MaxLength   *string  `yaml:"max_length"`
	Pattern     *string  `yaml:"pattern"`
	Step        *int     `yaml:"step"`
}

// NewPresetTransformer constructs a transformer from raw YAML or JSON bytes.
func NewPresetTransformer(data []byte) (*PresetTransformer, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, errors.New("preset transformer: document is empty")
	}
	var p preset
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("preset transformer: parse document: %w", err)
	}
	return &PresetTransformer{preset: p}, nil
}

// NewPresetTransformerFromFS loads a preset from fsys.
func NewPresetTransformerFromFS(fsys fs.FS, path string) (*PresetTransformer, error) {
	if fsys == nil {
		return nil, errors.New("preset transformer: filesystem is nil")
	}
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("preset transformer: path is required")
	}
	data, err := fs.ReadFile(fsys, path)
	if err != nil {
		return nil, fmt.Errorf("preset transformer: read %s: %w", path, err)
	}
	return NewPresetTransformer(data)
}

// Transform applies the declarative patches onto doc. Unknown field ids are
// an error.
func (t *PresetTransformer) Transform(ctx context.Context, doc *model.Document) error {
	if doc == nil {
		return errors.New("preset transformer: document is nil")
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	if name := strings.TrimSpace(t.preset.Name); name != "" {
		doc.Name = name
	}
	for id, fp := range t.preset.Fields {
		idx := doc.IndexOf(id)
		if idx < 0 {
			return fmt.Errorf("preset transformer: field %q not found", id)
		}
		patch := fp.patch()
		if err := patch.Check(); err != nil {
			return fmt.Errorf("preset transformer: field %q: %w", id, err)
		}
		doc.Fields[idx] = patch.Apply(doc.Fields[idx])
	}
	return nil
}

func (p fieldPreset) patch() document.Patch {
	out := document.Patch{
		Label:       p.Label,
		Placeholder: p.Placeholder,
		HelpText:    p.HelpText,
		Required:    p.Required,
		Pattern:     p.Pattern,
		Step:        p.Step,
	}
	if p.Options != nil {
		out.Options = p.Options
		out.SetOptions = true
	}
	if p.MinLength != nil {
		out.MinLength = document.Len(model.Length(*p.MinLength))
	}
	if p.MaxLength != nil {
		out.MaxLength = document.Len(model.Length(*p.MaxLength))
	}
	return out
}
