// Package formbuilder is the top-level entry point for callers that only need
// to render a stored form without wiring the individual packages.
package formbuilder

import (
	"context"

	"github.com/goliatone/go-formbuilder/pkg/model"
	"github.com/goliatone/go-formbuilder/pkg/orchestrator"
	"github.com/goliatone/go-formbuilder/pkg/render"
)

// Document is the whole-form document.
type Document = model.Document

// Field is one form control.
type Field = model.Field

// RenderOptions describes the preview state a renderer draws.
type RenderOptions = render.RenderOptions

// NewOrchestrator exposes the orchestrator constructor from the top-level
// module.
func NewOrchestrator(options ...orchestrator.Option) *orchestrator.Orchestrator {
	return orchestrator.New(options...)
}

// RenderHTML renders doc as a standalone HTML page using the built-in
// renderer unless options register another default.
func RenderHTML(ctx context.Context, doc Document, renderOptions RenderOptions, options ...orchestrator.Option) ([]byte, error) {
	return orchestrator.New(options...).Generate(ctx, orchestrator.Request{
		Document:      doc,
		Standalone:    true,
		RenderOptions: renderOptions,
	})
}
