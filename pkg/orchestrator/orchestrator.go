package orchestrator

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/goliatone/go-formbuilder/pkg/model"
	"github.com/goliatone/go-formbuilder/pkg/render"
	"github.com/goliatone/go-formbuilder/pkg/renderers/html"
)

const defaultRendererName = "html"

// DocumentRenderer is implemented by renderers that can wrap their output in
// a standalone page.
type DocumentRenderer interface {
	render.Renderer
	RenderDocument(ctx context.Context, doc model.Document, options render.RenderOptions) ([]byte, error)
}

// Option customises the orchestrator configuration.
type Option func(*Orchestrator)

// WithRegistry injects a renderer registry.
func WithRegistry(registry *render.Registry) Option {
	return func(o *Orchestrator) {
		o.registry = registry
	}
}

// WithDefaultRenderer overrides the renderer used when a request omits an
// explicit Renderer field.
func WithDefaultRenderer(name string) Option {
	return func(o *Orchestrator) {
		o.defaultRenderer = name
	}
}

// WithTransformer registers a Transformer that runs before decorators.
func WithTransformer(t Transformer) Option {
	return func(o *Orchestrator) {
		o.transformer = t
	}
}

// WithDecorators registers decorators that run against the document before
// rendering.
func WithDecorators(decorators ...model.Decorator) Option {
	return func(o *Orchestrator) {
		o.decorators = append(o.decorators, decorators...)
	}
}

// WithLogger attaches a logger.
func WithLogger(logger *zap.Logger) Option {
	return func(o *Orchestrator) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// Orchestrator coordinates transformer, decorators and renderer. The zero
// configuration renders HTML.
type Orchestrator struct {
	registry        *render.Registry
	defaultRenderer string
	transformer     Transformer
	decorators      []model.Decorator
	logger          *zap.Logger
	initialiseErr   error
}

// New constructs an Orchestrator applying any provided options. A missing
// registry is replaced by one holding the HTML renderer.
func New(options ...Option) *Orchestrator {
	o := &Orchestrator{
		defaultRenderer: defaultRendererName,
		logger:          zap.NewNop(),
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(o)
	}
	if o.registry == nil {
		o.registry = render.NewRegistry()
		renderer, err := html.New(html.WithLogger(o.logger))
		if err != nil {
			o.initialiseErr = fmt.Errorf("orchestrator: default renderer: %w", err)
		} else {
			o.registry.MustRegister(renderer)
		}
	}
	return o
}

// Request describes one rendering.
type Request struct {
	Document model.Document
	// Renderer names the renderer to use. Empty falls back to the default.
	Renderer string
	// Standalone asks for a complete page when the renderer supports it.
	Standalone    bool
	RenderOptions render.RenderOptions
}

// Generate runs transformer, decorators and renderer in that order. The
// request document is never mutated.
func (o *Orchestrator) Generate(ctx context.Context, req Request) ([]byte, error) {
	if ctx == nil {
		return nil, errors.New("orchestrator: context is required")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if o.initialiseErr != nil {
		return nil, o.initialiseErr
	}

	doc, err := o.Prepare(ctx, req.Document)
	if err != nil {
		return nil, err
	}

	renderer, err := o.rendererFor(req.Renderer)
	if err != nil {
		return nil, err
	}
	o.logger.Debug("rendering document",
		zap.String("renderer", renderer.Name()),
		zap.Int("fields", len(doc.Fields)),
		zap.Bool("standalone", req.Standalone),
	)

	if standalone, ok := renderer.(DocumentRenderer); ok && req.Standalone {
		return standalone.RenderDocument(ctx, doc, req.RenderOptions)
	}
	output, err := renderer.Render(ctx, doc, req.RenderOptions)
	if err != nil {
		return nil, fmt.Errorf("orchestrator: render output: %w", err)
	}
	return output, nil
}

// Prepare returns a copy of doc with the transformer and decorators applied.
func (o *Orchestrator) Prepare(ctx context.Context, doc model.Document) (model.Document, error) {
	out := doc.Clone()
	if o.transformer != nil {
		if err := o.transformer.Transform(ctx, &out); err != nil {
			return model.Document{}, fmt.Errorf("orchestrator: transform document: %w", err)
		}
	}
	for _, decorator := range o.decorators {
		if decorator == nil {
			continue
		}
		if err := decorator.Decorate(&out); err != nil {
			return model.Document{}, fmt.Errorf("orchestrator: decorate document: %w", err)
		}
	}
	return out, nil
}

func (o *Orchestrator) rendererFor(name string) (render.Renderer, error) {
	if o.registry == nil {
		return nil, errors.New("orchestrator: renderer registry is nil")
	}
	renderer, err := o.registry.Resolve(name, o.defaultRenderer)
	if err != nil {
		return nil, fmt.Errorf("orchestrator: %w", err)
	}
	return renderer, nil
}
