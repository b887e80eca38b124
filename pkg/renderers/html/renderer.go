// Package html renders one step of a form preview as an HTML fragment using
// the embedded pongo2 templates.
package html

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"sort"
	"strings"

	theme "github.com/goliatone/go-theme"
	"go.uber.org/zap"

	"github.com/goliatone/go-formbuilder/pkg/model"
	"github.com/goliatone/go-formbuilder/pkg/render"
	rendertemplate "github.com/goliatone/go-formbuilder/pkg/render/template"
	"github.com/goliatone/go-formbuilder/pkg/render/template/pongo"
	"github.com/goliatone/go-formbuilder/pkg/steps"
)

// Option configures the renderer.
type Option func(*config)

type config struct {
	templateFS fs.FS
	templates  rendertemplate.TemplateRenderer
	logger     *zap.Logger
}

// WithTemplatesFS replaces the embedded templates.
func WithTemplatesFS(files fs.FS) Option {
	return func(cfg *config) {
		cfg.templateFS = files
	}
}

// WithTemplatesDir loads templates from a directory on disk.
func WithTemplatesDir(path string) Option {
	return func(cfg *config) {
		if path == "" {
			return
		}
		cfg.templateFS = os.DirFS(path)
	}
}

// WithTemplateRenderer injects a template engine.
func WithTemplateRenderer(renderer rendertemplate.TemplateRenderer) Option {
	return func(cfg *config) {
		if renderer != nil {
			cfg.templates = renderer
		}
	}
}

// WithLogger attaches a logger.
func WithLogger(logger *zap.Logger) Option {
	return func(cfg *config) {
		if logger != nil {
			cfg.logger = logger
		}
	}
}

// Renderer renders preview steps as HTML.
type Renderer struct {
	templates rendertemplate.TemplateRenderer
	logger    *zap.Logger
}

var _ render.Renderer = (*Renderer)(nil)

// New constructs the renderer.
func New(options ...Option) (*Renderer, error) {
	cfg := config{logger: zap.NewNop()}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(&cfg)
	}
	if cfg.templateFS == nil {
		cfg.templateFS = TemplatesFS()
	}

	templates := cfg.templates
	if templates == nil {
		engine, err := pongo.New(
			pongo.WithFS(cfg.templateFS),
			pongo.WithExtension(".tmpl"),
			pongo.WithSetName("formbuilder-html"),
		)
		if err != nil {
			return nil, fmt.Errorf("html renderer: configure templates: %w", err)
		}
		templates = engine
	}
	return &Renderer{templates: templates, logger: cfg.logger}, nil
}

func (r *Renderer) Name() string {
	return "html"
}

func (r *Renderer) ContentType() string {
	return "text/html; charset=utf-8"
}

// Render draws the step selected by options.
func (r *Renderer) Render(ctx context.Context, doc model.Document, options render.RenderOptions) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := r.page(doc, options)
	if err != nil {
		return nil, err
	}
	out, err := r.templates.RenderTemplate("page", data)
	if err != nil {
		return nil, fmt.Errorf("html renderer: render page: %w", err)
	}
	return []byte(out), nil
}

// RenderDocument wraps Render in a standalone HTML page.
func (r *Renderer) RenderDocument(ctx context.Context, doc model.Document, options render.RenderOptions) ([]byte, error) {
	body, err := r.Render(ctx, doc, options)
	if err != nil {
		return nil, err
	}
	return r.wrap(title(doc, options), options.Theme, string(body))
}

// RenderNotFound draws the placeholder shown for unknown share ids.
func (r *Renderer) RenderNotFound(_ context.Context) ([]byte, error) {
	body, err := r.templates.RenderTemplate("not_found", map[string]any{"message": render.NotFoundMessage})
	if err != nil {
		return nil, fmt.Errorf("html renderer: render not found: %w", err)
	}
	return r.wrap(render.NotFoundMessage, nil, body)
}

func (r *Renderer) wrap(pageTitle string, cfg *theme.RendererConfig, body string) ([]byte, error) {
	out, err := r.templates.RenderTemplate("document", map[string]any{
		"title":      pageTitle,
		"theme_name": themeName(cfg),
		"stylesheet": stylesheet(cfg),
		"body":       body,
	})
	if err != nil {
		return nil, fmt.Errorf("html renderer: render document: %w", err)
	}
	return []byte(out), nil
}

func (r *Renderer) page(doc model.Document, options render.RenderOptions) (map[string]any, error) {
	seq := steps.Compute(doc.Fields)
	step := options.ResolveStep(seq)
	position, total := steps.Position(seq, step)

	fields := make([]any, 0)
	for _, field := range steps.Filter(doc.Fields, step) {
		var value any
		if options.Values != nil {
			value = options.Values[field.ID]
		}
		view, err := buildField(field, value, options.Errors[field.ID])
		if err != nil {
			r.logger.Warn("skipping field", zap.String("id", field.ID), zap.Error(err))
			continue
		}
		fields = append(fields, view.context())
	}

	data := map[string]any{
		"title":             sanitizeText(title(doc, options)),
		"action":            options.Action,
		"empty":             len(doc.Fields) == 0,
		"waiting":           options.Waiting,
		"submitted":         options.Submitted,
		"step":              step,
		"position":          position,
		"total":             total,
		"first":             step == steps.First(seq),
		"last":              step == steps.Last(seq),
		"fields":            fields,
		"carried":           carriedValues(doc.Fields, step, options.Values),
		"theme":             themeView(options.Theme),
		"empty_message":     render.EmptyMessage,
		"waiting_message":   render.WaitingMessage,
		"submitted_message": render.SubmittedMessage,
	}
	return data, nil
}

func title(doc model.Document, options render.RenderOptions) string {
	if options.Title != "" {
		return options.Title
	}
	return doc.Name
}

func themeName(cfg *theme.RendererConfig) string {
	if cfg == nil {
		return ""
	}
	return cfg.Variant
}

func stylesheet(cfg *theme.RendererConfig) string {
	if cfg == nil || cfg.AssetURL == nil {
		return ""
	}
	return cfg.AssetURL("html.stylesheet")
}

func themeView(cfg *theme.RendererConfig) map[string]any {
	if cfg == nil {
		return map[string]any{}
	}
	return map[string]any{
		"name":     cfg.Theme,
		"variant":  cfg.Variant,
		"css_vars": cssVarsStyle(cfg.CSSVars),
	}
}

func cssVarsStyle(vars map[string]string) string {
	if len(vars) == 0 {
		return ""
	}
	keys := make([]string, 0, len(vars))
	for key := range vars {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	var b strings.Builder
	for i, key := range keys {
		if i > 0 {
			b.WriteString(" ")
		}
		b.WriteString(key)
		b.WriteString(": ")
		b.WriteString(vars[key])
		b.WriteString(";")
	}
	return b.String()
}
