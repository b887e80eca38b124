// Package server publishes shared forms over HTTP. Respondents open
// /form/{shareID} to fill a form step by step; the same routes validate a
// step, accept a submission and describe the payload as OpenAPI.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	gotheme "github.com/goliatone/go-theme"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/goliatone/go-formbuilder/pkg/model"
	"github.com/goliatone/go-formbuilder/pkg/renderers/html"
	"github.com/goliatone/go-formbuilder/pkg/theme"
	"github.com/goliatone/go-formbuilder/pkg/validation"
)

// MaxBodyBytes caps request bodies of the validate and submit routes.
const MaxBodyBytes = 1 << 20

// FormSource looks up shared forms. *persistence.Repository satisfies it.
type FormSource interface {
	Shared(ctx context.Context, id string) (model.Document, error)
}

// Option configures a Server.
type Option func(*Server)

// WithLogger attaches a logger.
func WithLogger(logger *zap.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithRenderer overrides the HTML renderer.
func WithRenderer(renderer *html.Renderer) Option {
	return func(s *Server) {
		if renderer != nil {
			s.html = renderer
		}
	}
}

// WithValidator overrides the validation engine.
func WithValidator(v *validation.Validator) Option {
	return func(s *Server) {
		if v != nil {
			s.validator = v
		}
	}
}

// WithTheme resolves the page theme from store through selector. Without it
// pages render unthemed.
func WithTheme(store theme.Store, selector gotheme.ThemeSelector) Option {
	return func(s *Server) {
		s.themeStore = store
		s.themes = selector
	}
}

// WithRegistry registers metrics with reg and serves them on /metrics. The
// default is a private registry.
func WithRegistry(reg *prometheus.Registry) Option {
	return func(s *Server) {
		if reg != nil {
			s.registry = reg
		}
	}
}

// WithHealthCheck adds a dependency probe to /healthz.
func WithHealthCheck(check func(context.Context) error) Option {
	return func(s *Server) {
		s.health = check
	}
}

// Server serves shared forms.
type Server struct {
	forms      FormSource
	html       *html.Renderer
	validator  *validation.Validator
	themeStore theme.Store
	themes     gotheme.ThemeSelector
	registry   *prometheus.Registry
	metrics    *Metrics
	health     func(context.Context) error
	logger     *zap.Logger
	router     chi.Router
}

// New builds the server and its routes.
func New(forms FormSource, options ...Option) (*Server, error) {
	if forms == nil {
		return nil, errors.New("server: form source is required")
	}
	s := &Server{
		forms:     forms,
		validator: validation.New(),
		logger:    zap.NewNop(),
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(s)
	}
	if s.html == nil {
		renderer, err := html.New(html.WithLogger(s.logger))
		if err != nil {
			return nil, fmt.Errorf("server: %w", err)
		}
		s.html = renderer
	}
	if s.registry == nil {
		s.registry = prometheus.NewRegistry()
	}
	s.metrics = NewMetrics(s.registry)
	s.router = s.routes()
	return s, nil
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(recoverer(s.logger))
	r.Use(chimiddleware.RequestID)
	r.Use(requestLogger(s.logger))
	r.Use(s.metrics.Middleware())

	r.Get("/healthz", s.handleHealth)
	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{}))
	r.Handle(theme.AssetPrefix+"/*", http.StripPrefix(theme.AssetPrefix+"/", http.FileServerFS(theme.AssetsFS())))

	r.Route("/form/{shareID}", func(r chi.Router) {
		r.Get("/", s.handleForm)
		r.Post("/", s.handleSubmit)
		r.Post("/validate", s.handleValidate)
		r.Get("/schema", s.handleSchema)
	})
	r.NotFound(s.handleNotFound)
	return r
}

// Handler returns the root handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// ServeConfig tunes Run.
type ServeConfig struct {
	Addr            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
}

// Run serves until ctx ends, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, cfg ServeConfig) error {
	srv := &http.Server{
		Addr:         cfg.Addr,
		Handler:      s.router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("starting HTTP server", zap.String("addr", cfg.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	timeout := cfg.ShutdownTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	s.logger.Info("shutting down HTTP server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server: shutdown: %w", err)
	}
	return nil
}
