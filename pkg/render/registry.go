package render

import (
	"errors"
	"fmt"
	"sync"
)

var (
	// ErrRendererNotFound is returned for names nothing was registered under.
	ErrRendererNotFound = errors.New("render: renderer not found")
	// ErrNoRenderers is returned by Resolve on an empty registry.
	ErrNoRenderers = errors.New("render: no renderers registered")
)

// Registry holds the preview renderers of a process, in registration order.
type Registry struct {
	mu        sync.RWMutex
	renderers map[string]Renderer
	order     []string
}

func NewRegistry() *Registry {
	return &Registry{renderers: make(map[string]Renderer)}
}

// Register adds renderer under its Name. Names are unique.
func (r *Registry) Register(renderer Renderer) error {
	if renderer == nil {
		return errors.New("render: renderer is required")
	}
	name := renderer.Name()
	if name == "" {
		return errors.New("render: renderer name is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, taken := r.renderers[name]; taken {
		return fmt.Errorf("render: renderer %q already registered", name)
	}
	r.renderers[name] = renderer
	r.order = append(r.order, name)
	return nil
}

// MustRegister is Register for wiring code that cannot recover.
func (r *Registry) MustRegister(renderer Renderer) {
	if err := r.Register(renderer); err != nil {
		panic(err)
	}
}

func (r *Registry) Get(name string) (Renderer, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if renderer, ok := r.renderers[name]; ok {
		return renderer, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrRendererNotFound, name)
}

// Names lists the registered names in registration order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]string(nil), r.order...)
}

// Resolve picks the renderer of a preview request. An explicit name must be
// registered. An empty name tries preferred and then the first renderer
// registered.
func (r *Registry) Resolve(name, preferred string) (Renderer, error) {
	if name != "" {
		return r.Get(name)
	}

	r.mu.RLock()
	defer r.mu.RUnlock()
	if renderer, ok := r.renderers[preferred]; ok && preferred != "" {
		return renderer, nil
	}
	if len(r.order) == 0 {
		return nil, ErrNoRenderers
	}
	return r.renderers[r.order[0]], nil
}
