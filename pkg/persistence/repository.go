// Package persistence maps the form builder state onto the storage keys the
// editor has always used: formTemplates, liveForm, liveFormName, sharedForms
// and theme. Every value is JSON.
package persistence

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/jonboulle/clockwork"
	"github.com/segmentio/ksuid"
	"go.uber.org/zap"

	"github.com/goliatone/go-formbuilder/pkg/model"
	"github.com/goliatone/go-formbuilder/pkg/storage"
)

// Storage keys.
const (
	KeyTemplates = "formTemplates"
	KeyLive      = "liveForm"
	KeyLiveName  = "liveFormName"
	KeyShared    = "sharedForms"
	KeyTheme     = "theme"
)

// Theme values.
const (
	ThemeLight = "light"
	ThemeDark  = "dark"
)

// UntitledForm is shown for shared forms stored without a name.
const UntitledForm = "Untitled Form"

// SharedForm is one entry of sharedForms.
type SharedForm struct {
	Name   string        `json:"name"`
	Fields []model.Field `json:"fields"`
}

// Option configures a Repository.
type Option func(*Repository)

// WithLogger attaches a logger.
func WithLogger(logger *zap.Logger) Option {
	return func(r *Repository) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithClock sets the clock whose time is embedded in share ids.
func WithClock(clock clockwork.Clock) Option {
	return func(r *Repository) {
		if clock != nil {
			r.clock = clock
		}
	}
}

// Repository reads and writes the typed state.
type Repository struct {
	store  storage.Adapter
	logger *zap.Logger
	clock  clockwork.Clock

	// serialises read-modify-write of the map valued keys
	mu sync.Mutex
}

// New wraps store.
func New(store storage.Adapter, options ...Option) *Repository {
	r := &Repository{
		store:  store,
		logger: zap.NewNop(),
		clock:  clockwork.NewRealClock(),
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(r)
	}
	return r
}

// load decodes key into out. found is false when the key is absent.
func (r *Repository) load(ctx context.Context, key string, out any) (bool, error) {
	raw, err := r.store.Load(ctx, key)
	if err != nil {
		if errors.Is(err, storage.ErrKeyNotFound) {
			return false, nil
		}
		return false, fmt.Errorf("persistence: load %s: %w", key, err)
	}
	if err := json.Unmarshal(raw, out); err != nil {
		r.logger.Warn("corrupt persisted value", zap.String("key", key), zap.Error(err))
		return true, &CorruptStateError{Key: key, Err: err}
	}
	return true, nil
}

func (r *Repository) save(ctx context.Context, key string, value any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("persistence: encode %s: %w", key, err)
	}
	if err := r.store.Save(ctx, key, raw); err != nil {
		return fmt.Errorf("persistence: save %s: %w", key, err)
	}
	return nil
}

// LoadLive returns the document open in the editor. A corrupt record yields
// an empty document together with a *CorruptStateError so the caller can
// tell the user.
func (r *Repository) LoadLive(ctx context.Context) (model.Document, error) {
	fields := []model.Field{}
	if _, err := r.load(ctx, KeyLive, &fields); err != nil {
		return model.Document{Fields: []model.Field{}}, err
	}
	var name string
	if _, err := r.load(ctx, KeyLiveName, &name); err != nil {
		return model.Document{Fields: nonNil(fields)}, err
	}
	return model.Document{Name: name, Fields: nonNil(fields)}, nil
}

// SaveLive writes liveForm and liveFormName.
func (r *Repository) SaveLive(ctx context.Context, doc model.Document) error {
	if err := r.save(ctx, KeyLive, fieldsOf(doc)); err != nil {
		return err
	}
	return r.save(ctx, KeyLiveName, doc.Name)
}

// Templates returns every named template.
func (r *Repository) Templates(ctx context.Context) (map[string][]model.Field, error) {
	out := map[string][]model.Field{}
	if _, err := r.load(ctx, KeyTemplates, &out); err != nil {
		return map[string][]model.Field{}, err
	}
	if out == nil {
		out = map[string][]model.Field{}
	}
	return out, nil
}

// TemplateNames returns the template names sorted alphabetically.
func (r *Repository) TemplateNames(ctx context.Context) ([]string, error) {
	templates, err := r.Templates(ctx)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(templates))
	for name := range templates {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

// Template returns the named template as a document.
func (r *Repository) Template(ctx context.Context, name string) (model.Document, error) {
	templates, err := r.Templates(ctx)
	if err != nil {
		return model.Document{}, err
	}
	fields, ok := templates[name]
	if !ok {
		return model.Document{}, &NotFoundError{Kind: "template", Name: name}
	}
	return model.Document{Name: name, Fields: nonNil(fields)}, nil
}

// recoverable splits a read error of a map valued key. A corrupt value is
// replaced by the empty map on the next write, so it is handed back as the
// error to report once that write succeeded.
func (r *Repository) recoverable(key string, err error) (*CorruptStateError, error) {
	var corrupt *CorruptStateError
	if errors.As(err, &corrupt) {
		r.logger.Warn("overwriting corrupt persisted value", zap.String("key", key))
		return corrupt, nil
	}
	return nil, err
}

// SaveTemplate stores doc under its name, replacing an existing entry. A
// corrupt formTemplates value is reset to hold only doc; the write succeeds
// and the *CorruptStateError is returned so the caller can tell the user.
func (r *Repository) SaveTemplate(ctx context.Context, doc model.Document) error {
	name := strings.TrimSpace(doc.Name)
	if name == "" {
		return ErrUnnamed
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	templates, err := r.Templates(ctx)
	corrupt, err := r.recoverable(KeyTemplates, err)
	if err != nil {
		return err
	}
	templates[name] = fieldsOf(doc)
	if err := r.save(ctx, KeyTemplates, templates); err != nil {
		return err
	}
	return corruptErr(corrupt)
}

// DeleteTemplate removes the named template. A corrupt formTemplates value
// is reset to the empty map and reported like in SaveTemplate.
func (r *Repository) DeleteTemplate(ctx context.Context, name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	templates, err := r.Templates(ctx)
	corrupt, err := r.recoverable(KeyTemplates, err)
	if err != nil {
		return err
	}
	if corrupt != nil {
		if err := r.save(ctx, KeyTemplates, templates); err != nil {
			return err
		}
		return corrupt
	}
	if _, ok := templates[name]; !ok {
		return &NotFoundError{Kind: "template", Name: name}
	}
	delete(templates, name)
	return r.save(ctx, KeyTemplates, templates)
}

// corruptErr keeps a nil *CorruptStateError from becoming a non-nil error.
func corruptErr(corrupt *CorruptStateError) error {
	if corrupt == nil {
		return nil
	}
	return corrupt
}

// OpenTemplate loads the named template and makes it the live document.
func (r *Repository) OpenTemplate(ctx context.Context, name string) (model.Document, error) {
	doc, err := r.Template(ctx, name)
	if err != nil {
		return model.Document{}, err
	}
	if err := r.SaveLive(ctx, doc); err != nil {
		return model.Document{}, err
	}
	return doc, nil
}

func (r *Repository) sharedForms(ctx context.Context) (map[string]SharedForm, error) {
	out := map[string]SharedForm{}
	if _, err := r.load(ctx, KeyShared, &out); err != nil {
		return map[string]SharedForm{}, err
	}
	if out == nil {
		out = map[string]SharedForm{}
	}
	return out, nil
}

// Share snapshots doc under a new id derived from the current time. Over a
// corrupt sharedForms value the id is valid and returned together with the
// *CorruptStateError.
func (r *Repository) Share(ctx context.Context, doc model.Document) (string, error) {
	id, err := ksuid.NewRandomWithTime(r.clock.Now())
	if err != nil {
		return "", fmt.Errorf("persistence: generate share id: %w", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	shared, err := r.sharedForms(ctx)
	corrupt, err := r.recoverable(KeyShared, err)
	if err != nil {
		return "", err
	}
	shared[id.String()] = SharedForm{Name: doc.Name, Fields: fieldsOf(doc)}
	if err := r.save(ctx, KeyShared, shared); err != nil {
		return "", err
	}
	r.logger.Info("form shared", zap.String("share_id", id.String()), zap.String("name", doc.Name))
	return id.String(), corruptErr(corrupt)
}

// Shared resolves a share id. Shared forms saved without a name come back as
// UntitledForm.
func (r *Repository) Shared(ctx context.Context, id string) (model.Document, error) {
	shared, err := r.sharedForms(ctx)
	if err != nil {
		return model.Document{}, err
	}
	form, ok := shared[id]
	if !ok {
		return model.Document{}, &NotFoundError{Kind: "shared form", Name: id}
	}
	name := form.Name
	if name == "" {
		name = UntitledForm
	}
	return model.Document{Name: name, Fields: nonNil(form.Fields)}, nil
}

// OpenShared resolves id and copies the shared fields into liveForm.
func (r *Repository) OpenShared(ctx context.Context, id string) (model.Document, error) {
	doc, err := r.Shared(ctx, id)
	if err != nil {
		return model.Document{}, err
	}
	if err := r.save(ctx, KeyLive, fieldsOf(doc)); err != nil {
		return model.Document{}, err
	}
	return doc, nil
}

// ShareURL builds the public link for id.
func ShareURL(origin, id string) string {
	return strings.TrimRight(origin, "/") + "/form/" + id
}

// Theme returns the stored theme, defaulting to light.
func (r *Repository) Theme(ctx context.Context) (string, error) {
	var theme string
	found, err := r.load(ctx, KeyTheme, &theme)
	if err != nil {
		return ThemeLight, err
	}
	if !found || (theme != ThemeLight && theme != ThemeDark) {
		return ThemeLight, nil
	}
	return theme, nil
}

// SetTheme stores light or dark.
func (r *Repository) SetTheme(ctx context.Context, theme string) error {
	if theme != ThemeLight && theme != ThemeDark {
		return fmt.Errorf("%w: %q", ErrInvalidTheme, theme)
	}
	return r.save(ctx, KeyTheme, theme)
}

func fieldsOf(doc model.Document) []model.Field {
	return nonNil(doc.Clone().Fields)
}

func nonNil(fields []model.Field) []model.Field {
	if fields == nil {
		return []model.Field{}
	}
	return fields
}
