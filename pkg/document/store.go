package document

import (
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/goliatone/go-formbuilder/pkg/model"
	"github.com/goliatone/go-formbuilder/pkg/steps"
)

// Observer receives a copy of the document after every mutation.
type Observer interface {
	DocumentChanged(doc model.Document)
}

// ObserverFunc adapts a function into an Observer.
type ObserverFunc func(model.Document)

// DocumentChanged calls the underlying function.
func (fn ObserverFunc) DocumentChanged(doc model.Document) {
	fn(doc)
}

// Option configures a Store.
type Option func(*Store)

// WithLogger attaches a logger.
func WithLogger(logger *zap.Logger) Option {
	return func(s *Store) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithObserver registers an observer notified after each mutation.
func WithObserver(observer Observer) Option {
	return func(s *Store) {
		if observer != nil {
			s.observers = append(s.observers, observer)
		}
	}
}

// WithIDGenerator overrides the field id generator.
func WithIDGenerator(gen model.IDGenerator) Option {
	return func(s *Store) {
		if gen != nil {
			s.ids = gen
		}
	}
}

// Store is the in-memory form document edited by the canvas. Reads return
// copies, so callers never alias the stored fields.
type Store struct {
	mu        sync.RWMutex
	doc       model.Document
	selected  string
	logger    *zap.Logger
	observers []Observer
	ids       model.IDGenerator
}

// New constructs a Store seeded with doc.
func New(doc model.Document, options ...Option) *Store {
	s := &Store{
		doc:    doc.Clone(),
		logger: zap.NewNop(),
		ids:    model.NanoID,
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(s)
	}
	return s
}

// Subscribe registers an observer after construction.
func (s *Store) Subscribe(observer Observer) {
	if observer == nil {
		return
	}
	s.mu.Lock()
	s.observers = append(s.observers, observer)
	s.mu.Unlock()
}

// Document returns a copy of the current document.
func (s *Store) Document() model.Document {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.doc.Clone()
}

// Fields returns a copy of the field sequence.
func (s *Store) Fields() []model.Field {
	return s.Document().Fields
}

// Name returns the document name.
func (s *Store) Name() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.doc.Name
}

// Field looks up one field.
func (s *Store) Field(id string) (model.Field, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	field, ok := s.doc.Field(id)
	if !ok {
		return model.Field{}, false
	}
	return field.Clone(), true
}

// FieldsInStep returns the fields of one step in display order.
func (s *Store) FieldsInStep(step int) []model.Field {
	return steps.Filter(s.Fields(), step)
}

// Steps derives the step sequence from the current fields.
func (s *Store) Steps() []int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return steps.Compute(s.doc.Fields)
}

// Selected returns the field currently selected in the editor.
func (s *Store) Selected() (model.Field, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.selected == "" {
		return model.Field{}, false
	}
	field, ok := s.doc.Field(s.selected)
	if !ok {
		return model.Field{}, false
	}
	return field.Clone(), true
}

// Select marks id as the selected field. Unknown ids clear the selection.
func (s *Store) Select(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.doc.IndexOf(id) < 0 {
		s.selected = ""
		return false
	}
	s.selected = id
	return true
}

// Replace swaps the whole document, for example when opening a template.
func (s *Store) Replace(doc model.Document) {
	s.mutate(func(d *model.Document) bool {
		*d = doc.Clone()
		s.selected = ""
		return true
	})
}

// Rename changes the document name.
func (s *Store) Rename(name string) {
	s.mutate(func(d *model.Document) bool {
		if d.Name == name {
			return false
		}
		d.Name = name
		return true
	})
}

// AddField appends a new field of type t on step and selects it.
func (s *Store) AddField(t model.FieldType, step int) (model.Field, error) {
	field, err := model.NewFieldWithID(t, step, s.ids)
	if err != nil {
		return model.Field{}, fmt.Errorf("document: add field: %w", err)
	}
	s.mutate(func(d *model.Document) bool {
		d.Fields = append(d.Fields, field)
		s.selected = field.ID
		return true
	})
	s.logger.Debug("field added",
		zap.String("id", field.ID),
		zap.String("type", string(t)),
		zap.Int("step", field.Step),
	)
	return field.Clone(), nil
}

// UpdateField applies patch to the field with id. Unknown ids are a silent
// no-op and report false.
func (s *Store) UpdateField(id string, patch Patch) bool {
	return s.mutate(func(d *model.Document) bool {
		idx := d.IndexOf(id)
		if idx < 0 {
			return false
		}
		d.Fields[idx] = patch.Apply(d.Fields[idx])
		return true
	})
}

// ValidateAndUpdate is UpdateField with the configuration panel checks: a
// pattern must compile and length limits must be non-negative integers.
func (s *Store) ValidateAndUpdate(id string, patch Patch) (bool, error) {
	if err := patch.Check(); err != nil {
		return false, err
	}
	return s.UpdateField(id, patch), nil
}

// DeleteField removes the field with id, clearing the selection if needed.
func (s *Store) DeleteField(id string) bool {
	return s.mutate(func(d *model.Document) bool {
		idx := d.IndexOf(id)
		if idx < 0 {
			return false
		}
		d.Fields = append(d.Fields[:idx], d.Fields[idx+1:]...)
		if s.selected == id {
			s.selected = ""
		}
		return true
	})
}

// Reorder moves the field with id to targetIndex within the whole sequence.
// Out of range targets are clamped. Moving a field onto its own position or an
// unknown id leaves the document untouched.
func (s *Store) Reorder(id string, targetIndex int) bool {
	return s.mutate(func(d *model.Document) bool {
		from := d.IndexOf(id)
		if from < 0 {
			return false
		}
		to := targetIndex
		if to < 0 {
			to = 0
		}
		if to > len(d.Fields)-1 {
			to = len(d.Fields) - 1
		}
		if from == to {
			return false
		}
		d.Fields = move(d.Fields, from, to)
		return true
	})
}

// AddOption appends the default option label to an option-backed field.
func (s *Store) AddOption(id string) bool {
	return s.mutate(func(d *model.Document) bool {
		idx := d.IndexOf(id)
		if idx < 0 || !d.Fields[idx].Type.HasOptions() {
			return false
		}
		d.Fields[idx].Options = append(d.Fields[idx].Options, model.NewOptionLabel)
		return true
	})
}

// SetOption rewrites the option at index.
func (s *Store) SetOption(id string, index int, value string) bool {
	return s.mutate(func(d *model.Document) bool {
		idx := d.IndexOf(id)
		if idx < 0 || index < 0 || index >= len(d.Fields[idx].Options) {
			return false
		}
		d.Fields[idx].Options[index] = value
		return true
	})
}

// RemoveOption drops the option at index.
func (s *Store) RemoveOption(id string, index int) bool {
	return s.mutate(func(d *model.Document) bool {
		idx := d.IndexOf(id)
		if idx < 0 || index < 0 || index >= len(d.Fields[idx].Options) {
			return false
		}
		opts := d.Fields[idx].Options
		d.Fields[idx].Options = append(opts[:index:index], opts[index+1:]...)
		return true
	})
}

// AddStep returns the step sequence extended by one empty step. The new step
// exists only for the caller until a field is assigned to it.
func (s *Store) AddStep() []int {
	return steps.Add(s.Steps())
}

// DeleteStep removes step and every field on it. It returns the step that
// becomes active, or steps.ErrMinimumStep when step is the only one.
func (s *Store) DeleteStep(step int) (int, error) {
	var (
		active int
		err    error
	)
	s.mutate(func(d *model.Document) bool {
		var res steps.Result
		res, err = steps.Delete(steps.Compute(d.Fields), step, d.Fields)
		if err != nil {
			return false
		}
		d.Fields = res.Fields
		active = res.Active
		if s.selected != "" && d.IndexOf(s.selected) < 0 {
			s.selected = ""
		}
		return true
	})
	if err != nil {
		return 0, fmt.Errorf("document: delete step %d: %w", step, err)
	}
	s.logger.Debug("step deleted", zap.Int("step", step), zap.Int("active", active))
	return active, nil
}

// mutate runs fn under the write lock and, when fn reports a change, notifies
// observers outside the lock.
func (s *Store) mutate(fn func(*model.Document) bool) bool {
	s.mu.Lock()
	changed := fn(&s.doc)
	var (
		snapshot  model.Document
		observers []Observer
	)
	if changed {
		snapshot = s.doc.Clone()
		observers = append(observers, s.observers...)
	}
	s.mu.Unlock()

	for _, observer := range observers {
		observer.DocumentChanged(snapshot.Clone())
	}
	return changed
}

func move(fields []model.Field, from, to int) []model.Field {
	item := fields[from]
	out := make([]model.Field, 0, len(fields))
	out = append(out, fields[:from]...)
	out = append(out, fields[from+1:]...)
	out = append(out[:to], append([]model.Field{item}, out[to:]...)...)
	return out
}
