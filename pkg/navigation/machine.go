package navigation

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"

	"github.com/goliatone/go-formbuilder/pkg/model"
	"github.com/goliatone/go-formbuilder/pkg/steps"
	"github.com/goliatone/go-formbuilder/pkg/validation"
)

// DefaultDelay is the waiting period between a successful Next and the step
// change.
const DefaultDelay = time.Second

var (
	// ErrBusy is returned while a step transition is pending.
	ErrBusy = errors.New("navigation: transition in progress")
	// ErrLastStep is returned by Next when the last step is valid.
	ErrLastStep = errors.New("navigation: already on the last step")
	// ErrFirstStep is returned by Back on the first step.
	ErrFirstStep = errors.New("navigation: already on the first step")
	// ErrNotLastStep is returned by Submit before the last step.
	ErrNotLastStep = errors.New("navigation: submit is only available on the last step")
	// ErrUnknownField is returned when setting a value for a field that does
	// not exist.
	ErrUnknownField = errors.New("navigation: unknown field")
	// ErrValidationFailed is matched by *ValidationFailedError.
	ErrValidationFailed = errors.New("navigation: validation failed")
)

// ValidationFailedError carries the error map of a rejected submit.
type ValidationFailedError struct {
	Step   int
	Errors validation.ErrorMap
}

func (e *ValidationFailedError) Error() string {
	ids := make([]string, 0, len(e.Errors))
	for id := range e.Errors {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return fmt.Sprintf("navigation: step %d has %d invalid field(s): %s", e.Step, len(ids), strings.Join(ids, ", "))
}

func (e *ValidationFailedError) Unwrap() error {
	return ErrValidationFailed
}

// FieldSource supplies the current field sequence. The document store
// satisfies it.
type FieldSource interface {
	Fields() []model.Field
}

// StaticFields adapts a fixed field slice into a FieldSource.
type StaticFields []model.Field

// Fields returns the slice.
func (s StaticFields) Fields() []model.Field { return s }

// State is a snapshot of the machine.
type State struct {
	CurrentStep int
	Steps       []int
	Waiting     bool
	Submitted   bool
	Errors      validation.ErrorMap
	Values      validation.Values
}

// IsFirst reports whether the current step is the first one.
func (s State) IsFirst() bool { return s.CurrentStep == steps.First(s.Steps) }

// IsLast reports whether the current step is the last one.
func (s State) IsLast() bool { return s.CurrentStep == steps.Last(s.Steps) }

// Submission is the payload produced by a successful Submit.
type Submission struct {
	Values      validation.Values
	SubmittedAt time.Time
}

// Option configures a Machine.
type Option func(*Machine)

// WithClock overrides the clock used for the waiting period.
func WithClock(clock clockwork.Clock) Option {
	return func(m *Machine) {
		if clock != nil {
			m.clock = clock
		}
	}
}

// WithDelay overrides DefaultDelay. Zero advances on the next clock tick.
func WithDelay(delay time.Duration) Option {
	return func(m *Machine) {
		if delay >= 0 {
			m.delay = delay
		}
	}
}

// WithValidator overrides the validator.
func WithValidator(v *validation.Validator) Option {
	return func(m *Machine) {
		if v != nil {
			m.validator = v
		}
	}
}

// WithLogger attaches a logger.
func WithLogger(logger *zap.Logger) Option {
	return func(m *Machine) {
		if logger != nil {
			m.logger = logger
		}
	}
}

// WithValues seeds collected values.
func WithValues(values validation.Values) Option {
	return func(m *Machine) {
		m.values = values.Clone()
	}
}

// Machine drives a respondent through the steps of a form. Values survive
// moving back and forth; errors only ever describe the last validation pass.
type Machine struct {
	source    FieldSource
	clock     clockwork.Clock
	delay     time.Duration
	validator *validation.Validator
	logger    *zap.Logger

	mu        sync.Mutex
	current   int
	waiting   bool
	submitted bool
	errors    validation.ErrorMap
	values    validation.Values
	done      chan struct{}
	timer     clockwork.Timer
}

// New constructs a Machine positioned on the first step of source.
func New(source FieldSource, options ...Option) *Machine {
	m := &Machine{
		source:    source,
		clock:     clockwork.NewRealClock(),
		delay:     DefaultDelay,
		validator: validation.New(),
		logger:    zap.NewNop(),
		errors:    validation.ErrorMap{},
		values:    validation.Values{},
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(m)
	}
	m.current = steps.First(m.sequence())
	return m
}

func (m *Machine) fields() []model.Field {
	if m.source == nil {
		return nil
	}
	return m.source.Fields()
}

func (m *Machine) sequence() []int {
	return steps.Compute(m.fields())
}

// anchor re-positions on the first step when the current one disappeared.
// Callers hold m.mu.
func (m *Machine) anchor(seq []int) {
	if steps.Contains(seq, m.current) {
		return
	}
	first := steps.First(seq)
	m.logger.Debug("current step vanished, re-anchoring",
		zap.Int("from", m.current),
		zap.Int("to", first),
	)
	m.current = first
	m.errors = validation.ErrorMap{}
}

// State returns a snapshot.
func (m *Machine) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	seq := m.sequence()
	if !m.waiting {
		m.anchor(seq)
	}
	errs := make(validation.ErrorMap, len(m.errors))
	for k, v := range m.errors {
		errs[k] = v
	}
	return State{
		CurrentStep: m.current,
		Steps:       seq,
		Waiting:     m.waiting,
		Submitted:   m.submitted,
		Errors:      errs,
		Values:      m.values.Clone(),
	}
}

// CurrentFields returns the fields of the current step.
func (m *Machine) CurrentFields() []model.Field {
	state := m.State()
	return steps.Filter(m.fields(), state.CurrentStep)
}

// SetValue records the value for field id.
func (m *Machine) SetValue(id string, value any) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.waiting {
		return ErrBusy
	}
	if _, ok := (model.Document{Fields: m.fields()}).Field(id); !ok {
		return fmt.Errorf("%w: %s", ErrUnknownField, id)
	}
	if list, ok := value.([]string); ok {
		value = append([]string{}, list...)
	}
	m.values[id] = value
	m.submitted = false
	return nil
}

// ToggleOption adds or removes option from the selection of a checkbox group.
// Selections keep the order in which options were checked.
func (m *Machine) ToggleOption(id, option string, checked bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.waiting {
		return ErrBusy
	}
	if _, ok := (model.Document{Fields: m.fields()}).Field(id); !ok {
		return fmt.Errorf("%w: %s", ErrUnknownField, id)
	}
	current, _ := m.values[id].([]string)
	next := make([]string, 0, len(current)+1)
	for _, item := range current {
		if item != option {
			next = append(next, item)
		}
	}
	if checked {
		next = append(next, option)
	}
	m.values[id] = next
	m.submitted = false
	return nil
}

// Next validates the current step. On failure it stores the error map and
// reports false, on the last step too. A valid last step returns
// ErrLastStep. Otherwise it enters the waiting state and, once the delay
// elapses, moves to the next larger step value.
func (m *Machine) Next() (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.waiting {
		return false, ErrBusy
	}
	seq := m.sequence()
	m.anchor(seq)

	m.errors = m.validator.Validate(steps.Filter(m.fields(), m.current), m.values)
	if !m.errors.Empty() {
		m.logger.Debug("step rejected",
			zap.Int("step", m.current),
			zap.Int("errors", len(m.errors)),
		)
		return false, nil
	}
	if m.current == steps.Last(seq) {
		return false, ErrLastStep
	}

	m.waiting = true
	m.done = make(chan struct{})
	m.timer = m.clock.AfterFunc(m.delay, m.advance)
	return true, nil
}

func (m *Machine) advance() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.waiting {
		return
	}
	from := m.current
	seq := m.sequence()
	if next, ok := steps.Next(seq, m.current); ok {
		m.current = next
	} else {
		m.current = steps.First(seq)
	}
	m.waiting = false
	m.timer = nil
	close(m.done)
	m.logger.Debug("step advanced", zap.Int("from", from), zap.Int("to", m.current))
}

// Done returns a channel closed once the pending transition completes. When
// nothing is pending the channel is already closed.
func (m *Machine) Done() <-chan struct{} {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.waiting && m.done != nil {
		return m.done
	}
	ch := make(chan struct{})
	close(ch)
	return ch
}

// Wait blocks until the pending transition completes or ctx ends.
func (m *Machine) Wait(ctx context.Context) error {
	select {
	case <-m.Done():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Back moves to the previous step value without validating.
func (m *Machine) Back() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.waiting {
		return ErrBusy
	}
	seq := m.sequence()
	m.anchor(seq)
	prev, ok := steps.Prev(seq, m.current)
	if !ok {
		return ErrFirstStep
	}
	m.current = prev
	m.errors = validation.ErrorMap{}
	return nil
}

// Submit validates the last step and, on success, returns the collected
// values. Failures return a *ValidationFailedError.
func (m *Machine) Submit() (Submission, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.waiting {
		return Submission{}, ErrBusy
	}
	seq := m.sequence()
	m.anchor(seq)
	if m.current != steps.Last(seq) {
		return Submission{}, ErrNotLastStep
	}

	m.errors = m.validator.Validate(steps.Filter(m.fields(), m.current), m.values)
	if !m.errors.Empty() {
		errs := make(validation.ErrorMap, len(m.errors))
		for k, v := range m.errors {
			errs[k] = v
		}
		return Submission{}, &ValidationFailedError{Step: m.current, Errors: errs}
	}

	m.submitted = true
	m.logger.Info("form submitted", zap.Int("values", len(m.values)))
	return Submission{Values: m.values.Clone(), SubmittedAt: m.clock.Now()}, nil
}

// Reset returns to the first step, clearing values, errors and any pending
// transition.
func (m *Machine) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.timer != nil {
		m.timer.Stop()
		m.timer = nil
	}
	if m.waiting {
		m.waiting = false
		close(m.done)
	}
	m.current = steps.First(m.sequence())
	m.submitted = false
	m.errors = validation.ErrorMap{}
	m.values = validation.Values{}
}
