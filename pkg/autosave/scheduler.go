// Package autosave debounces document edits into persistence writes. Every
// edit re-arms a single timer; only the latest document is written once the
// edits go quiet.
package autosave

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"

	"github.com/goliatone/go-formbuilder/pkg/model"
)

// DefaultDelay is the quiet period before a write.
const DefaultDelay = 5 * time.Second

// Sink receives the writes. *persistence.Repository satisfies it.
type Sink interface {
	SaveLive(ctx context.Context, doc model.Document) error
	SaveTemplate(ctx context.Context, doc model.Document) error
}

// Option configures a Scheduler.
type Option func(*Scheduler)

// WithDelay overrides DefaultDelay.
func WithDelay(d time.Duration) Option {
	return func(s *Scheduler) {
		if d > 0 {
			s.delay = d
		}
	}
}

// WithClock overrides the clock.
func WithClock(clock clockwork.Clock) Option {
	return func(s *Scheduler) {
		if clock != nil {
			s.clock = clock
		}
	}
}

// WithLogger attaches a logger.
func WithLogger(logger *zap.Logger) Option {
	return func(s *Scheduler) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithErrorHandler receives failed timer-driven writes.
func WithErrorHandler(fn func(error)) Option {
	return func(s *Scheduler) {
		s.onError = fn
	}
}

// Scheduler coalesces bursts of edits into one write set: liveForm,
// liveFormName and, for named documents, the formTemplates entry.
type Scheduler struct {
	sink    Sink
	clock   clockwork.Clock
	delay   time.Duration
	logger  *zap.Logger
	onError func(error)

	mu      sync.Mutex
	pending *model.Document
	timer   clockwork.Timer
	gen     uint64
	stopped bool
}

// New constructs a Scheduler writing to sink.
func New(sink Sink, options ...Option) *Scheduler {
	s := &Scheduler{
		sink:   sink,
		clock:  clockwork.NewRealClock(),
		delay:  DefaultDelay,
		logger: zap.NewNop(),
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(s)
	}
	return s
}

// DocumentChanged lets the scheduler observe a document store.
func (s *Scheduler) DocumentChanged(doc model.Document) {
	s.Schedule(doc)
}

// Schedule replaces any pending document with doc and re-arms the timer.
func (s *Scheduler) Schedule(doc model.Document) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopped {
		return
	}
	if s.timer != nil {
		s.timer.Stop()
	}
	clone := doc.Clone()
	s.pending = &clone
	s.gen++
	gen := s.gen
	s.timer = s.clock.AfterFunc(s.delay, func() { s.fire(gen) })
}

func (s *Scheduler) fire(gen uint64) {
	s.mu.Lock()
	if gen != s.gen || s.pending == nil {
		s.mu.Unlock()
		return
	}
	doc := *s.pending
	s.pending = nil
	s.timer = nil
	s.mu.Unlock()

	if err := s.write(context.Background(), doc); err != nil {
		s.logger.Error("autosave failed", zap.Error(err))
		if s.onError != nil {
			s.onError(err)
		}
	}
}

// Flush writes the pending document now, if any.
func (s *Scheduler) Flush(ctx context.Context) error {
	s.mu.Lock()
	if s.pending == nil {
		s.mu.Unlock()
		return nil
	}
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	doc := *s.pending
	s.pending = nil
	s.gen++
	s.mu.Unlock()

	return s.write(ctx, doc)
}

// Stop cancels the pending write and ignores later Schedule calls.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	s.pending = nil
	s.gen++
	s.stopped = true
}

// Pending reports whether a write is waiting for its timer.
func (s *Scheduler) Pending() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pending != nil
}

func (s *Scheduler) write(ctx context.Context, doc model.Document) error {
	if err := s.sink.SaveLive(ctx, doc); err != nil {
		return err
	}
	if strings.TrimSpace(doc.Name) != "" {
		if err := s.sink.SaveTemplate(ctx, doc); err != nil {
			return err
		}
	}
	s.logger.Debug("autosaved",
		zap.String("name", doc.Name),
		zap.Int("fields", len(doc.Fields)),
	)
	return nil
}
