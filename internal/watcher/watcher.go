package watcher

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/sakya146/termscan/internal/model"
)

// State is the watcher lifecycle state.
type State int

const (
	// StateIdle means the watcher has not started.
	StateIdle State = iota
	// StateWatching means the initial classification found nothing and the
	// watcher is waiting for page changes.
	StateWatching
	// StateSettled means a classification found at least one link. Settled
	// is terminal: a new page load needs a new Watcher.
	StateSettled
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateWatching:
		return "watching"
	case StateSettled:
		return "settled"
	default:
		return "unknown"
	}
}

// Source emits an event whenever the observed page may have changed.
type Source interface {
	// Events returns the change event channel. A closed channel means the
	// source can produce no further events.
	Events() <-chan struct{}
	// Close stops the source. Safe to call more than once.
	Close() error
}

// ClassifyFunc runs one classification pass over the current page content.
type ClassifyFunc func(ctx context.Context) (model.DetectionResult, error)

// defaultFallbackDelay is the delay before the one-shot fallback re-check.
// It covers content injected without an observable change event.
const defaultFallbackDelay = 2000 * time.Millisecond

// Watcher drives classification until links are found.
//
// Design decision: Each trigger independently re-runs the full
// classification rather than diffing page regions because classification is
// idempotent and cheap relative to the fetch; redundant runs are safe, and
// the settled guard makes late triggers no-ops.
type Watcher struct {
	source        Source
	classify      ClassifyFunc
	fallbackDelay time.Duration
	logger        *slog.Logger

	mu     sync.Mutex
	state  State
	result model.DetectionResult
}

// Option configures a Watcher.
type Option func(*Watcher)

// WithFallbackDelay overrides the fallback re-check delay.
func WithFallbackDelay(d time.Duration) Option {
	return func(w *Watcher) {
		if d > 0 {
			w.fallbackDelay = d
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(w *Watcher) {
		if logger != nil {
			w.logger = logger
		}
	}
}

// New creates a Watcher over the given change source and classifier.
func New(source Source, classify ClassifyFunc, opts ...Option) *Watcher {
	w := &Watcher{
		source:        source,
		classify:      classify,
		fallbackDelay: defaultFallbackDelay,
		logger:        slog.Default(),
		state:         StateIdle,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// State returns the current lifecycle state.
func (w *Watcher) State() State {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.state
}

// Result returns the detection result recorded at settle time.
func (w *Watcher) Result() model.DetectionResult {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.result
}

// Run drives the state machine until it settles or ctx expires.
//
// The initial classification runs first: a non-empty result settles without
// watching at all. Otherwise Run blocks on change events and the fallback
// timer, settling on the first re-classification that finds at least one
// link. A fallback re-check that finds nothing leaves the watcher watching;
// only ctx bounds the total wait. On ctx expiry Run returns the last
// (empty) result together with ctx.Err().
//
// Calling Run on a settled watcher returns the recorded result immediately.
func (w *Watcher) Run(ctx context.Context) (model.DetectionResult, error) {
	w.mu.Lock()
	if w.state == StateSettled {
		defer w.mu.Unlock()
		return w.result, nil
	}
	w.mu.Unlock()

	result, err := w.classify(ctx)
	if err != nil {
		w.logger.Warn("initial classification failed", slog.String("error", err.Error()))
	} else if !result.Empty() {
		return w.settle(result), nil
	}

	w.mu.Lock()
	w.state = StateWatching
	w.mu.Unlock()
	w.logger.Debug("no links in initial content, watching for changes",
		slog.Duration("fallback_delay", w.fallbackDelay))

	timer := time.NewTimer(w.fallbackDelay)
	defer timer.Stop()
	defer func() {
		if err := w.source.Close(); err != nil {
			w.logger.Warn("failed to close change source", slog.String("error", err.Error()))
		}
	}()

	events := w.source.Events()
	for {
		select {
		case <-ctx.Done():
			return w.Result(), ctx.Err()
		case <-timer.C:
			if result, ok := w.reclassify(ctx, "fallback"); ok {
				return w.settle(result), nil
			}
		case _, ok := <-events:
			if !ok {
				// Source exhausted; the fallback timer (if still pending)
				// remains the only trigger left.
				events = nil
				continue
			}
			if result, ok := w.reclassify(ctx, "change"); ok {
				return w.settle(result), nil
			}
		}
	}
}

// reclassify runs one classification pass and reports whether it settled.
func (w *Watcher) reclassify(ctx context.Context, trigger string) (model.DetectionResult, bool) {
	if w.State() == StateSettled {
		return model.DetectionResult{}, false
	}

	result, err := w.classify(ctx)
	if err != nil {
		w.logger.Warn("re-classification failed",
			slog.String("trigger", trigger),
			slog.String("error", err.Error()))
		return model.DetectionResult{}, false
	}
	if result.Empty() {
		return model.DetectionResult{}, false
	}
	return result, true
}

// settle transitions to StateSettled and records the result. Only the first
// call records; later calls return the stored result.
func (w *Watcher) settle(result model.DetectionResult) model.DetectionResult {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.state == StateSettled {
		return w.result
	}
	w.state = StateSettled
	w.result = result
	return w.result
}
