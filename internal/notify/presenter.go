package notify

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/sakya146/termscan/internal/model"
)

// Display timing. The banner stays up for displayDuration, then fades for
// fadeDuration before it is removed entirely.
const (
	defaultDisplayDuration = 4000 * time.Millisecond
	defaultFadeDuration    = 240 * time.Millisecond
)

// Sink renders and retires a banner.
type Sink interface {
	// Show renders the banner with the given message.
	Show(message string) error
	// Dismiss retires the currently shown banner.
	Dismiss() error
}

// WriterSink renders banners as lines on an io.Writer, the terminal
// surface used by the CLI.
type WriterSink struct {
	w io.Writer
}

// NewWriterSink creates a WriterSink on w.
func NewWriterSink(w io.Writer) *WriterSink {
	return &WriterSink{w: w}
}

// Show writes the banner message.
func (s *WriterSink) Show(message string) error {
	_, err := fmt.Fprintf(s.w, "NOTICE: %s\n", message)
	return err
}

// Dismiss is a no-op; terminal lines cannot be retracted.
func (s *WriterSink) Dismiss() error { return nil }

// Decider is the slice of the site state store the presenter needs.
type Decider interface {
	// ShouldNotify reports whether a banner may be shown for host.
	ShouldNotify(ctx context.Context, host string, isSearchResultsPage bool) bool
	// MarkSeen records that a banner has been shown for host.
	MarkSeen(ctx context.Context, host string)
}

// Presenter shows at most one auto-dismissing detection banner at a time.
type Presenter struct {
	sink    Sink
	decider Decider
	logger  *slog.Logger

	displayDuration time.Duration
	fadeDuration    time.Duration

	mu     sync.Mutex
	active bool
	timer  *time.Timer
}

// Option configures a Presenter.
type Option func(*Presenter)

// WithDisplayDuration overrides how long a banner stays up.
func WithDisplayDuration(d time.Duration) Option {
	return func(p *Presenter) {
		if d > 0 {
			p.displayDuration = d
		}
	}
}

// WithFadeDuration overrides the fade-out time before removal.
func WithFadeDuration(d time.Duration) Option {
	return func(p *Presenter) {
		if d >= 0 {
			p.fadeDuration = d
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Presenter) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// NewPresenter creates a Presenter rendering through sink and consulting
// decider for suppression state.
func NewPresenter(sink Sink, decider Decider, opts ...Option) *Presenter {
	p := &Presenter{
		sink:            sink,
		decider:         decider,
		logger:          slog.Default(),
		displayDuration: defaultDisplayDuration,
		fadeDuration:    defaultFadeDuration,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Present shows a banner for the detection result if the host is eligible.
// It returns true only when a banner was actually shown, which is also the
// exact moment the host is marked seen. Calls while a banner is still
// displayed are no-ops, as are calls for empty results, seen or suppressed
// hosts, and search results pages.
//
// Banner failures are silent: notification is a best-effort feature and
// must never fail the caller.
func (p *Presenter) Present(ctx context.Context, result model.DetectionResult, host string, isSearchResultsPage bool) bool {
	if result.Empty() {
		return false
	}
	if !p.decider.ShouldNotify(ctx, host, isSearchResultsPage) {
		return false
	}

	p.mu.Lock()
	if p.active {
		p.mu.Unlock()
		return false
	}
	p.active = true
	p.mu.Unlock()

	if err := p.sink.Show(Message(result)); err != nil {
		p.logger.Warn("failed to show banner",
			slog.String("host", host),
			slog.String("error", err.Error()))
		p.mu.Lock()
		p.active = false
		p.mu.Unlock()
		return false
	}

	p.decider.MarkSeen(ctx, host)
	p.logger.Debug("banner shown", slog.String("host", host))

	p.mu.Lock()
	p.timer = time.AfterFunc(p.displayDuration+p.fadeDuration, p.retire)
	p.mu.Unlock()
	return true
}

// retire dismisses the banner and frees the active slot.
func (p *Presenter) retire() {
	if err := p.sink.Dismiss(); err != nil {
		p.logger.Warn("failed to dismiss banner", slog.String("error", err.Error()))
	}
	p.mu.Lock()
	p.active = false
	p.timer = nil
	p.mu.Unlock()
}

// Stop cancels a pending auto-dismiss and retires any active banner.
func (p *Presenter) Stop() {
	p.mu.Lock()
	timer := p.timer
	active := p.active
	p.mu.Unlock()

	if timer != nil && timer.Stop() {
		p.retire()
	} else if active && timer == nil {
		p.mu.Lock()
		p.active = false
		p.mu.Unlock()
	}
}

// Message builds the banner label for a detection result, e.g.
// "Detected: Terms & Conditions, Privacy Policy".
func Message(result model.DetectionResult) string {
	return "Detected: " + strings.Join(result.Labels(), ", ")
}
