package watcher

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/sakya146/termscan/internal/model"
)

// FetchFunc retrieves the current page content.
type FetchFunc func(ctx context.Context) (*model.Page, error)

// PollSource emits a change event when the fetched page body hash differs
// from the last one seen. It stands in for live DOM observation: we cannot
// subscribe to a remote page's mutations, so we poll and compare content
// hashes instead.
type PollSource struct {
	events chan struct{}
	cancel context.CancelFunc
	done   chan struct{}

	closeOnce sync.Once

	mu       sync.Mutex
	lastHash string
	latest   *model.Page
}

// NewPollSource starts polling with the given fetch function and interval.
// initialHash seeds change detection, typically the hash of the page the
// caller already fetched for the initial classification; pass empty to
// treat the first successful poll as a change.
func NewPollSource(ctx context.Context, fetch FetchFunc, interval time.Duration, initialHash string, logger *slog.Logger) *PollSource {
	if logger == nil {
		logger = slog.Default()
	}
	ctx, cancel := context.WithCancel(ctx)

	s := &PollSource{
		// Buffer of one: the watcher re-runs a full classification per
		// event, so coalescing a burst into a single pending event loses
		// nothing.
		events:   make(chan struct{}, 1),
		cancel:   cancel,
		done:     make(chan struct{}),
		lastHash: initialHash,
	}

	go s.poll(ctx, fetch, interval, logger)
	return s
}

// Events returns the change event channel. It is closed when the source
// stops.
func (s *PollSource) Events() <-chan struct{} {
	return s.events
}

// Latest returns the most recently fetched page, or nil if no poll has
// succeeded yet.
func (s *PollSource) Latest() *model.Page {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.latest
}

// Close stops polling and closes the event channel.
func (s *PollSource) Close() error {
	s.closeOnce.Do(func() {
		s.cancel()
		<-s.done
		close(s.events)
	})
	return nil
}

// poll fetches on a ticker and emits an event on content change.
func (s *PollSource) poll(ctx context.Context, fetch FetchFunc, interval time.Duration, logger *slog.Logger) {
	defer close(s.done)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			page, err := fetch(ctx)
			if err != nil {
				if ctx.Err() != nil {
					return
				}
				logger.Debug("poll fetch failed", slog.String("error", err.Error()))
				continue
			}

			s.mu.Lock()
			changed := page.Hash != s.lastHash
			s.lastHash = page.Hash
			s.latest = page
			s.mu.Unlock()

			if changed {
				select {
				case s.events <- struct{}{}:
				default:
					// An event is already pending; the next classification
					// pass will see this change too.
				}
			}
		}
	}
}
