package notify

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/sakya146/termscan/internal/model"
	"github.com/sakya146/termscan/internal/store"
)

// recordingSink records Show/Dismiss calls.
type recordingSink struct {
	mu        sync.Mutex
	messages  []string
	dismissed int
	showErr   error
}

func (s *recordingSink) Show(message string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.showErr != nil {
		return s.showErr
	}
	s.messages = append(s.messages, message)
	return nil
}

func (s *recordingSink) Dismiss() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.dismissed++
	return nil
}

func (s *recordingSink) shown() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.messages...)
}

// newFastPresenter builds a presenter with short timings over a fresh
// in-memory store.
func newFastPresenter(sink Sink) (*Presenter, *store.Store) {
	st := store.New(store.NewMemoryBackend())
	p := NewPresenter(sink, st,
		WithDisplayDuration(20*time.Millisecond),
		WithFadeDuration(5*time.Millisecond))
	return p, st
}

// TestPresent tests banner eligibility and lifecycle.
func TestPresent(t *testing.T) {
	t.Parallel()

	detection := model.DetectionResult{TermsURL: "https://example.com/tos"}

	t.Run("first visit shows one banner and marks seen", func(t *testing.T) {
		t.Parallel()

		sink := &recordingSink{}
		p, st := newFastPresenter(sink)
		ctx := context.Background()

		if !p.Present(ctx, detection, "example.com", false) {
			t.Fatal("expected banner on first visit")
		}

		shown := sink.shown()
		if len(shown) != 1 {
			t.Fatalf("expected exactly one banner, got %d", len(shown))
		}
		if shown[0] != "Detected: Terms & Conditions" {
			t.Errorf("unexpected banner message: %q", shown[0])
		}

		state, _ := st.Host(ctx, "example.com")
		if !state.Seen {
			t.Error("host must be marked seen when banner is shown")
		}
	})

	t.Run("second page load shows nothing", func(t *testing.T) {
		t.Parallel()

		sink := &recordingSink{}
		p, _ := newFastPresenter(sink)
		ctx := context.Background()

		if !p.Present(ctx, detection, "example.com", false) {
			t.Fatal("expected banner on first visit")
		}
		time.Sleep(60 * time.Millisecond) // let the first banner retire

		if p.Present(ctx, detection, "example.com", false) {
			t.Error("expected no banner for a seen host")
		}
		if len(sink.shown()) != 1 {
			t.Errorf("expected one banner total, got %d", len(sink.shown()))
		}
	})

	t.Run("no banner on search results pages", func(t *testing.T) {
		t.Parallel()

		sink := &recordingSink{}
		p, st := newFastPresenter(sink)
		ctx := context.Background()

		both := model.DetectionResult{
			TermsURL:   "https://example.com/tos",
			PrivacyURL: "https://example.com/privacy",
		}
		if p.Present(ctx, both, "www.google.com", true) {
			t.Error("expected no banner on a search results page")
		}

		// The host must remain fresh: nothing shown, nothing seen.
		state, _ := st.Host(ctx, "www.google.com")
		if state.Seen {
			t.Error("search page exclusion must not mark the host seen")
		}
	})

	t.Run("no banner for suppressed host", func(t *testing.T) {
		t.Parallel()

		sink := &recordingSink{}
		p, st := newFastPresenter(sink)
		ctx := context.Background()

		st.Suppress(ctx, "example.com")
		if p.Present(ctx, detection, "example.com", false) {
			t.Error("expected no banner for a suppressed host")
		}
	})

	t.Run("no banner for empty detection", func(t *testing.T) {
		t.Parallel()

		sink := &recordingSink{}
		p, _ := newFastPresenter(sink)

		if p.Present(context.Background(), model.DetectionResult{}, "example.com", false) {
			t.Error("expected no banner for empty detection")
		}
	})

	t.Run("present while displayed is a no-op", func(t *testing.T) {
		t.Parallel()

		sink := &recordingSink{}
		st := store.New(store.NewMemoryBackend())
		p := NewPresenter(sink, st,
			WithDisplayDuration(time.Minute),
			WithFadeDuration(0))
		defer p.Stop()
		ctx := context.Background()

		if !p.Present(ctx, detection, "a.example.com", false) {
			t.Fatal("expected first banner")
		}
		if p.Present(ctx, detection, "b.example.com", false) {
			t.Error("expected no second banner while one is displayed")
		}
		if len(sink.shown()) != 1 {
			t.Errorf("expected one banner, got %d", len(sink.shown()))
		}
	})

	t.Run("banner auto-dismisses and frees the slot", func(t *testing.T) {
		t.Parallel()

		sink := &recordingSink{}
		p, _ := newFastPresenter(sink)
		ctx := context.Background()

		if !p.Present(ctx, detection, "a.example.com", false) {
			t.Fatal("expected first banner")
		}
		time.Sleep(60 * time.Millisecond)

		sink.mu.Lock()
		dismissed := sink.dismissed
		sink.mu.Unlock()
		if dismissed != 1 {
			t.Errorf("expected one dismissal, got %d", dismissed)
		}

		// A different unseen host can use the freed slot.
		if !p.Present(ctx, detection, "b.example.com", false) {
			t.Error("expected banner for a new host after dismissal")
		}
	})

	t.Run("sink failure does not mark seen", func(t *testing.T) {
		t.Parallel()

		sink := &recordingSink{showErr: errors.New("render failed")}
		p, st := newFastPresenter(sink)
		ctx := context.Background()

		if p.Present(ctx, detection, "example.com", false) {
			t.Error("expected no banner on sink failure")
		}
		state, _ := st.Host(ctx, "example.com")
		if state.Seen {
			t.Error("failed banner must not mark the host seen")
		}
		// The slot is freed, so a retry may succeed later.
		sink.mu.Lock()
		sink.showErr = nil
		sink.mu.Unlock()
		if !p.Present(ctx, detection, "example.com", false) {
			t.Error("expected retry to succeed once the sink recovers")
		}
	})
}

// TestMessage tests banner label construction.
func TestMessage(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name   string
		result model.DetectionResult
		want   string
	}{
		{
			name:   "terms only",
			result: model.DetectionResult{TermsURL: "https://example.com/tos"},
			want:   "Detected: Terms & Conditions",
		},
		{
			name:   "privacy only",
			result: model.DetectionResult{PrivacyURL: "https://example.com/privacy"},
			want:   "Detected: Privacy Policy",
		},
		{
			name: "both",
			result: model.DetectionResult{
				TermsURL:   "https://example.com/tos",
				PrivacyURL: "https://example.com/privacy",
			},
			want: "Detected: Terms & Conditions, Privacy Policy",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			if got := Message(tc.result); got != tc.want {
				t.Errorf("Message() = %q, want %q", got, tc.want)
			}
		})
	}
}

// TestWriterSink tests the terminal sink.
func TestWriterSink(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	sink := NewWriterSink(&buf)

	if err := sink.Show("Detected: Privacy Policy"); err != nil {
		t.Fatalf("show failed: %v", err)
	}
	if err := sink.Dismiss(); err != nil {
		t.Fatalf("dismiss failed: %v", err)
	}
	if !strings.Contains(buf.String(), "Detected: Privacy Policy") {
		t.Errorf("unexpected output: %q", buf.String())
	}
}
