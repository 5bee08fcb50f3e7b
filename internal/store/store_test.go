package store

import (
	"context"
	"errors"
	"net/url"
	"testing"
	"time"

	"github.com/sakya146/termscan/internal/model"
)

// TestRecordDetection tests detection merges and degraded-store behavior.
func TestRecordDetection(t *testing.T) {
	t.Parallel()

	t.Run("creates entry and returns merged result", func(t *testing.T) {
		t.Parallel()

		s := New(NewMemoryBackend())
		result := s.RecordDetection(context.Background(), "example.com", model.DetectionResult{
			TermsURL: "https://example.com/tos",
		})
		if result.TermsURL != "https://example.com/tos" {
			t.Errorf("unexpected terms URL: %q", result.TermsURL)
		}

		state, ok := s.Host(context.Background(), "example.com")
		if !ok {
			t.Fatal("expected host state to exist")
		}
		if state.Detected.TermsURL != "https://example.com/tos" {
			t.Errorf("unexpected stored terms URL: %q", state.Detected.TermsURL)
		}
	})

	t.Run("empty field does not clear previous detection", func(t *testing.T) {
		t.Parallel()

		s := New(NewMemoryBackend())
		ctx := context.Background()

		s.RecordDetection(ctx, "example.com", model.DetectionResult{
			TermsURL:   "https://example.com/tos",
			PrivacyURL: "https://example.com/privacy",
		})
		merged := s.RecordDetection(ctx, "example.com", model.DetectionResult{
			TermsURL: "https://example.com/tos-v2",
		})

		if merged.TermsURL != "https://example.com/tos-v2" {
			t.Errorf("unexpected terms URL: %q", merged.TermsURL)
		}
		if merged.PrivacyURL != "https://example.com/privacy" {
			t.Errorf("privacy URL should survive re-detection, got %q", merged.PrivacyURL)
		}
	})

	t.Run("does not alter seen or suppressed", func(t *testing.T) {
		t.Parallel()

		s := New(NewMemoryBackend())
		ctx := context.Background()

		s.MarkSeen(ctx, "example.com")
		s.Suppress(ctx, "example.com")
		s.RecordDetection(ctx, "example.com", model.DetectionResult{
			TermsURL: "https://example.com/tos",
		})

		state, _ := s.Host(ctx, "example.com")
		if !state.Seen || !state.Suppressed {
			t.Errorf("flags clobbered by detection: %+v", state)
		}
	})

	t.Run("write failure still returns the in-memory result", func(t *testing.T) {
		t.Parallel()

		backend := NewMemoryBackend()
		backend.SetErr = errors.New("store unavailable")
		s := New(backend)
		ctx := context.Background()

		result := s.RecordDetection(ctx, "example.com", model.DetectionResult{
			TermsURL: "https://example.com/tos",
		})
		if result.TermsURL != "https://example.com/tos" {
			t.Errorf("expected in-memory result despite write failure, got %+v", result)
		}

		// Later operations see the mirrored state.
		state, ok := s.Host(ctx, "example.com")
		if !ok || state.Detected.TermsURL != "https://example.com/tos" {
			t.Errorf("expected mirrored state, got %+v (ok=%v)", state, ok)
		}
	})

	t.Run("read failure starts from empty state", func(t *testing.T) {
		t.Parallel()

		backend := NewMemoryBackend()
		backend.GetErr = errors.New("store unavailable")
		s := New(backend)

		result := s.RecordDetection(context.Background(), "example.com", model.DetectionResult{
			PrivacyURL: "https://example.com/privacy",
		})
		if result.PrivacyURL != "https://example.com/privacy" {
			t.Errorf("unexpected result: %+v", result)
		}
	})
}

// TestShouldNotify tests the notification decision matrix.
func TestShouldNotify(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name       string
		seen       bool
		suppressed bool
		searchPage bool
		want       bool
	}{
		{name: "fresh host", want: true},
		{name: "seen host", seen: true, want: false},
		{name: "suppressed host", suppressed: true, want: false},
		{name: "seen and suppressed", seen: true, suppressed: true, want: false},
		{name: "search results page", searchPage: true, want: false},
		{name: "search results page on fresh host", searchPage: true, want: false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			s := New(NewMemoryBackend())
			ctx := context.Background()
			if tc.seen {
				s.MarkSeen(ctx, "example.com")
			}
			if tc.suppressed {
				s.Suppress(ctx, "example.com")
			}

			if got := s.ShouldNotify(ctx, "example.com", tc.searchPage); got != tc.want {
				t.Errorf("ShouldNotify = %v, want %v", got, tc.want)
			}
		})
	}
}

// TestFlags tests seen/suppressed mutations.
func TestFlags(t *testing.T) {
	t.Parallel()

	t.Run("mark seen is idempotent", func(t *testing.T) {
		t.Parallel()

		s := New(NewMemoryBackend())
		ctx := context.Background()

		s.MarkSeen(ctx, "example.com")
		s.MarkSeen(ctx, "example.com")

		state, _ := s.Host(ctx, "example.com")
		if !state.Seen {
			t.Error("expected seen flag")
		}
	})

	t.Run("unsuppress does not reset seen", func(t *testing.T) {
		t.Parallel()

		s := New(NewMemoryBackend())
		ctx := context.Background()

		s.MarkSeen(ctx, "example.com")
		s.Suppress(ctx, "example.com")
		s.Unsuppress(ctx, "example.com")

		state, _ := s.Host(ctx, "example.com")
		if state.Suppressed {
			t.Error("expected suppression cleared")
		}
		if !state.Seen {
			t.Error("seen flag must survive unsuppress")
		}
	})
}

// TestRecordScanResult tests report and lastScan updates.
func TestRecordScanResult(t *testing.T) {
	t.Parallel()

	t.Run("replaces report and updates last scan", func(t *testing.T) {
		t.Parallel()

		fixed := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
		s := New(NewMemoryBackend(), WithClock(func() time.Time { return fixed }))
		ctx := context.Background()

		s.RecordDetection(ctx, "example.com", model.DetectionResult{
			TermsURL: "https://example.com/tos",
		})
		s.RecordScanResult(ctx, "example.com", CompletedScan{
			URL: "https://example.com/",
			Results: []model.LabeledResult{
				{Label: model.LabelTerms, Data: []byte(`{"summary":{}}`)},
			},
			Overall: model.RiskMedium,
		})

		state, _ := s.Host(ctx, "example.com")
		if state.Report == nil || len(state.Report.Results) != 1 {
			t.Fatalf("unexpected report: %+v", state.Report)
		}
		if !state.Report.UpdatedAt.Equal(fixed) {
			t.Errorf("unexpected report timestamp: %v", state.Report.UpdatedAt)
		}
		if state.LastScan == nil || state.LastScan.OverallRisk != model.RiskMedium {
			t.Fatalf("unexpected last scan: %+v", state.LastScan)
		}
		if state.Detected.TermsURL != "https://example.com/tos" {
			t.Error("detection field group clobbered by scan result")
		}
	})

	t.Run("second scan replaces the report", func(t *testing.T) {
		t.Parallel()

		s := New(NewMemoryBackend())
		ctx := context.Background()

		s.RecordScanResult(ctx, "example.com", CompletedScan{
			URL:     "https://example.com/",
			Results: []model.LabeledResult{{Label: model.LabelTerms}},
			Overall: model.RiskLow,
		})
		s.RecordScanResult(ctx, "example.com", CompletedScan{
			URL: "https://example.com/",
			Results: []model.LabeledResult{
				{Label: model.LabelTerms},
				{Label: model.LabelPrivacy},
			},
			Overall: model.RiskHigh,
		})

		state, _ := s.Host(ctx, "example.com")
		if len(state.Report.Results) != 2 {
			t.Errorf("expected replaced report, got %d results", len(state.Report.Results))
		}
		if state.LastScan.OverallRisk != model.RiskHigh {
			t.Errorf("unexpected overall risk: %v", state.LastScan.OverallRisk)
		}
	})
}

// TestHosts tests host enumeration across backend and mirror.
func TestHosts(t *testing.T) {
	t.Parallel()

	backend := NewMemoryBackend()
	ctx := context.Background()
	if err := backend.Set(ctx, "stored.example.com", &model.HostState{Seen: true}); err != nil {
		t.Fatalf("failed to seed backend: %v", err)
	}

	s := New(backend)
	s.MarkSeen(ctx, "fresh.example.com")

	hosts := s.Hosts(ctx)
	want := []string{"fresh.example.com", "stored.example.com"}
	if len(hosts) != len(want) {
		t.Fatalf("unexpected hosts: %v", hosts)
	}
	for i := range want {
		if hosts[i] != want[i] {
			t.Errorf("hosts[%d] = %q, want %q", i, hosts[i], want[i])
		}
	}
}

// TestSearchResultsPage tests search-engine results detection.
func TestSearchResultsPage(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name   string
		rawURL string
		want   bool
	}{
		{name: "google search path", rawURL: "https://www.google.com/search?q=foo", want: true},
		{name: "google query param only", rawURL: "https://www.google.com/?q=foo", want: true},
		{name: "google country TLD", rawURL: "https://www.google.co.uk/search?q=foo", want: true},
		{name: "google homepage", rawURL: "https://www.google.com/", want: false},
		{name: "bing search", rawURL: "https://www.bing.com/search?q=foo", want: true},
		{name: "duckduckgo query", rawURL: "https://duckduckgo.com/?q=foo", want: true},
		{name: "yahoo search", rawURL: "https://search.yahoo.com/search?p=foo", want: true},
		{name: "ordinary site with q param", rawURL: "https://example.com/?q=foo", want: false},
		{name: "ordinary site search path", rawURL: "https://example.com/search", want: false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			u, err := url.Parse(tc.rawURL)
			if err != nil {
				t.Fatalf("failed to parse URL: %v", err)
			}
			if got := SearchResultsPage(u); got != tc.want {
				t.Errorf("SearchResultsPage(%q) = %v, want %v", tc.rawURL, got, tc.want)
			}
		})
	}

	t.Run("nil URL", func(t *testing.T) {
		t.Parallel()

		if SearchResultsPage(nil) {
			t.Error("nil URL must not be a search results page")
		}
	})
}
