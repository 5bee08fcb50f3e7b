package pipeline

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/sakya146/termscan/internal/model"
)

// TestProcessBatch tests concurrent scanning of multiple URLs.
func TestProcessBatch(t *testing.T) {
	t.Parallel()

	t.Run("results stay parallel to input", func(t *testing.T) {
		t.Parallel()

		var executed atomic.Int32
		factory := func() *Pipeline {
			p := New()
			p.AddStep(&fakeStep{name: "count", do: func(_ context.Context, _ *model.ScanReport) error {
				executed.Add(1)
				return nil
			}})
			return p
		}

		urls := []string{
			"https://a.example.com/",
			"https://b.example.com/",
			"https://c.example.com/",
		}
		bp := NewBatchProcessor(factory, WithConcurrency(2))
		reports, err := bp.ProcessBatch(context.Background(), urls)
		if err != nil {
			t.Fatalf("batch failed: %v", err)
		}

		if len(reports) != len(urls) {
			t.Fatalf("expected %d reports, got %d", len(urls), len(reports))
		}
		for i, report := range reports {
			if report == nil {
				t.Fatalf("missing report at index %d", i)
			}
			if report.URL != urls[i] {
				t.Errorf("report %d out of order: %q", i, report.URL)
			}
		}
		if executed.Load() != 3 {
			t.Errorf("expected 3 pipeline runs, got %d", executed.Load())
		}
	})

	t.Run("unusable URL yields an error report", func(t *testing.T) {
		t.Parallel()

		factory := func() *Pipeline { return New() }
		bp := NewBatchProcessor(factory)

		reports, err := bp.ProcessBatch(context.Background(), []string{
			"https://good.example.com/",
			"ftp://bad.example.com/",
		})
		if err != nil {
			t.Fatalf("batch failed: %v", err)
		}

		if reports[0].ErrorMessage != "" {
			t.Errorf("unexpected error on good URL: %q", reports[0].ErrorMessage)
		}
		if reports[1].ErrorMessage == "" {
			t.Error("expected error recorded for unsupported scheme")
		}
	})

	t.Run("callback receives every report", func(t *testing.T) {
		t.Parallel()

		factory := func() *Pipeline { return New() }
		bp := NewBatchProcessor(factory, WithConcurrency(2))

		var mu sync.Mutex
		seen := make(map[int]string)
		err := bp.ProcessBatchWithCallback(context.Background(),
			[]string{"https://a.example.com/", "https://b.example.com/"},
			func(report *model.ScanReport, index int) {
				mu.Lock()
				seen[index] = report.URL
				mu.Unlock()
			})
		if err != nil {
			t.Fatalf("batch failed: %v", err)
		}

		if len(seen) != 2 {
			t.Fatalf("expected 2 callbacks, got %d", len(seen))
		}
		if seen[0] != "https://a.example.com/" || seen[1] != "https://b.example.com/" {
			t.Errorf("unexpected callback results: %v", seen)
		}
	})
}
