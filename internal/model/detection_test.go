package model

import (
	"reflect"
	"testing"
)

// TestDetectionResultEmpty tests the absence signal.
func TestDetectionResultEmpty(t *testing.T) {
	t.Parallel()

	if !(DetectionResult{}).Empty() {
		t.Error("zero detection should be empty")
	}
	if (DetectionResult{TermsURL: "https://example.com/tos"}).Empty() {
		t.Error("detection with terms URL should not be empty")
	}
	if (DetectionResult{PrivacyURL: "https://example.com/privacy"}).Empty() {
		t.Error("detection with privacy URL should not be empty")
	}
}

// TestDetectionResultLabels tests display label generation.
func TestDetectionResultLabels(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name     string
		det      DetectionResult
		expected []string
	}{
		{
			name:     "both",
			det:      DetectionResult{TermsURL: "https://a/t", PrivacyURL: "https://a/p"},
			expected: []string{LabelTerms, LabelPrivacy},
		},
		{
			name:     "terms only",
			det:      DetectionResult{TermsURL: "https://a/t"},
			expected: []string{LabelTerms},
		},
		{
			name:     "privacy only",
			det:      DetectionResult{PrivacyURL: "https://a/p"},
			expected: []string{LabelPrivacy},
		},
		{
			name:     "none",
			det:      DetectionResult{},
			expected: []string{},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if got := tc.det.Labels(); !reflect.DeepEqual(got, tc.expected) {
				t.Errorf("Labels() = %v, expected %v", got, tc.expected)
			}
		})
	}
}

// TestDetectionResultTargets tests scan target ordering.
func TestDetectionResultTargets(t *testing.T) {
	t.Parallel()

	t.Run("terms before privacy", func(t *testing.T) {
		t.Parallel()

		det := DetectionResult{TermsURL: "https://a/t", PrivacyURL: "https://a/p"}
		targets := det.Targets()
		if len(targets) != 2 {
			t.Fatalf("expected 2 targets, got %d", len(targets))
		}
		if targets[0].Label != LabelTerms || targets[0].URL != "https://a/t" {
			t.Errorf("unexpected first target: %+v", targets[0])
		}
		if targets[1].Label != LabelPrivacy || targets[1].URL != "https://a/p" {
			t.Errorf("unexpected second target: %+v", targets[1])
		}
	})

	t.Run("shared anchor yields one target per label", func(t *testing.T) {
		t.Parallel()

		det := DetectionResult{TermsURL: "https://a/legal", PrivacyURL: "https://a/legal"}
		targets := det.Targets()
		if len(targets) != 2 {
			t.Fatalf("expected 2 targets, got %d", len(targets))
		}
		if targets[0].URL != targets[1].URL {
			t.Error("expected both targets to share the URL")
		}
	})
}

// TestNewScanReport tests target URL validation.
func TestNewScanReport(t *testing.T) {
	t.Parallel()

	t.Run("valid URL", func(t *testing.T) {
		t.Parallel()

		report, err := NewScanReport("https://example.com/page")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if report.Host != "example.com" {
			t.Errorf("expected host example.com, got %q", report.Host)
		}
		if report.Overall != RiskUnknown {
			t.Errorf("expected initial overall risk unknown, got %v", report.Overall)
		}
	})

	t.Run("rejects non-http scheme", func(t *testing.T) {
		t.Parallel()

		if _, err := NewScanReport("ftp://example.com"); err == nil {
			t.Error("expected error for ftp scheme")
		}
	})

	t.Run("rejects missing host", func(t *testing.T) {
		t.Parallel()

		if _, err := NewScanReport("https:///nohost"); err == nil {
			t.Error("expected error for missing host")
		}
	})
}
