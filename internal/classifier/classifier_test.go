package classifier

import (
	"net/url"
	"reflect"
	"strings"
	"testing"

	"github.com/sakya146/termscan/internal/model"
)

// mustParse parses a URL or fails the test.
func mustParse(t *testing.T, rawURL string) *url.URL {
	t.Helper()
	u, err := url.Parse(rawURL)
	if err != nil {
		t.Fatalf("failed to parse URL %q: %v", rawURL, err)
	}
	return u
}

// classify runs extraction and classification over an HTML snippet.
func classify(t *testing.T, base, htmlContent string) model.DetectionResult {
	t.Helper()
	result, err := ClassifyPage(strings.NewReader(htmlContent), mustParse(t, base))
	if err != nil {
		t.Fatalf("classification failed: %v", err)
	}
	return result
}

// TestClassifyPage tests end-to-end link classification.
func TestClassifyPage(t *testing.T) {
	t.Parallel()

	t.Run("no qualifying anchors yields empty strings", func(t *testing.T) {
		t.Parallel()

		html := `<html><body>
			<a href="/about">About us</a>
			<a href="/contact">Contact</a>
		</body></html>`

		result := classify(t, "https://example.com/", html)
		if result.TermsURL != "" || result.PrivacyURL != "" {
			t.Errorf("expected empty detection, got %+v", result)
		}
		if !result.Empty() {
			t.Error("expected Empty() to be true")
		}
	})

	t.Run("relative href resolved against base", func(t *testing.T) {
		t.Parallel()

		html := `<html><body><a href="/tos">Terms of Service</a></body></html>`

		result := classify(t, "https://example.com/page", html)
		if result.TermsURL != "https://example.com/tos" {
			t.Errorf("expected resolved terms URL, got %q", result.TermsURL)
		}
		if result.PrivacyURL != "" {
			t.Errorf("expected empty privacy URL, got %q", result.PrivacyURL)
		}
	})

	t.Run("picks are independent of each other's position", func(t *testing.T) {
		t.Parallel()

		// Privacy appears before Terms in document order; each pick is
		// still the first qualifying anchor for its own keyword.
		html := `<html><body>
			<a href="/privacy">Privacy Policy</a>
			<a href="/tos">Terms of Service</a>
		</body></html>`

		result := classify(t, "https://example.com/", html)
		if result.TermsURL != "https://example.com/tos" {
			t.Errorf("unexpected terms URL: %q", result.TermsURL)
		}
		if result.PrivacyURL != "https://example.com/privacy" {
			t.Errorf("unexpected privacy URL: %q", result.PrivacyURL)
		}
	})

	t.Run("first in document order wins", func(t *testing.T) {
		t.Parallel()

		html := `<html><body>
			<a href="/terms-old">Terms</a>
			<a href="/terms-new">Terms of Service</a>
		</body></html>`

		result := classify(t, "https://example.com/", html)
		if result.TermsURL != "https://example.com/terms-old" {
			t.Errorf("expected first anchor to win, got %q", result.TermsURL)
		}
	})

	t.Run("single anchor serves both terms and privacy", func(t *testing.T) {
		t.Parallel()

		html := `<html><body><a href="/legal">Terms &amp; Privacy</a></body></html>`

		result := classify(t, "https://example.com/", html)
		if result.TermsURL != "https://example.com/legal" {
			t.Errorf("unexpected terms URL: %q", result.TermsURL)
		}
		if result.PrivacyURL != "https://example.com/legal" {
			t.Errorf("unexpected privacy URL: %q", result.PrivacyURL)
		}
	})

	t.Run("href keyword match without text match", func(t *testing.T) {
		t.Parallel()

		html := `<html><body><a href="/privacy-notice">Read this</a></body></html>`

		result := classify(t, "https://example.com/", html)
		if result.PrivacyURL != "https://example.com/privacy-notice" {
			t.Errorf("expected href-based match, got %q", result.PrivacyURL)
		}
	})

	t.Run("aria-label and title contribute to text", func(t *testing.T) {
		t.Parallel()

		html := `<html><body>
			<a href="/a" aria-label="Terms of Service"><img src="/icon.png"></a>
			<a href="/b" title="Privacy Policy">?</a>
		</body></html>`

		result := classify(t, "https://example.com/", html)
		if result.TermsURL != "https://example.com/a" {
			t.Errorf("expected aria-label match, got %q", result.TermsURL)
		}
		if result.PrivacyURL != "https://example.com/b" {
			t.Errorf("expected title match, got %q", result.PrivacyURL)
		}
	})

	t.Run("non-navigable hrefs excluded", func(t *testing.T) {
		t.Parallel()

		html := `<html><body>
			<a href="#">Terms</a>
			<a href="javascript:void(0)">Privacy</a>
			<a href="mailto:legal@example.com">Legal</a>
		</body></html>`

		result := classify(t, "https://example.com/", html)
		if !result.Empty() {
			t.Errorf("expected empty detection, got %+v", result)
		}
	})

	t.Run("idempotent on unchanged document", func(t *testing.T) {
		t.Parallel()

		html := `<html><body>
			<a href="/tos">Terms of Service</a>
			<a href="/privacy">Privacy Policy</a>
		</body></html>`

		first := classify(t, "https://example.com/", html)
		second := classify(t, "https://example.com/", html)
		if first != second {
			t.Errorf("classification not idempotent: %+v vs %+v", first, second)
		}
	})
}

// TestExtractCandidates tests candidate construction details.
func TestExtractCandidates(t *testing.T) {
	t.Parallel()

	t.Run("text is lowercased and whitespace normalized", func(t *testing.T) {
		t.Parallel()

		html := `<html><body><a href="/x">  Terms
			OF   <b>Service</b> </a></body></html>`

		candidates, err := ExtractCandidates(strings.NewReader(html), mustParse(t, "https://example.com/"))
		if err != nil {
			t.Fatalf("extraction failed: %v", err)
		}
		if len(candidates) != 1 {
			t.Fatalf("expected 1 candidate, got %d", len(candidates))
		}
		if candidates[0].Text != "terms of service" {
			t.Errorf("expected normalized text, got %q", candidates[0].Text)
		}
	})

	t.Run("document order preserved", func(t *testing.T) {
		t.Parallel()

		html := `<html><body>
			<a href="/one">One</a>
			<div><a href="/two">Two</a></div>
			<a href="/three">Three</a>
		</body></html>`

		candidates, err := ExtractCandidates(strings.NewReader(html), mustParse(t, "https://example.com/"))
		if err != nil {
			t.Fatalf("extraction failed: %v", err)
		}

		hrefs := make([]string, len(candidates))
		for i, c := range candidates {
			hrefs[i] = c.Href
		}
		expected := []string{
			"https://example.com/one",
			"https://example.com/two",
			"https://example.com/three",
		}
		if !reflect.DeepEqual(hrefs, expected) {
			t.Errorf("unexpected order: %v", hrefs)
		}
	})
}
