package classifier

import (
	"io"
	"net/url"
	"strings"

	"golang.org/x/net/html"

	"github.com/sakya146/termscan/internal/model"
)

// keywords is the fixed set of legal-document keywords. An anchor qualifies
// when its text or lowercased href contains at least one of these.
//
// Design decision: We use substring matching against a small fixed set
// rather than scoring or weighting because false positives are cheap (the
// first-in-document-order tie-break keeps results stable) and real sites
// label these links in only a handful of ways.
var keywords = []string{
	"terms",
	"terms of service",
	"tos",
	"legal",
	"agreement",
	"privacy",
	"privacy policy",
	"privacy notice",
	"policy",
}

// Candidate is a single anchor considered for classification.
// Candidates are ephemeral: derived per scan pass, never persisted.
type Candidate struct {
	// Text is the lowercased, whitespace-normalized concatenation of the
	// anchor's visible text, aria-label, and title attributes.
	Text string

	// Href is the anchor's absolute URL, resolved against the document
	// base.
	Href string
}

// qualifies reports whether the candidate matches any legal-document
// keyword in its text or href.
func (c Candidate) qualifies() bool {
	href := strings.ToLower(c.Href)
	for _, kw := range keywords {
		if strings.Contains(c.Text, kw) || strings.Contains(href, kw) {
			return true
		}
	}
	return false
}

// matches reports whether the candidate's text or href contains the given
// substring.
func (c Candidate) matches(substr string) bool {
	return strings.Contains(c.Text, substr) || strings.Contains(strings.ToLower(c.Href), substr)
}

// ExtractCandidates parses HTML content and returns one Candidate per
// anchor with a non-empty resolved href, in document order.
//
// Relative hrefs are resolved against base. Anchors whose href resolves to
// no navigable target (bare "#", javascript:, mailto:, tel:, data:) are
// excluded.
//
// Design decision: We use golang.org/x/net/html rather than regex because
// it correctly handles the malformed HTML common on the web and gives us a
// proper tree to collect anchor subtree text from.
func ExtractCandidates(content io.Reader, base *url.URL) ([]Candidate, error) {
	doc, err := html.Parse(content)
	if err != nil {
		return nil, err
	}

	candidates := make([]Candidate, 0)

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "a" {
			if c, ok := buildCandidate(n, base); ok {
				candidates = append(candidates, c)
			}
			// Nested anchors are invalid HTML; the parser has already
			// flattened them, so descending further is still safe.
		}
		for child := n.FirstChild; child != nil; child = child.NextSibling {
			walk(child)
		}
	}
	walk(doc)

	return candidates, nil
}

// Classify maps anchor candidates to a best-guess Terms URL and Privacy
// URL. The Terms match is the first qualifying candidate whose text or
// href contains "terms"; the Privacy match is, independently, the first
// qualifying candidate containing "privacy". A single anchor may serve as
// both. Empty string means "not found".
func Classify(candidates []Candidate) model.DetectionResult {
	var result model.DetectionResult
	for _, c := range candidates {
		if !c.qualifies() {
			continue
		}
		if result.TermsURL == "" && c.matches("terms") {
			result.TermsURL = c.Href
		}
		if result.PrivacyURL == "" && c.matches("privacy") {
			result.PrivacyURL = c.Href
		}
		if result.TermsURL != "" && result.PrivacyURL != "" {
			break
		}
	}
	return result
}

// ClassifyPage is a convenience wrapper combining extraction and
// classification for a fetched page body.
func ClassifyPage(content io.Reader, base *url.URL) (model.DetectionResult, error) {
	candidates, err := ExtractCandidates(content, base)
	if err != nil {
		return model.DetectionResult{}, err
	}
	return Classify(candidates), nil
}

// buildCandidate assembles a Candidate from an anchor node.
// Returns false when the href does not resolve to a navigable target.
func buildCandidate(n *html.Node, base *url.URL) (Candidate, bool) {
	resolved := resolveHref(getAttr(n, "href"), base)
	if resolved == "" {
		return Candidate{}, false
	}

	parts := make([]string, 0, 3)
	if text := visibleText(n); text != "" {
		parts = append(parts, text)
	}
	if label := strings.TrimSpace(getAttr(n, "aria-label")); label != "" {
		parts = append(parts, label)
	}
	if title := strings.TrimSpace(getAttr(n, "title")); title != "" {
		parts = append(parts, title)
	}

	text := strings.ToLower(strings.Join(parts, " "))
	return Candidate{
		Text: normalizeWhitespace(text),
		Href: resolved,
	}, true
}

// visibleText collects the text content of the anchor's subtree.
func visibleText(n *html.Node) string {
	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(node *html.Node) {
		if node.Type == html.TextNode {
			sb.WriteString(node.Data)
			sb.WriteString(" ")
		}
		for child := node.FirstChild; child != nil; child = child.NextSibling {
			walk(child)
		}
	}
	walk(n)
	return normalizeWhitespace(sb.String())
}

// normalizeWhitespace collapses runs of whitespace to single spaces and
// trims the ends.
func normalizeWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// resolveHref resolves a raw href against the document base URL.
// Returns empty string for hrefs with no navigable target.
func resolveHref(href string, base *url.URL) string {
	href = strings.TrimSpace(href)
	if href == "" || href == "#" {
		return ""
	}
	if strings.HasPrefix(href, "javascript:") ||
		strings.HasPrefix(href, "mailto:") ||
		strings.HasPrefix(href, "tel:") ||
		strings.HasPrefix(href, "data:") {
		return ""
	}

	u, err := url.Parse(href)
	if err != nil {
		return ""
	}
	if base != nil {
		u = base.ResolveReference(u)
	}
	if u.Hostname() == "" {
		return ""
	}
	return u.String()
}

// getAttr retrieves an attribute value from an HTML node.
func getAttr(n *html.Node, key string) string {
	for _, attr := range n.Attr {
		if attr.Key == key {
			return attr.Val
		}
	}
	return ""
}
