package store

import (
	"net/url"
	"strings"
)

// searchEngineFragments identifies search-engine hosts. A fragment matches
// anywhere in the hostname so country TLDs (google.co.uk) are covered.
var searchEngineFragments = []string{
	"google.",
	"bing.",
	"duckduckgo.",
	"search.yahoo.",
}

// SearchResultsPage reports whether u is a search-engine results page.
// Result listings are full of links whose text superficially matches
// legal-document keywords, so banners are never shown there. A page
// qualifies when the hostname contains a known search-engine fragment and
// the URL carries a search path or query parameter.
func SearchResultsPage(u *url.URL) bool {
	if u == nil {
		return false
	}

	host := strings.ToLower(u.Hostname())
	engine := false
	for _, fragment := range searchEngineFragments {
		if strings.Contains(host, fragment) {
			engine = true
			break
		}
	}
	if !engine {
		return false
	}

	if strings.HasPrefix(u.Path, "/search") {
		return true
	}
	return u.Query().Has("q")
}
