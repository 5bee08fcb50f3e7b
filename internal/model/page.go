package model

import (
	"encoding/hex"

	"golang.org/x/crypto/sha3"
)

// MaxSnapshotSize is the maximum size of a stored document snapshot in
// bytes. We limit this to prevent memory and storage issues with very
// large legal documents.
const MaxSnapshotSize = 512 * 1024 // 512 KB

// Page represents a fetched web page.
//
// Design decision: We keep both the raw body and the content hash because:
//  1. The body is needed for classification and snapshot conversion
//  2. The hash allows cheap change detection between watcher polls
type Page struct {
	// URL is the full URL the page was fetched from, after redirects.
	URL string `json:"url"`

	// StatusCode is the HTTP response status code.
	StatusCode int `json:"status_code"`

	// ContentType is the MIME type from the Content-Type header.
	ContentType string `json:"content_type"`

	// Body contains the response body, truncated to the fetcher's
	// configured maximum size.
	Body []byte `json:"-"` // Excluded from JSON to reduce report size

	// Hash is the hex-encoded SHA3-256 hash of Body.
	Hash string `json:"hash"`
}

// HashBody computes the hex-encoded SHA3-256 hash of a page body.
func HashBody(body []byte) string {
	sum := sha3.Sum256(body)
	return hex.EncodeToString(sum[:])
}
