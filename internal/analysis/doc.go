// Package analysis calls the remote legal-document analysis service and
// normalizes its responses.
//
// The service payload is an external contract: responses arrive in one of
// several envelope shapes and any field may be missing or malformed.
// Requests that fail are surfaced to the caller (the one actionable error
// class), but normalization never fails — a response we cannot interpret
// degrades to an unknown-risk document.
package analysis
