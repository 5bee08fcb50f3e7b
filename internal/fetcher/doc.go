// Package fetcher retrieves web pages for classification and snapshotting.
//
// It wraps net/http with the defaults a scanner needs: a descriptive
// User-Agent, a response body size cap, bounded redirects, and optional
// routing through a SOCKS5 proxy for users who want to fetch anonymously.
package fetcher
