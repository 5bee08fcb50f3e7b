// Package store persists per-host site state: detected legal-document
// links, notification flags, and scan results.
//
// The Store wraps a swappable Backend (SQLite in production, in-memory for
// tests and degraded operation) and owns the merge discipline: every
// operation is a read-merge-write against the host's full record that
// modifies only its own field group, so concurrent triggers cannot clobber
// unrelated fields. Writes are best-effort; a failing backend never fails
// the operation that triggered it.
package store
