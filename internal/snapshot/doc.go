// Package snapshot captures size-capped markdown renditions of legal
// documents at scan time, so users can later review exactly what was
// analyzed even after the page changes.
package snapshot
