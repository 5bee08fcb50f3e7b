// Package server exposes the site state store and on-demand scans over a
// small HTTP API, intended to bind on localhost as a management surface.
// Stored service payloads are re-normalized at read time so reports written
// by older versions stay renderable.
package server
