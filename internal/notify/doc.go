// Package notify shows the one-time detection banner for a host.
//
// The presenter owns the banner lifecycle: it consults the site state
// store before showing anything, keeps at most one banner active, marks
// the host seen exactly when a banner is actually shown, and retires the
// banner after a fixed display duration. Rendering is behind the Sink
// interface so the CLI, the HTTP server, and tests can each provide their
// own surface.
package notify
