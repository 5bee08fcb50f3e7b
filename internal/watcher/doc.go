// Package watcher re-runs link classification on a loading page until
// legal-document links appear or the caller gives up.
//
// Pages that build their footer client-side have no Terms or Privacy links
// in the initial HTML. The watcher models that as a small state machine
// (idle, watching, settled): an initial classification that finds at least
// one link settles immediately; otherwise the watcher listens to a change
// event source and schedules a one-shot fallback re-check, settling on the
// first re-classification that finds anything.
package watcher
