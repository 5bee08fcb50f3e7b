package model

import (
	"encoding/json"
	"time"
)

// LabeledResult pairs a scan target's display label with the opaque
// response payload returned by the analysis service for that target.
//
// Design decision: Data stays a json.RawMessage rather than a parsed
// structure because the service payload is an external contract we do not
// own. Storing it verbatim lets stored reports survive service schema
// changes; normalization happens at render time and tolerates anything.
type LabeledResult struct {
	// Label is the human-readable target name (LabelTerms or LabelPrivacy).
	Label string `json:"label"`

	// Data is the raw service response for this target.
	Data json.RawMessage `json:"data"`
}

// LastScan summarizes the most recent scan performed for a host.
type LastScan struct {
	// URL is the document URL of the most recently scanned target.
	URL string `json:"url"`

	// OverallRisk is the aggregate risk computed across the scan's targets.
	OverallRisk RiskLevel `json:"overall_risk_level"`

	// UpdatedAt is when the scan result was recorded.
	UpdatedAt time.Time `json:"updatedAt"`
}

// DocumentSnapshot is a size-capped markdown rendition of a legal document,
// captured at scan time so users can review what was actually analyzed.
type DocumentSnapshot struct {
	// URL is the document URL the snapshot was captured from.
	URL string `json:"url"`

	// Markdown is the converted document content, truncated to the
	// snapshot size limit.
	Markdown string `json:"markdown"`

	// Hash is the hex-encoded SHA3-256 of the raw page body, used for
	// change detection across scans.
	Hash string `json:"hash"`

	// CapturedAt is when the snapshot was taken.
	CapturedAt time.Time `json:"capturedAt"`
}

// HostReport is the stored analysis report for a host.
type HostReport struct {
	// Results holds the per-target service payloads in insertion order,
	// matching the order targets were scanned (Terms before Privacy when
	// both are present).
	Results []LabeledResult `json:"results"`

	// Snapshots maps target labels to document snapshots captured during
	// the scan. Absent when snapshotting was skipped or failed.
	Snapshots map[string]DocumentSnapshot `json:"snapshots,omitempty"`

	// UpdatedAt is when the report was recorded.
	UpdatedAt time.Time `json:"updatedAt"`
}

// HostState is the persisted record for a single host, keyed by the origin
// hostname. A host has at most one HostState entry.
//
// Field groups (Detected; Seen/Suppressed; LastScan/Report) are merged
// independently by the store: re-detection overwrites Detected but never
// clears Seen, Suppressed, or Report.
type HostState struct {
	// Detected holds the most recent detection result for the host.
	Detected DetectionResult `json:"detected"`

	// Seen is set exactly once per host, the first time a banner is
	// actually shown. It is never reset within the store's lifetime.
	Seen bool `json:"seen"`

	// Suppressed marks hosts whose banners the user has turned off.
	Suppressed bool `json:"suppressed"`

	// LastScan summarizes the most recent scan, or nil if never scanned.
	LastScan *LastScan `json:"lastScan,omitempty"`

	// Report is the stored analysis report, or nil if never scanned.
	Report *HostReport `json:"report,omitempty"`
}

// Clone returns a deep copy of the state. The store hands out clones so
// callers cannot mutate the in-memory mirror behind its back.
func (h *HostState) Clone() *HostState {
	if h == nil {
		return nil
	}
	clone := *h
	if h.LastScan != nil {
		ls := *h.LastScan
		clone.LastScan = &ls
	}
	if h.Report != nil {
		rep := HostReport{
			Results:   make([]LabeledResult, len(h.Report.Results)),
			UpdatedAt: h.Report.UpdatedAt,
		}
		copy(rep.Results, h.Report.Results)
		if h.Report.Snapshots != nil {
			rep.Snapshots = make(map[string]DocumentSnapshot, len(h.Report.Snapshots))
			for k, v := range h.Report.Snapshots {
				rep.Snapshots[k] = v
			}
		}
		clone.Report = &rep
	}
	return &clone
}
