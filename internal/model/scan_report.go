package model

import (
	"fmt"
	"net/url"
	"time"
)

// ScanReport is the working result of one full scan run against a page.
// Pipeline steps accumulate into it: detection, snapshots, per-target
// analysis results, and the aggregate risk.
type ScanReport struct {
	// URL is the page that was scanned for legal document links.
	URL string `json:"url"`

	// Host is the hostname of URL, the partition key for stored state.
	Host string `json:"host"`

	// DateScanned is when the scan started.
	DateScanned time.Time `json:"date_scanned"`

	// Detection holds the legal document links found on the page.
	Detection DetectionResult `json:"detection"`

	// Results holds the raw per-target service payloads in scan order.
	Results []LabeledResult `json:"results,omitempty"`

	// Documents holds the normalized per-target analysis, parallel to
	// Results.
	Documents []Document `json:"documents,omitempty"`

	// Snapshots maps target labels to captured document snapshots.
	Snapshots map[string]DocumentSnapshot `json:"snapshots,omitempty"`

	// Overall is the aggregate risk across all analyzed documents.
	Overall RiskLevel `json:"overall_risk"`

	// PerformedSteps lists the pipeline steps that ran, in order.
	PerformedSteps []string `json:"performed_steps,omitempty"`

	// Error holds the failure that terminated the scan, if any.
	Error error `json:"-"` // Excluded from JSON

	// ErrorMessage is the string form of Error for serialization.
	ErrorMessage string `json:"error,omitempty"`
}

// NewScanReport creates a report for the given page URL.
// The host is derived from the URL and returned errors indicate an
// unusable target, not a scan failure.
func NewScanReport(rawURL string) (*ScanReport, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("invalid target URL %q: %w", rawURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("unsupported URL scheme %q (want http or https)", u.Scheme)
	}
	if u.Hostname() == "" {
		return nil, fmt.Errorf("target URL %q has no host", rawURL)
	}
	return &ScanReport{
		URL:         rawURL,
		Host:        u.Hostname(),
		DateScanned: time.Now(),
		Overall:     RiskUnknown,
	}, nil
}

// Analyzed reports whether the scan produced at least one analysis result.
func (r *ScanReport) Analyzed() bool {
	return len(r.Results) > 0
}

// DocumentRisks returns the per-document risk levels in scan order.
func (r *ScanReport) DocumentRisks() []RiskLevel {
	risks := make([]RiskLevel, len(r.Documents))
	for i, doc := range r.Documents {
		risks[i] = doc.Risk
	}
	return risks
}
