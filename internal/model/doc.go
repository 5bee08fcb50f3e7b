// Package model defines the core data structures used throughout termscan.
//
// This package contains the following main types:
//   - RiskLevel: The risk scale reported by the analysis service
//   - DetectionResult: The Terms/Privacy links found on a page
//   - HostState: The persisted per-host record
//   - ScanReport: The working result of a full scan run
//
// Design decision: We separate models into their own package to avoid circular
// dependencies. Multiple packages (classifier, store, pipeline, report) need
// to use these types, so centralizing them prevents import cycles.
//
// The models are designed to be serializable to JSON for report output and
// database storage.
package model
