package model

import (
	"encoding/json"
	"strings"
)

// RiskLevel represents the risk assessment of a scanned legal document.
// Values are ordered by severity so that aggregation can compare them
// directly.
//
// Design decision: We use iota-based constants rather than string constants
// for efficiency in comparisons and aggregation. The String() method provides
// human-readable output when needed. RiskUnknown is the zero value so that
// a missing or malformed service response naturally degrades to "unknown".
type RiskLevel int

const (
	// RiskUnknown indicates the service did not report a usable risk level.
	// This is not an error state: malformed or missing summaries degrade
	// to unknown and rendering proceeds with reduced information.
	RiskUnknown RiskLevel = iota

	// RiskNone indicates the document was analyzed and no risk was found.
	RiskNone

	// RiskLow indicates minor concerns that most users can accept.
	RiskLow

	// RiskMedium indicates concerns worth reviewing before accepting.
	RiskMedium

	// RiskHigh indicates serious concerns such as broad data sharing or
	// one-sided termination clauses.
	RiskHigh
)

// String returns the lowercase textual form of the risk level.
func (r RiskLevel) String() string {
	switch r {
	case RiskNone:
		return "none"
	case RiskLow:
		return "low"
	case RiskMedium:
		return "medium"
	case RiskHigh:
		return "high"
	default:
		return "unknown"
	}
}

// ParseRiskLevel converts a service-reported level into a RiskLevel.
// Matching is case-insensitive; unrecognized or empty input maps to
// RiskUnknown rather than an error because the service payload is opaque
// and must never fail the scan.
func ParseRiskLevel(s string) RiskLevel {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "none":
		return RiskNone
	case "low":
		return RiskLow
	case "medium":
		return RiskMedium
	case "high":
		return RiskHigh
	default:
		return RiskUnknown
	}
}

// MarshalJSON serializes the risk level as its string form.
func (r RiskLevel) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.String())
}

// UnmarshalJSON parses the string form; unknown strings become RiskUnknown.
func (r *RiskLevel) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	*r = ParseRiskLevel(s)
	return nil
}

// AggregateRisk computes the overall displayed risk for a scan.
// It returns the highest level, in priority order high > medium > low > none,
// present in the sequence. If none of those four appear the aggregate is
// RiskUnknown. The result is independent of the order of the input.
func AggregateRisk(levels []RiskLevel) RiskLevel {
	aggregate := RiskUnknown
	for _, level := range levels {
		if level == RiskUnknown {
			continue
		}
		if aggregate == RiskUnknown || level > aggregate {
			aggregate = level
		}
	}
	return aggregate
}
