package analysis

import (
	"encoding/json"

	"github.com/sakya146/termscan/internal/model"
)

// clauseChecks maps payload clause-check keys to the positive finding shown
// when the clause is explicitly reported as not detected. Order is the
// display order.
var clauseChecks = []struct {
	key     string
	finding string
}{
	{key: "hidden_fees", finding: "No hidden fees detected"},
	{key: "third_party_sharing", finding: "No privacy leak detected"},
	{key: "cancellation_policy", finding: "No strict cancellation detected"},
}

// Unwrap strips the response envelope. The service wraps the document data
// either as {"result":{"data":{...}}}, as {"data":{...}}, or not at all;
// Unwrap returns the innermost object it can find, falling back to the
// input verbatim.
func Unwrap(raw json.RawMessage) json.RawMessage {
	var envelope struct {
		Result struct {
			Data json.RawMessage `json:"data"`
		} `json:"result"`
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return raw
	}
	if len(envelope.Result.Data) > 0 && !isJSONNull(envelope.Result.Data) {
		return envelope.Result.Data
	}
	if len(envelope.Data) > 0 && !isJSONNull(envelope.Data) {
		return envelope.Data
	}
	return raw
}

// Normalize interprets a raw service payload as a Document for the given
// target label. It never fails: missing or malformed fields are simply left
// zero-valued, and a payload with no usable summary yields RiskUnknown.
func Normalize(label string, raw json.RawMessage) model.Document {
	doc := model.Document{
		Label: label,
		Risk:  model.RiskUnknown,
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(Unwrap(raw), &fields); err != nil {
		return doc
	}

	doc.URL = stringField(fields, "url")
	doc.Title = stringField(fields, "title")

	var summary map[string]json.RawMessage
	if rawSummary, ok := fields["summary"]; ok {
		// A malformed summary leaves the document at RiskUnknown.
		_ = json.Unmarshal(rawSummary, &summary) //nolint:errcheck
	}
	if summary != nil {
		doc.Risk = model.ParseRiskLevel(stringField(summary, "overall_risk_level"))
		doc.Warnings = stringSliceField(summary, "warnings")
		doc.Concerns = stringSliceField(summary, "concerns")
		doc.Recommendation = stringField(summary, "recommendation")
	}

	doc.QuickFindings = quickFindings(fields)
	return doc
}

// quickFindings derives positive findings from the payload's clause checks.
// Only an explicit "detected": false produces a finding; absent or
// malformed checks produce nothing.
func quickFindings(fields map[string]json.RawMessage) []string {
	var findings []string
	for _, check := range clauseChecks {
		rawCheck, ok := fields[check.key]
		if !ok {
			continue
		}
		var clause struct {
			Detected *bool `json:"detected"`
		}
		if err := json.Unmarshal(rawCheck, &clause); err != nil {
			continue
		}
		if clause.Detected != nil && !*clause.Detected {
			findings = append(findings, check.finding)
		}
	}
	return findings
}

// stringField returns the string at key, or empty when absent or not a
// string.
func stringField(fields map[string]json.RawMessage, key string) string {
	raw, ok := fields[key]
	if !ok {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return ""
	}
	return s
}

// stringSliceField returns the string elements at key, skipping non-string
// entries. A non-array value yields nil.
func stringSliceField(fields map[string]json.RawMessage, key string) []string {
	raw, ok := fields[key]
	if !ok {
		return nil
	}
	var elements []json.RawMessage
	if err := json.Unmarshal(raw, &elements); err != nil {
		return nil
	}
	var values []string
	for _, element := range elements {
		var s string
		if err := json.Unmarshal(element, &s); err != nil {
			continue
		}
		values = append(values, s)
	}
	return values
}

// isJSONNull reports whether raw is the JSON null literal.
func isJSONNull(raw json.RawMessage) bool {
	return string(raw) == "null"
}
