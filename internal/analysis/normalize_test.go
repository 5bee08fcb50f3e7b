package analysis

import (
	"encoding/json"
	"reflect"
	"testing"

	"github.com/sakya146/termscan/internal/model"
)

// TestUnwrap tests envelope stripping.
func TestUnwrap(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name string
		raw  string
		want string
	}{
		{
			name: "result.data envelope",
			raw:  `{"result":{"data":{"title":"TOS"}}}`,
			want: `{"title":"TOS"}`,
		},
		{
			name: "data envelope",
			raw:  `{"data":{"title":"TOS"}}`,
			want: `{"title":"TOS"}`,
		},
		{
			name: "bare payload",
			raw:  `{"title":"TOS"}`,
			want: `{"title":"TOS"}`,
		},
		{
			name: "result.data preferred over data",
			raw:  `{"result":{"data":{"a":1}},"data":{"b":2}}`,
			want: `{"a":1}`,
		},
		{
			name: "null data falls through",
			raw:  `{"data":null,"title":"TOS"}`,
			want: `{"data":null,"title":"TOS"}`,
		},
		{
			name: "non-object payload",
			raw:  `[1,2,3]`,
			want: `[1,2,3]`,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			got := Unwrap(json.RawMessage(tc.raw))
			if string(got) != tc.want {
				t.Errorf("Unwrap(%s) = %s, want %s", tc.raw, got, tc.want)
			}
		})
	}
}

// TestNormalize tests tolerant payload interpretation.
func TestNormalize(t *testing.T) {
	t.Parallel()

	t.Run("complete payload", func(t *testing.T) {
		t.Parallel()

		raw := json.RawMessage(`{
			"result": {"data": {
				"url": "https://example.com/tos",
				"title": "Terms of Service",
				"hidden_fees": {"detected": false},
				"third_party_sharing": {"detected": true},
				"cancellation_policy": {"detected": false},
				"summary": {
					"overall_risk_level": "Medium",
					"warnings": ["auto-renewal clause"],
					"concerns": ["broad data sharing"],
					"recommendation": "Review section 4 before accepting"
				}
			}}
		}`)

		doc := Normalize(model.LabelTerms, raw)
		if doc.Label != model.LabelTerms {
			t.Errorf("unexpected label: %q", doc.Label)
		}
		if doc.URL != "https://example.com/tos" {
			t.Errorf("unexpected URL: %q", doc.URL)
		}
		if doc.Risk != model.RiskMedium {
			t.Errorf("unexpected risk: %v", doc.Risk)
		}
		if !reflect.DeepEqual(doc.Warnings, []string{"auto-renewal clause"}) {
			t.Errorf("unexpected warnings: %v", doc.Warnings)
		}
		if !reflect.DeepEqual(doc.Concerns, []string{"broad data sharing"}) {
			t.Errorf("unexpected concerns: %v", doc.Concerns)
		}
		if doc.Recommendation == "" {
			t.Error("expected recommendation")
		}
		// Only explicit "detected": false yields a finding; true and absent
		// yield nothing.
		want := []string{"No hidden fees detected", "No strict cancellation detected"}
		if !reflect.DeepEqual(doc.QuickFindings, want) {
			t.Errorf("unexpected quick findings: %v", doc.QuickFindings)
		}
	})

	t.Run("missing summary degrades to unknown", func(t *testing.T) {
		t.Parallel()

		doc := Normalize(model.LabelPrivacy, json.RawMessage(`{"title":"Privacy"}`))
		if doc.Risk != model.RiskUnknown {
			t.Errorf("expected unknown risk, got %v", doc.Risk)
		}
		if doc.Title != "Privacy" {
			t.Errorf("unexpected title: %q", doc.Title)
		}
	})

	t.Run("malformed payload degrades to unknown", func(t *testing.T) {
		t.Parallel()

		testCases := []string{
			`not json at all`,
			`"just a string"`,
			`{"summary":"not an object"}`,
			`{"summary":{"overall_risk_level":42}}`,
			`null`,
		}
		for _, raw := range testCases {
			doc := Normalize(model.LabelTerms, json.RawMessage(raw))
			if doc.Risk != model.RiskUnknown {
				t.Errorf("payload %q: expected unknown risk, got %v", raw, doc.Risk)
			}
			if doc.Label != model.LabelTerms {
				t.Errorf("payload %q: label must survive, got %q", raw, doc.Label)
			}
		}
	})

	t.Run("risk level parsing is case-insensitive", func(t *testing.T) {
		t.Parallel()

		doc := Normalize(model.LabelTerms, json.RawMessage(`{"summary":{"overall_risk_level":"HIGH"}}`))
		if doc.Risk != model.RiskHigh {
			t.Errorf("expected high risk, got %v", doc.Risk)
		}
	})

	t.Run("non-string warning entries skipped", func(t *testing.T) {
		t.Parallel()

		raw := json.RawMessage(`{"summary":{"warnings":["real warning", 42, {"x":1}, "another"]}}`)
		doc := Normalize(model.LabelTerms, raw)
		want := []string{"real warning", "another"}
		if !reflect.DeepEqual(doc.Warnings, want) {
			t.Errorf("unexpected warnings: %v", doc.Warnings)
		}
	})

	t.Run("malformed clause check skipped", func(t *testing.T) {
		t.Parallel()

		raw := json.RawMessage(`{"hidden_fees":"nope","third_party_sharing":{"detected":false}}`)
		doc := Normalize(model.LabelTerms, raw)
		want := []string{"No privacy leak detected"}
		if !reflect.DeepEqual(doc.QuickFindings, want) {
			t.Errorf("unexpected quick findings: %v", doc.QuickFindings)
		}
	})
}
