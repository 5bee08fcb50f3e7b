package model

// Human-readable names for the two document types a page can expose.
const (
	// LabelTerms is the display label for a Terms of Service document.
	LabelTerms = "Terms & Conditions"

	// LabelPrivacy is the display label for a Privacy Policy document.
	LabelPrivacy = "Privacy Policy"
)

// DetectionResult holds the best-guess legal document links found on a page.
//
// An empty string means "not found". Callers must treat empty as a valid
// absence signal, not an error: a page with no legal links is a normal
// terminal state for detection.
type DetectionResult struct {
	// TermsURL is the absolute URL of the detected Terms of Service link,
	// or empty if no qualifying anchor was found.
	TermsURL string `json:"termsUrl"`

	// PrivacyURL is the absolute URL of the detected Privacy Policy link,
	// or empty if no qualifying anchor was found.
	PrivacyURL string `json:"privacyUrl"`
}

// Empty reports whether no legal document link was detected.
func (d DetectionResult) Empty() bool {
	return d.TermsURL == "" && d.PrivacyURL == ""
}

// Labels returns the display labels for the detected document types,
// Terms first. Used to build notification text such as
// "Detected: Terms & Conditions, Privacy Policy".
func (d DetectionResult) Labels() []string {
	labels := make([]string, 0, 2)
	if d.TermsURL != "" {
		labels = append(labels, LabelTerms)
	}
	if d.PrivacyURL != "" {
		labels = append(labels, LabelPrivacy)
	}
	return labels
}

// Target is a single labeled scan target derived from a detection.
type Target struct {
	// Label is the human-readable document name (LabelTerms or LabelPrivacy).
	Label string `json:"label"`

	// URL is the absolute document URL to submit to the analysis service.
	URL string `json:"url"`
}

// Targets returns the scan targets for the detection in scan order:
// Terms before Privacy when both are present. A single anchor serving as
// both Terms and Privacy yields two targets with the same URL, one per
// label, matching how reports are keyed.
func (d DetectionResult) Targets() []Target {
	targets := make([]Target, 0, 2)
	if d.TermsURL != "" {
		targets = append(targets, Target{Label: LabelTerms, URL: d.TermsURL})
	}
	if d.PrivacyURL != "" {
		targets = append(targets, Target{Label: LabelPrivacy, URL: d.PrivacyURL})
	}
	return targets
}
