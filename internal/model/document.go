package model

// Document is the normalized view of a single analyzed legal document,
// derived from the opaque service payload by the analysis package.
//
// Every field is optional: the normalizer fills in whatever the payload
// provides and leaves the rest zero-valued, so report writers must render
// gracefully with partial data.
type Document struct {
	// Label is the scan target label this document was analyzed for.
	Label string `json:"label"`

	// URL is the document URL echoed by the service, falling back to the
	// target URL when the service omits it.
	URL string `json:"url,omitempty"`

	// Title is the document title reported by the service.
	Title string `json:"title,omitempty"`

	// Risk is the per-document risk level, RiskUnknown when the summary
	// is missing or malformed.
	Risk RiskLevel `json:"risk"`

	// Warnings are noteworthy clauses flagged by the service.
	Warnings []string `json:"warnings,omitempty"`

	// Concerns are broader issues flagged by the service.
	Concerns []string `json:"concerns,omitempty"`

	// Recommendation is the service's suggested course of action.
	Recommendation string `json:"recommendation,omitempty"`

	// QuickFindings are positive signals derived from the payload's
	// clause checks, e.g. "No hidden fees detected".
	QuickFindings []string `json:"quick_findings,omitempty"`
}

// DisplayTitle returns the best available name for the document:
// the service title, else the target label, else "Document".
func (d Document) DisplayTitle() string {
	if d.Title != "" {
		return d.Title
	}
	if d.Label != "" {
		return d.Label
	}
	return "Document"
}
