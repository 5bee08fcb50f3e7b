package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/sakya146/termscan/internal/model"
)

// SimpleWriter outputs scan results in a human-readable text format.
// This is the default terminal output, designed for readability over
// parseability.
type SimpleWriter struct {
	baseWriter

	// verbose includes per-document warnings and concerns in full.
	verbose bool
}

// SimpleWriterOption configures a SimpleWriter.
type SimpleWriterOption func(*SimpleWriter)

// WithVerbose enables verbose output including every warning and concern
// the service reported.
func WithVerbose(verbose bool) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.verbose = verbose
	}
}

// NewSimpleWriter creates a Writer for human-readable text output.
func NewSimpleWriter(output io.Writer, opts ...SimpleWriterOption) *SimpleWriter {
	w := &SimpleWriter{
		baseWriter: newBaseWriter(output),
	}

	for _, opt := range opts {
		opt(w)
	}

	return w
}

// Write outputs the report in simple text format.
func (w *SimpleWriter) Write(report *model.ScanReport) (int, error) {
	var sb strings.Builder

	w.writeHeader(&sb, report)
	w.writeDetection(&sb, report)
	w.writeDocuments(&sb, report)
	w.writeOverall(&sb, report)
	w.writeFooter(&sb)

	return w.output.Write([]byte(sb.String()))
}

const headerRule = "============================================================"

func (w *SimpleWriter) writeHeader(sb *strings.Builder, report *model.ScanReport) {
	sb.WriteString(headerRule + "\n")
	sb.WriteString("TERMSCAN REPORT\n")
	sb.WriteString(headerRule + "\n")
	fmt.Fprintf(sb, "URL:       %s\n", report.URL)
	fmt.Fprintf(sb, "Host:      %s\n", report.Host)
	fmt.Fprintf(sb, "Scan Date: %s\n", report.DateScanned.Format("2006-01-02 15:04:05 MST"))

	status := "completed"
	if report.ErrorMessage != "" {
		status = "failed: " + report.ErrorMessage
	}
	fmt.Fprintf(sb, "Status:    %s\n", status)
	sb.WriteString("\n")
}

func (w *SimpleWriter) writeDetection(sb *strings.Builder, report *model.ScanReport) {
	sb.WriteString("DETECTED LINKS\n")
	sb.WriteString("--------------\n")

	if report.Detection.Empty() {
		sb.WriteString("No legal document links found on this page.\n\n")
		return
	}

	for _, target := range report.Detection.Targets() {
		fmt.Fprintf(sb, "%-20s %s\n", target.Label+":", target.URL)
	}
	sb.WriteString("\n")
}

func (w *SimpleWriter) writeDocuments(sb *strings.Builder, report *model.ScanReport) {
	for _, doc := range report.Documents {
		fmt.Fprintf(sb, "%s\n", strings.ToUpper(doc.Label))
		sb.WriteString(strings.Repeat("-", len(doc.Label)) + "\n")

		if doc.Title != "" && doc.Title != doc.Label {
			fmt.Fprintf(sb, "Title: %s\n", doc.Title)
		}
		if doc.URL != "" {
			fmt.Fprintf(sb, "URL:   %s\n", doc.URL)
		}
		fmt.Fprintf(sb, "Risk:  %s\n", DisplayRisk(doc.Risk))

		if len(doc.QuickFindings) > 0 {
			sb.WriteString("\nQuick findings:\n")
			for _, finding := range doc.QuickFindings {
				fmt.Fprintf(sb, "  + %s\n", finding)
			}
		}

		w.writeIssueList(sb, "Warnings", doc.Warnings)
		w.writeIssueList(sb, "Concerns", doc.Concerns)

		if doc.Recommendation != "" {
			fmt.Fprintf(sb, "\nRecommendation: %s\n", doc.Recommendation)
		}
		sb.WriteString("\n")
	}
}

// maxIssuesCompact caps warnings/concerns per document in non-verbose
// output. Verbose mode prints everything.
const maxIssuesCompact = 5

func (w *SimpleWriter) writeIssueList(sb *strings.Builder, title string, issues []string) {
	if len(issues) == 0 {
		return
	}

	fmt.Fprintf(sb, "\n%s:\n", title)
	shown := issues
	if !w.verbose && len(shown) > maxIssuesCompact {
		shown = shown[:maxIssuesCompact]
	}
	for _, issue := range shown {
		fmt.Fprintf(sb, "  - %s\n", issue)
	}
	if hidden := len(issues) - len(shown); hidden > 0 {
		fmt.Fprintf(sb, "  ... and %d more (use --verbose to see all)\n", hidden)
	}
}

func (w *SimpleWriter) writeOverall(sb *strings.Builder, report *model.ScanReport) {
	sb.WriteString("OVERALL RISK\n")
	sb.WriteString("------------\n")
	fmt.Fprintf(sb, "%s\n", DisplayRisk(report.Overall))

	switch report.Overall {
	case model.RiskHigh:
		sb.WriteString("Review the flagged clauses before agreeing to anything.\n")
	case model.RiskMedium:
		sb.WriteString("Some clauses deserve a closer look.\n")
	case model.RiskLow:
		sb.WriteString("Minor issues found; nothing alarming.\n")
	case model.RiskNone:
		sb.WriteString("No significant risk signals found.\n")
	case model.RiskUnknown:
		if report.Analyzed() {
			sb.WriteString("The analysis did not produce a risk level.\n")
		} else {
			sb.WriteString("No documents were analyzed.\n")
		}
	}
	sb.WriteString("\n")
}

func (w *SimpleWriter) writeFooter(sb *strings.Builder) {
	sb.WriteString(headerRule + "\n")
	sb.WriteString(disclaimer + "\n")
	sb.WriteString(headerRule + "\n")
}
