package report

import (
	"io"

	"github.com/nao1215/markdown"

	"github.com/sakya146/termscan/internal/model"
)

// MarkdownWriter outputs reports in Markdown format.
// This format is designed for documentation and sharing.
//
// Design decision: We use the nao1215/markdown library for fluent markdown
// generation which provides:
// 1. Type-safe markdown generation
// 2. Support for tables, lists, and code blocks
// 3. GitHub-flavored markdown alerts
type MarkdownWriter struct {
	baseWriter

	// includeSnapshots embeds captured document snapshots as collapsible
	// sections. Off by default because snapshots can be large.
	includeSnapshots bool
}

// MarkdownWriterOption configures a MarkdownWriter.
type MarkdownWriterOption func(*MarkdownWriter)

// WithSnapshots embeds captured document snapshots in the output.
func WithSnapshots(include bool) MarkdownWriterOption {
	return func(w *MarkdownWriter) {
		w.includeSnapshots = include
	}
}

// NewMarkdownWriter creates a MarkdownWriter that outputs to the given writer.
func NewMarkdownWriter(output io.Writer, opts ...MarkdownWriterOption) *MarkdownWriter {
	w := &MarkdownWriter{
		baseWriter: newBaseWriter(output),
	}

	for _, opt := range opts {
		opt(w)
	}

	return w
}

// Write outputs the full report in Markdown format.
func (w *MarkdownWriter) Write(report *model.ScanReport) (int, error) {
	md := markdown.NewMarkdown(w.output)

	w.writeHeader(md, report)
	w.writeAlert(md, report)
	w.writeDetection(md, report)
	w.writeDocuments(md, report)
	if w.includeSnapshots {
		w.writeSnapshots(md, report)
	}
	w.writeFooter(md)

	return len(md.String()), md.Build()
}

// writeHeader writes the report header with scan information.
func (w *MarkdownWriter) writeHeader(md *markdown.Markdown, report *model.ScanReport) {
	md.H1("Termscan Report")
	md.PlainText("")

	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows: [][]string{
			{"Page", "`" + report.URL + "`"},
			{"Host", "`" + report.Host + "`"},
			{"Scan Date", report.DateScanned.Format("2006-01-02 15:04:05 MST")},
			{"Overall Risk", w.riskBadge(report.Overall)},
			{"Status", w.getStatusText(report)},
		},
	})
	md.PlainText("")
}

// getStatusText returns the status text based on report state.
func (w *MarkdownWriter) getStatusText(report *model.ScanReport) string {
	if report.ErrorMessage != "" {
		return "❌ Error - " + report.ErrorMessage
	}
	return "✅ Complete"
}

// riskBadge renders a risk level with a traffic-light marker.
func (w *MarkdownWriter) riskBadge(level model.RiskLevel) string {
	switch level {
	case model.RiskHigh:
		return "🔴 High"
	case model.RiskMedium:
		return "🟠 Medium"
	case model.RiskLow:
		return "🟡 Low"
	case model.RiskNone:
		return "🟢 None"
	default:
		return "⚪ Unknown"
	}
}

// writeAlert writes an appropriate alert based on the overall risk.
func (w *MarkdownWriter) writeAlert(md *markdown.Markdown, report *model.ScanReport) {
	switch report.Overall {
	case model.RiskHigh:
		md.Cautionf(
			"High risk clauses detected across %d document(s). Review them before agreeing to anything.",
			len(report.Documents),
		)
	case model.RiskMedium:
		md.Warning("Medium risk clauses detected. Some terms deserve a closer look.")
	case model.RiskLow:
		md.Important("Low risk issues found. Nothing alarming, but worth knowing.")
	case model.RiskNone:
		md.Tip("No significant risk signals found in the analyzed documents.")
	default:
		md.Note("The analysis did not produce a risk level.")
	}
	md.PlainText("")
}

// writeDetection writes the detected legal document links.
func (w *MarkdownWriter) writeDetection(md *markdown.Markdown, report *model.ScanReport) {
	md.H2("Detected Links")
	md.PlainText("")

	if report.Detection.Empty() {
		md.PlainText("No legal document links found on this page.")
		md.PlainText("")
		return
	}

	targets := report.Detection.Targets()
	rows := make([][]string, len(targets))
	for i, target := range targets {
		rows[i] = []string{target.Label, "`" + target.URL + "`"}
	}

	md.Table(markdown.TableSet{
		Header: []string{"Document", "URL"},
		Rows:   rows,
	})
	md.PlainText("")
}

// writeDocuments writes per-document analysis sections.
func (w *MarkdownWriter) writeDocuments(md *markdown.Markdown, report *model.ScanReport) {
	if len(report.Documents) == 0 {
		return
	}

	md.H2("Analyzed Documents")
	md.PlainText("")

	for _, doc := range report.Documents {
		md.H3(doc.Label)
		md.PlainText("")

		rows := [][]string{
			{"Risk", w.riskBadge(doc.Risk)},
		}
		if doc.Title != "" && doc.Title != doc.Label {
			rows = append(rows, []string{"Title", truncateString(doc.Title, 80)})
		}
		if doc.URL != "" {
			rows = append(rows, []string{"URL", "`" + doc.URL + "`"})
		}
		md.Table(markdown.TableSet{
			Header: []string{"Property", "Value"},
			Rows:   rows,
		})
		md.PlainText("")

		if len(doc.QuickFindings) > 0 {
			md.PlainText("**Quick findings**")
			md.PlainText("")
			md.BulletList(doc.QuickFindings...)
			md.PlainText("")
		}

		w.writeIssueList(md, "Warnings", doc.Warnings)
		w.writeIssueList(md, "Concerns", doc.Concerns)

		if doc.Recommendation != "" {
			md.PlainText("**Recommendation:** " + doc.Recommendation)
			md.PlainText("")
		}
	}
}

// writeIssueList writes a titled bullet list, skipping empty lists.
func (w *MarkdownWriter) writeIssueList(md *markdown.Markdown, title string, issues []string) {
	if len(issues) == 0 {
		return
	}

	md.PlainText("**" + title + "**")
	md.PlainText("")
	md.BulletList(issues...)
	md.PlainText("")
}

// writeSnapshots embeds captured snapshots as collapsible sections.
func (w *MarkdownWriter) writeSnapshots(md *markdown.Markdown, report *model.ScanReport) {
	if len(report.Snapshots) == 0 {
		return
	}

	md.H2("Document Snapshots")
	md.PlainText("")

	// Iterate in target order so output is deterministic.
	for _, target := range report.Detection.Targets() {
		snap, ok := report.Snapshots[target.Label]
		if !ok {
			continue
		}
		md.Details(target.Label+" (captured "+snap.CapturedAt.Format("2006-01-02 15:04 MST")+")", snap.Markdown)
	}
	md.PlainText("")
}

// writeFooter writes the report footer.
func (w *MarkdownWriter) writeFooter(md *markdown.Markdown) {
	md.HorizontalRule()
	md.PlainText("")
	md.PlainTextf("*%s*", disclaimer)
}

// truncateString truncates a string to maxLen characters with ellipsis.
func truncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return s[:maxLen]
	}
	return s[:maxLen-3] + "..."
}
