package report

import (
	"bytes"
	"fmt"
	"html/template"
	"io"

	"github.com/microcosm-cc/bluemonday"

	"github.com/sakya146/termscan/internal/model"
)

// HTMLWriter outputs scan results as a standalone HTML page, suitable for
// saving next to the scanned site or serving from the API.
//
// Design decision: Service-provided strings (titles, warnings,
// recommendations) may carry markup of their own. We sanitize them with
// bluemonday's UGC policy and render the result as trusted HTML, so basic
// formatting survives while scripts and event handlers do not. Everything
// else goes through html/template's contextual escaping.
type HTMLWriter struct {
	baseWriter

	policy *bluemonday.Policy
	tmpl   *template.Template
}

// NewHTMLWriter creates a Writer for HTML output.
func NewHTMLWriter(output io.Writer) *HTMLWriter {
	w := &HTMLWriter{
		baseWriter: newBaseWriter(output),
		policy:     bluemonday.UGCPolicy(),
	}

	w.tmpl = template.Must(template.New("report").Funcs(template.FuncMap{
		"safe": func(s string) template.HTML {
			return template.HTML(w.policy.Sanitize(s)) //nolint:gosec // sanitized above
		},
		"risk":      DisplayRisk,
		"riskClass": riskClass,
	}).Parse(htmlReportTemplate))

	return w
}

// riskClass maps a risk level to a CSS class name.
func riskClass(level model.RiskLevel) string {
	return "risk-" + level.String()
}

// Write renders the report as HTML.
func (w *HTMLWriter) Write(report *model.ScanReport) (int, error) {
	var buf bytes.Buffer
	if err := w.tmpl.Execute(&buf, report); err != nil {
		return 0, fmt.Errorf("failed to render HTML report: %w", err)
	}
	return w.output.Write(buf.Bytes())
}

const htmlReportTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>Termscan Report - {{.Host}}</title>
<style>
body { font-family: system-ui, sans-serif; max-width: 50rem; margin: 2rem auto; padding: 0 1rem; color: #1a1a1a; }
h1 { border-bottom: 2px solid #ddd; padding-bottom: .3rem; }
table { border-collapse: collapse; margin: 1rem 0; }
td, th { border: 1px solid #ccc; padding: .35rem .6rem; text-align: left; }
.risk-high { color: #b30000; font-weight: bold; }
.risk-medium { color: #b35900; font-weight: bold; }
.risk-low { color: #8a7a00; }
.risk-none { color: #1a7a1a; }
.risk-unknown { color: #666; }
ul.findings li { color: #1a7a1a; }
footer { margin-top: 2rem; border-top: 1px solid #ddd; padding-top: .5rem; font-style: italic; color: #666; }
</style>
</head>
<body>
<h1>Termscan Report</h1>
<table>
<tr><th>Page</th><td>{{.URL}}</td></tr>
<tr><th>Host</th><td>{{.Host}}</td></tr>
<tr><th>Scan Date</th><td>{{.DateScanned.Format "2006-01-02 15:04:05 MST"}}</td></tr>
<tr><th>Overall Risk</th><td class="{{riskClass .Overall}}">{{risk .Overall}}</td></tr>
{{if .ErrorMessage}}<tr><th>Error</th><td>{{.ErrorMessage}}</td></tr>{{end}}
</table>

<h2>Detected Links</h2>
{{if .Detection.Empty}}
<p>No legal document links found on this page.</p>
{{else}}
<table>
<tr><th>Document</th><th>URL</th></tr>
{{range .Detection.Targets}}<tr><td>{{.Label}}</td><td><a href="{{.URL}}">{{.URL}}</a></td></tr>
{{end}}</table>
{{end}}

{{range .Documents}}
<h2>{{.Label}}</h2>
<table>
<tr><th>Risk</th><td class="{{riskClass .Risk}}">{{risk .Risk}}</td></tr>
{{if .Title}}<tr><th>Title</th><td>{{safe .Title}}</td></tr>{{end}}
{{if .URL}}<tr><th>URL</th><td><a href="{{.URL}}">{{.URL}}</a></td></tr>{{end}}
</table>
{{if .QuickFindings}}
<ul class="findings">
{{range .QuickFindings}}<li>{{safe .}}</li>
{{end}}</ul>
{{end}}
{{if .Warnings}}
<h3>Warnings</h3>
<ul>
{{range .Warnings}}<li>{{safe .}}</li>
{{end}}</ul>
{{end}}
{{if .Concerns}}
<h3>Concerns</h3>
<ul>
{{range .Concerns}}<li>{{safe .}}</li>
{{end}}</ul>
{{end}}
{{if .Recommendation}}
<p><strong>Recommendation:</strong> {{safe .Recommendation}}</p>
{{end}}
{{end}}

<footer>Not legal advice. This is a risk scan.</footer>
</body>
</html>
`
