package report

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/sakya146/termscan/internal/model"
)

// JSONWriter outputs scan results in JSON format.
// This is suitable for machine processing and piping into other tools.
//
// Design decision: JSON output marshals the report as-is rather than
// reshaping it. The report struct's JSON tags are the stable contract;
// a second shape would just drift.
type JSONWriter struct {
	baseWriter

	// indent enables pretty-printed output with the given indent string.
	indent string
}

// JSONWriterOption configures a JSONWriter.
type JSONWriterOption func(*JSONWriter)

// WithIndent sets the indentation string for pretty printing.
// An empty string produces compact output.
func WithIndent(indent string) JSONWriterOption {
	return func(w *JSONWriter) {
		w.indent = indent
	}
}

// WithPrettyPrint enables pretty printing with two-space indentation.
func WithPrettyPrint() JSONWriterOption {
	return WithIndent("  ")
}

// NewJSONWriter creates a Writer for JSON output.
// Output is compact by default; use WithPrettyPrint for readability.
func NewJSONWriter(output io.Writer, opts ...JSONWriterOption) *JSONWriter {
	w := &JSONWriter{
		baseWriter: newBaseWriter(output),
	}

	for _, opt := range opts {
		opt(w)
	}

	return w
}

// Write outputs the report as JSON.
func (w *JSONWriter) Write(report *model.ScanReport) (int, error) {
	data, err := w.marshal(report)
	if err != nil {
		return 0, fmt.Errorf("failed to marshal report: %w", err)
	}

	data = append(data, '\n')
	return w.output.Write(data)
}

func (w *JSONWriter) marshal(v any) ([]byte, error) {
	if w.indent != "" {
		return json.MarshalIndent(v, "", w.indent)
	}
	return json.Marshal(v)
}

// reportFormatVersion identifies the envelope layout of full JSON output.
// Bump when the envelope changes shape.
const reportFormatVersion = "1.0"

// fullReport wraps a scan report with format metadata for archival.
type fullReport struct {
	FormatVersion string            `json:"format_version"`
	GeneratedAt   time.Time         `json:"generated_at"`
	Report        *model.ScanReport `json:"report"`
}

// FullJSONWriter outputs the report wrapped in a versioned envelope with
// generation metadata. Use this when the output is archived and read back
// later, where the bare report's shape may have changed in between.
type FullJSONWriter struct {
	JSONWriter

	now func() time.Time
}

// NewFullJSONWriter creates a Writer for versioned JSON output.
func NewFullJSONWriter(output io.Writer, opts ...JSONWriterOption) *FullJSONWriter {
	w := &FullJSONWriter{
		JSONWriter: JSONWriter{baseWriter: newBaseWriter(output)},
		now:        time.Now,
	}

	for _, opt := range opts {
		opt(&w.JSONWriter)
	}

	return w
}

// Write outputs the report inside the versioned envelope.
func (w *FullJSONWriter) Write(report *model.ScanReport) (int, error) {
	envelope := fullReport{
		FormatVersion: reportFormatVersion,
		GeneratedAt:   w.now().UTC(),
		Report:        report,
	}

	data, err := w.marshal(envelope)
	if err != nil {
		return 0, fmt.Errorf("failed to marshal report: %w", err)
	}

	data = append(data, '\n')
	return w.output.Write(data)
}
