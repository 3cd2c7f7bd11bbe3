package report

import (
	"encoding/json"
	"io"

	"github.com/nao1215/seoaudit/internal/model"
)

// JSONWriter outputs audit results in JSON format.
// The encoding is the same as the HTTP API response.
type JSONWriter struct {
	baseWriter

	// indent enables pretty-printed JSON output.
	// When false, output is compact (no extra whitespace).
	indent bool

	// indentPrefix is the prefix for each line in indented output.
	indentPrefix string

	// indentString is the indentation string (typically "  " or "\t").
	indentString string
}

// JSONWriterOption configures a JSONWriter.
type JSONWriterOption func(*JSONWriter)

// WithIndent enables pretty-printed JSON output.
// The prefix is prepended to each line, and indent is used for each level.
func WithIndent(prefix, indent string) JSONWriterOption {
	return func(w *JSONWriter) {
		w.indent = true
		w.indentPrefix = prefix
		w.indentString = indent
	}
}

// WithPrettyPrint enables pretty-printed JSON with default indentation.
// This is a convenience wrapper for WithIndent("", "  ").
func WithPrettyPrint() JSONWriterOption {
	return WithIndent("", "  ")
}

// NewJSONWriter creates a JSONWriter that outputs to the given writer.
func NewJSONWriter(output io.Writer, opts ...JSONWriterOption) *JSONWriter {
	w := &JSONWriter{
		baseWriter: newBaseWriter(output),
	}

	for _, opt := range opts {
		opt(w)
	}

	return w
}

// Write outputs the audit result in JSON format.
func (w *JSONWriter) Write(result *model.AuditResult) (int, error) {
	return w.WriteValue(result)
}

// WriteValue marshals any value with the writer's settings.
// It is used for batch output and comparisons.
func (w *JSONWriter) WriteValue(v any) (int, error) {
	var data []byte
	var err error

	if w.indent {
		data, err = json.MarshalIndent(v, w.indentPrefix, w.indentString)
	} else {
		data, err = json.Marshal(v)
	}

	if err != nil {
		return 0, err
	}

	// Add trailing newline for better terminal output
	data = append(data, '\n')

	return w.output.Write(data)
}

// JSONReport wraps an audit result with the version of the tool that produced it.
type JSONReport struct {
	// Version is the seoaudit version that generated this report.
	Version string `json:"version"`

	// Result is the audit result.
	Result *model.AuditResult `json:"result"`
}

// FullJSONWriter outputs audit results with a metadata wrapper.
type FullJSONWriter struct {
	*JSONWriter

	// version is the seoaudit version string.
	version string
}

// NewFullJSONWriter creates a writer for results with metadata.
func NewFullJSONWriter(output io.Writer, version string, opts ...JSONWriterOption) *FullJSONWriter {
	return &FullJSONWriter{
		JSONWriter: NewJSONWriter(output, opts...),
		version:    version,
	}
}

// Write outputs the result wrapped with metadata.
func (w *FullJSONWriter) Write(result *model.AuditResult) (int, error) {
	return w.WriteValue(&JSONReport{Version: w.version, Result: result})
}
