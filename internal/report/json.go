package report

import (
	"encoding/json"
	"io"

	"github.com/nao1215/footprint/internal/model"
)

// JSONWriter outputs reports in JSON format.
// This format is designed for tool integration and programmatic processing.
type JSONWriter struct {
	baseWriter

	// version is written into the report wrapper.
	version string

	indent       bool
	indentPrefix string
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

// WithPrettyPrint enables pretty-printed JSON with two-space indentation.
func WithPrettyPrint() JSONWriterOption {
	return WithIndent("", "  ")
}

// NewJSONWriter creates a JSONWriter that outputs to the given writer.
func NewJSONWriter(output io.Writer, version string, opts ...JSONWriterOption) *JSONWriter {
	w := &JSONWriter{
		baseWriter: newBaseWriter(output),
		version:    version,
	}

	for _, opt := range opts {
		opt(w)
	}

	return w
}

// JSONReport wraps a batch with its statistics and the tool version.
type JSONReport struct {
	// Version is the footprint version that generated this report.
	Version string `json:"version"`

	// Batch holds every recorded outcome.
	Batch *model.Batch `json:"batch"`

	// Statistics is the summary computed from Batch.
	Statistics model.BatchStatistics `json:"statistics"`
}

// Write outputs the batch wrapped with metadata.
func (w *JSONWriter) Write(batch *model.Batch, stats model.BatchStatistics) (int, error) {
	return w.writeJSON(&JSONReport{
		Version:    w.version,
		Batch:      batch,
		Statistics: stats,
	})
}

func (w *JSONWriter) writeJSON(v any) (int, error) {
	var (
		data []byte
		err  error
	)

	if w.indent {
		data, err = json.MarshalIndent(v, w.indentPrefix, w.indentString)
	} else {
		data, err = json.Marshal(v)
	}
	if err != nil {
		return 0, err
	}

	data = append(data, '\n')
	return w.output.Write(data)
}
