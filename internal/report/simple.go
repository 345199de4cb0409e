package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/renderer"
	"github.com/olekukonko/tablewriter/tw"

	"github.com/nao1215/footprint/internal/model"
)

// SimpleWriter outputs human-readable text reports for terminal display.
// Results are laid out as plain ASCII tables.
type SimpleWriter struct {
	baseWriter

	// showNotFound lists every endpoint where the subject was absent.
	showNotFound bool

	// verbose adds the error table and per-kind error counts.
	verbose bool
}

// SimpleWriterOption configures a SimpleWriter.
type SimpleWriterOption func(*SimpleWriter)

// WithShowNotFound configures the writer to list absent endpoints.
func WithShowNotFound(show bool) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.showNotFound = show
	}
}

// WithVerbose enables verbose output with additional details.
func WithVerbose(verbose bool) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.verbose = verbose
	}
}

// NewSimpleWriter creates a SimpleWriter that outputs to the given writer.
func NewSimpleWriter(output io.Writer, opts ...SimpleWriterOption) *SimpleWriter {
	w := &SimpleWriter{
		baseWriter: newBaseWriter(output),
	}

	for _, opt := range opts {
		opt(w)
	}

	return w
}

// Write outputs the batch in human-readable format.
func (w *SimpleWriter) Write(batch *model.Batch, stats model.BatchStatistics) (int, error) {
	var sb strings.Builder

	w.writeHeader(&sb, batch)
	if err := w.writeSummary(&sb, stats); err != nil {
		return 0, err
	}
	if err := w.writeFound(&sb, batch); err != nil {
		return 0, err
	}
	w.writeNotFound(&sb, batch)
	if err := w.writeErrors(&sb, batch); err != nil {
		return 0, err
	}
	w.writeRecommendations(&sb, stats)
	w.writeFooter(&sb)

	return w.output.Write([]byte(sb.String()))
}

func section(sb *strings.Builder, title string) {
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n")
	sb.WriteString(title)
	sb.WriteString("\n")
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n\n")
}

// writeHeader writes the report header with batch information.
func (w *SimpleWriter) writeHeader(sb *strings.Builder, b *model.Batch) {
	sb.WriteString("\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
	sb.WriteString("                         FOOTPRINT REPORT\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n\n")

	fmt.Fprintf(sb, "Subject:   %s (%s)\n", b.Subject, b.Kind)
	fmt.Fprintf(sb, "Batch ID:  %s\n", b.ID)
	fmt.Fprintf(sb, "Started:   %s\n", b.StartedAt.Format("2006-01-02 15:04:05 MST"))
	fmt.Fprintf(sb, "Status:    %s\n", statusText(b))
	sb.WriteString("\n")
}

// writeSummary writes the statistics as a borderless key/value table.
func (w *SimpleWriter) writeSummary(sb *strings.Builder, st model.BatchStatistics) error {
	section(sb, "SUMMARY")

	table := tablewriter.NewTable(sb,
		tablewriter.WithRenderer(renderer.NewBlueprint(tw.Rendition{Borders: tw.BorderNone})),
	)
	rows := [][]any{
		{"Endpoints checked", st.Total},
		{"Found", st.FoundCount},
		{"Not found", st.NotFoundCount},
		{"Errors", st.ErrorCount},
		{"Success rate", fmt.Sprintf("%.2f%%", st.SuccessRatePct)},
		{"Most common category", CategoryDisplayName(st.MostCommonCategory)},
	}
	for _, row := range rows {
		if err := table.Append(row...); err != nil {
			return fmt.Errorf("failed to build summary table: %w", err)
		}
	}
	if err := table.Render(); err != nil {
		return fmt.Errorf("failed to render summary table: %w", err)
	}
	sb.WriteString("\n")
	return nil
}

// writeFound writes one table row per found endpoint.
func (w *SimpleWriter) writeFound(sb *strings.Builder, b *model.Batch) error {
	section(sb, "FOUND")

	if len(b.Found) == 0 {
		sb.WriteString("  No profiles found\n\n")
		return nil
	}

	table := tablewriter.NewTable(sb)
	table.Header("Endpoint", "Category", "URL", "Title")
	for _, r := range b.Found {
		if err := table.Append(
			r.Endpoint.Name,
			CategoryDisplayName(r.Endpoint.Category),
			r.Outcome.URL,
			truncateString(r.Outcome.Title, 40),
		); err != nil {
			return fmt.Errorf("failed to build results table: %w", err)
		}
	}
	if err := table.Render(); err != nil {
		return fmt.Errorf("failed to render results table: %w", err)
	}
	sb.WriteString("\n")
	return nil
}

func (w *SimpleWriter) writeNotFound(sb *strings.Builder, b *model.Batch) {
	if !w.showNotFound || len(b.NotFound) == 0 {
		return
	}

	section(sb, "NOT FOUND")
	for _, r := range b.NotFound {
		fmt.Fprintf(sb, "  [-] %s (%s)\n", r.Endpoint.Name, r.Outcome.Reason)
	}
	sb.WriteString("\n")
}

// writeErrors writes error counts per kind, and the full error table when verbose.
func (w *SimpleWriter) writeErrors(sb *strings.Builder, b *model.Batch) error {
	if len(b.Errors) == 0 {
		return nil
	}

	section(sb, "ERRORS")

	counts := b.ErrorCounts()
	for _, kind := range []model.ErrorKind{
		model.ErrorTimeout,
		model.ErrorConnection,
		model.ErrorCancelled,
		model.ErrorOther,
	} {
		if counts[kind] > 0 {
			fmt.Fprintf(sb, "  %-18s %d\n", kind, counts[kind])
		}
	}
	sb.WriteString("\n")

	if !w.verbose {
		return nil
	}

	table := tablewriter.NewTable(sb)
	table.Header("Endpoint", "Error", "Message")
	for _, r := range b.Errors {
		if err := table.Append(r.Endpoint.Name, string(r.Outcome.ErrorKind), truncateString(r.Outcome.Message, 50)); err != nil {
			return fmt.Errorf("failed to build error table: %w", err)
		}
	}
	if err := table.Render(); err != nil {
		return fmt.Errorf("failed to render error table: %w", err)
	}
	sb.WriteString("\n")
	return nil
}

func (w *SimpleWriter) writeRecommendations(sb *strings.Builder, st model.BatchStatistics) {
	if len(st.Recommendations) == 0 {
		return
	}

	section(sb, "RECOMMENDATIONS")
	for _, rec := range st.Recommendations {
		fmt.Fprintf(sb, "  * %s\n", rec)
	}
	sb.WriteString("\n")
}

// writeFooter writes the report footer.
func (w *SimpleWriter) writeFooter(sb *strings.Builder) {
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
	sb.WriteString("Report generated by footprint\n")
	sb.WriteString("https://github.com/nao1215/footprint\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
}
