package report

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/nao1215/markdown"
	"github.com/nao1215/markdown/mermaid/piechart"

	"github.com/nao1215/footprint/internal/model"
)

// MarkdownWriter outputs reports in Markdown format.
// This format is designed for documentation and sharing.
type MarkdownWriter struct {
	baseWriter
}

// NewMarkdownWriter creates a MarkdownWriter that outputs to the given writer.
func NewMarkdownWriter(output io.Writer) *MarkdownWriter {
	return &MarkdownWriter{
		baseWriter: newBaseWriter(output),
	}
}

// Write outputs the batch in Markdown format.
func (w *MarkdownWriter) Write(batch *model.Batch, stats model.BatchStatistics) (int, error) {
	md := markdown.NewMarkdown(w.output)

	w.writeHeader(md, batch)
	w.writeSummary(md, batch, stats)
	w.writeFound(md, batch)
	w.writeErrors(md, batch)
	w.writeRecommendations(md, stats)
	w.writeFooter(md)

	return len(md.String()), md.Build()
}

// writeHeader writes the report header with batch information.
func (w *MarkdownWriter) writeHeader(md *markdown.Markdown, b *model.Batch) {
	md.H1("Footprint Report")
	md.PlainText("")

	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows: [][]string{
			{"Subject", "`" + b.Subject + "`"},
			{"Kind", string(b.Kind)},
			{"Batch ID", "`" + b.ID.String() + "`"},
			{"Started", b.StartedAt.Format("2006-01-02 15:04:05 MST")},
			{"Duration", b.Duration().Round(time.Millisecond).String()},
			{"Status", w.statusBadge(b)},
		},
	})
	md.PlainText("")
}

func (w *MarkdownWriter) statusBadge(b *model.Batch) string {
	if partial(b) {
		return "⚠️ " + statusText(b)
	}
	return "✅ " + statusText(b)
}

// writeSummary writes the statistics table, the category chart and a status alert.
func (w *MarkdownWriter) writeSummary(md *markdown.Markdown, b *model.Batch, st model.BatchStatistics) {
	md.H2("Summary")
	md.PlainText("")

	md.Table(markdown.TableSet{
		Header: []string{"Metric", "Value"},
		Rows: [][]string{
			{"Endpoints", strconv.Itoa(st.Total)},
			{"Found", strconv.Itoa(st.FoundCount)},
			{"Not found", strconv.Itoa(st.NotFoundCount)},
			{"Errors", strconv.Itoa(st.ErrorCount)},
			{"Success rate", fmt.Sprintf("%.2f%%", st.SuccessRatePct)},
			{"Most common category", CategoryDisplayName(st.MostCommonCategory)},
		},
	})
	md.PlainText("")

	if st.FoundCount > 0 {
		w.writePieChart(md, st)
	}

	switch {
	case b.Status == model.StatusCancelled:
		md.Warningf("The batch was cancelled. %d of %d endpoints were resolved as cancelled.",
			b.ErrorCounts()[model.ErrorCancelled], b.EndpointsTotal)
	case b.Status == model.StatusDeadlineExceeded:
		md.Warningf("The global deadline elapsed. %d of %d endpoints timed out.",
			b.ErrorCounts()[model.ErrorTimeout], b.EndpointsTotal)
	case st.FoundCount == 0:
		md.Note("No profiles were found for this subject.")
	default:
		md.Tip(fmt.Sprintf("%d potential profiles found.", st.FoundCount))
	}
	md.PlainText("")
}

// writePieChart writes a mermaid pie chart of found results per category.
func (w *MarkdownWriter) writePieChart(md *markdown.Markdown, st model.BatchStatistics) {
	chart := piechart.NewPieChart(
		io.Discard,
		piechart.WithTitle("Found Profiles by Category"),
		piechart.WithShowData(true),
	)

	for _, category := range st.CategoryOrder {
		count := st.CategoryBreakdown[category]
		if count > 0 {
			chart.LabelAndIntValue(CategoryDisplayName(category), uint64(count))
		}
	}

	md.PlainText("")
	md.CodeBlocks(markdown.SyntaxHighlightMermaid, chart.String())
	md.PlainText("")
}

// writeFound writes the table of endpoints where the subject was found.
func (w *MarkdownWriter) writeFound(md *markdown.Markdown, b *model.Batch) {
	md.H2("Found")
	md.PlainText("")

	if len(b.Found) == 0 {
		md.PlainText("Nothing found.")
		md.PlainText("")
		return
	}

	rows := make([][]string, len(b.Found))
	for i, r := range b.Found {
		rows[i] = []string{
			r.Endpoint.Name,
			CategoryDisplayName(r.Endpoint.Category),
			r.Outcome.URL,
			strconv.Itoa(r.Outcome.StatusCode),
			truncateString(r.Outcome.Title, 50),
			strconv.FormatInt(r.Outcome.ResponseTimeMs, 10) + " ms",
		}
	}

	md.Table(markdown.TableSet{
		Header: []string{"Endpoint", "Category", "URL", "Status", "Title", "Response"},
		Rows:   rows,
	})
	md.PlainText("")

	if len(b.NotFound) > 0 {
		names := make([]string, len(b.NotFound))
		for i, r := range b.NotFound {
			names[i] = r.Endpoint.Name
		}
		md.Details(fmt.Sprintf("Not found (%d)", len(names)), strings.Join(names, ", "))
		md.PlainText("")
	}
}

// writeErrors writes endpoints that could not be classified.
func (w *MarkdownWriter) writeErrors(md *markdown.Markdown, b *model.Batch) {
	if len(b.Errors) == 0 {
		return
	}

	md.H2("Errors")
	md.PlainText("")

	rows := make([][]string, len(b.Errors))
	for i, r := range b.Errors {
		msg := r.Outcome.Message
		if msg == "" {
			msg = "-"
		}
		rows[i] = []string{
			r.Endpoint.Name,
			string(r.Outcome.ErrorKind),
			truncateString(msg, 60),
		}
	}

	md.Table(markdown.TableSet{
		Header: []string{"Endpoint", "Error", "Message"},
		Rows:   rows,
	})
	md.PlainText("")
}

func (w *MarkdownWriter) writeRecommendations(md *markdown.Markdown, st model.BatchStatistics) {
	md.H2("Recommendations")
	md.PlainText("")
	if len(st.Recommendations) == 0 {
		md.PlainText("None.")
	} else {
		md.BulletList(st.Recommendations...)
	}
	md.PlainText("")
}

// writeFooter writes the report footer.
func (w *MarkdownWriter) writeFooter(md *markdown.Markdown) {
	md.HorizontalRule()
	md.PlainText("")
	md.PlainTextf("*Report generated by [footprint](https://github.com/nao1215/footprint)*")
}
