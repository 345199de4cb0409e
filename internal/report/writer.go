package report

import (
	"io"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/nao1215/footprint/internal/model"
)

// Writer defines the interface for report output.
// Implementations write a batch and its statistics in various formats.
type Writer interface {
	// Write outputs the report to the configured destination.
	// Returns the number of bytes written and any error encountered.
	Write(batch *model.Batch, stats model.BatchStatistics) (int, error)
}

// baseWriter provides common functionality for report writers.
type baseWriter struct {
	output io.Writer
}

func newBaseWriter(output io.Writer) baseWriter {
	return baseWriter{output: output}
}

// CategoryDisplayName turns a catalog category such as "social_media"
// into a display name such as "Social Media".
func CategoryDisplayName(category string) string {
	if category == "" {
		return model.NoCategory
	}
	return cases.Title(language.English).String(strings.ReplaceAll(category, "_", " "))
}

// statusText describes how a batch ended.
func statusText(b *model.Batch) string {
	switch b.Status {
	case model.StatusComplete:
		return "Complete"
	case model.StatusCancelled:
		return "Cancelled (partial results)"
	case model.StatusDeadlineExceeded:
		return "Deadline exceeded (partial results)"
	case model.StatusInProgress:
		return "In progress"
	default:
		return string(b.Status)
	}
}

// partial reports whether some tasks were resolved by finalization rather than a probe.
func partial(b *model.Batch) bool {
	return b.Status == model.StatusCancelled || b.Status == model.StatusDeadlineExceeded
}

// truncateString truncates a string to maxLen runes with ellipsis.
func truncateString(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return string(r[:maxLen])
	}
	return string(r[:maxLen-3]) + "..."
}
