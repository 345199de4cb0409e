// Package report renders finished batches.
//
// This package contains writers for different output formats:
//   - SimpleWriter: plain-text tables for terminal display
//   - JSONWriter: structured JSON output for tool integration
//   - MarkdownWriter: Markdown with a category pie chart for sharing
//
// Writers implement the Writer interface, allowing them to be used
// interchangeably.
package report
