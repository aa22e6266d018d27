package report

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/shopscan/shopscan/internal/model"
)

// SimpleWriter outputs human-readable text reports.
// This format is designed for terminal display.
//
// Design decision: We use plain text with ASCII formatting rather than
// ANSI colors by default because:
// 1. It works in all terminals without compatibility issues
// 2. It's easier to pipe to files or other tools
// 3. Color can be added as an option later if needed
type SimpleWriter struct {
	baseWriter

	// showCategories controls whether the per-category breakdown is shown.
	showCategories bool
}

// SimpleWriterOption configures a SimpleWriter.
type SimpleWriterOption func(*SimpleWriter)

// WithCategories enables the per-category record breakdown.
func WithCategories(show bool) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.showCategories = show
	}
}

// NewSimpleWriter creates a SimpleWriter that outputs to the given writer.
func NewSimpleWriter(output io.Writer, opts ...SimpleWriterOption) *SimpleWriter {
	w := &SimpleWriter{
		baseWriter:     newBaseWriter(output),
		showCategories: true,
	}

	for _, opt := range opts {
		opt(w)
	}

	return w
}

// Write outputs the report in human-readable format.
func (w *SimpleWriter) Write(report *model.CrawlReport) (int, error) {
	var b strings.Builder

	b.WriteString("Crawl Report\n")
	b.WriteString(strings.Repeat("=", 60) + "\n")
	fmt.Fprintf(&b, "Run ID:            %s\n", report.RunID)
	fmt.Fprintf(&b, "Seed URL:          %s\n", report.SeedURL)
	fmt.Fprintf(&b, "Sink:              %s\n", report.Sink)
	fmt.Fprintf(&b, "Started:           %s\n", report.StartedAt.Format("2006-01-02 15:04:05 MST"))
	fmt.Fprintf(&b, "Duration:          %s\n", report.Duration.Round(time.Millisecond))
	fmt.Fprintf(&b, "Pages crawled:     %d\n", report.PagesCrawled)
	fmt.Fprintf(&b, "Records extracted: %d\n", report.RecordsExtracted)
	fmt.Fprintf(&b, "Records written:   %d\n", report.RecordsWritten)
	fmt.Fprintf(&b, "Status:            %s\n", w.statusText(report))

	if w.showCategories && len(report.Categories) > 0 {
		b.WriteString("\nRecords by category:\n")
		for _, row := range sortedCategories(report) {
			fmt.Fprintf(&b, "  %-40s %d\n", row.name, row.count)
		}
	}

	return io.WriteString(w.output, b.String())
}

// statusText returns the status line based on the report state.
func (w *SimpleWriter) statusText(report *model.CrawlReport) string {
	if report.Succeeded() {
		return "OK"
	}
	return "FAILED - " + report.Error
}
