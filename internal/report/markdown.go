package report

import (
	"io"
	"strconv"
	"time"

	"github.com/nao1215/markdown"
	"github.com/shopscan/shopscan/internal/model"
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
}

// NewMarkdownWriter creates a MarkdownWriter that outputs to the given writer.
func NewMarkdownWriter(output io.Writer) *MarkdownWriter {
	return &MarkdownWriter{
		baseWriter: newBaseWriter(output),
	}
}

// Write outputs the report in Markdown format.
func (w *MarkdownWriter) Write(report *model.CrawlReport) (int, error) {
	md := markdown.NewMarkdown(w.output)

	w.writeHeader(md, report)
	w.writeSummary(md, report)
	w.writeCategories(md, report)

	return len(md.String()), md.Build()
}

// writeHeader writes the report header with run information.
func (w *MarkdownWriter) writeHeader(md *markdown.Markdown, report *model.CrawlReport) {
	md.H1("Crawl Report")
	md.PlainText("")

	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows: [][]string{
			{"Run ID", "`" + report.RunID + "`"},
			{"Seed URL", report.SeedURL},
			{"Sink", "`" + report.Sink + "`"},
			{"Started", report.StartedAt.Format("2006-01-02 15:04:05 MST")},
			{"Duration", report.Duration.Round(time.Millisecond).String()},
			{"Status", w.statusText(report)},
		},
	})
	md.PlainText("")
}

// writeSummary writes the record and page counters.
func (w *MarkdownWriter) writeSummary(md *markdown.Markdown, report *model.CrawlReport) {
	md.H2("Summary")
	md.PlainText("")
	md.BulletList(
		"Pages crawled: "+strconv.Itoa(report.PagesCrawled),
		"Records extracted: "+strconv.Itoa(report.RecordsExtracted),
		"Records written: "+strconv.FormatInt(report.RecordsWritten, 10),
	)
	md.PlainText("")
}

// writeCategories writes the per-category record breakdown, if any.
func (w *MarkdownWriter) writeCategories(md *markdown.Markdown, report *model.CrawlReport) {
	if len(report.Categories) == 0 {
		return
	}

	md.H2("Records by Category")
	md.PlainText("")

	rows := make([][]string, 0, len(report.Categories))
	for _, row := range sortedCategories(report) {
		rows = append(rows, []string{row.name, strconv.Itoa(row.count)})
	}

	md.Table(markdown.TableSet{
		Header: []string{"Category", "Records"},
		Rows:   rows,
	})
	md.PlainText("")
}

// statusText returns the status text based on the report state.
func (w *MarkdownWriter) statusText(report *model.CrawlReport) string {
	if report.Succeeded() {
		return "✅ Complete"
	}
	return "❌ Error - " + report.Error
}
