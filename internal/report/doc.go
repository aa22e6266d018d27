// Package report renders crawl run summaries in multiple output formats:
// plain text for the terminal, JSON for tool integration, and Markdown for
// documentation and sharing.
package report
