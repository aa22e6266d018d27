package model

import (
	"time"

	"github.com/google/uuid"
)

// CrawlReport summarizes a single crawl run.
// It is assembled by the run pipeline and rendered by the report package.
type CrawlReport struct {
	// RunID uniquely identifies this crawl run.
	RunID string `json:"run_id"`

	// SeedURL is the URL the crawl started from.
	SeedURL string `json:"seed_url"`

	// Sink describes the persistence target (e.g. "csv:products.csv"
	// or "postgres:shopdb/products").
	Sink string `json:"sink"`

	// StartedAt is when the crawl began.
	StartedAt time.Time `json:"started_at"`

	// Duration is the total wall-clock time of the run.
	Duration time.Duration `json:"duration"`

	// PagesCrawled is the number of listing pages visited.
	PagesCrawled int `json:"pages_crawled"`

	// RecordsExtracted is the number of product records produced by the
	// extractor across all pages.
	RecordsExtracted int `json:"records_extracted"`

	// RecordsWritten is the number of records the sink reported as
	// durably written.
	RecordsWritten int64 `json:"records_written"`

	// Categories maps a category name to the number of records seen in it.
	Categories map[string]int `json:"categories,omitempty"`

	// Error holds the failure message when the run aborted.
	// Empty on success.
	Error string `json:"error,omitempty"`
}

// NewCrawlReport creates a report for a run starting now.
func NewCrawlReport(seedURL, sink string) *CrawlReport {
	return &CrawlReport{
		RunID:      uuid.New().String(),
		SeedURL:    seedURL,
		Sink:       sink,
		StartedAt:  time.Now(),
		Categories: make(map[string]int),
	}
}

// AddRecord accounts one extracted record in the report.
func (r *CrawlReport) AddRecord(p Product) {
	r.RecordsExtracted++
	if p.Category != "" {
		r.Categories[p.Category]++
	}
}

// Finish records the run duration and written count.
func (r *CrawlReport) Finish(written int64) {
	r.Duration = time.Since(r.StartedAt)
	r.RecordsWritten = written
}

// Succeeded reports whether the run completed without an error.
func (r *CrawlReport) Succeeded() bool {
	return r.Error == ""
}
