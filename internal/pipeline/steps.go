package pipeline

import (
	"context"
	"fmt"

	"github.com/shopscan/shopscan/internal/model"
)

// readinessChecker is implemented by sinks that can verify they are able to
// accept records before the crawl starts. The database sink uses this to
// report a missing table up front; the CSV sink has nothing to check.
type readinessChecker interface {
	Ready(ctx context.Context) error
}

// ReadyStep verifies the sink can accept records before any pages are
// fetched. Failing here is cheaper than failing on the first insert after
// a page has already been crawled.
type ReadyStep struct{}

// NewReadyStep creates a ReadyStep.
func NewReadyStep() *ReadyStep {
	return &ReadyStep{}
}

// Name returns the step's name for logging purposes.
func (s *ReadyStep) Name() string {
	return "sink-ready"
}

// Do checks sink readiness when the sink supports it.
func (s *ReadyStep) Do(ctx context.Context, run *Run) error {
	checker, ok := run.Sink.(readinessChecker)
	if !ok {
		return nil
	}
	if err := checker.Ready(ctx); err != nil {
		return fmt.Errorf("sink %s: %w", run.Sink.Label(), err)
	}
	return nil
}

// CrawlStep walks the catalogue from the seed URL, streaming each extracted
// record into the sink as it is produced. The first fetch, parse, or write
// error aborts the step; records already written stay written.
type CrawlStep struct{}

// NewCrawlStep creates a CrawlStep.
func NewCrawlStep() *CrawlStep {
	return &CrawlStep{}
}

// Name returns the step's name for logging purposes.
func (s *CrawlStep) Name() string {
	return "crawl"
}

// Do runs the crawl. Page and record counts are recorded in the report
// even when the crawl aborts partway, so partial runs stay observable.
func (s *CrawlStep) Do(ctx context.Context, run *Run) error {
	stats, err := run.Driver.Crawl(ctx, run.Config.SeedURL, func(p model.Product) error {
		run.Report.AddRecord(p)
		return run.Sink.Write(ctx, p)
	})

	run.Report.PagesCrawled = stats.Pages

	if err != nil {
		return fmt.Errorf("crawl: %w", err)
	}
	return nil
}
