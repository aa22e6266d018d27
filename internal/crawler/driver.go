package crawler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/shopscan/shopscan/internal/extract"
	"github.com/shopscan/shopscan/internal/model"
	"github.com/shopscan/shopscan/internal/observability"
)

// state is the driver's crawl state.
//
// The driver is a two-state machine: it stays in stateCrawling while a
// page yields a next-page URL and moves to stateDone when none remains.
type state int

const (
	stateCrawling state = iota
	stateDone
)

// Fetcher retrieves the raw markup of a page.
// *fetch.Client satisfies this; tests substitute their own.
type Fetcher interface {
	Get(ctx context.Context, pageURL string) (string, error)
}

// Handler consumes one extracted product record.
// Returning an error aborts the crawl; records already handled are not
// retracted.
type Handler func(p model.Product) error

// Stats summarizes a finished (or aborted) crawl.
type Stats struct {
	// Pages is the number of listing pages visited.
	Pages int

	// Records is the number of records delivered to the handler.
	Records int
}

// Driver walks a paginated listing site strictly sequentially:
// fetch, extract, hand over records, follow the next link.
//
// Design decision: Records are delivered through a handler callback rather
// than accumulated in a slice, so the sink consumes the stream page by page
// and a crawl of many pages never holds more than one page of records in
// memory.
type Driver struct {
	fetcher Fetcher

	// delay is the politeness pause between page fetches. Zero disables it.
	delay time.Duration

	// maxPages caps the number of listing pages visited. Zero means no cap.
	maxPages int

	// detailPages enables per-record enrichment from the product's own page.
	detailPages bool

	logger *slog.Logger
}

// Option configures a Driver.
type Option func(*Driver)

// WithDelay sets the pause between page fetches.
func WithDelay(d time.Duration) Option {
	return func(dr *Driver) {
		dr.delay = d
	}
}

// WithMaxPages caps the number of listing pages visited. 0 means no cap.
func WithMaxPages(n int) Option {
	return func(dr *Driver) {
		dr.maxPages = n
	}
}

// WithDetailPages enables detail-page enrichment: each record's source URL
// is fetched and the detail-only fields (UPC, tax split, review count,
// description) are filled in before the record is handed over.
func WithDetailPages(enabled bool) Option {
	return func(dr *Driver) {
		dr.detailPages = enabled
	}
}

// WithLogger sets a custom logger. Defaults to slog.Default.
func WithLogger(logger *slog.Logger) Option {
	return func(dr *Driver) {
		dr.logger = logger
	}
}

// New creates a Driver using the given fetcher.
func New(fetcher Fetcher, opts ...Option) *Driver {
	dr := &Driver{fetcher: fetcher}
	for _, opt := range opts {
		opt(dr)
	}
	if dr.logger == nil {
		dr.logger = slog.Default()
	}
	return dr
}

// Crawl walks listing pages starting at seedURL, delivering every extracted
// record to handle in document order. It returns when the last page has no
// next link, when the page cap is reached, or when the context is canceled.
//
// Failure semantics: the first fetch, parse, or handler error aborts the
// crawl and is returned; the stats cover everything delivered before the
// failure.
func (dr *Driver) Crawl(ctx context.Context, seedURL string, handle Handler) (Stats, error) {
	var stats Stats

	current := seedURL
	st := stateCrawling

	for st == stateCrawling {
		if err := ctx.Err(); err != nil {
			return stats, err
		}
		if dr.maxPages > 0 && stats.Pages >= dr.maxPages {
			dr.logger.Warn("page cap reached, stopping crawl", "maxPages", dr.maxPages)
			break
		}

		dr.logger.Debug("fetching listing page", "url", current)
		body, err := dr.fetcher.Get(ctx, current)
		if err != nil {
			observability.FetchErrors.Inc()
			return stats, fmt.Errorf("crawl aborted at %s: %w", current, err)
		}
		observability.PagesFetched.Inc()

		result, err := extract.Listing(current, body)
		if err != nil {
			return stats, fmt.Errorf("crawl aborted at %s: %w", current, err)
		}
		stats.Pages++

		for _, p := range result.Products {
			if dr.detailPages {
				if err := dr.enrich(ctx, &p); err != nil {
					return stats, err
				}
			}
			observability.RecordsExtracted.Inc()
			if err := handle(p); err != nil {
				return stats, fmt.Errorf("record %s: %w", p.Key(), err)
			}
			stats.Records++
		}

		dr.logger.Info("page crawled",
			"url", current,
			"records", len(result.Products),
			"hasNext", result.NextURL != "",
		)

		if result.NextURL == "" {
			st = stateDone
			continue
		}
		current = result.NextURL

		if dr.delay > 0 {
			select {
			case <-ctx.Done():
				return stats, ctx.Err()
			case <-time.After(dr.delay):
			}
		}
	}

	return stats, nil
}

// enrich fetches the record's own page and fills the detail-only fields.
func (dr *Driver) enrich(ctx context.Context, p *model.Product) error {
	body, err := dr.fetcher.Get(ctx, p.SourceURL)
	if err != nil {
		observability.FetchErrors.Inc()
		return fmt.Errorf("detail page %s: %w", p.SourceURL, err)
	}
	observability.PagesFetched.Inc()

	if err := extract.Detail(p, body); err != nil {
		return err
	}

	if dr.delay > 0 {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(dr.delay):
		}
	}
	return nil
}
