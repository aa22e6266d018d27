// Package observability exposes Prometheus counters for the crawl pipeline.
package observability

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Pipeline counters. They are incremented by the crawler and the sinks and
// exported when Serve is called; incrementing unregistered counters is a
// no-op cost-wise, so instrumented code does not depend on the listener.
var (
	PagesFetched = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "shopscan_pages_fetched_total",
			Help: "Total listing and detail pages fetched",
		},
	)

	FetchErrors = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "shopscan_fetch_errors_total",
			Help: "Total failed page fetches",
		},
	)

	RecordsExtracted = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "shopscan_records_extracted_total",
			Help: "Total product records extracted from pages",
		},
	)

	RecordsWritten = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "shopscan_records_written_total",
			Help: "Total product records written to the sink",
		},
	)
)

// Serve registers the counters and starts a /metrics listener on addr in a
// background goroutine. Intended for long crawls where progress is watched
// externally; short runs work fine without it.
func Serve(addr string) {
	prometheus.MustRegister(PagesFetched, FetchErrors, RecordsExtracted, RecordsWritten)
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	go func() {
		_ = http.ListenAndServe(addr, mux) //nolint:errcheck // Best effort listener
	}()
}
