package sink

import (
	"context"

	"github.com/shopscan/shopscan/internal/model"
)

// Sink is the persistence target for product records.
//
// Design decision: Write takes one record rather than a batch because the
// crawl is strictly sequential and the stream is consumed record by record;
// durability is the responsibility of Close, which flushes pending output
// before releasing the underlying resource on every exit path.
type Sink interface {
	// Write persists one record. A storage or I/O failure is returned
	// as-is and aborts the run.
	Write(ctx context.Context, p model.Product) error

	// Close flushes pending output durably and releases the sink's
	// resources. Safe to call after a failed Write.
	Close() error

	// Count reports the number of records written so far.
	Count() int64

	// Label describes the sink for logs and the run report
	// (e.g. "csv:products.csv").
	Label() string
}
