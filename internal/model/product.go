package model

// Product represents one scraped product listing entry.
// It is created by the extractor and never mutated afterwards; the only
// exception is detail-page enrichment, which fills the detail-only fields
// before the record is handed to the sink.
//
// Design decision: Missing optional fields keep their zero value
// (empty string or 0) rather than using pointers. The sinks translate
// zero values into empty CSV cells and SQL NULL-free defaults, which keeps
// the record comparable with == in tests.
type Product struct {
	// Title is the product title from the listing page.
	Title string `json:"title"`

	// Price is the sale price including tax, in the site's currency.
	// 0 means the price was absent from the markup.
	Price float64 `json:"price"`

	// PriceExclTax is the price excluding tax.
	// Only populated by detail-page enrichment.
	PriceExclTax float64 `json:"price_excl_tax,omitempty"`

	// Tax is the tax amount. Only populated by detail-page enrichment.
	Tax float64 `json:"tax,omitempty"`

	// Rating is the star rating from 1 to 5. 0 means no rating element
	// was present on the page.
	Rating int `json:"rating"`

	// Availability is the stock status text (e.g. "In stock").
	Availability string `json:"availability"`

	// Category is the product category, taken from the listing page
	// header or the detail page breadcrumb.
	Category string `json:"category"`

	// UPC is the universal product code.
	// Only populated by detail-page enrichment.
	UPC string `json:"upc,omitempty"`

	// NumReviews is the review count.
	// Only populated by detail-page enrichment.
	NumReviews int `json:"num_reviews,omitempty"`

	// Description is the product description.
	// Only populated by detail-page enrichment.
	Description string `json:"description,omitempty"`

	// SourceURL is the absolute URL of the product page.
	// It is the natural unique key for a record: unique within one crawl
	// and enforced by the database sink's primary key.
	SourceURL string `json:"source_url"`
}

// Key returns the natural unique key of the record.
func (p Product) Key() string {
	return p.SourceURL
}
