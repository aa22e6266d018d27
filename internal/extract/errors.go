package extract

import "errors"

// Parse errors returned by the extractor.
// These are wrapped with page context by the callers; use errors.Is to
// test for them.
var (
	// ErrMissingTitleLink is returned when a product entry has no title
	// anchor. The title link carries both the title and the source URL,
	// so a record cannot be built without it.
	ErrMissingTitleLink = errors.New("product entry has no title link")

	// ErrInvalidMarkup is returned when the page markup cannot be parsed
	// at all.
	ErrInvalidMarkup = errors.New("page markup could not be parsed")

	// ErrMissingInfoTable is returned when a detail page lacks the product
	// information table that carries UPC, prices, and availability.
	ErrMissingInfoTable = errors.New("detail page has no product information table")
)
