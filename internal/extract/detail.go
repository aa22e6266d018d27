package extract

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/shopscan/shopscan/internal/model"
)

// intRegex extracts the first integer from text such as
// "In stock (22 available)".
var intRegex = regexp.MustCompile(`\d+`)

// Detail enriches a product record with the fields only present on its
// detail page: UPC, tax-split prices, review count, description, and the
// breadcrumb category. Listing-page fields are only overwritten when the
// detail page provides a value.
//
// The product information table is the required structural element here;
// everything else defaults when absent.
func Detail(p *model.Product, body string) error {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(body))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidMarkup, err)
	}

	rows := doc.Find("table.table tr")
	if rows.Length() == 0 {
		return fmt.Errorf("detail page for %s: %w", p.SourceURL, ErrMissingInfoTable)
	}

	rows.Each(func(_ int, row *goquery.Selection) {
		key := strings.TrimSpace(row.Find("th").First().Text())
		value := strings.TrimSpace(row.Find("td").First().Text())

		switch key {
		case "UPC":
			p.UPC = value
		case "Price (excl. tax)":
			p.PriceExclTax = ParsePrice(value)
		case "Price (incl. tax)":
			p.Price = ParsePrice(value)
		case "Tax":
			p.Tax = ParsePrice(value)
		case "Availability":
			p.Availability = collapseWhitespace(value)
		case "Number of reviews":
			p.NumReviews = parseInt(value)
		}
	})

	// The description paragraph follows the #product_description header.
	if desc := doc.Find("#product_description ~ p").First(); desc.Length() > 0 {
		p.Description = strings.TrimSpace(desc.Text())
	}

	// Breadcrumb: Home / Books / <category> / <title>. The category link
	// is more precise than the listing header, so it wins when present.
	crumbs := doc.Find("ul.breadcrumb li a")
	if crumbs.Length() >= 3 {
		if category := strings.TrimSpace(crumbs.Eq(2).Text()); category != "" {
			p.Category = category
		}
	}

	return nil
}

// parseInt extracts the first integer in text, or 0 when none is present.
func parseInt(text string) int {
	match := intRegex.FindString(text)
	if match == "" {
		return 0
	}
	n, err := strconv.Atoi(match)
	if err != nil {
		return 0
	}
	return n
}
