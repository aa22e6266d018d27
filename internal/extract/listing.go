package extract

import (
	"fmt"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/shopscan/shopscan/internal/model"
)

// Result holds everything extracted from one listing page.
type Result struct {
	// Products are the records found on the page, in document order.
	Products []model.Product

	// NextURL is the absolute URL of the next listing page, or empty when
	// the page has no "next" navigation element. An empty NextURL ends
	// the crawl.
	NextURL string
}

// ratingWords maps the star-rating class names used by the site to their
// numeric value.
var ratingWords = map[string]int{
	"One":   1,
	"Two":   2,
	"Three": 3,
	"Four":  4,
	"Five":  5,
}

// priceRegex extracts the numeric part of a price string such as "£51.77".
// A fallback without the decimal part covers whole-number prices.
var priceRegex = regexp.MustCompile(`\d+(?:\.\d+)?`)

// Listing parses one listing page and returns its product records plus the
// next-page URL. pageURL is the URL the markup was fetched from; it anchors
// relative links.
//
// A product entry without a title anchor is a parse error. Optional fields
// (price, rating, availability, category) default to their zero value when
// the corresponding element is absent.
func Listing(pageURL, body string) (*Result, error) {
	base, err := url.Parse(pageURL)
	if err != nil {
		return nil, fmt.Errorf("invalid page URL %q: %w", pageURL, err)
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidMarkup, err)
	}

	// The category applies to every record on the page. Category listing
	// pages carry it in the page header; the full catalogue has none.
	category := strings.TrimSpace(doc.Find("div.page-header h1").First().Text())

	result := &Result{}
	var parseErr error

	doc.Find("article.product_pod").EachWithBreak(func(i int, pod *goquery.Selection) bool {
		p, err := parsePod(base, pod, category)
		if err != nil {
			parseErr = fmt.Errorf("product entry %d on %s: %w", i, pageURL, err)
			return false
		}
		result.Products = append(result.Products, p)
		return true
	})
	if parseErr != nil {
		return nil, parseErr
	}

	// End of pagination is an ordinary return value, not an error: an
	// absent "next" element simply leaves NextURL empty.
	if href, ok := doc.Find("li.next > a").First().Attr("href"); ok {
		result.NextURL = resolveURL(base, href)
	}

	return result, nil
}

// parsePod extracts a single product record from one product entry.
func parsePod(base *url.URL, pod *goquery.Selection, category string) (model.Product, error) {
	anchor := pod.Find("h3 a").First()
	href, ok := anchor.Attr("href")
	if !ok || strings.TrimSpace(href) == "" {
		return model.Product{}, ErrMissingTitleLink
	}

	// The anchor text is truncated with an ellipsis on listing pages; the
	// title attribute carries the full title.
	title := strings.TrimSpace(anchor.AttrOr("title", ""))
	if title == "" {
		title = strings.TrimSpace(anchor.Text())
	}

	p := model.Product{
		Title:        title,
		Price:        ParsePrice(pod.Find(".price_color").First().Text()),
		Rating:       parseRating(pod.Find("p.star-rating").First()),
		Availability: collapseWhitespace(pod.Find(".availability").First().Text()),
		Category:     category,
		SourceURL:    resolveURL(base, href),
	}

	return p, nil
}

// ParsePrice extracts a decimal price from text like "£51.77".
// Returns 0 when no number is present, the defined default for a missing
// price.
func ParsePrice(text string) float64 {
	match := priceRegex.FindString(text)
	if match == "" {
		return 0
	}
	price, err := strconv.ParseFloat(match, 64)
	if err != nil {
		return 0
	}
	return price
}

// parseRating converts a star-rating element's class list into 1..5.
// Returns 0 when the element is absent or carries no known rating word.
func parseRating(sel *goquery.Selection) int {
	class, ok := sel.Attr("class")
	if !ok {
		return 0
	}
	for _, word := range strings.Fields(class) {
		if rating, ok := ratingWords[word]; ok {
			return rating
		}
	}
	return 0
}

// resolveURL resolves href against the page URL and returns the absolute
// form. Returns the empty string for unparseable hrefs.
func resolveURL(base *url.URL, href string) string {
	ref, err := url.Parse(strings.TrimSpace(href))
	if err != nil {
		return ""
	}
	return base.ResolveReference(ref).String()
}

// collapseWhitespace trims text and joins internal whitespace runs into
// single spaces. Availability cells wrap icons and newlines around the
// actual status text.
func collapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
