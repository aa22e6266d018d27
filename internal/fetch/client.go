package fetch

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"time"

	"github.com/go-resty/resty/v2"
	"golang.org/x/net/html/charset"
)

// Default fetcher settings.
const (
	// DefaultTimeout bounds each page request. The target is a static demo
	// site, so a generous clearnet timeout is enough; there is no retry on
	// top of it.
	DefaultTimeout = 30 * time.Second

	// DefaultUserAgent identifies shopscan in HTTP requests so that site
	// operators can recognize scraper traffic in their logs.
	DefaultUserAgent = "shopscan/1.0 (+https://github.com/shopscan/shopscan)"

	// DefaultMaxBodySize limits the response body size to read. Listing
	// pages are small; the limit guards against unexpectedly large
	// responses.
	DefaultMaxBodySize = 5 * 1024 * 1024 // 5MB
)

// StatusError is returned when a page responds with a non-success status.
// Callers can use errors.As to distinguish HTTP-level failures from
// transport failures.
type StatusError struct {
	// URL is the requested page URL.
	URL string

	// StatusCode is the HTTP status code of the response.
	StatusCode int
}

// Error implements the error interface.
func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected HTTP status %d for %s", e.StatusCode, e.URL)
}

// Client fetches pages over HTTP.
//
// Design decision: We wrap go-resty rather than using net/http directly
// because resty centralizes the timeout, header, and body handling we need,
// while retries stay disabled (resty's default), matching the one-shot
// fetch contract.
type Client struct {
	http        *resty.Client
	maxBodySize int64
}

// Option configures a Client.
type Option func(*Client)

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.http.SetTimeout(d)
	}
}

// WithUserAgent sets a custom User-Agent header.
func WithUserAgent(ua string) Option {
	return func(c *Client) {
		c.http.SetHeader("User-Agent", ua)
	}
}

// WithMaxBodySize sets the maximum response body size to decode.
func WithMaxBodySize(size int64) Option {
	return func(c *Client) {
		c.maxBodySize = size
	}
}

// NewClient creates a page fetcher with default settings.
func NewClient(opts ...Option) *Client {
	c := &Client{
		http:        resty.New(),
		maxBodySize: DefaultMaxBodySize,
	}
	c.http.SetTimeout(DefaultTimeout)
	c.http.SetHeader("User-Agent", DefaultUserAgent)
	c.http.SetHeader("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Get fetches the page at the given URL and returns its markup as UTF-8.
// The body is decoded according to the response Content-Type charset, so
// extractors can assume UTF-8 input regardless of the page encoding.
//
// There are no retries: a transport failure or a non-2xx status fails the
// fetch immediately.
func (c *Client) Get(ctx context.Context, pageURL string) (string, error) {
	resp, err := c.http.R().SetContext(ctx).Get(pageURL)
	if err != nil {
		return "", fmt.Errorf("fetch %s: %w", pageURL, err)
	}

	if !resp.IsSuccess() {
		return "", &StatusError{URL: pageURL, StatusCode: resp.StatusCode()}
	}

	body := resp.Body()
	if int64(len(body)) > c.maxBodySize {
		body = body[:c.maxBodySize]
	}

	// Decode to UTF-8 based on the declared charset (or a sniffed one).
	reader, err := charset.NewReader(bytes.NewReader(body), resp.Header().Get("Content-Type"))
	if err != nil {
		return "", fmt.Errorf("decode %s: %w", pageURL, err)
	}

	decoded, err := io.ReadAll(reader)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", pageURL, err)
	}

	return string(decoded), nil
}
