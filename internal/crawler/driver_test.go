package crawler

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/shopscan/shopscan/internal/model"
)

// pageHTML builds a listing page with the given product titles and an
// optional next link.
func pageHTML(next string, titles ...string) string {
	var sb strings.Builder
	sb.WriteString("<html><body>")
	for i, title := range titles {
		fmt.Fprintf(&sb, `<article class="product_pod">
			<p class="star-rating Three"></p>
			<h3><a href="%s_%d/index.html" title=%q>%s</a></h3>
			<p class="price_color">£10.00</p>
			<p class="instock availability">In stock</p>
		</article>`, strings.ToLower(title), i, title, title)
	}
	if next != "" {
		fmt.Fprintf(&sb, `<ul class="pager"><li class="next"><a href=%q>next</a></li></ul>`, next)
	}
	sb.WriteString("</body></html>")
	return sb.String()
}

// newSite serves the given path -> body mapping over httptest.
func newSite(t *testing.T, pages map[string]string) *httptest.Server {
	t.Helper()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, ok := pages[r.URL.Path]
		if !ok {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

// stubFetcher serves markup from memory and records the order of fetches.
type stubFetcher struct {
	pages   map[string]string
	fetched []string
	errOn   string
}

func (f *stubFetcher) Get(_ context.Context, pageURL string) (string, error) {
	f.fetched = append(f.fetched, pageURL)
	if f.errOn != "" && pageURL == f.errOn {
		return "", errors.New("boom")
	}
	body, ok := f.pages[pageURL]
	if !ok {
		return "", fmt.Errorf("no such page: %s", pageURL)
	}
	return body, nil
}

// TestDriverCrawl tests the crawl loop.
func TestDriverCrawl(t *testing.T) {
	t.Parallel()

	t.Run("visits pages in next-link order and terminates", func(t *testing.T) {
		t.Parallel()

		f := &stubFetcher{pages: map[string]string{
			"http://shop.example/page-1.html": pageHTML("page-2.html", "Alpha", "Beta"),
			"http://shop.example/page-2.html": pageHTML("page-3.html", "Gamma"),
			"http://shop.example/page-3.html": pageHTML("", "Delta"),
		}}

		var got []string
		stats, err := New(f).Crawl(context.Background(), "http://shop.example/page-1.html", func(p model.Product) error {
			got = append(got, p.Title)
			return nil
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if stats.Pages != 3 {
			t.Errorf("expected 3 pages, got %d", stats.Pages)
		}
		if stats.Records != 4 {
			t.Errorf("expected 4 records, got %d", stats.Records)
		}

		wantOrder := []string{"Alpha", "Beta", "Gamma", "Delta"}
		for i, title := range wantOrder {
			if got[i] != title {
				t.Errorf("record %d: expected %q, got %q", i, title, got[i])
			}
		}

		wantPages := []string{
			"http://shop.example/page-1.html",
			"http://shop.example/page-2.html",
			"http://shop.example/page-3.html",
		}
		if len(f.fetched) != len(wantPages) {
			t.Fatalf("expected %d fetches, got %d: %v", len(wantPages), len(f.fetched), f.fetched)
		}
		for i, u := range wantPages {
			if f.fetched[i] != u {
				t.Errorf("fetch %d: expected %q, got %q", i, u, f.fetched[i])
			}
		}
	})

	t.Run("fetch error aborts the crawl and keeps earlier records", func(t *testing.T) {
		t.Parallel()

		f := &stubFetcher{
			pages: map[string]string{
				"http://shop.example/page-1.html": pageHTML("page-2.html", "Alpha"),
			},
			errOn: "http://shop.example/page-2.html",
		}

		var got []string
		stats, err := New(f).Crawl(context.Background(), "http://shop.example/page-1.html", func(p model.Product) error {
			got = append(got, p.Title)
			return nil
		})
		if err == nil {
			t.Fatal("expected the crawl to fail")
		}
		if stats.Records != 1 || len(got) != 1 {
			t.Errorf("expected 1 record delivered before the failure, got %d", stats.Records)
		}
	})

	t.Run("handler error aborts the crawl", func(t *testing.T) {
		t.Parallel()

		f := &stubFetcher{pages: map[string]string{
			"http://shop.example/page-1.html": pageHTML("", "Alpha", "Beta"),
		}}

		sinkErr := errors.New("disk full")
		stats, err := New(f).Crawl(context.Background(), "http://shop.example/page-1.html", func(p model.Product) error {
			if p.Title == "Beta" {
				return sinkErr
			}
			return nil
		})
		if !errors.Is(err, sinkErr) {
			t.Fatalf("expected the handler error to surface, got %v", err)
		}
		if stats.Records != 1 {
			t.Errorf("expected 1 record before the failure, got %d", stats.Records)
		}
	})

	t.Run("max pages caps the crawl", func(t *testing.T) {
		t.Parallel()

		// page-1 and page-2 link onward; the cap must stop before page-3.
		f := &stubFetcher{pages: map[string]string{
			"http://shop.example/page-1.html": pageHTML("page-2.html", "Alpha"),
			"http://shop.example/page-2.html": pageHTML("page-3.html", "Beta"),
			"http://shop.example/page-3.html": pageHTML("", "Gamma"),
		}}

		stats, err := New(f, WithMaxPages(2)).Crawl(context.Background(), "http://shop.example/page-1.html", func(model.Product) error {
			return nil
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if stats.Pages != 2 {
			t.Errorf("expected 2 pages, got %d", stats.Pages)
		}
	})

	t.Run("canceled context stops the crawl", func(t *testing.T) {
		t.Parallel()

		f := &stubFetcher{pages: map[string]string{
			"http://shop.example/page-1.html": pageHTML("", "Alpha"),
		}}

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := New(f).Crawl(ctx, "http://shop.example/page-1.html", func(model.Product) error {
			return nil
		})
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("expected context.Canceled, got %v", err)
		}
	})

	t.Run("detail pages enrich records", func(t *testing.T) {
		t.Parallel()

		detail := `<html><body>
			<table class="table">
				<tr><th>UPC</th><td>cafebabe</td></tr>
				<tr><th>Number of reviews</th><td>7</td></tr>
			</table>
		</body></html>`

		f := &stubFetcher{pages: map[string]string{
			"http://shop.example/page-1.html":     pageHTML("", "Alpha"),
			"http://shop.example/alpha_0/index.html": detail,
		}}

		var got model.Product
		_, err := New(f, WithDetailPages(true)).Crawl(context.Background(), "http://shop.example/page-1.html", func(p model.Product) error {
			got = p
			return nil
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got.UPC != "cafebabe" {
			t.Errorf("expected enriched UPC, got %q", got.UPC)
		}
		if got.NumReviews != 7 {
			t.Errorf("expected 7 reviews, got %d", got.NumReviews)
		}
	})
}

// TestDriverAgainstHTTPServer runs the driver against a real HTTP server
// using the production fetcher-compatible flow.
func TestDriverAgainstHTTPServer(t *testing.T) {
	t.Parallel()

	srv := newSite(t, map[string]string{
		"/catalogue/page-1.html": pageHTML("page-2.html", "Alpha", "Beta"),
		"/catalogue/page-2.html": pageHTML("", "Gamma"),
	})

	f := &httpFetcher{}
	var titles []string
	stats, err := New(f).Crawl(context.Background(), srv.URL+"/catalogue/page-1.html", func(p model.Product) error {
		titles = append(titles, p.Title)
		return nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if stats.Pages != 2 || stats.Records != 3 {
		t.Errorf("expected 2 pages / 3 records, got %d / %d", stats.Pages, stats.Records)
	}
	if len(titles) != 3 || titles[2] != "Gamma" {
		t.Errorf("unexpected titles: %v", titles)
	}
}

// httpFetcher is a minimal Fetcher over net/http for driver tests; the
// production resty client is covered by its own package tests.
type httpFetcher struct{}

func (f *httpFetcher) Get(ctx context.Context, pageURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return "", err
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("HTTP %d for %s", resp.StatusCode, pageURL)
	}
	var sb strings.Builder
	if _, err := io.Copy(&sb, resp.Body); err != nil {
		return "", err
	}
	return sb.String(), nil
}
