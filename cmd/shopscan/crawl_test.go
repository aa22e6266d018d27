package main

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/shopscan/shopscan/internal/model"
)

// catalogueSite serves a fake catalogue with the given number of records
// per listing page. The last page has no next link.
func catalogueSite(t *testing.T, recordsPerPage []int) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()
	for i, n := range recordsPerPage {
		page := i + 1
		next := ""
		if page < len(recordsPerPage) {
			next = fmt.Sprintf("page-%d.html", page+1)
		}
		body := cataloguePage(page, n, next)
		mux.HandleFunc(fmt.Sprintf("/page-%d.html", page), func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Content-Type", "text/html; charset=utf-8")
			fmt.Fprint(w, body)
		})
	}

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

// cataloguePage renders one listing page with n product entries.
func cataloguePage(page, n int, next string) string {
	var b strings.Builder
	b.WriteString(`<html><body><div class="page-header"><h1>Books</h1></div><section>`)
	for i := 0; i < n; i++ {
		fmt.Fprintf(&b, `<article class="product_pod">
			<h3><a href="book-%d-%d.html" title="Book %d-%d">Book %d-%d</a></h3>
			<p class="star-rating Three"></p>
			<p class="price_color">£%d.99</p>
			<p class="instock availability">In stock</p>
		</article>`, page, i, page, i, page, i, 10+i%40)
	}
	if next != "" {
		fmt.Fprintf(&b, `<ul class="pager"><li class="next"><a href="%s">next</a></li></ul>`, next)
	}
	b.WriteString(`</section></body></html>`)
	return b.String()
}

// runCrawlToCSV executes the crawl command against the server with a CSV
// sink.
func runCrawlToCSV(t *testing.T, seedURL, csvPath string, extraArgs ...string) error {
	t.Helper()

	args := append([]string{"crawl", "--csv", csvPath, "--delay", "0"}, extraArgs...)
	args = append(args, seedURL)

	cmd := NewRootCmd()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	return cmd.Execute()
}

func readCSVRows(t *testing.T, path string) [][]string {
	t.Helper()

	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("os.Open() error = %v", err)
	}
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatalf("csv.ReadAll() error = %v", err)
	}
	return rows
}

// TestCrawlEndToEnd crawls a two-page catalogue (20 records, then 1000
// records) into a CSV file and checks every record arrived exactly once.
func TestCrawlEndToEnd(t *testing.T) {
	t.Parallel()

	srv := catalogueSite(t, []int{20, 1000})
	csvPath := filepath.Join(t.TempDir(), "products.csv")

	if err := runCrawlToCSV(t, srv.URL+"/page-1.html", csvPath); err != nil {
		t.Fatalf("crawl failed: %v", err)
	}

	rows := readCSVRows(t, csvPath)
	if len(rows) != 1021 {
		t.Fatalf("CSV has %d rows, want 1021 (header + 1020 records)", len(rows))
	}
	if rows[0][0] != "title" {
		t.Errorf("first row is not the header: %v", rows[0])
	}
	if rows[1][0] != "Book 1-0" {
		t.Errorf("first record = %q, want %q", rows[1][0], "Book 1-0")
	}
	if rows[1020][0] != "Book 2-999" {
		t.Errorf("last record = %q, want %q", rows[1020][0], "Book 2-999")
	}
}

// TestCrawlSinglePage covers the no-next-link termination case.
func TestCrawlSinglePage(t *testing.T) {
	t.Parallel()

	srv := catalogueSite(t, []int{5})
	csvPath := filepath.Join(t.TempDir(), "products.csv")

	if err := runCrawlToCSV(t, srv.URL+"/page-1.html", csvPath); err != nil {
		t.Fatalf("crawl failed: %v", err)
	}

	rows := readCSVRows(t, csvPath)
	if len(rows) != 6 {
		t.Fatalf("CSV has %d rows, want 6 (header + 5 records)", len(rows))
	}
}

// TestCrawlMissingPriceDefaults verifies a listing entry without a price
// still produces a record with the price left empty.
func TestCrawlMissingPriceDefaults(t *testing.T) {
	t.Parallel()

	mux := http.NewServeMux()
	mux.HandleFunc("/page-1.html", func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `<html><body>
			<article class="product_pod">
				<h3><a href="a.html" title="No Price">No Price</a></h3>
				<p class="instock availability">In stock</p>
			</article>
		</body></html>`)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	csvPath := filepath.Join(t.TempDir(), "products.csv")
	if err := runCrawlToCSV(t, srv.URL+"/page-1.html", csvPath); err != nil {
		t.Fatalf("crawl failed: %v", err)
	}

	rows := readCSVRows(t, csvPath)
	if len(rows) != 2 {
		t.Fatalf("CSV has %d rows, want 2", len(rows))
	}
	if rows[1][0] != "No Price" {
		t.Errorf("title = %q", rows[1][0])
	}
	if rows[1][1] != "" {
		t.Errorf("price = %q, want empty", rows[1][1])
	}
}

// TestCrawlAbortsOnFetchError verifies a dead next link fails the run but
// keeps the records written before the failure.
func TestCrawlAbortsOnFetchError(t *testing.T) {
	t.Parallel()

	mux := http.NewServeMux()
	mux.HandleFunc("/page-1.html", func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, cataloguePage(1, 3, "page-2.html"))
	})
	// page-2.html is not registered, so it returns 404.
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	csvPath := filepath.Join(t.TempDir(), "products.csv")
	err := runCrawlToCSV(t, srv.URL+"/page-1.html", csvPath)
	if err == nil {
		t.Fatal("expected crawl to fail on the missing page")
	}

	rows := readCSVRows(t, csvPath)
	if len(rows) != 4 {
		t.Fatalf("CSV has %d rows, want 4 (header + 3 records flushed before the failure)", len(rows))
	}
}

// TestCrawlJSONReport verifies the --json report format.
func TestCrawlJSONReport(t *testing.T) {
	t.Parallel()

	srv := catalogueSite(t, []int{4})
	csvPath := filepath.Join(t.TempDir(), "products.csv")

	var out bytes.Buffer
	cmd := NewRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"crawl", "--csv", csvPath, "--delay", "0", "--json", srv.URL + "/page-1.html"})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("crawl failed: %v", err)
	}

	var got model.CrawlReport
	if err := json.Unmarshal(out.Bytes(), &got); err != nil {
		t.Fatalf("report is not valid JSON: %v\n%s", err, out.String())
	}
	if got.RecordsExtracted != 4 || got.RecordsWritten != 4 || got.PagesCrawled != 1 {
		t.Errorf("unexpected report: %+v", got)
	}
	if got.Error != "" {
		t.Errorf("report error = %q, want empty", got.Error)
	}
}

// TestCrawlReportFile verifies --output writes the report to a file too.
func TestCrawlReportFile(t *testing.T) {
	t.Parallel()

	srv := catalogueSite(t, []int{2})
	dir := t.TempDir()
	csvPath := filepath.Join(dir, "products.csv")
	reportPath := filepath.Join(dir, "reports", "run.md")

	cmd := NewRootCmd()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{
		"crawl", "--csv", csvPath, "--delay", "0",
		"--markdown", "--output", reportPath,
		srv.URL + "/page-1.html",
	})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("crawl failed: %v", err)
	}

	content, err := os.ReadFile(reportPath)
	if err != nil {
		t.Fatalf("report file not written: %v", err)
	}
	if !strings.Contains(string(content), "# Crawl Report") {
		t.Errorf("report file missing markdown header:\n%s", content)
	}
}

// TestCrawlConflictingReportFlags verifies --json and --markdown exclude
// each other.
func TestCrawlConflictingReportFlags(t *testing.T) {
	t.Parallel()

	cmd := NewRootCmd()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"crawl", "--json", "--markdown", "http://example.com/"})

	if err := cmd.Execute(); err == nil {
		t.Error("expected error for conflicting report formats")
	}
}

// TestCrawlRequiresSeedURL verifies the command fails without a seed URL
// from either the arguments or the config file.
func TestCrawlRequiresSeedURL(t *testing.T) {
	t.Parallel()

	cmd := NewRootCmd()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"crawl", "--csv", filepath.Join(t.TempDir(), "out.csv")})

	if err := cmd.Execute(); err == nil {
		t.Error("expected error for missing seed URL")
	}
}
