package model

import (
	"testing"
	"time"
)

// TestCrawlReport tests report accounting.
func TestCrawlReport(t *testing.T) {
	t.Parallel()

	t.Run("counts records and categories", func(t *testing.T) {
		t.Parallel()

		r := NewCrawlReport("http://shop.example/page-1.html", "csv:out.csv")
		if r.RunID == "" {
			t.Fatal("expected a run ID to be assigned")
		}

		r.AddRecord(Product{Title: "A", Category: "Poetry"})
		r.AddRecord(Product{Title: "B", Category: "Poetry"})
		r.AddRecord(Product{Title: "C", Category: "Science"})
		r.AddRecord(Product{Title: "D"}) // no category

		if r.RecordsExtracted != 4 {
			t.Errorf("expected 4 records extracted, got %d", r.RecordsExtracted)
		}
		if r.Categories["Poetry"] != 2 {
			t.Errorf("expected 2 Poetry records, got %d", r.Categories["Poetry"])
		}
		if r.Categories["Science"] != 1 {
			t.Errorf("expected 1 Science record, got %d", r.Categories["Science"])
		}
		if _, ok := r.Categories[""]; ok {
			t.Error("empty category should not be counted")
		}
	})

	t.Run("finish sets duration and written count", func(t *testing.T) {
		t.Parallel()

		r := NewCrawlReport("http://shop.example", "sqlite:shop.db/products")
		r.StartedAt = time.Now().Add(-time.Second)
		r.Finish(42)

		if r.RecordsWritten != 42 {
			t.Errorf("expected 42 records written, got %d", r.RecordsWritten)
		}
		if r.Duration < time.Second {
			t.Errorf("expected duration >= 1s, got %s", r.Duration)
		}
		if !r.Succeeded() {
			t.Error("report without error should count as succeeded")
		}

		r.Error = "fetch failed"
		if r.Succeeded() {
			t.Error("report with error should not count as succeeded")
		}
	})
}

// TestProductKey tests the natural unique key.
func TestProductKey(t *testing.T) {
	t.Parallel()

	p := Product{Title: "A Light in the Attic", SourceURL: "http://shop.example/a-light-in-the-attic_1000/index.html"}
	if p.Key() != p.SourceURL {
		t.Errorf("expected key to be the source URL, got %q", p.Key())
	}
}
