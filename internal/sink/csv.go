package sink

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/shopscan/shopscan/internal/model"
	"github.com/shopscan/shopscan/internal/observability"
)

// csvHeader lists the CSV columns in record-attribute order. It doubles as
// the header row and the column order for Read.
var csvHeader = []string{
	"title",
	"price",
	"price_excl_tax",
	"tax",
	"rating",
	"availability",
	"category",
	"upc",
	"num_reviews",
	"description",
	"source_url",
}

// CSV writes product records to a UTF-8, comma-delimited file with a
// header row. encoding/csv supplies the standard quoting for embedded
// delimiters and quotes.
//
// The file is opened in append mode: when it already holds data the header
// is not written again, so repeated runs accumulate rows under a single
// header (matching the original loader's CSV behavior).
type CSV struct {
	path   string
	f      *os.File
	w      *csv.Writer
	count  int64
	closed bool
}

// NewCSV opens (or creates) the CSV file at path and writes the header row
// if the file is empty.
func NewCSV(path string) (*CSV, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
	if err != nil {
		return nil, fmt.Errorf("open csv file: %w", err)
	}

	info, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("stat csv file: %w", err)
	}

	s := &CSV{path: path, f: f, w: csv.NewWriter(f)}

	if info.Size() == 0 {
		if err := s.w.Write(csvHeader); err != nil {
			_ = f.Close()
			return nil, fmt.Errorf("write csv header: %w", err)
		}
	}

	return s, nil
}

// Write appends one record as a CSV line.
func (s *CSV) Write(_ context.Context, p model.Product) error {
	if err := s.w.Write(toRow(p)); err != nil {
		return fmt.Errorf("write csv record: %w", err)
	}
	s.count++
	observability.RecordsWritten.Inc()
	return nil
}

// Close flushes buffered rows to disk and closes the file.
// It is idempotent, so cleanup paths can call it unconditionally.
func (s *CSV) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true

	s.w.Flush()
	flushErr := s.w.Error()
	closeErr := s.f.Close()
	if flushErr != nil {
		return fmt.Errorf("flush csv: %w", flushErr)
	}
	if closeErr != nil {
		return fmt.Errorf("close csv: %w", closeErr)
	}
	return nil
}

// Count reports the number of records written by this sink instance.
func (s *CSV) Count() int64 {
	return s.count
}

// Label describes the sink for logs and reports.
func (s *CSV) Label() string {
	return "csv:" + s.path
}

// toRow converts a record to CSV fields. Zero-valued numeric fields become
// empty cells: that is the defined sentinel for "absent from the markup".
func toRow(p model.Product) []string {
	return []string{
		p.Title,
		formatFloat(p.Price),
		formatFloat(p.PriceExclTax),
		formatFloat(p.Tax),
		formatInt(p.Rating),
		p.Availability,
		p.Category,
		p.UPC,
		formatInt(p.NumReviews),
		p.Description,
		p.SourceURL,
	}
}

// fromRow converts CSV fields back to a record. Empty numeric cells map
// back to zero values, so a write/read round trip is lossless.
func fromRow(row []string) (model.Product, error) {
	if len(row) != len(csvHeader) {
		return model.Product{}, fmt.Errorf("expected %d fields, got %d", len(csvHeader), len(row))
	}

	price, err := parseFloat(row[1])
	if err != nil {
		return model.Product{}, fmt.Errorf("price: %w", err)
	}
	priceExcl, err := parseFloat(row[2])
	if err != nil {
		return model.Product{}, fmt.Errorf("price_excl_tax: %w", err)
	}
	tax, err := parseFloat(row[3])
	if err != nil {
		return model.Product{}, fmt.Errorf("tax: %w", err)
	}
	rating, err := parseIntField(row[4])
	if err != nil {
		return model.Product{}, fmt.Errorf("rating: %w", err)
	}
	reviews, err := parseIntField(row[8])
	if err != nil {
		return model.Product{}, fmt.Errorf("num_reviews: %w", err)
	}

	return model.Product{
		Title:        row[0],
		Price:        price,
		PriceExclTax: priceExcl,
		Tax:          tax,
		Rating:       rating,
		Availability: row[5],
		Category:     row[6],
		UPC:          row[7],
		NumReviews:   reviews,
		Description:  row[9],
		SourceURL:    row[10],
	}, nil
}

// Read parses records from CSV produced by this sink, skipping the header
// row. It is the inverse of Write and exists mainly for re-ingestion and
// round-trip verification.
func Read(r io.Reader) ([]model.Product, error) {
	cr := csv.NewReader(r)

	rows, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}
	if len(rows) == 0 {
		return nil, nil
	}

	products := make([]model.Product, 0, len(rows)-1)
	for i, row := range rows[1:] {
		p, err := fromRow(row)
		if err != nil {
			return nil, fmt.Errorf("csv row %d: %w", i+2, err)
		}
		products = append(products, p)
	}
	return products, nil
}

func formatFloat(v float64) string {
	if v == 0 {
		return ""
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func formatInt(v int) string {
	if v == 0 {
		return ""
	}
	return strconv.Itoa(v)
}

func parseFloat(s string) (float64, error) {
	if s == "" {
		return 0, nil
	}
	return strconv.ParseFloat(s, 64)
}

func parseIntField(s string) (int, error) {
	if s == "" {
		return 0, nil
	}
	return strconv.Atoi(s)
}
