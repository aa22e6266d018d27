package sink

import (
	"context"
	"database/sql"
	"fmt"
	"regexp"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // PostgreSQL driver ("pgx")
	_ "modernc.org/sqlite"             // SQLite driver ("sqlite")

	"github.com/shopscan/shopscan/internal/model"
	"github.com/shopscan/shopscan/internal/observability"
)

// Supported database/sql driver names.
const (
	DriverPostgres = "pgx"
	DriverSQLite   = "sqlite"
)

// identRegex matches safe SQL identifiers. The table name is configurable
// and interpolated into statements, so it must not carry arbitrary text.
var identRegex = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// Database writes product records as rows of a relational table.
// The table must exist before the first Write; EnsureSchema is the
// one-time setup operation that creates it.
//
// Design decision: We go through database/sql with per-driver placeholder
// rendering instead of using pgx's native interface, so the same sink
// serves PostgreSQL and SQLite. The scraper is single-threaded, which makes
// the stdlib pool's serialization irrelevant here.
type Database struct {
	db     *sql.DB
	driver string
	table  string
	insert string
	count  int64
	closed bool
}

// NewDatabase opens a database connection for the given driver
// (DriverPostgres or DriverSQLite), DSN, and table, and verifies it with a
// ping. The connection is the single scoped resource of the sink: acquired
// here, released by Close.
func NewDatabase(ctx context.Context, driver, dsn, table string) (*Database, error) {
	if driver != DriverPostgres && driver != DriverSQLite {
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}
	if !identRegex.MatchString(table) {
		return nil, fmt.Errorf("invalid table name %q", table)
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// One writer is all a sequential crawl needs.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	d := &Database{db: db, driver: driver, table: table}
	d.insert = d.insertStatement()
	return d, nil
}

// EnsureSchema creates the products table if it does not exist.
// The source_url primary key provides the unique constraint on the natural
// key; inserting a duplicate fails rather than overwriting.
func (d *Database) EnsureSchema(ctx context.Context) error {
	schema := fmt.Sprintf(`
	CREATE TABLE IF NOT EXISTS %s (
		source_url     TEXT PRIMARY KEY,
		title          TEXT NOT NULL,
		price          NUMERIC,
		price_excl_tax NUMERIC,
		tax            NUMERIC,
		rating         INTEGER,
		availability   TEXT,
		category       TEXT,
		upc            TEXT,
		num_reviews    INTEGER,
		description    TEXT,
		scraped_at     TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	)`, d.table)

	if _, err := d.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("create table %s: %w", d.table, err)
	}
	return nil
}

// Ready verifies the target table exists before any records are written,
// so a missing `shopscan setup` surfaces before the crawl starts instead
// of on the first insert.
func (d *Database) Ready(ctx context.Context) error {
	query := fmt.Sprintf("SELECT 1 FROM %s LIMIT 1", d.table)
	if _, err := d.db.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("table %s not ready (run setup first): %w", d.table, err)
	}
	return nil
}

// Write inserts one record as a row. A constraint violation (duplicate
// source_url), connection failure, or schema mismatch surfaces as an error
// and aborts the run.
func (d *Database) Write(ctx context.Context, p model.Product) error {
	_, err := d.db.ExecContext(ctx, d.insert,
		p.SourceURL,
		p.Title,
		p.Price,
		p.PriceExclTax,
		p.Tax,
		p.Rating,
		p.Availability,
		p.Category,
		p.UPC,
		p.NumReviews,
		p.Description,
	)
	if err != nil {
		return fmt.Errorf("insert product %s: %w", p.Key(), err)
	}

	d.count++
	observability.RecordsWritten.Inc()
	return nil
}

// Close releases the database connection. database/sql has no buffered
// writes to flush; every successful Write is already committed.
// It is idempotent, so cleanup paths can call it unconditionally.
func (d *Database) Close() error {
	if d.closed {
		return nil
	}
	d.closed = true
	return d.db.Close()
}

// Count reports the number of records written by this sink instance.
func (d *Database) Count() int64 {
	return d.count
}

// Label describes the sink for logs and reports.
func (d *Database) Label() string {
	name := "postgres"
	if d.driver == DriverSQLite {
		name = "sqlite"
	}
	return name + ":" + d.table
}

// CategoryCount is one row of the per-category summary.
type CategoryCount struct {
	Category string
	Count    int
}

// CategoryCounts returns the number of stored rows per category, most
// populous first. Rows without a category are grouped under the empty
// string.
func (d *Database) CategoryCounts(ctx context.Context) ([]CategoryCount, error) {
	query := fmt.Sprintf(
		`SELECT category, COUNT(*) FROM %s GROUP BY category ORDER BY COUNT(*) DESC, category`,
		d.table,
	)

	rows, err := d.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query category counts: %w", err)
	}
	defer rows.Close()

	var counts []CategoryCount
	for rows.Next() {
		var c CategoryCount
		if err := rows.Scan(&c.Category, &c.Count); err != nil {
			return nil, fmt.Errorf("scan category count: %w", err)
		}
		counts = append(counts, c)
	}
	return counts, rows.Err()
}

// insertStatement renders the INSERT with the placeholder style of the
// configured driver: $1..$N for PostgreSQL, ? for SQLite.
func (d *Database) insertStatement() string {
	columns := []string{
		"source_url", "title", "price", "price_excl_tax", "tax",
		"rating", "availability", "category", "upc", "num_reviews", "description",
	}

	placeholders := make([]string, len(columns))
	for i := range columns {
		if d.driver == DriverPostgres {
			placeholders[i] = fmt.Sprintf("$%d", i+1)
		} else {
			placeholders[i] = "?"
		}
	}

	return fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		d.table,
		strings.Join(columns, ", "),
		strings.Join(placeholders, ", "),
	)
}
