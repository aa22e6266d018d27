// Package sink persists extracted product records. Two implementations are
// provided: a relational database table (PostgreSQL or SQLite) keyed by
// source URL, and a CSV file with a fixed header row. Both count the records
// they accept and flush durably on Close.
package sink
