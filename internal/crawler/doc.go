// Package crawler implements the crawl driver: a sequential loop that
// fetches listing pages from a seed URL, extracts product records, and
// follows "next page" links until none remain.
package crawler
