// Package model defines the core data structures for shopscan.
// It contains the scraped product record and the crawl run report.
package model
