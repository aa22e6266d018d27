// Package main provides the entry point for the shopscan CLI.
//
// shopscan crawls a static e-commerce catalogue site, extracts the product
// records from every listing page, and persists them to a PostgreSQL/SQLite
// table or a CSV file.
//
// Usage:
//
//	shopscan crawl <catalogue-url>
//	shopscan crawl --csv products.csv <catalogue-url>
//
// See --help for all available options.
package main

// main is the entry point for shopscan.
func main() {
	Execute()
}
