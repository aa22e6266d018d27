// Package fetch provides the HTTP page fetcher.
// It issues a single GET per page with no retries; a non-success status
// or a transport failure is returned as an error.
package fetch
