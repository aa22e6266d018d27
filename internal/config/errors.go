package config

import "errors"

// Configuration validation errors.
// These errors are returned by Config.Validate() and provide specific
// information about what is wrong with the configuration.
//
// Design decision: We use package-level sentinel errors rather than
// creating new error instances in Validate(). This allows callers to use
// errors.Is() for programmatic error handling while still providing
// human-readable messages.
var (
	// ErrNoSeedURL is returned when no seed URL is specified.
	ErrNoSeedURL = errors.New("no seed URL specified: provide the catalogue page to start from")

	// ErrInvalidSeedURL is returned when the seed URL is not an absolute
	// http or https URL.
	ErrInvalidSeedURL = errors.New("invalid seed URL: must be an absolute http(s) URL")

	// ErrInvalidTimeout is returned when the timeout is not positive.
	// A timeout of zero or negative would cause immediate request failures.
	ErrInvalidTimeout = errors.New("invalid timeout: must be positive")

	// ErrInvalidCrawlDelay is returned when the crawl delay is negative.
	// A negative delay is invalid; use 0 for no delay between requests.
	ErrInvalidCrawlDelay = errors.New("invalid crawl delay: must be non-negative")

	// ErrInvalidMaxPages is returned when the page cap is not positive.
	// A cap of zero would mean no crawling at all.
	ErrInvalidMaxPages = errors.New("invalid max pages: must be positive")

	// ErrConflictingReportFormats is returned when both --json and --markdown
	// are specified. Only one output format can be used at a time.
	ErrConflictingReportFormats = errors.New("conflicting report formats: --json and --markdown cannot be used together")

	// ErrUnknownDriver is returned when the database driver is neither
	// "postgres" nor "sqlite".
	ErrUnknownDriver = errors.New("unknown database driver")

	// ErrIncompleteDatabase is returned when required database connection
	// parameters are missing for the selected driver.
	ErrIncompleteDatabase = errors.New("incomplete database configuration: host, user, database name, and table are required")

	// ErrInvalidDatabasePort is returned when the database port is outside
	// the valid TCP range.
	ErrInvalidDatabasePort = errors.New("invalid database port: must be between 1 and 65535")
)
