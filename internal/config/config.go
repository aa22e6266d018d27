package config

import (
	"fmt"
	"net/url"
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
)

// Default configuration values.
// These values are chosen for polite scraping of small static catalogue
// sites and can all be overridden via config file, environment, or flags.
const (
	// DefaultTimeout is the per-request timeout. Static catalogue pages are
	// small, so 30 seconds is generous while still catching dead hosts.
	DefaultTimeout = 30 * time.Second

	// DefaultCrawlDelay is the delay between page requests.
	// This is a politeness setting to avoid hammering the target site.
	DefaultCrawlDelay = 500 * time.Millisecond

	// DefaultMaxPages is the maximum number of listing pages to crawl.
	// This prevents runaway crawling if a site's pagination loops.
	// Users can override this via the --max-pages CLI flag.
	DefaultMaxPages = 1000

	// DefaultUserAgent identifies shopscan in HTTP requests.
	// A descriptive User-Agent lets site operators identify scraper traffic.
	DefaultUserAgent = "shopscan/1.0 (+https://github.com/shopscan/shopscan)"

	// AppName is the application name used for XDG directory paths.
	AppName = "shopscan"

	// DefaultDatabaseDriver selects PostgreSQL, matching the default sink.
	DefaultDatabaseDriver = "postgres"

	// Default PostgreSQL connection parameters.
	DefaultDatabaseHost = "127.0.0.1"
	DefaultDatabasePort = 5432
	DefaultDatabaseUser = "shopscan"
	DefaultDatabaseName = "shopscan"

	// DefaultDatabaseTable is the table records are written to.
	DefaultDatabaseTable = "products"
)

// Database holds the relational sink connection parameters.
type Database struct {
	// Driver selects the backend: "postgres" or "sqlite".
	Driver string `yaml:"driver,omitempty"`

	// Host is the PostgreSQL server hostname or address.
	Host string `yaml:"host,omitempty"`

	// Port is the PostgreSQL server port.
	Port int `yaml:"port,omitempty"`

	// User is the database login role.
	User string `yaml:"user,omitempty"`

	// Password is the database login password.
	// Prefer setting it via the SHOPSCAN_DB_PASSWORD environment variable
	// or a .env file rather than the config file.
	Password string `yaml:"password,omitempty"`

	// Name is the database to connect to.
	Name string `yaml:"name,omitempty"`

	// Table is the table records are written to.
	Table string `yaml:"table,omitempty"`

	// Path is the SQLite database file path. Only used when Driver is
	// "sqlite". Defaults to the XDG data directory.
	Path string `yaml:"path,omitempty"`
}

// DriverName maps the configured driver to its database/sql driver name.
func (d Database) DriverName() (string, error) {
	switch d.Driver {
	case "postgres":
		return "pgx", nil
	case "sqlite":
		return "sqlite", nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownDriver, d.Driver)
	}
}

// DSN renders the connection string for the configured driver.
// For PostgreSQL the password is URL-escaped so special characters survive.
func (d Database) DSN() (string, error) {
	switch d.Driver {
	case "postgres":
		u := url.URL{
			Scheme: "postgres",
			Host:   fmt.Sprintf("%s:%d", d.Host, d.Port),
			Path:   "/" + d.Name,
		}
		if d.Password != "" {
			u.User = url.UserPassword(d.User, d.Password)
		} else {
			u.User = url.User(d.User)
		}
		return u.String(), nil
	case "sqlite":
		path := d.Path
		if path == "" {
			path = filepath.Join(XDGDataDir(), "shopscan.db")
		}
		return "file:" + path, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownDriver, d.Driver)
	}
}

// Config holds all configuration options for shopscan.
// This struct is designed to be populated from defaults, the config file,
// environment variables, and CLI flags (in that order), then passed through
// the application via dependency injection rather than global state.
type Config struct {
	// SeedURL is the catalogue page the crawl starts from.
	SeedURL string

	// Timeout is the HTTP timeout for each page request.
	Timeout time.Duration

	// CrawlDelay is the delay between page requests during crawling.
	// This is a politeness setting; use 0 to disable.
	CrawlDelay time.Duration

	// MaxPages is the maximum number of listing pages to crawl.
	// This prevents runaway crawling if pagination never terminates.
	MaxPages int

	// UserAgent is the User-Agent header sent with HTTP requests.
	UserAgent string

	// DetailPages enables fetching each product's detail page to enrich
	// records with UPC, tax breakdown, review count, and description.
	// Listing pages alone carry the core fields; this multiplies the
	// number of requests by roughly the catalogue size.
	DetailPages bool

	// CSVPath selects the CSV file sink when non-empty.
	// When empty, records go to the database (the default).
	CSVPath string

	// Database holds the relational sink connection parameters.
	Database Database

	// JSONReport enables JSON report output instead of human-readable text.
	// Mutually exclusive with MarkdownReport.
	JSONReport bool

	// MarkdownReport enables Markdown report output instead of
	// human-readable text. Mutually exclusive with JSONReport.
	MarkdownReport bool

	// ReportFile is the output file path for the report.
	// When set, the report is written to this file in addition to stdout.
	ReportFile string

	// MetricsAddr is the listen address for the Prometheus metrics
	// endpoint. When empty, no metrics endpoint is started.
	MetricsAddr string

	// ConfigFilePath is the path to the configuration file.
	// If empty, the tool searches for .shopscan in the current directory
	// and then in the user's home directory.
	ConfigFilePath string

	// Verbose enables detailed log output using slog.LevelDebug.
	// When false, only warnings and errors are logged.
	Verbose bool
}

// NewConfig creates a new Config with default values.
//
// Design decision: We use a constructor function instead of relying on
// zero values because many defaults are non-zero (e.g., timeout, port
// numbers). This also serves as documentation of what the defaults are.
func NewConfig() *Config {
	return &Config{
		Timeout:    DefaultTimeout,
		CrawlDelay: DefaultCrawlDelay,
		MaxPages:   DefaultMaxPages,
		UserAgent:  DefaultUserAgent,
		Database: Database{
			Driver: DefaultDatabaseDriver,
			Host:   DefaultDatabaseHost,
			Port:   DefaultDatabasePort,
			User:   DefaultDatabaseUser,
			Name:   DefaultDatabaseName,
			Table:  DefaultDatabaseTable,
		},
	}
}

// XDGDataDir returns the XDG data directory for shopscan.
// On Linux: ~/.local/share/shopscan
func XDGDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// XDGConfigDir returns the XDG config directory for shopscan.
// On Linux: ~/.config/shopscan
func XDGConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// Validate checks if the configuration is valid.
// It returns a specific error describing what is invalid.
//
// Design decision: We validate at the config level rather than at each
// point of use to fail fast and provide clear error messages upfront.
// This is called once after CLI parsing, before any crawling begins.
func (c *Config) Validate() error {
	if c.SeedURL == "" {
		return ErrNoSeedURL
	}

	u, err := url.Parse(c.SeedURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("%w: %q", ErrInvalidSeedURL, c.SeedURL)
	}

	if c.Timeout <= 0 {
		return ErrInvalidTimeout
	}

	if c.CrawlDelay < 0 {
		return ErrInvalidCrawlDelay
	}

	if c.MaxPages <= 0 {
		return ErrInvalidMaxPages
	}

	if c.JSONReport && c.MarkdownReport {
		return ErrConflictingReportFormats
	}

	// The database parameters only matter when the database sink is in use.
	if c.CSVPath == "" {
		if _, err := c.Database.DriverName(); err != nil {
			return err
		}
		if c.Database.Driver == "postgres" {
			if c.Database.Host == "" || c.Database.User == "" || c.Database.Name == "" {
				return ErrIncompleteDatabase
			}
			if c.Database.Port <= 0 || c.Database.Port > 65535 {
				return ErrInvalidDatabasePort
			}
		}
		if c.Database.Table == "" {
			return ErrIncompleteDatabase
		}
	}

	return nil
}
