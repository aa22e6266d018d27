package config

import (
	"errors"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// DefaultConfigFile is the default configuration file name.
const DefaultConfigFile = ".shopscan"

// ErrConfigNotFound is returned when the configuration file does not exist.
var ErrConfigNotFound = errors.New("configuration file not found")

// File represents the structure of the .shopscan configuration file.
// Every field is optional; absent fields keep their current value.
type File struct {
	// SeedURL is the catalogue page the crawl starts from.
	SeedURL string `yaml:"seed_url,omitempty"`

	// Timeout is the per-request HTTP timeout (e.g. "30s").
	Timeout time.Duration `yaml:"timeout,omitempty"`

	// CrawlDelay is the delay between page requests (e.g. "500ms").
	CrawlDelay time.Duration `yaml:"crawl_delay,omitempty"`

	// MaxPages caps the number of listing pages crawled.
	MaxPages int `yaml:"max_pages,omitempty"`

	// UserAgent overrides the User-Agent header.
	UserAgent string `yaml:"user_agent,omitempty"`

	// DetailPages enables per-product detail page fetching.
	DetailPages *bool `yaml:"detail_pages,omitempty"`

	// CSVPath selects the CSV sink when non-empty.
	CSVPath string `yaml:"csv_path,omitempty"`

	// Database holds relational sink connection parameters.
	Database Database `yaml:"database,omitempty"`

	// MetricsAddr is the Prometheus endpoint listen address.
	MetricsAddr string `yaml:"metrics_addr,omitempty"`
}

// LoadConfigFile loads settings from a YAML file.
// If the file does not exist, it returns ErrConfigNotFound.
// Callers should handle this error appropriately based on whether
// the config file path was explicitly specified by the user.
func LoadConfigFile(path string) (*File, error) {
	data, err := os.ReadFile(path) //nolint:gosec // User-provided config path is intentional
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrConfigNotFound
		}
		return nil, err
	}

	var cf File
	if err := yaml.Unmarshal(data, &cf); err != nil {
		return nil, err
	}

	return &cf, nil
}

// FindConfigFile searches for the configuration file in the following order:
// 1. If configPath is specified, use it directly
// 2. Look for .shopscan in the current directory
// 3. Look for .shopscan in the user's home directory
//
// Returns the path to the configuration file if found, or empty string if not found.
func FindConfigFile(configPath string) string {
	if configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			return configPath
		}
		return ""
	}

	cwd, err := os.Getwd()
	if err == nil {
		cwdConfig := filepath.Join(cwd, DefaultConfigFile)
		if _, err := os.Stat(cwdConfig); err == nil {
			return cwdConfig
		}
	}

	home, err := os.UserHomeDir()
	if err == nil {
		homeConfig := filepath.Join(home, DefaultConfigFile)
		if _, err := os.Stat(homeConfig); err == nil {
			return homeConfig
		}
	}

	return ""
}

// Apply copies the file's set fields onto the config.
// Unset (zero) fields leave the config untouched.
func (cf *File) Apply(c *Config) {
	if cf.SeedURL != "" {
		c.SeedURL = cf.SeedURL
	}
	if cf.Timeout != 0 {
		c.Timeout = cf.Timeout
	}
	if cf.CrawlDelay != 0 {
		c.CrawlDelay = cf.CrawlDelay
	}
	if cf.MaxPages != 0 {
		c.MaxPages = cf.MaxPages
	}
	if cf.UserAgent != "" {
		c.UserAgent = cf.UserAgent
	}
	if cf.DetailPages != nil {
		c.DetailPages = *cf.DetailPages
	}
	if cf.CSVPath != "" {
		c.CSVPath = cf.CSVPath
	}
	if cf.MetricsAddr != "" {
		c.MetricsAddr = cf.MetricsAddr
	}

	if cf.Database.Driver != "" {
		c.Database.Driver = cf.Database.Driver
	}
	if cf.Database.Host != "" {
		c.Database.Host = cf.Database.Host
	}
	if cf.Database.Port != 0 {
		c.Database.Port = cf.Database.Port
	}
	if cf.Database.User != "" {
		c.Database.User = cf.Database.User
	}
	if cf.Database.Password != "" {
		c.Database.Password = cf.Database.Password
	}
	if cf.Database.Name != "" {
		c.Database.Name = cf.Database.Name
	}
	if cf.Database.Table != "" {
		c.Database.Table = cf.Database.Table
	}
	if cf.Database.Path != "" {
		c.Database.Path = cf.Database.Path
	}
}

// LoadEnv overlays database credentials from the environment onto the
// config. A .env file in the current directory is loaded first if present,
// so local development setups work without exporting variables.
//
// Recognized variables:
//
//	SHOPSCAN_DB_DRIVER, SHOPSCAN_DB_HOST, SHOPSCAN_DB_PORT,
//	SHOPSCAN_DB_USER, SHOPSCAN_DB_PASSWORD, SHOPSCAN_DB_NAME,
//	SHOPSCAN_DB_TABLE, SHOPSCAN_DB_PATH
func LoadEnv(c *Config) error {
	// Missing .env is fine; explicit environment still applies.
	_ = godotenv.Load()

	if v := os.Getenv("SHOPSCAN_DB_DRIVER"); v != "" {
		c.Database.Driver = v
	}
	if v := os.Getenv("SHOPSCAN_DB_HOST"); v != "" {
		c.Database.Host = v
	}
	if v := os.Getenv("SHOPSCAN_DB_PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return ErrInvalidDatabasePort
		}
		c.Database.Port = port
	}
	if v := os.Getenv("SHOPSCAN_DB_USER"); v != "" {
		c.Database.User = v
	}
	if v := os.Getenv("SHOPSCAN_DB_PASSWORD"); v != "" {
		c.Database.Password = v
	}
	if v := os.Getenv("SHOPSCAN_DB_NAME"); v != "" {
		c.Database.Name = v
	}
	if v := os.Getenv("SHOPSCAN_DB_TABLE"); v != "" {
		c.Database.Table = v
	}
	if v := os.Getenv("SHOPSCAN_DB_PATH"); v != "" {
		c.Database.Path = v
	}

	return nil
}
