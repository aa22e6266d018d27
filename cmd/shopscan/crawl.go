package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/shopscan/shopscan/internal/config"
	"github.com/shopscan/shopscan/internal/crawler"
	"github.com/shopscan/shopscan/internal/fetch"
	"github.com/shopscan/shopscan/internal/log"
	"github.com/shopscan/shopscan/internal/model"
	"github.com/shopscan/shopscan/internal/observability"
	"github.com/shopscan/shopscan/internal/pipeline"
	"github.com/shopscan/shopscan/internal/report"
	"github.com/shopscan/shopscan/internal/sink"
)

// NewCrawlCmd creates the crawl command.
func NewCrawlCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "crawl [catalogue-url]",
		Short: "Crawl a catalogue site and persist its product records",
		Long: `Crawl walks a static e-commerce catalogue from the given listing page,
following the next-page link until the last page, and extracts one product
record per listing entry.

Records are written to the configured database table by default.
Pass --csv to write a CSV file instead. Run "shopscan setup" once before
the first database crawl to create the table.

Examples:
  # Crawl into the configured PostgreSQL table
  shopscan crawl http://books.toscrape.com/

  # Crawl into a CSV file
  shopscan crawl --csv products.csv http://books.toscrape.com/

  # Enrich records from each product's detail page
  shopscan crawl --detail http://books.toscrape.com/

  # Emit the run report as JSON
  shopscan crawl --json http://books.toscrape.com/

Database credentials come from the .shopscan config file or from
SHOPSCAN_DB_* environment variables (a .env file is honored).`,
		Args: cobra.MaximumNArgs(1),
		RunE: runCrawlCmd,
	}

	// Sink selection
	cmd.Flags().String("csv", "",
		"Write records to the given CSV file instead of the database")

	// Crawl behavior flags
	cmd.Flags().DurationP("timeout", "t", config.DefaultTimeout,
		"HTTP timeout for each page request")
	cmd.Flags().Duration("delay", config.DefaultCrawlDelay,
		"Politeness delay between page requests")
	cmd.Flags().IntP("max-pages", "p", config.DefaultMaxPages,
		"Maximum number of listing pages to crawl")
	cmd.Flags().String("user-agent", config.DefaultUserAgent,
		"User-Agent header sent with requests")
	cmd.Flags().BoolP("detail", "d", false,
		"Fetch each product's detail page for UPC, tax split, and description")

	// Configuration file
	cmd.Flags().StringP("config", "c", "",
		"Configuration file path (default: .shopscan in current or home directory)")

	// Report flags
	cmd.Flags().BoolP("json", "j", false,
		"Output JSON run report (mutually exclusive with --markdown)")
	cmd.Flags().BoolP("markdown", "m", false,
		"Output Markdown run report (mutually exclusive with --json)")
	cmd.Flags().StringP("output", "o", "",
		"Also write the run report to the given file path")

	// Observability
	cmd.Flags().String("metrics", "",
		"Serve Prometheus metrics on the given address (e.g. :9090)")

	return cmd
}

// runCrawlCmd executes the crawl command.
func runCrawlCmd(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd, args)
	if err != nil {
		return err
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	// Set up structured logging with credential sanitization
	logger := log.NewSecureLogger(os.Stderr, cfg.Verbose)
	slog.SetDefault(logger)

	// Set up context with signal handling for graceful shutdown
	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		select {
		case <-sigCh:
			logger.Info("received shutdown signal, cancelling...")
			cancel()
		case <-ctx.Done():
		}
	}()

	return runCrawl(ctx, cfg, logger, cmd.OutOrStdout())
}

// getVerboseFlag retrieves the verbose flag from the command or its parent.
func getVerboseFlag(cmd *cobra.Command) bool {
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		verbose, err = cmd.Root().PersistentFlags().GetBool("verbose")
		if err != nil {
			return false
		}
	}
	return verbose
}

// buildConfig assembles the run configuration in layers: defaults, then the
// .shopscan config file, then SHOPSCAN_DB_* environment variables, then CLI
// flags. Flags only override values the user actually set.
func buildConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	cfg := config.NewConfig()

	var err error
	cfg.ConfigFilePath, err = cmd.Flags().GetString("config")
	if err != nil {
		return nil, err
	}

	// Load the config file. If the user explicitly specified a path, a
	// missing file is an error; otherwise it is silently skipped.
	explicitConfigPath := cfg.ConfigFilePath != ""
	configPath := config.FindConfigFile(cfg.ConfigFilePath)

	if configPath != "" {
		cf, err := config.LoadConfigFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
		cf.Apply(cfg)
	} else if explicitConfigPath {
		return nil, fmt.Errorf("configuration file not found: %s", cfg.ConfigFilePath)
	}

	// Environment overrides the file for database credentials.
	if err := config.LoadEnv(cfg); err != nil {
		return nil, err
	}

	// Flags override everything, but only when set.
	if cmd.Flags().Changed("csv") {
		if cfg.CSVPath, err = cmd.Flags().GetString("csv"); err != nil {
			return nil, err
		}
	}
	if cmd.Flags().Changed("timeout") {
		if cfg.Timeout, err = cmd.Flags().GetDuration("timeout"); err != nil {
			return nil, err
		}
	}
	if cmd.Flags().Changed("delay") {
		if cfg.CrawlDelay, err = cmd.Flags().GetDuration("delay"); err != nil {
			return nil, err
		}
	}
	if cmd.Flags().Changed("max-pages") {
		if cfg.MaxPages, err = cmd.Flags().GetInt("max-pages"); err != nil {
			return nil, err
		}
	}
	if cmd.Flags().Changed("user-agent") {
		if cfg.UserAgent, err = cmd.Flags().GetString("user-agent"); err != nil {
			return nil, err
		}
	}
	if cmd.Flags().Changed("detail") {
		if cfg.DetailPages, err = cmd.Flags().GetBool("detail"); err != nil {
			return nil, err
		}
	}
	if cmd.Flags().Changed("metrics") {
		if cfg.MetricsAddr, err = cmd.Flags().GetString("metrics"); err != nil {
			return nil, err
		}
	}

	if cfg.JSONReport, err = cmd.Flags().GetBool("json"); err != nil {
		return nil, err
	}
	if cfg.MarkdownReport, err = cmd.Flags().GetBool("markdown"); err != nil {
		return nil, err
	}
	if cfg.ReportFile, err = cmd.Flags().GetString("output"); err != nil {
		return nil, err
	}

	cfg.Verbose = getVerboseFlag(cmd)

	// The positional argument overrides the config file's seed URL.
	if len(args) == 1 {
		cfg.SeedURL = args[0]
	}

	return cfg, nil
}

// newSink creates the sink selected by the configuration: CSV when a path
// is set, the database table otherwise.
func newSink(ctx context.Context, cfg *config.Config) (sink.Sink, error) {
	if cfg.CSVPath != "" {
		s, err := sink.NewCSV(cfg.CSVPath)
		if err != nil {
			return nil, err
		}
		return s, nil
	}

	driver, err := cfg.Database.DriverName()
	if err != nil {
		return nil, err
	}
	dsn, err := cfg.Database.DSN()
	if err != nil {
		return nil, err
	}
	db, err := sink.NewDatabase(ctx, driver, dsn, cfg.Database.Table)
	if err != nil {
		return nil, err
	}
	return db, nil
}

// runCrawl executes the crawl and emits the run report.
func runCrawl(ctx context.Context, cfg *config.Config, logger *slog.Logger, stdout io.Writer) error {
	if cfg.MetricsAddr != "" {
		observability.Serve(cfg.MetricsAddr)
		logger.Info("metrics endpoint started", "addr", cfg.MetricsAddr)
	}

	logger.Info("starting crawl",
		"seed_url", cfg.SeedURL,
		"detail_pages", cfg.DetailPages,
		"max_pages", cfg.MaxPages,
	)

	s, err := newSink(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to open sink: %w", err)
	}

	client := fetch.NewClient(
		fetch.WithTimeout(cfg.Timeout),
		fetch.WithUserAgent(cfg.UserAgent),
	)
	driver := crawler.New(client,
		crawler.WithDelay(cfg.CrawlDelay),
		crawler.WithMaxPages(cfg.MaxPages),
		crawler.WithDetailPages(cfg.DetailPages),
		crawler.WithLogger(logger),
	)

	run := pipeline.NewRun(cfg, driver, s)

	// Records handed to the sink stay written no matter how the run ends.
	defer func() {
		if err := run.Finalize(); err != nil {
			logger.Error("failed to flush sink", "error", err)
		}
	}()

	p := pipeline.New(pipeline.WithLogger(logger))
	p.AddSteps(pipeline.NewReadyStep(), pipeline.NewCrawlStep())

	execErr := p.Execute(ctx, run)
	if finErr := run.Finalize(); finErr != nil && execErr == nil {
		execErr = finErr
	}

	if err := outputReport(cfg, run.Report, stdout); err != nil {
		if execErr == nil {
			execErr = err
		}
		logger.Error("failed to write report", "error", err)
	}

	return execErr
}

// outputReport renders the run report in the configured format. When an
// output file is configured the report goes there as well as to stdout.
func outputReport(cfg *config.Config, crawlReport *model.CrawlReport, stdout io.Writer) error {
	writers := []report.Writer{newReportWriter(cfg, stdout)}

	if cfg.ReportFile != "" {
		dir := filepath.Dir(cfg.ReportFile)
		if dir != "" && dir != "." {
			if err := os.MkdirAll(dir, 0750); err != nil {
				return fmt.Errorf("failed to create output directory: %w", err)
			}
		}

		f, err := os.OpenFile(cfg.ReportFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer f.Close()

		writers = append(writers, newReportWriter(cfg, f))
	}

	_, err := report.NewMultiWriter(writers...).Write(crawlReport)
	return err
}

// newReportWriter picks the report format selected by the configuration.
func newReportWriter(cfg *config.Config, w io.Writer) report.Writer {
	switch {
	case cfg.JSONReport:
		return report.NewJSONWriter(w, report.WithPrettyPrint())
	case cfg.MarkdownReport:
		return report.NewMarkdownWriter(w)
	default:
		return report.NewSimpleWriter(w)
	}
}
