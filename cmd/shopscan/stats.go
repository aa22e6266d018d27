package main

import (
	"fmt"
	"log/slog"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/shopscan/shopscan/internal/log"
)

// NewStatsCmd creates the stats command.
func NewStatsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show per-category record counts from the database",
		Long: `Stats queries the configured database table and prints how many stored
product records each category holds, most populous first.

Database credentials come from the .shopscan config file or from
SHOPSCAN_DB_* environment variables (a .env file is honored).`,
		RunE: runStatsCmd,
	}

	cmd.Flags().StringP("config", "c", "",
		"Configuration file path (default: .shopscan in current or home directory)")

	return cmd
}

// runStatsCmd executes the stats command.
func runStatsCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := buildDatabaseConfig(cmd)
	if err != nil {
		return err
	}

	logger := log.NewSecureLogger(os.Stderr, cfg.Verbose)
	slog.SetDefault(logger)

	db, err := openDatabase(cmd, cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	counts, err := db.CategoryCounts(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to query category counts: %w", err)
	}

	if len(counts) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No records stored yet. Run \"shopscan crawl\" first.")
		return nil
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "CATEGORY\tRECORDS")

	var total int
	for _, c := range counts {
		name := c.Category
		if name == "" {
			name = "(none)"
		}
		fmt.Fprintf(w, "%s\t%d\n", name, c.Count)
		total += c.Count
	}
	fmt.Fprintf(w, "TOTAL\t%d\n", total)

	return w.Flush()
}
