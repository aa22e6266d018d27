// Package main provides the entry point for the shopscan CLI.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command for shopscan.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "shopscan",
		Short: "Catalogue scraper for static e-commerce sites",
		Long: `shopscan crawls a static e-commerce catalogue site page by page,
extracts the product records from each listing page, and persists them.

Records go to a PostgreSQL or SQLite table by default; pass --csv to write
a CSV file instead. Run "shopscan setup" once to create the database table.`,
		Version:       getVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags that apply to all commands
	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")

	// Add subcommands
	cmd.AddCommand(NewCrawlCmd())
	cmd.AddCommand(NewSetupCmd())
	cmd.AddCommand(NewStatsCmd())
	cmd.AddCommand(NewInitCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
