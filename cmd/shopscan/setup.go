package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/shopscan/shopscan/internal/config"
	"github.com/shopscan/shopscan/internal/log"
	"github.com/shopscan/shopscan/internal/sink"
)

// NewSetupCmd creates the setup command.
func NewSetupCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "setup",
		Short: "Create the database table for crawl records",
		Long: `Setup connects to the configured database and creates the products table
if it does not exist. The table has a unique key on the product's source
URL, so crawling the same catalogue twice fails on the duplicate rows
instead of silently overwriting them.

Run this once before the first database crawl.

Database credentials come from the .shopscan config file or from
SHOPSCAN_DB_* environment variables (a .env file is honored).`,
		RunE: runSetupCmd,
	}

	cmd.Flags().StringP("config", "c", "",
		"Configuration file path (default: .shopscan in current or home directory)")

	return cmd
}

// runSetupCmd executes the setup command.
func runSetupCmd(cmd *cobra.Command, _ []string) error {
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

	if err := db.EnsureSchema(cmd.Context()); err != nil {
		return fmt.Errorf("failed to create table: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Table %s is ready (%s)\n", cfg.Database.Table, db.Label())
	return nil
}

// buildDatabaseConfig assembles configuration for commands that only talk
// to the database: defaults, then the config file, then the environment.
func buildDatabaseConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.NewConfig()

	configFilePath, err := cmd.Flags().GetString("config")
	if err != nil {
		return nil, err
	}
	cfg.ConfigFilePath = configFilePath

	explicitConfigPath := configFilePath != ""
	configPath := config.FindConfigFile(configFilePath)

	if configPath != "" {
		cf, err := config.LoadConfigFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
		cf.Apply(cfg)
	} else if explicitConfigPath {
		return nil, fmt.Errorf("configuration file not found: %s", configFilePath)
	}

	if err := config.LoadEnv(cfg); err != nil {
		return nil, err
	}

	cfg.Verbose = getVerboseFlag(cmd)

	return cfg, nil
}

// openDatabase opens the database sink for the configured driver.
func openDatabase(cmd *cobra.Command, cfg *config.Config) (*sink.Database, error) {
	driver, err := cfg.Database.DriverName()
	if err != nil {
		return nil, err
	}
	dsn, err := cfg.Database.DSN()
	if err != nil {
		return nil, err
	}

	db, err := sink.NewDatabase(cmd.Context(), driver, dsn, cfg.Database.Table)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return db, nil
}
