package cmd

import (
	"fmt"
	"os"

	"github.com/huangsam/glexport/internal/contract"
	"github.com/huangsam/glexport/internal/iocache"
	"github.com/huangsam/glexport/schema"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// historySetup loads minimal configuration needed for run history operations.
func historySetup() error {
	backend, connStr, err := storeSetup("history-backend", "history-db-connect")
	if err != nil {
		return err
	}
	cfg.HistoryBackend = backend
	cfg.HistoryDBConnect = connStr
	return nil
}

// historySetupWrapper wraps historySetup to provide PreRunE for history commands.
func historySetupWrapper(_ *cobra.Command, _ []string) error {
	return historySetup()
}

// openHistory opens the configured history store or fails when tracking is off.
func openHistory() (*iocache.HistoryStoreImpl, error) {
	if cfg.HistoryBackend == schema.NoneBackend {
		return nil, fmt.Errorf("history tracking is not configured. Set --history-backend")
	}
	return iocache.NewHistoryStore(cfg.HistoryBackend, cfg.HistoryDBConnect)
}

// historyCmd focused on export run history.
var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Manage the record of past export runs",
	Long: `Manage the history of export runs.

When --history-backend is set, every export records when it ran,
the configuration it used, how many groups, projects, commits and
days it covered and where the result was written.

Subcommands:
  status  - Show run counts and schema version
  clear   - Remove all recorded runs
  migrate - Move the history schema to a version
  export  - Write all recorded runs to a Parquet file

Examples:
  # Check history in the default SQLite file
  glexport history status --history-backend sqlite`,
}

// historyClearCmd clears the run history.
var historyClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove all recorded export runs",
	Long: `Delete all recorded runs and the schema version.

For SQLite: Deletes the database file
For MySQL/PostgreSQL: Drops the history tables`,
	PreRunE: historySetupWrapper,
	Run: func(cmd *cobra.Command, _ []string) {
		if err := iocache.ClearHistory(cfg.HistoryBackend, cfg.HistoryDBConnect); err != nil {
			contract.LogFatal("Failed to clear history", err)
		}
		cmd.Println("History cleared successfully.")
	},
}

// historyStatusCmd shows run history status.
var historyStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Display run history statistics",
	Long: `Show the schema version, the number of runs, the latest and
oldest run times and the row count of each history table.`,
	PreRunE: historySetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		store, err := openHistory()
		if err != nil {
			contract.LogFatal("Failed to open history", err)
		}
		defer func() { _ = store.Close() }()

		status, err := store.GetStatus()
		if err != nil {
			contract.LogFatal("Failed to get history status", err)
		}
		iocache.PrintHistoryStatus(os.Stdout, status)
	},
}

// historyMigrateCmd moves the history schema.
var historyMigrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Migrate the run history schema",
	Long: `Apply or roll back history schema migrations.

Examples:
  # Upgrade to the latest schema
  glexport history migrate --history-backend sqlite

  # Roll back everything
  glexport history migrate --history-backend sqlite --target-version 0`,
	PreRunE: historySetupWrapper,
	RunE: func(cmd *cobra.Command, _ []string) error {
		result, err := iocache.MigrateHistory(cfg.HistoryBackend, cfg.HistoryDBConnect, viper.GetInt("target-version"))
		if err != nil {
			return err
		}
		if !result.Changed {
			cmd.Printf("History schema already at version %d.\n", result.To)
			return nil
		}
		cmd.Printf("History schema migrated from version %d to %d.\n", result.From, result.To)
		return nil
	},
}

// historyExportCmd writes the run history to Parquet.
var historyExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write all recorded export runs to a Parquet file",
	Long: `Write every recorded run to a Parquet file for offline analysis.

Examples:
  glexport history export --history-backend sqlite --output-file runs.parquet`,
	PreRunE: historySetupWrapper,
	RunE: func(_ *cobra.Command, _ []string) error {
		outputFile := viper.GetString("output-file")
		if outputFile == "" {
			return fmt.Errorf("--output-file is required for export command")
		}
		store, err := openHistory()
		if err != nil {
			return err
		}
		defer func() { _ = store.Close() }()
		return iocache.ExportHistory(os.Stdout, store, outputFile)
	},
}
