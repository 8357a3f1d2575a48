// Package cmd defines the command-line interface for glexport.
package cmd

import (
	"github.com/huangsam/glexport/internal/contract"
	"github.com/huangsam/glexport/schema"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func init() {
	// Call initConfig on Cobra's initialization
	cobra.OnInitialize(initConfig)

	// Add primary subcommands to the root command
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(previewCmd)
	rootCmd.AddCommand(groupsCmd)
	rootCmd.AddCommand(projectsCmd)
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(cacheCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(mcpCmd)

	// Add the cache subcommands to the parent cache command
	cacheCmd.AddCommand(cacheClearCmd)
	cacheCmd.AddCommand(cacheStatusCmd)
	cacheCmd.AddCommand(cachePruneCmd)

	// Add the history subcommands to the parent history command
	historyCmd.AddCommand(historyClearCmd)
	historyCmd.AddCommand(historyStatusCmd)
	historyCmd.AddCommand(historyExportCmd)
	historyCmd.AddCommand(historyMigrateCmd)

	// Bind all persistent flags of rootCmd to Viper
	rootCmd.PersistentFlags().String("gitlab-api-url", "", "GitLab API base url (e.g., https://gitlab.example.com/api/v4)")
	rootCmd.PersistentFlags().String("gitlab-token", "", "GitLab private token (prefer GLEXPORT_GITLAB_TOKEN)")
	rootCmd.PersistentFlags().String("timeout", contract.DefaultTimeout.String(), "Timeout of a single API request")
	rootCmd.PersistentFlags().String("from", "", "First day to export, YYYY-MM-DD")
	rootCmd.PersistentFlags().String("to", "", "Last day to export, YYYY-MM-DD")
	rootCmd.PersistentFlags().StringP("branch", "b", contract.DefaultBranch, "Branch to read commits from")
	rootCmd.PersistentFlags().StringP("group", "g", "", "Group path to export without asking")
	rootCmd.PersistentFlags().StringP("project", "p", "", "Project name to export without asking (also filters the project listing)")
	rootCmd.PersistentFlags().StringP("email", "e", "", "Committer email to export without asking")
	rootCmd.PersistentFlags().Bool("skip-group-selection", false, "Select projects from all projects instead of by group")
	rootCmd.PersistentFlags().Bool("skip-merged-commits", false, "Drop commits whose message mentions a merged branch")
	rootCmd.PersistentFlags().String("output", string(schema.CSVOut), "Output format: csv or json or parquet or text")
	rootCmd.PersistentFlags().StringP("output-file", "o", "", "Path to write the export to (asked for when missing)")
	rootCmd.PersistentFlags().String("cache-backend", string(schema.SQLiteBackend), "Page cache backend: sqlite or mysql or postgresql or none")
	rootCmd.PersistentFlags().String("cache-db-connect", "", "Database connection string for mysql/postgresql (e.g., user:pass@tcp(host:port)/dbname?parseTime=true)")
	rootCmd.PersistentFlags().String("cache-ttl", contract.DefaultCacheTTL.String(), "How long a cached page stays fresh (0 disables lookups)")
	rootCmd.PersistentFlags().String("history-backend", "", "Export run history backend: sqlite or mysql or postgresql or none")
	rootCmd.PersistentFlags().String("history-db-connect", "", "Database connection string for run history (must differ from cache-db-connect)")
	rootCmd.PersistentFlags().String("color", "yes", "Enable colored messages (yes/no/true/false/1/0)")
	rootCmd.PersistentFlags().String("log-level", contract.DefaultLogLevel, "Diagnostic log level: trace or debug or info or warn or error or off")
	rootCmd.PersistentFlags().String("config", "", "Path to config file")
	if err := viper.BindPFlags(rootCmd.PersistentFlags()); err != nil {
		contract.LogFatal("Error binding root flags", err)
	}

	// Listing commands pick their own format
	groupsCmd.Flags().String("format", string(schema.TextOut), "Listing format: text or csv or json")
	projectsCmd.Flags().String("format", string(schema.TextOut), "Listing format: text or csv or json")

	// Bind all flags of cachePruneCmd to Viper
	cachePruneCmd.Flags().String("older-than", "24h", "Remove pages fetched longer ago than this duration")
	if err := viper.BindPFlags(cachePruneCmd.Flags()); err != nil {
		contract.LogFatal("Error binding cache prune flags", err)
	}

	// Bind all flags of historyMigrateCmd to Viper
	historyMigrateCmd.Flags().Int("target-version", -1, "Target migration version (-1 means latest, 0 means rollback to initial state)")
	if err := viper.BindPFlags(historyMigrateCmd.Flags()); err != nil {
		contract.LogFatal("Error binding history migrate flags", err)
	}
}
