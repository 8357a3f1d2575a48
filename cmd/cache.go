package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/huangsam/glexport/internal/contract"
	"github.com/huangsam/glexport/internal/iocache"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// cacheSetup loads minimal configuration needed for page cache operations.
// It skips API validation so the cache can be managed without a token.
func cacheSetup() error {
	backend, connStr, err := storeSetup("cache-backend", "cache-db-connect")
	if err != nil {
		return err
	}
	cfg.CacheBackend = backend
	cfg.CacheDBConnect = connStr
	return nil
}

// cacheSetupWrapper wraps cacheSetup to provide PreRunE for cache commands.
func cacheSetupWrapper(_ *cobra.Command, _ []string) error {
	return cacheSetup()
}

// cacheCmd focused on page cache management.
var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Manage the GitLab page cache",
	Long: `Manage the cache of GitLab list responses.

Every page fetched from the API is stored by its full request url.
Repeated runs within --cache-ttl reuse stored pages instead of calling GitLab.

Supported backends: SQLite (default), MySQL, PostgreSQL, or None

Subcommands:
  status - Show cache statistics and connection info
  clear  - Remove all cached pages
  prune  - Remove pages older than a duration

Examples:
  # Check cache status
  glexport cache status

  # Drop pages fetched more than a day ago
  glexport cache prune --older-than 24h`,
}

// cacheClearCmd clears the page cache.
var cacheClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove all cached pages",
	Long: `Delete all cached GitLab pages from the configured backend.

For SQLite: Deletes the database file
For MySQL/PostgreSQL: Drops the cache table

Examples:
  # Clear SQLite cache (default)
  glexport cache clear

  # Clear MySQL cache (set connection string via env variable)
  GLEXPORT_CACHE_BACKEND=mysql GLEXPORT_CACHE_DB_CONNECT="..." glexport cache clear`,
	PreRunE: cacheSetupWrapper,
	Run: func(cmd *cobra.Command, _ []string) {
		if err := iocache.ClearPages(cfg.CacheBackend, cfg.CacheDBConnect); err != nil {
			contract.LogFatal("Failed to clear cache", err)
		}
		cmd.Println("Cache cleared successfully.")
	},
}

// cacheStatusCmd shows page cache status.
var cacheStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Display cache statistics and connection details",
	Long: `Show the backend, the number of cached pages, the newest
and oldest page timestamps and the table size.

Examples:
  # Check default SQLite cache
  glexport cache status`,
	PreRunE: cacheSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		store, err := iocache.NewPageStore(cfg.CacheBackend, cfg.CacheDBConnect)
		if err != nil {
			contract.LogFatal("Failed to open cache", err)
		}
		defer func() { _ = store.Close() }()

		status, err := store.GetStatus()
		if err != nil {
			contract.LogFatal("Failed to get cache status", err)
		}
		iocache.PrintCacheStatus(os.Stdout, status)
	},
}

// cachePruneCmd removes stale pages.
var cachePruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Remove cached pages older than a duration",
	Long: `Delete pages fetched longer ago than --older-than.

Pages younger than --cache-ttl are served without calling GitLab,
so pruning with a shorter duration forces a refetch on the next run.

Examples:
  # Keep only the last hour of pages
  glexport cache prune --older-than 1h`,
	PreRunE: cacheSetupWrapper,
	RunE: func(cmd *cobra.Command, _ []string) error {
		olderThan, err := time.ParseDuration(viper.GetString("older-than"))
		if err != nil || olderThan < 0 {
			return &contract.ConfigError{Field: "older-than", Msg: fmt.Sprintf("invalid duration %q", viper.GetString("older-than"))}
		}

		store, err := iocache.NewPageStore(cfg.CacheBackend, cfg.CacheDBConnect)
		if err != nil {
			return fmt.Errorf("failed to open cache: %w", err)
		}
		defer func() { _ = store.Close() }()

		removed, err := store.Prune(time.Now().Add(-olderThan))
		if err != nil {
			return fmt.Errorf("failed to prune cache: %w", err)
		}
		cmd.Printf("Removed %d cached pages.\n", removed)
		return nil
	},
}
