package schema

import "time"

// CacheStatus represents the status of the page cache store.
type CacheStatus struct {
	Backend         string    `json:"backend"`
	Connected       bool      `json:"connected"`
	TotalEntries    int       `json:"total_entries"`
	LastEntryTime   time.Time `json:"last_entry_time"`
	OldestEntryTime time.Time `json:"oldest_entry_time"`
	TableSizeBytes  int64     `json:"table_size_bytes"`
}

// HistoryStatus represents the status of the export run history store.
type HistoryStatus struct {
	Backend          string           `json:"backend"`
	Connected        bool             `json:"connected"`
	TotalRuns        int              `json:"total_runs"`
	LastRunID        int64            `json:"last_run_id"`
	LastRunTime      time.Time        `json:"last_run_time"`
	OldestRunTime    time.Time        `json:"oldest_run_time"`
	TotalDateGroups  int              `json:"total_date_groups"`
	TableSizes       map[string]int64 `json:"table_sizes"`
	MigrationVersion uint             `json:"migration_version"`
}

// ExportRunRecord represents a row from the glexport_export_runs table.
type ExportRunRecord struct {
	RunID         int64
	StartTime     time.Time
	EndTime       *time.Time
	RunDurationMs *int64
	GroupCount    int
	ProjectCount  int
	CommitCount   int
	DateGroups    int
	OutputFormat  string
	OutputPath    *string
	ConfigParams  *string
}

// RunSummary carries the counts recorded when an export run completes.
type RunSummary struct {
	GroupCount   int
	ProjectCount int
	CommitCount  int
	DateGroups   int
	OutputFormat OutputMode
	OutputPath   string
}
