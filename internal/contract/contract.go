// Package contract provides interfaces and shared utilities for internal architecture.
package contract

import (
	"context"
	"time"

	"github.com/huangsam/glexport/schema"
)

// APIClient defines the page-level operations against a GitLab-compatible API.
// This allows the aggregation logic to be tested without a real server.
type APIClient interface {
	// FetchGroups fetches one page of groups from the given request URL.
	FetchGroups(ctx context.Context, url string) (schema.Page[schema.Group], error)

	// FetchProjects fetches one page of projects from the given request URL.
	FetchProjects(ctx context.Context, url string) (schema.Page[schema.Project], error)

	// FetchCommits fetches one page of commits from the given request URL.
	FetchCommits(ctx context.Context, url string) (schema.Page[schema.Commit], error)
}

// Selector asks the operator to narrow a list of choices.
type Selector interface {
	// Select returns the chosen subset of choices, in the order of choices.
	Select(label string, choices []string) ([]string, error)

	// Input returns a free-form line of text.
	Input(label string) (string, error)
}

// ExportSink writes a grouped export to its destination.
// It returns the location written to, or an empty string for the terminal.
type ExportSink interface {
	WriteExport(export schema.GroupedExport) (string, error)
}

// CacheManager defines the interface for managing cache stores.
// This allows the cache layer to be mocked for testing.
type CacheManager interface {
	GetPageStore() CacheStore
	GetHistoryStore() HistoryStore
}

// CacheStore defines the interface for cache data storage.
// This allows mocking the store for testing.
type CacheStore interface {
	Get(key string) ([]byte, int, int64, error)
	Set(key string, value []byte, version int, timestamp int64) error
	GetStatus() (schema.CacheStatus, error)
	Close() error
}

// HistoryStore defines the interface for tracking export runs.
type HistoryStore interface {
	// BeginRun creates a new export run and returns its unique ID
	BeginRun(startTime time.Time, configParams map[string]any) (int64, error)

	// EndRun updates the export run with completion data
	EndRun(runID int64, endTime time.Time, summary schema.RunSummary) error

	// GetStatus returns status information about the history store
	GetStatus() (schema.HistoryStatus, error)

	// GetAllRuns returns every recorded run ordered by ID
	GetAllRuns() ([]schema.ExportRunRecord, error)

	// Close closes the underlying connection
	Close() error
}
