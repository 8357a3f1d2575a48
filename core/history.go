package core

import (
	"time"

	"github.com/huangsam/glexport/internal/contract"
	"github.com/huangsam/glexport/schema"
)

// runTracker records one export run in the history store when configured.
// Tracking failures only warn.
type runTracker struct {
	store contract.HistoryStore
	runID int64
}

func beginRun(mgr contract.CacheManager, cfg *contract.Config) *runTracker {
	t := &runTracker{}
	if mgr == nil {
		return t
	}
	t.store = mgr.GetHistoryStore()
	if t.store == nil {
		return t
	}

	configParams := map[string]any{
		"api_url":             cfg.APIURL,
		"from":                cfg.From,
		"to":                  cfg.To,
		"branch":              cfg.Branch,
		"group":               cfg.Group,
		"project":             cfg.Project,
		"email":               cfg.Email,
		"skip_group":          cfg.SkipGroupSelection,
		"skip_merged_commits": cfg.SkipMergedCommits,
		"output":              string(cfg.Output),
	}
	runID, err := t.store.BeginRun(time.Now(), configParams)
	if err != nil {
		contract.LogWarn("Export tracking initialization failed", err)
		return t
	}
	t.runID = runID
	return t
}

func (t *runTracker) end(result *ExportResult, output schema.OutputMode, outputPath string) {
	if t.store == nil || t.runID <= 0 {
		return
	}
	summary := schema.RunSummary{
		GroupCount:   len(result.Groups),
		ProjectCount: len(result.Projects),
		CommitCount:  len(result.Commits),
		DateGroups:   result.Export.Len(),
		OutputFormat: output,
		OutputPath:   outputPath,
	}
	if err := t.store.EndRun(t.runID, time.Now(), summary); err != nil {
		contract.LogWarn("Failed to finalize export tracking", err)
	}
}
