// Package core has the export orchestration: listing, selection, digest and output.
package core

import (
	"context"

	"github.com/huangsam/glexport/core/digest"
	"github.com/huangsam/glexport/internal/contract"
	"github.com/huangsam/glexport/internal/gitlab"
	"github.com/huangsam/glexport/internal/logger"
	"github.com/huangsam/glexport/schema"
)

// SinkFunc creates the sink for a resolved output file.
// The file is empty for terminal output.
type SinkFunc func(outputFile string) contract.ExportSink

// ExportResult is everything a run selected and produced.
type ExportResult struct {
	Groups   []schema.Group
	Projects []schema.Project
	Commits  []schema.Commit
	Authors  []string
	Export   schema.GroupedExport
}

// ExecuteExport runs the whole export and hands the digest to the sink.
// It returns the location written to, or an empty string for terminal output.
func ExecuteExport(ctx context.Context, cfg *contract.Config, client contract.APIClient, selector contract.Selector, newSink SinkFunc, mgr contract.CacheManager) (string, error) {
	tracker := beginRun(mgr, cfg)

	result, err := Preview(ctx, cfg, client, selector)
	if err != nil {
		return "", err
	}

	outputFile, err := chooseOutputFile(selector, cfg)
	if err != nil {
		return "", err
	}
	written, err := newSink(outputFile).WriteExport(result.Export)
	if err != nil {
		return "", err
	}

	tracker.end(result, cfg.Output, written)
	return written, nil
}

// Preview selects projects and authors and builds the digest without writing it.
func Preview(ctx context.Context, cfg *contract.Config, client contract.APIClient, selector contract.Selector) (*ExportResult, error) {
	log := logger.Named("core")
	in := gitlab.InputsFromConfig(cfg)
	result := &ExportResult{}

	var err error
	if cfg.SkipGroupSelection {
		result.Projects, err = selectStandaloneProjects(ctx, cfg, client, selector, in)
	} else {
		result.Groups, result.Projects, err = selectGroupProjects(ctx, cfg, client, selector)
	}
	if err != nil {
		return nil, err
	}
	log.Debug().Int("groups", len(result.Groups)).Int("projects", len(result.Projects)).Msg("projects selected")

	commits, err := CommitsForProjects(ctx, client, result.Projects, in, cfg.SkipMergedCommits)
	if err != nil {
		return nil, err
	}
	if len(commits) == 0 {
		return nil, &contract.EmptyResultError{Collection: "commits"}
	}
	result.Commits = commits

	if result.Authors, err = chooseAuthors(selector, cfg, digest.Authors(commits)); err != nil {
		return nil, err
	}

	result.Export = digest.Build(commits, result.Authors, cfg.SkipMergedCommits)
	log.Debug().Int("commits", len(commits)).Int("days", result.Export.Len()).Msg("digest built")
	return result, nil
}

// selectGroupProjects picks groups and returns every project they own.
func selectGroupProjects(ctx context.Context, cfg *contract.Config, client contract.APIClient, selector contract.Selector) ([]schema.Group, []schema.Project, error) {
	groups, err := AllGroups(ctx, client)
	if err != nil {
		return nil, nil, err
	}
	if len(groups) == 0 {
		return nil, nil, &contract.EmptyResultError{Collection: "groups"}
	}

	chosen, err := chooseGroups(selector, cfg, groups)
	if err != nil {
		return nil, nil, err
	}

	projects, err := ProjectsForGroups(ctx, client, chosen)
	if err != nil {
		return nil, nil, err
	}
	if len(projects) == 0 {
		return nil, nil, &contract.EmptyResultError{Collection: "projects"}
	}
	return chosen, projects, nil
}

// selectStandaloneProjects picks projects from the unscoped project listing.
func selectStandaloneProjects(ctx context.Context, cfg *contract.Config, client contract.APIClient, selector contract.Selector, in gitlab.QueryInputs) ([]schema.Project, error) {
	projects, err := AllProjects(ctx, client, in)
	if err != nil {
		return nil, err
	}
	if len(projects) == 0 {
		return nil, &contract.EmptyResultError{Collection: "projects"}
	}
	return chooseProjects(selector, cfg, projects)
}
