package core

import (
	"context"

	"github.com/huangsam/glexport/core/agg"
	"github.com/huangsam/glexport/core/digest"
	"github.com/huangsam/glexport/internal/contract"
	"github.com/huangsam/glexport/internal/gitlab"
	"github.com/huangsam/glexport/schema"
)

// AllGroups collects every group visible to the token.
func AllGroups(ctx context.Context, client contract.APIClient) ([]schema.Group, error) {
	pages := agg.EndpointPages(client.FetchGroups, gitlab.GroupsEndpoint, gitlab.NoFilters(), gitlab.QueryInputs{})
	return agg.CollectPages(ctx, pages, agg.Policy{Endpoint: gitlab.GroupsEndpoint})
}

// ProjectsForGroups collects the projects of every group concurrently,
// flattened in group order.
func ProjectsForGroups(ctx context.Context, client contract.APIClient, groups []schema.Group) ([]schema.Project, error) {
	return agg.CollectNested(ctx, groups, func(ctx context.Context, g schema.Group) ([]schema.Project, error) {
		endpoint := gitlab.GroupProjectsEndpoint(g.ID)
		pages := agg.EndpointPages(client.FetchProjects, endpoint, gitlab.NoFilters(), gitlab.QueryInputs{})
		return agg.CollectPages(ctx, pages, agg.Policy{Endpoint: endpoint})
	})
}

// AllProjects collects every project matching the configured project search.
func AllProjects(ctx context.Context, client contract.APIClient, in gitlab.QueryInputs) ([]schema.Project, error) {
	pages := agg.EndpointPages(client.FetchProjects, gitlab.ProjectsEndpoint, gitlab.Flags(gitlab.FlagProject), in)
	return agg.CollectPages(ctx, pages, agg.Policy{Endpoint: gitlab.ProjectsEndpoint})
}

// CommitsForProjects collects the commits of every project concurrently,
// flattened in project order. A project reporting zero pages fails the run.
func CommitsForProjects(ctx context.Context, client contract.APIClient, projects []schema.Project, in gitlab.QueryInputs, excludeMerges bool) ([]schema.Commit, error) {
	spec := gitlab.Flags(gitlab.FlagFrom, gitlab.FlagTo, gitlab.FlagBranch)
	return agg.CollectNested(ctx, projects, func(ctx context.Context, p schema.Project) ([]schema.Commit, error) {
		endpoint := gitlab.CommitsEndpoint(p.ID)
		pages := agg.EndpointPages(client.FetchCommits, endpoint, spec, in)
		commits, err := agg.CollectPages(ctx, pages, agg.Policy{Endpoint: endpoint, ZeroPagesIsError: true})
		if err != nil {
			return nil, err
		}
		if excludeMerges {
			commits = digest.FilterMergeCommits(commits)
		}
		return commits, nil
	})
}
