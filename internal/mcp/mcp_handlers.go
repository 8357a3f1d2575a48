package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"

	"github.com/huangsam/glexport/core"
	"github.com/huangsam/glexport/internal/contract"
	"github.com/huangsam/glexport/internal/gitlab"
	"github.com/huangsam/glexport/schema"
	"github.com/mark3labs/mcp-go/mcp"
)

// toolHandler holds common dependencies for MCP tool handlers.
type toolHandler struct {
	baseCfg *contract.Config
	client  contract.APIClient
}

func (h *toolHandler) handleListGroups(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	groups, err := core.AllGroups(ctx, h.client)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("listing groups failed: %v", err)), nil
	}
	return jsonResult(groups)
}

func (h *toolHandler) handleListProjects(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path := request.GetString("group", "")
	if path == "" {
		projects, err := core.AllProjects(ctx, h.client, gitlab.QueryInputs{})
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("listing projects failed: %v", err)), nil
		}
		return jsonResult(projects)
	}

	groups, err := core.AllGroups(ctx, h.client)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("listing groups failed: %v", err)), nil
	}
	idx := slices.IndexFunc(groups, func(g schema.Group) bool { return g.Path == path })
	if idx < 0 {
		return mcp.NewToolResultError(fmt.Sprintf("group %q not found", path)), nil
	}
	projects, err := core.ProjectsForGroups(ctx, h.client, groups[idx:idx+1])
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("listing projects failed: %v", err)), nil
	}
	return jsonResult(projects)
}

func (h *toolHandler) handleCommitDigest(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	projects := request.GetStringSlice("projects", nil)
	if len(projects) == 0 {
		return mcp.NewToolResultError("projects is required"), nil
	}

	cfg := h.baseCfg.Clone()
	cfg.SkipGroupSelection = true
	cfg.Project = ""
	cfg.Email = ""
	cfg.SkipMergedCommits = request.GetBool("skip_merge_commits", cfg.SkipMergedCommits)
	if err := contract.RevalidateDateRange(cfg, request.GetString("from", cfg.From), request.GetString("to", cfg.To)); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid digest parameters: %v", err)), nil
	}

	selector := presetSelector{
		core.LabelProjects: projects,
		core.LabelAuthors:  request.GetStringSlice("authors", nil),
	}
	result, err := core.Preview(ctx, cfg, h.client, selector)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("commit digest failed: %v", err)), nil
	}
	groups := result.Export.Groups
	if groups == nil {
		groups = []schema.DateGroup{}
	}
	return jsonResult(groups)
}

func jsonResult(data any) (*mcp.CallToolResult, error) {
	jsonData, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return nil, err
	}
	return mcp.NewToolResultText(string(jsonData)), nil
}

// presetSelector answers selections from tool arguments.
// A label without answers selects every choice.
type presetSelector map[string][]string

var _ contract.Selector = presetSelector{} // Compile-time check

func (p presetSelector) Select(label string, choices []string) ([]string, error) {
	wanted := p[label]
	if len(wanted) == 0 {
		return choices, nil
	}
	var chosen []string
	for _, c := range choices {
		if slices.Contains(wanted, c) {
			chosen = append(chosen, c)
		}
	}
	if len(chosen) == 0 {
		return nil, &contract.SelectionError{Label: label}
	}
	return chosen, nil
}

func (p presetSelector) Input(label string) (string, error) {
	return "", errors.New(label + " cannot be entered over MCP")
}
