// Package mcp provides the Model Context Protocol (MCP) server implementation.
package mcp

import (
	"github.com/huangsam/glexport/internal/contract"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// NewMCPServer initializes and configures the glexport MCP server without starting it.
// This is exposed for unit testing.
func NewMCPServer(baseCfg *contract.Config, client contract.APIClient) *server.MCPServer {
	s := server.NewMCPServer(
		"glexport Commit Digest Server",
		"1.0.0",
		server.WithLogging(),
	)

	h := &toolHandler{
		baseCfg: baseCfg,
		client:  client,
	}

	// --- 1. Tool: list_groups ---
	s.AddTool(mcp.NewTool("list_groups",
		mcp.WithDescription("List every GitLab group visible to the configured token."),
	), h.handleListGroups)

	// --- 2. Tool: list_projects ---
	s.AddTool(mcp.NewTool("list_projects",
		mcp.WithDescription("List GitLab projects, optionally limited to one group."),
		mcp.WithString("group", mcp.Description("Group path to list projects of. Lists all projects when empty.")),
	), h.handleListProjects)

	// --- 3. Tool: commit_digest ---
	s.AddTool(mcp.NewTool("commit_digest",
		mcp.WithDescription("Group the commit messages of projects by calendar day."),
		mcp.WithArray("projects", mcp.Description("Project names to include."), mcp.Required(), mcp.WithStringItems()),
		mcp.WithArray("authors", mcp.Description("Committer emails to keep. Keeps every author when empty."), mcp.WithStringItems()),
		mcp.WithString("from", mcp.Description("First day to include, YYYY-MM-DD.")),
		mcp.WithString("to", mcp.Description("Last day to include, YYYY-MM-DD.")),
		mcp.WithBoolean("skip_merge_commits", mcp.Description("Drop commits whose message mentions a merged branch.")),
	), h.handleCommitDigest)

	return s
}

// StartMCPServer starts the glexport MCP server over stdio.
func StartMCPServer(baseCfg *contract.Config, client contract.APIClient) error {
	s := NewMCPServer(baseCfg, client)
	return server.ServeStdio(s)
}
