package cmd

import (
	"github.com/huangsam/glexport/internal/mcp"
	"github.com/spf13/cobra"
)

// mcpCmd represents the mcp command.
var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start the glexport MCP server",
	Long: `Launch an MCP server over stdio so AI agents can list groups and
projects and build commit digests through standard tools.`,
	PreRunE: sharedSetupWrapper,
	RunE: func(_ *cobra.Command, _ []string) error {
		// stdout carries the protocol, so nothing else may print to it
		return mcp.StartMCPServer(cfg, newClient())
	},
}
