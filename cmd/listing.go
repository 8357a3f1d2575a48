package cmd

import (
	"fmt"
	"strings"

	"github.com/huangsam/glexport/core"
	"github.com/huangsam/glexport/internal/contract"
	"github.com/huangsam/glexport/internal/gitlab"
	"github.com/huangsam/glexport/internal/outwriter"
	"github.com/huangsam/glexport/schema"
	"github.com/spf13/cobra"
)

// listingFormat reads the local --format flag of a listing command.
func listingFormat(cmd *cobra.Command) (schema.OutputMode, error) {
	value, _ := cmd.Flags().GetString("format")
	mode := schema.OutputMode(strings.ToLower(value))
	switch mode {
	case schema.TextOut, schema.CSVOut, schema.JSONOut:
		return mode, nil
	}
	return "", &contract.ConfigError{Field: "format", Msg: fmt.Sprintf("invalid listing format '%s'. must be text, csv, json", value)}
}

// groupsCmd lists every group visible to the token.
var groupsCmd = &cobra.Command{
	Use:   "groups",
	Short: "List the GitLab groups visible to the token",
	Long: `Page through /groups and print every group.

Examples:
  glexport groups --format json`,
	PreRunE: sharedSetupWrapper,
	RunE: func(cmd *cobra.Command, _ []string) error {
		mode, err := listingFormat(cmd)
		if err != nil {
			return err
		}
		groups, err := core.AllGroups(rootCtx, newClient())
		if err != nil {
			return err
		}
		return outwriter.WriteGroups(cmd.OutOrStdout(), groups, mode)
	},
}

// projectsCmd lists projects, optionally within one group.
var projectsCmd = &cobra.Command{
	Use:   "projects",
	Short: "List GitLab projects",
	Long: `Print the projects of --group, or all projects when no group is given.
Without a group, --project narrows the listing with a name search.

Examples:
  glexport projects --group platform
  glexport projects --project api --format csv`,
	PreRunE: sharedSetupWrapper,
	RunE: func(cmd *cobra.Command, _ []string) error {
		mode, err := listingFormat(cmd)
		if err != nil {
			return err
		}
		client := newClient()

		var projects []schema.Project
		if cfg.Group == "" {
			projects, err = core.AllProjects(rootCtx, client, gitlab.InputsFromConfig(cfg))
		} else {
			projects, err = groupProjects(client, cfg.Group)
		}
		if err != nil {
			return err
		}
		return outwriter.WriteProjects(cmd.OutOrStdout(), projects, mode)
	},
}

// groupProjects resolves a group by path and lists its projects.
func groupProjects(client contract.APIClient, path string) ([]schema.Project, error) {
	groups, err := core.AllGroups(rootCtx, client)
	if err != nil {
		return nil, err
	}
	for _, g := range groups {
		if g.Path == path {
			return core.ProjectsForGroups(rootCtx, client, []schema.Group{g})
		}
	}
	return nil, fmt.Errorf("group %q not found", path)
}
