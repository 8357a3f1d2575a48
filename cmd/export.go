package cmd

import (
	"fmt"

	"github.com/huangsam/glexport/core"
	"github.com/huangsam/glexport/internal/contract"
	"github.com/huangsam/glexport/internal/gitlab"
	"github.com/huangsam/glexport/internal/outwriter"
	"github.com/huangsam/glexport/internal/prompt"
	"github.com/huangsam/glexport/schema"
	"github.com/spf13/cobra"
)

// newClient builds the GitLab client backed by the shared page cache.
func newClient() *gitlab.Client {
	return gitlab.NewClientFromConfig(cfg, cacheManager.GetPageStore())
}

// exportCmd collects commits and writes the per-day digest.
var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export commit messages grouped by day",
	Long: `Collect commits from the selected GitLab projects and write
one record per day with the messages of the selected authors.

Groups, projects, authors and the output file are asked for
interactively unless --group, --project, --email and --output-file
already name them.

Examples:
  # Export a group's commits for one month to CSV
  glexport export --group platform --from 2024-01-01 --to 2024-01-31 -o january.csv

  # Pick projects from all projects and drop merge commits
  glexport export --skip-group-selection --skip-merged-commits --output json`,
	PreRunE: sharedSetupWrapper,
	RunE: func(cmd *cobra.Command, _ []string) error {
		newSink := func(outputFile string) contract.ExportSink {
			return outwriter.NewOutWriter(cfg.Output, outputFile, cmd.OutOrStdout())
		}
		written, err := core.ExecuteExport(rootCtx, cfg, newClient(), prompt.NewTerminal(), newSink, cacheManager)
		if err != nil {
			return err
		}
		if written != "" {
			contract.LogInfo(fmt.Sprintf("Wrote %s export to: %s", cfg.Output, written))
		}
		return nil
	},
}

// previewCmd shows the digest as a table without writing a file.
var previewCmd = &cobra.Command{
	Use:   "preview",
	Short: "Show the per-day digest on the terminal",
	Long: `Run the same selection as export and print the digest as a table.
Nothing is written to disk and no run is recorded.`,
	PreRunE: sharedSetupWrapper,
	RunE: func(cmd *cobra.Command, _ []string) error {
		result, err := core.Preview(rootCtx, cfg, newClient(), prompt.NewTerminal())
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		_, _ = fmt.Fprintf(out, "%d groups, %d projects, %d commits, %d authors\n",
			len(result.Groups), len(result.Projects), len(result.Commits), len(result.Authors))
		_, err = outwriter.NewOutWriter(schema.TextOut, "", out).WriteExport(result.Export)
		return err
	},
}
