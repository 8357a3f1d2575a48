package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/huangsam/glexport/schema"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
)

// WriteGroups prints the fetched groups in the requested format.
func WriteGroups(w io.Writer, groups []schema.Group, mode schema.OutputMode) error {
	rows := make([][]string, len(groups))
	for i, g := range groups {
		rows[i] = []string{strconv.Itoa(g.ID), g.Path, g.Name}
	}
	return writeListing(w, mode, groups, []string{"id", "path", "name"}, rows, "groups")
}

// WriteProjects prints the fetched projects in the requested format.
func WriteProjects(w io.Writer, projects []schema.Project, mode schema.OutputMode) error {
	rows := make([][]string, len(projects))
	for i, p := range projects {
		rows[i] = []string{strconv.Itoa(p.ID), p.Name, p.NameWithNamespace}
	}
	return writeListing(w, mode, projects, []string{"id", "name", "namespace"}, rows, "projects")
}

func writeListing[T any](w io.Writer, mode schema.OutputMode, items []T, header []string, rows [][]string, noun string) error {
	switch mode {
	case schema.JSONOut:
		if items == nil {
			items = []T{}
		}
		return writeJSON(w, items)
	case schema.CSVOut:
		return writeCSVWithHeader(w, header, func(cw *csv.Writer) error {
			return cw.WriteAll(rows)
		})
	}

	table := tablewriter.NewWriter(w)
	table.Header(header)
	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = tw.AlignLeft
	})
	if err := table.Bulk(rows); err != nil {
		return err
	}
	if err := table.Render(); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "Found %d %s\n", len(rows), noun)
	return err
}
