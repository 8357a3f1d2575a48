package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/huangsam/glexport/schema"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
)

// digestHeader is shared by the csv and table formats.
var digestHeader = []string{"date", "messages"}

// writeDigestCSV writes one row per date group.
func writeDigestCSV(w io.Writer, export schema.GroupedExport) error {
	return writeCSVWithHeader(w, digestHeader, func(cw *csv.Writer) error {
		for _, dg := range export.Groups {
			if err := cw.Write([]string{dg.Date, dg.Messages}); err != nil {
				return err
			}
		}
		return nil
	})
}

// writeDigestJSON writes the date groups as an array of {date, messages}.
func writeDigestJSON(w io.Writer, export schema.GroupedExport) error {
	groups := export.Groups
	if groups == nil {
		groups = []schema.DateGroup{}
	}
	return writeJSON(w, groups)
}

// writeDigestTable renders the date groups as a human-readable table.
func writeDigestTable(w io.Writer, export schema.GroupedExport) error {
	table := tablewriter.NewWriter(w)
	table.Header([]string{"Date", "Messages"})
	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = tw.AlignLeft
	})

	data := make([][]string, 0, export.Len())
	for _, dg := range export.Groups {
		data = append(data, []string{dg.Date, dg.Messages})
	}
	if err := table.Bulk(data); err != nil {
		return err
	}
	if err := table.Render(); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "Showing %d days\n", export.Len())
	return err
}
