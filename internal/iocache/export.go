package iocache

import (
	"errors"
	"fmt"
	"io"

	"github.com/huangsam/glexport/internal/contract"
	"github.com/huangsam/glexport/internal/parquet"
)

// ExportHistory writes every recorded export run to a Parquet file.
func ExportHistory(w io.Writer, store contract.HistoryStore, outputFile string) error {
	if outputFile == "" {
		return errors.New("--output-file is required for export command")
	}
	if store == nil {
		return errors.New("history tracking is not configured. Set --history-backend")
	}

	status, err := store.GetStatus()
	if err != nil {
		return fmt.Errorf("failed to get history status: %w", err)
	}
	if status.TotalRuns == 0 {
		return errors.New("no export runs found to export")
	}
	_, _ = fmt.Fprintf(w, "Exporting %d runs from %s backend...\n", status.TotalRuns, status.Backend)

	runs, err := store.GetAllRuns()
	if err != nil {
		return fmt.Errorf("failed to retrieve export runs: %w", err)
	}

	outputFile = contract.EnsureExtension(outputFile, ".parquet")
	rows := parquet.ConvertExportRunRecords(runs)
	if err := parquet.WriteExportRunsParquet(rows, outputFile); err != nil {
		return fmt.Errorf("failed to write export runs: %w", err)
	}
	_, _ = fmt.Fprintf(w, "Exported %d runs to: %s\n", len(rows), outputFile)
	return nil
}
