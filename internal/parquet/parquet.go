// Package parquet provides data structures and functions for exporting glexport
// data to Parquet files using github.com/parquet-go/parquet-go.
package parquet

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/huangsam/glexport/internal/contract"
	"github.com/huangsam/glexport/schema"
	"github.com/parquet-go/parquet-go"
)

// DateGroupRow is one exported day of commit messages.
type DateGroupRow struct {
	// Date is the calendar day, YYYY-MM-DD
	Date string `parquet:"date,snappy"`

	// Messages are the normalized commit messages of the day, one per line
	Messages string `parquet:"messages,snappy"`
}

// ExportRun represents a single export run with metadata.
// This struct maps to the glexport_export_runs database table.
type ExportRun struct {
	RunID         int64      `parquet:"run_id,snappy"`
	StartTime     time.Time  `parquet:"start_time,snappy"`
	EndTime       *time.Time `parquet:"end_time,optional,snappy"`
	RunDurationMs *int64     `parquet:"run_duration_ms,optional,snappy"`
	GroupCount    int32      `parquet:"group_count,snappy"`
	ProjectCount  int32      `parquet:"project_count,snappy"`
	CommitCount   int32      `parquet:"commit_count,snappy"`
	DateGroups    int32      `parquet:"date_groups,snappy"`
	OutputFormat  string     `parquet:"output_format,snappy"`
	OutputPath    *string    `parquet:"output_path,optional,snappy"`

	// ConfigParams contains the JSON-encoded configuration parameters (nullable)
	ConfigParams *string `parquet:"config_params,optional,snappy"`
}

// ConvertDateGroups converts a grouped export to Parquet rows in date order.
func ConvertDateGroups(export schema.GroupedExport) []DateGroupRow {
	rows := make([]DateGroupRow, len(export.Groups))
	for i, g := range export.Groups {
		rows[i] = DateGroupRow{Date: g.Date, Messages: g.Messages}
	}
	return rows
}

// ConvertExportRunRecords converts schema.ExportRunRecord to ExportRun for Parquet export.
func ConvertExportRunRecords(records []schema.ExportRunRecord) []ExportRun {
	result := make([]ExportRun, len(records))
	for i, r := range records {
		result[i] = ExportRun{
			RunID:         r.RunID,
			StartTime:     r.StartTime,
			EndTime:       r.EndTime,
			RunDurationMs: r.RunDurationMs,
			GroupCount:    int32(r.GroupCount),
			ProjectCount:  int32(r.ProjectCount),
			CommitCount:   int32(r.CommitCount),
			DateGroups:    int32(r.DateGroups),
			OutputFormat:  r.OutputFormat,
			OutputPath:    r.OutputPath,
			ConfigParams:  r.ConfigParams,
		}
	}
	return result
}

// WriteRows writes rows to w with a schema derived from T's struct tags.
func WriteRows[T any](w io.Writer, rows []T) error {
	writer := parquet.NewGenericWriter[T](w)
	if _, err := writer.Write(rows); err != nil {
		_ = writer.Close()
		return fmt.Errorf("failed to write data to parquet file: %w", err)
	}
	// Close flushes the footer
	if err := writer.Close(); err != nil {
		return fmt.Errorf("failed to finalize parquet file: %w", err)
	}
	return nil
}

// WriteFile replaces outputPath with a Parquet file holding rows.
func WriteFile[T any](rows []T, outputPath string) error {
	if err := contract.RemoveExisting(outputPath); err != nil {
		return err
	}
	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	if err := WriteRows(file, rows); err != nil {
		_ = file.Close()
		_ = os.Remove(outputPath)
		return err
	}
	return file.Close()
}

// WriteDateGroupsParquet writes the grouped export to outputPath.
func WriteDateGroupsParquet(export schema.GroupedExport, outputPath string) error {
	return WriteFile(ConvertDateGroups(export), outputPath)
}

// WriteExportRunsParquet writes run history rows to outputPath.
func WriteExportRunsParquet(runs []ExportRun, outputPath string) error {
	return WriteFile(runs, outputPath)
}
