// Package outwriter has output and writer logic.
package outwriter

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/huangsam/glexport/internal/contract"
	"github.com/huangsam/glexport/internal/parquet"
	"github.com/huangsam/glexport/schema"
)

// OutWriter writes a grouped export in one of the supported formats.
// File formats write to OutputFile, or to the terminal writer when it is empty.
type OutWriter struct {
	mode       schema.OutputMode
	outputFile string
	terminal   io.Writer
}

var _ contract.ExportSink = &OutWriter{} // Compile-time check

// NewOutWriter creates a new instance of the output writer.
func NewOutWriter(mode schema.OutputMode, outputFile string, terminal io.Writer) *OutWriter {
	return &OutWriter{mode: mode, outputFile: outputFile, terminal: terminal}
}

// WriteExport writes every date group in ascending date order.
// It returns the file written to, or an empty string for the terminal.
func (ow *OutWriter) WriteExport(export schema.GroupedExport) (string, error) {
	switch ow.mode {
	case schema.TextOut:
		if err := writeDigestTable(ow.terminal, export); err != nil {
			return "", fmt.Errorf("error writing table output: %w", err)
		}
		return "", nil
	case schema.JSONOut:
		if err := ow.writeWithFile(func(w io.Writer) error { return writeDigestJSON(w, export) }); err != nil {
			return "", fmt.Errorf("error writing JSON output: %w", err)
		}
	case schema.ParquetOut:
		if ow.outputFile == "" {
			return "", errors.New("parquet output requires an output file")
		}
		if err := parquet.WriteDateGroupsParquet(export, ow.outputFile); err != nil {
			return "", fmt.Errorf("error writing Parquet output: %w", err)
		}
	default:
		if err := ow.writeWithFile(func(w io.Writer) error { return writeDigestCSV(w, export) }); err != nil {
			return "", fmt.Errorf("error writing CSV output: %w", err)
		}
	}
	return ow.outputFile, nil
}

// writeWithFile opens the output file, writes to it, and cleans up.
// Without an output file it writes to the terminal writer.
func (ow *OutWriter) writeWithFile(writer func(io.Writer) error) error {
	if ow.outputFile == "" {
		return writer(ow.terminal)
	}
	file, err := contract.SelectOutputFile(ow.outputFile)
	if err != nil {
		return err
	}
	if err := writer(file); err != nil {
		_ = file.Close()
		_ = os.Remove(ow.outputFile)
		return err
	}
	return file.Close()
}
