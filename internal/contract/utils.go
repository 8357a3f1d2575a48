package contract

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
)

// Color variables for console output.
var (
	ErrorColor  = color.New(color.FgRed, color.Bold)
	WarnColor   = color.New(color.FgYellow)
	InfoColor   = color.New(color.FgCyan)
	HeaderColor = color.New(color.FgGreen, color.Bold)
)

// SelectOutputFile returns the appropriate file handle for output.
// An empty path means os.Stdout. Any previous file at the path is removed first.
func SelectOutputFile(filePath string) (*os.File, error) {
	if filePath == "" {
		return os.Stdout, nil
	}
	if err := RemoveExisting(filePath); err != nil {
		return nil, err
	}
	return os.Create(filePath)
}

// RemoveExisting deletes the file at path if it exists.
func RemoveExisting(filePath string) error {
	if err := os.Remove(filePath); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to remove previous output %s: %w", filePath, err)
	}
	return nil
}

// EnsureExtension appends ext to name unless it already ends with it.
func EnsureExtension(name, ext string) string {
	if ext == "" || strings.HasSuffix(strings.ToLower(name), ext) {
		return name
	}
	return name + ext
}

// LogFatal logs an error and exits the program.
func LogFatal(msg string, err error) {
	_, _ = fmt.Fprintf(os.Stderr, "%s %s: %v\n", ErrorColor.Sprint("Fatal"), msg, err)
	os.Exit(1)
}

// LogWarn logs a warning message to stderr.
func LogWarn(msg string, err error) {
	_, _ = fmt.Fprintf(os.Stderr, "%s %s: %v\n", WarnColor.Sprint("Warn"), msg, err)
}

// LogInfo logs an informational message to stderr.
func LogInfo(msg string) {
	_, _ = fmt.Fprintf(os.Stderr, "%s %s\n", InfoColor.Sprint("Info"), msg)
}

// GetCacheDBFilePath returns the path to the SQLite DB file for page cache storage.
func GetCacheDBFilePath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ".glexport_cache.db"
	}
	return filepath.Join(homeDir, ".glexport_cache.db")
}

// GetHistoryDBFilePath returns the path to the SQLite DB file for run history storage.
func GetHistoryDBFilePath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ".glexport_history.db"
	}
	return filepath.Join(homeDir, ".glexport_history.db")
}

// ParseBoolString parses a string value into a boolean.
// Accepts "yes", "no", "true", "false", "1", "0" (case-insensitive).
// Returns an error for invalid values.
func ParseBoolString(s string) (bool, error) {
	switch strings.ToLower(s) {
	case "yes", "true", "1":
		return true, nil
	case "no", "false", "0":
		return false, nil
	default:
		return false, fmt.Errorf("invalid boolean string: %s (expected yes/no/true/false/1/0)", s)
	}
}
