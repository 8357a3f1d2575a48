package schema

// Custom string types for type safety.
type (
	// OutputMode represents the format of the export.
	OutputMode string

	// DatabaseBackend represents the database backend for caching and run history.
	DatabaseBackend string

	// EntityKind selects how a list response is mapped into records.
	EntityKind string
)

// All output modes supported.
const (
	CSVOut     OutputMode = "csv" // default
	TextOut    OutputMode = "text"
	JSONOut    OutputMode = "json"
	ParquetOut OutputMode = "parquet"
)

// All database backends supported.
const (
	SQLiteBackend     DatabaseBackend = "sqlite" // default
	MySQLBackend      DatabaseBackend = "mysql"
	PostgreSQLBackend DatabaseBackend = "postgresql"
	NoneBackend       DatabaseBackend = "none"
)

// All entity kinds fetched from the API.
const (
	GroupKind   EntityKind = "group"
	ProjectKind EntityKind = "project"
	CommitKind  EntityKind = "commit"
)

// ValidOutputModes lists all valid output modes.
var ValidOutputModes = map[OutputMode]struct{}{
	CSVOut:     {},
	TextOut:    {},
	JSONOut:    {},
	ParquetOut: {},
}

// ValidDatabaseBackends lists all valid database backends.
var ValidDatabaseBackends = map[DatabaseBackend]struct{}{
	SQLiteBackend:     {},
	MySQLBackend:      {},
	PostgreSQLBackend: {},
	NoneBackend:       {},
}

// FileExtension returns the default file extension for a file-based output mode.
// Text output is printed to the terminal and has no extension.
func (m OutputMode) FileExtension() string {
	switch m {
	case CSVOut:
		return ".csv"
	case JSONOut:
		return ".json"
	case ParquetOut:
		return ".parquet"
	default:
		return ""
	}
}
