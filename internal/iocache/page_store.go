package iocache

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/huangsam/glexport/internal/contract"
	"github.com/huangsam/glexport/schema"
)

// pageTable holds decoded API pages keyed by request.
const pageTable = "glexport_page_cache"

// PageStoreImpl caches decoded API pages on one of the SQL backends.
// The none backend yields a store that never hits and never writes.
type PageStoreImpl struct {
	db        *sql.DB
	tableName string
	backend   schema.DatabaseBackend
	connStr   string
}

var _ contract.CacheStore = &PageStoreImpl{} // Compile-time check

// NewPageStore opens the page cache and creates its table when missing.
func NewPageStore(backend schema.DatabaseBackend, connStr string) (*PageStoreImpl, error) {
	return newPageStore(pageTable, backend, connStr)
}

func newPageStore(tableName string, backend schema.DatabaseBackend, connStr string) (*PageStoreImpl, error) {
	if err := validateTableName(tableName); err != nil {
		return nil, err
	}
	store := &PageStoreImpl{tableName: tableName, backend: backend, connStr: connStr}
	if backend == schema.NoneBackend {
		return store, nil
	}

	db, err := openDB(backend, connStr, contract.GetCacheDBFilePath())
	if err != nil {
		return nil, fmt.Errorf("failed to initialize page cache: %w", err)
	}
	if _, err := db.Exec(createPageTableQuery(tableName, backend)); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create table %s: %w", tableName, err)
	}
	store.db = db
	return store, nil
}

// createPageTableQuery returns the CREATE TABLE query for the given backend.
func createPageTableQuery(tableName string, backend schema.DatabaseBackend) string {
	quoted := quoteTableName(tableName, backend)
	switch backend {
	case schema.MySQLBackend:
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				page_key CHAR(64) PRIMARY KEY,
				page_body MEDIUMBLOB NOT NULL,
				page_version INT NOT NULL,
				fetched_at BIGINT NOT NULL
			);
		`, quoted)
	case schema.PostgreSQLBackend:
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				page_key TEXT PRIMARY KEY,
				page_body BYTEA NOT NULL,
				page_version INTEGER NOT NULL,
				fetched_at BIGINT NOT NULL
			);
		`, quoted)
	default: // SQLite
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				page_key TEXT PRIMARY KEY,
				page_body BLOB NOT NULL,
				page_version INTEGER NOT NULL,
				fetched_at INTEGER NOT NULL
			);
		`, quoted)
	}
}

func (ps *PageStoreImpl) disabled() bool {
	return ps.backend == schema.NoneBackend || ps.db == nil
}

// Get returns the page body, layout version and fetch timestamp stored under key.
// A missing key yields sql.ErrNoRows.
func (ps *PageStoreImpl) Get(key string) ([]byte, int, int64, error) {
	if ps.disabled() {
		return nil, 0, 0, sql.ErrNoRows
	}

	query := fmt.Sprintf(`SELECT page_body, page_version, fetched_at FROM %s WHERE page_key = %s`,
		quoteTableName(ps.tableName, ps.backend), placeholder(ps.backend, 1))

	var body []byte
	var version int
	var fetchedAt int64
	if err := ps.db.QueryRow(query, key).Scan(&body, &version, &fetchedAt); err != nil {
		return nil, 0, 0, err
	}
	return body, version, fetchedAt, nil
}

// Set inserts or replaces the page stored under key.
func (ps *PageStoreImpl) Set(key string, value []byte, version int, timestamp int64) error {
	if ps.disabled() {
		return nil
	}
	_, err := ps.db.Exec(ps.upsertQuery(), key, value, version, timestamp)
	return err
}

// upsertQuery returns the UPSERT query for the backend.
func (ps *PageStoreImpl) upsertQuery() string {
	quoted := quoteTableName(ps.tableName, ps.backend)
	switch ps.backend {
	case schema.MySQLBackend:
		return fmt.Sprintf(`INSERT INTO %s (page_key, page_body, page_version, fetched_at) VALUES (?, ?, ?, ?) AS new
			ON DUPLICATE KEY UPDATE page_body = new.page_body, page_version = new.page_version, fetched_at = new.fetched_at`, quoted)
	case schema.PostgreSQLBackend:
		return fmt.Sprintf(`INSERT INTO %s (page_key, page_body, page_version, fetched_at) VALUES ($1, $2, $3, $4)
			ON CONFLICT (page_key) DO UPDATE SET page_body = EXCLUDED.page_body, page_version = EXCLUDED.page_version, fetched_at = EXCLUDED.fetched_at`, quoted)
	default: // SQLite
		return fmt.Sprintf(`INSERT OR REPLACE INTO %s (page_key, page_body, page_version, fetched_at) VALUES (?, ?, ?, ?)`, quoted)
	}
}

// Prune deletes every page fetched before cutoff and returns how many were removed.
func (ps *PageStoreImpl) Prune(cutoff time.Time) (int64, error) {
	if ps.disabled() {
		return 0, nil
	}
	query := fmt.Sprintf(`DELETE FROM %s WHERE fetched_at < %s`,
		quoteTableName(ps.tableName, ps.backend), placeholder(ps.backend, 1))
	res, err := ps.db.Exec(query, cutoff.Unix())
	if err != nil {
		return 0, fmt.Errorf("failed to prune page cache: %w", err)
	}
	return res.RowsAffected()
}

// Close closes the underlying DB connection.
func (ps *PageStoreImpl) Close() error {
	if ps.db != nil {
		return ps.db.Close()
	}
	return nil
}

// GetStatus returns status information about the page cache.
func (ps *PageStoreImpl) GetStatus() (schema.CacheStatus, error) {
	status := schema.CacheStatus{
		Backend:   string(ps.backend),
		Connected: ps.db != nil,
	}
	if ps.disabled() {
		return status, nil
	}

	quoted := quoteTableName(ps.tableName, ps.backend)
	query := fmt.Sprintf("SELECT COUNT(*), COALESCE(MAX(fetched_at), 0), COALESCE(MIN(fetched_at), 0) FROM %s", quoted)
	var lastTs, oldestTs int64
	if err := ps.db.QueryRow(query).Scan(&status.TotalEntries, &lastTs, &oldestTs); err != nil {
		return status, fmt.Errorf("failed to get page cache totals: %w", err)
	}
	if status.TotalEntries > 0 {
		status.LastEntryTime = time.Unix(lastTs, 0)
		status.OldestEntryTime = time.Unix(oldestTs, 0)
	}
	status.TableSizeBytes = ps.tableSize(status.TotalEntries)
	return status, nil
}

// tableSize asks the backend for the storage used, falling back to a rough estimate.
func (ps *PageStoreImpl) tableSize(entries int) int64 {
	estimate := int64(entries) * 4096
	var size int64
	switch ps.backend {
	case schema.SQLiteBackend:
		row := ps.db.QueryRow("SELECT page_count * page_size FROM pragma_page_count(), pragma_page_size()")
		if err := row.Scan(&size); err != nil {
			return 0
		}
		return size
	case schema.MySQLBackend:
		cfg, err := mysql.ParseDSN(ps.connStr)
		if err != nil || cfg.DBName == "" {
			return estimate
		}
		row := ps.db.QueryRow("SELECT data_length + index_length FROM information_schema.tables WHERE table_schema = ? AND table_name = ?", cfg.DBName, ps.tableName)
		if err := row.Scan(&size); err != nil {
			return estimate
		}
		return size
	case schema.PostgreSQLBackend:
		if err := ps.db.QueryRow("SELECT pg_total_relation_size($1)", ps.tableName).Scan(&size); err != nil {
			return estimate
		}
		return size
	}
	return estimate
}
