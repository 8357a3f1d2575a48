package iocache

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"sync"

	"github.com/huangsam/glexport/internal/contract"
	"github.com/huangsam/glexport/schema"
)

// Global Manager instance for main logic.
var (
	Manager   = &StoreManager{}
	initOnce  sync.Once
	closeOnce sync.Once
)

// InitStores initializes the global manager with the page cache and run history stores.
// An empty backend leaves the corresponding store nil.
func InitStores(cacheBackend schema.DatabaseBackend, cacheConnStr string, historyBackend schema.DatabaseBackend, historyConnStr string) error {
	var initErr error

	initOnce.Do(func() {
		var pages contract.CacheStore
		if cacheBackend != "" {
			store, err := NewPageStore(cacheBackend, cacheConnStr)
			if err != nil {
				initErr = err
				return
			}
			pages = store
		}

		var history contract.HistoryStore
		if historyBackend != "" {
			store, err := NewHistoryStore(historyBackend, historyConnStr)
			if err != nil {
				if pages != nil {
					_ = pages.Close()
				}
				initErr = err
				return
			}
			history = store
		}

		Manager.Lock()
		defer Manager.Unlock()
		Manager.pages = pages
		Manager.history = history
	})

	return initErr
}

// CloseStores should be called on application shutdown.
func CloseStores() {
	closeOnce.Do(func() {
		Manager.Lock()
		defer Manager.Unlock()
		if Manager.pages != nil {
			_ = Manager.pages.Close()
		}
		if Manager.history != nil {
			_ = Manager.history.Close()
		}
	})
}

// ClearPages removes all cached pages.
// For SQLite it deletes the database file, for MySQL/PostgreSQL it drops the table.
func ClearPages(backend schema.DatabaseBackend, connStr string) error {
	return clearBackend(backend, connStr, contract.GetCacheDBFilePath(), pageTable)
}

// ClearHistory removes all recorded runs together with the schema version.
func ClearHistory(backend schema.DatabaseBackend, connStr string) error {
	return clearBackend(backend, connStr, contract.GetHistoryDBFilePath(), exportRunsTable, migrationsTable)
}

func clearBackend(backend schema.DatabaseBackend, connStr, defaultPath string, tables ...string) error {
	switch backend {
	case schema.NoneBackend, "":
		return nil
	case schema.SQLiteBackend:
		path := connStr
		if path == "" {
			path = defaultPath
		}
		if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("failed to remove SQLite database file %s: %w", path, err)
		}
		return nil
	}

	db, err := openDB(backend, connStr, "")
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()
	for _, table := range tables {
		if err := dropTable(db, backend, table); err != nil {
			return err
		}
	}
	return nil
}

func dropTable(db *sql.DB, backend schema.DatabaseBackend, table string) error {
	if _, err := db.Exec(fmt.Sprintf("DROP TABLE IF EXISTS %s", quoteTableName(table, backend))); err != nil {
		return fmt.Errorf("failed to drop table %s: %w", table, err)
	}
	return nil
}
