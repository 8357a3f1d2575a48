package iocache

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/huangsam/glexport/internal/contract"
	"github.com/huangsam/glexport/schema"
)

// exportRunsTable holds one row per export run.
const exportRunsTable = "glexport_export_runs"

// HistoryStoreImpl tracks export runs on one of the SQL backends.
type HistoryStoreImpl struct {
	db      *sql.DB
	backend schema.DatabaseBackend
}

var _ contract.HistoryStore = &HistoryStoreImpl{} // Compile-time check

// NewHistoryStore opens the run history and migrates its schema to the latest version.
func NewHistoryStore(backend schema.DatabaseBackend, connStr string) (*HistoryStoreImpl, error) {
	if backend == schema.NoneBackend {
		return &HistoryStoreImpl{backend: backend}, nil
	}

	db, err := openDB(backend, connStr, contract.GetHistoryDBFilePath())
	if err != nil {
		return nil, fmt.Errorf("failed to initialize history store: %w", err)
	}
	// The migrator is left open: closing it would close db.
	m, err := newMigrator(db, backend)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	if _, err := applyMigrations(m, -1); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &HistoryStoreImpl{db: db, backend: backend}, nil
}

func (hs *HistoryStoreImpl) disabled() bool {
	return hs.backend == schema.NoneBackend || hs.db == nil
}

func (hs *HistoryStoreImpl) table() string {
	return quoteTableName(exportRunsTable, hs.backend)
}

// BeginRun creates a new export run and returns its unique ID.
func (hs *HistoryStoreImpl) BeginRun(startTime time.Time, configParams map[string]any) (int64, error) {
	if hs.disabled() {
		return 0, nil
	}

	configJSON, err := json.Marshal(configParams)
	if err != nil {
		return 0, fmt.Errorf("failed to marshal config params: %w", err)
	}

	var runID int64
	if hs.backend == schema.PostgreSQLBackend {
		query := fmt.Sprintf(`INSERT INTO %s (start_time, config_params) VALUES ($1, $2) RETURNING run_id`, hs.table())
		err = hs.db.QueryRow(query, startTime, string(configJSON)).Scan(&runID)
	} else {
		query := fmt.Sprintf(`INSERT INTO %s (start_time, config_params) VALUES (?, ?)`, hs.table())
		var res sql.Result
		res, err = hs.db.Exec(query, formatTime(startTime, hs.backend), string(configJSON))
		if err == nil {
			runID, err = res.LastInsertId()
		}
	}
	if err != nil {
		return 0, fmt.Errorf("failed to insert export run: %w", err)
	}
	return runID, nil
}

// EndRun records the completion time and counts of a run.
func (hs *HistoryStoreImpl) EndRun(runID int64, endTime time.Time, summary schema.RunSummary) error {
	if hs.disabled() {
		return nil
	}

	start := scanTime{backend: hs.backend}
	query := fmt.Sprintf(`SELECT start_time FROM %s WHERE run_id = %s`, hs.table(), placeholder(hs.backend, 1))
	if err := hs.db.QueryRow(query, runID).Scan(start.dest()); err != nil {
		return fmt.Errorf("failed to get start_time for run %d: %w", runID, err)
	}
	startTime, err := start.value()
	if err != nil {
		return err
	}
	durationMs := endTime.Sub(*startTime).Milliseconds()

	var outputPath any
	if summary.OutputPath != "" {
		outputPath = summary.OutputPath
	}

	p := func(n int) string { return placeholder(hs.backend, n) }
	update := fmt.Sprintf(`UPDATE %s SET end_time = %s, run_duration_ms = %s, group_count = %s, project_count = %s,
		commit_count = %s, date_groups = %s, output_format = %s, output_path = %s WHERE run_id = %s`,
		hs.table(), p(1), p(2), p(3), p(4), p(5), p(6), p(7), p(8), p(9))
	_, err = hs.db.Exec(update,
		formatTime(endTime, hs.backend), durationMs,
		summary.GroupCount, summary.ProjectCount, summary.CommitCount, summary.DateGroups,
		string(summary.OutputFormat), outputPath, runID,
	)
	if err != nil {
		return fmt.Errorf("failed to update export run: %w", err)
	}
	return nil
}

// Close closes the underlying connection.
func (hs *HistoryStoreImpl) Close() error {
	if hs.db != nil {
		return hs.db.Close()
	}
	return nil
}

// GetStatus returns status information about the history store.
func (hs *HistoryStoreImpl) GetStatus() (schema.HistoryStatus, error) {
	status := schema.HistoryStatus{
		Backend:    string(hs.backend),
		Connected:  hs.db != nil,
		TableSizes: make(map[string]int64),
	}
	if hs.disabled() {
		return status, nil
	}

	query := fmt.Sprintf("SELECT COUNT(*), COALESCE(SUM(date_groups), 0) FROM %s", hs.table())
	if err := hs.db.QueryRow(query).Scan(&status.TotalRuns, &status.TotalDateGroups); err != nil {
		return status, fmt.Errorf("failed to get total runs: %w", err)
	}
	status.TableSizes[exportRunsTable] = int64(status.TotalRuns)

	if status.TotalRuns > 0 {
		last := scanTime{backend: hs.backend}
		query = fmt.Sprintf("SELECT run_id, start_time FROM %s ORDER BY run_id DESC LIMIT 1", hs.table())
		if err := hs.db.QueryRow(query).Scan(&status.LastRunID, last.dest()); err != nil {
			return status, fmt.Errorf("failed to get last run info: %w", err)
		}
		lastTime, err := last.value()
		if err != nil {
			return status, err
		}
		status.LastRunTime = *lastTime

		oldest := scanTime{backend: hs.backend}
		query = fmt.Sprintf("SELECT start_time FROM %s ORDER BY run_id ASC LIMIT 1", hs.table())
		if err := hs.db.QueryRow(query).Scan(oldest.dest()); err != nil {
			return status, fmt.Errorf("failed to get oldest run time: %w", err)
		}
		oldestTime, err := oldest.value()
		if err != nil {
			return status, err
		}
		status.OldestRunTime = *oldestTime
	}

	version, err := schemaVersion(hs.db, hs.backend)
	if err != nil {
		return status, err
	}
	status.MigrationVersion = version
	return status, nil
}

// GetAllRuns retrieves every export run ordered by ID.
func (hs *HistoryStoreImpl) GetAllRuns() ([]schema.ExportRunRecord, error) {
	if hs.disabled() {
		return nil, nil
	}

	query := fmt.Sprintf(`SELECT run_id, start_time, end_time, run_duration_ms, group_count, project_count,
		commit_count, date_groups, output_format, output_path, config_params FROM %s ORDER BY run_id`, hs.table())
	rows, err := hs.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query export runs: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var results []schema.ExportRunRecord
	for rows.Next() {
		var record schema.ExportRunRecord
		start := scanTime{backend: hs.backend}
		end := scanTime{backend: hs.backend}
		if err := rows.Scan(&record.RunID, start.dest(), end.dest(), &record.RunDurationMs,
			&record.GroupCount, &record.ProjectCount, &record.CommitCount, &record.DateGroups,
			&record.OutputFormat, &record.OutputPath, &record.ConfigParams); err != nil {
			return nil, fmt.Errorf("failed to scan export run: %w", err)
		}
		startTime, err := start.value()
		if err != nil {
			return nil, err
		}
		record.StartTime = *startTime
		if record.EndTime, err = end.value(); err != nil {
			return nil, err
		}
		results = append(results, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating export runs: %w", err)
	}
	return results, nil
}
