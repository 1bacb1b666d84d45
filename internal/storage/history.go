// Package storage persists a local history of archscope runs in a
// SQLite database under the .archscope directory. History is advisory
// telemetry for the user: losing it never affects snapshots or
// diagrams.
package storage

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"archscope/internal/logging"
)

// Run is one recorded command invocation.
type Run struct {
	ID           string    `json:"id"`
	Command      string    `json:"command"`
	Root         string    `json:"root"`
	StartedAt    time.Time `json:"startedAt"`
	DurationMS   int64     `json:"durationMs"`
	FilesScanned int       `json:"filesScanned"`
	TypesFound   int       `json:"typesFound"`
	Skipped      int       `json:"skipped"`
	Duplicates   int       `json:"duplicates"`
}

// History is the run-history store.
type History struct {
	conn   *sql.DB
	logger *logging.Logger
	dbPath string
}

// OpenHistory opens or creates the history database at dbPath.
func OpenHistory(dbPath string, logger *logging.Logger) (*History, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create history directory: %w", err)
	}

	dbExists := fileExists(dbPath)
	conn, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open history database: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA busy_timeout=5000",
	}
	for _, pragma := range pragmas {
		if _, err := conn.Exec(pragma); err != nil {
			_ = conn.Close()
			return nil, fmt.Errorf("failed to set pragma: %w", err)
		}
	}

	h := &History{conn: conn, logger: logger, dbPath: dbPath}
	if !dbExists {
		logger.Debug("creating history database", map[string]interface{}{"path": dbPath})
	}
	if err := h.initializeSchema(); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to initialize history schema: %w", err)
	}
	return h, nil
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func (h *History) initializeSchema() error {
	schema := `
		CREATE TABLE IF NOT EXISTS runs (
			id TEXT PRIMARY KEY,
			command TEXT NOT NULL,
			root TEXT NOT NULL,
			started_at TEXT NOT NULL,
			duration_ms INTEGER NOT NULL DEFAULT 0,
			files_scanned INTEGER NOT NULL DEFAULT 0,
			types_found INTEGER NOT NULL DEFAULT 0,
			skipped INTEGER NOT NULL DEFAULT 0,
			duplicates INTEGER NOT NULL DEFAULT 0
		);
		CREATE INDEX IF NOT EXISTS idx_runs_started_at ON runs(started_at DESC);
		CREATE INDEX IF NOT EXISTS idx_runs_command ON runs(command);

		CREATE TABLE IF NOT EXISTS schema_version (
			version INTEGER PRIMARY KEY
		);
		INSERT OR REPLACE INTO schema_version (version) VALUES (1);
	`
	_, err := h.conn.Exec(schema)
	return err
}

// RecordRun inserts one run. A zero ID gets a fresh UUID; the assigned
// ID is returned.
func (h *History) RecordRun(run Run) (string, error) {
	if run.ID == "" {
		run.ID = uuid.NewString()
	}
	if run.StartedAt.IsZero() {
		run.StartedAt = time.Now().UTC()
	}

	_, err := h.conn.Exec(`
		INSERT INTO runs (id, command, root, started_at, duration_ms, files_scanned, types_found, skipped, duplicates)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID, run.Command, run.Root, run.StartedAt.Format(time.RFC3339Nano),
		run.DurationMS, run.FilesScanned, run.TypesFound, run.Skipped, run.Duplicates,
	)
	if err != nil {
		return "", fmt.Errorf("failed to record run: %w", err)
	}
	return run.ID, nil
}

// ListRuns returns the most recent runs, newest first.
func (h *History) ListRuns(limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := h.conn.Query(`
		SELECT id, command, root, started_at, duration_ms, files_scanned, types_found, skipped, duplicates
		FROM runs ORDER BY started_at DESC, id LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var run Run
		var startedAt string
		if err := rows.Scan(&run.ID, &run.Command, &run.Root, &startedAt,
			&run.DurationMS, &run.FilesScanned, &run.TypesFound, &run.Skipped, &run.Duplicates); err != nil {
			return nil, err
		}
		if ts, err := time.Parse(time.RFC3339Nano, startedAt); err == nil {
			run.StartedAt = ts
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// Close closes the database connection.
func (h *History) Close() error {
	if h.conn != nil {
		return h.conn.Close()
	}
	return nil
}
