// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package journal keeps a SQLite history of archive runs and the external
// commands each run issued. It is optional; a run without --journal writes
// nothing.
package journal

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/nessie/internal/shell"
)

// Journal records runs in a SQLite database.
type Journal struct {
	db    *sql.DB
	runID int64
	now   func() time.Time
}

// Open opens or creates the journal database at path and ensures the schema.
func Open(path string) (*Journal, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating journal directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening journal: %w", err)
	}

	j := &Journal{db: db, now: time.Now}
	if err := j.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating journal schema: %w", err)
	}
	return j, nil
}

// Close releases the database connection.
func (j *Journal) Close() error {
	return j.db.Close()
}

func (j *Journal) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			started_at TEXT NOT NULL,
			finished_at TEXT,
			dry_run INTEGER NOT NULL,
			config_path TEXT
		)`,
		`CREATE TABLE IF NOT EXISTS commands (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id INTEGER NOT NULL REFERENCES runs(id),
			section TEXT,
			argv TEXT NOT NULL,
			dry_run INTEGER NOT NULL,
			exit_code INTEGER NOT NULL,
			duration_ms INTEGER NOT NULL,
			error TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_commands_run_id ON commands(run_id)`,
	}
	for _, stmt := range statements {
		if _, err := j.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// BeginRun inserts a run row. Commands recorded afterwards attach to it.
func (j *Journal) BeginRun(ctx context.Context, configPath string, dryRun bool) error {
	res, err := j.db.ExecContext(ctx,
		`INSERT INTO runs (started_at, dry_run, config_path) VALUES (?, ?, ?)`,
		j.timestamp(), dryRun, configPath,
	)
	if err != nil {
		return fmt.Errorf("recording run start: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("recording run start: %w", err)
	}
	j.runID = id
	return nil
}

// FinishRun stamps the current run's finish time.
func (j *Journal) FinishRun(ctx context.Context) error {
	if j.runID == 0 {
		return fmt.Errorf("no run in progress")
	}
	if _, err := j.db.ExecContext(ctx,
		`UPDATE runs SET finished_at = ? WHERE id = ?`, j.timestamp(), j.runID,
	); err != nil {
		return fmt.Errorf("recording run finish: %w", err)
	}
	return nil
}

// Record implements shell.Recorder.
func (j *Journal) Record(ctx context.Context, res shell.Result) error {
	if j.runID == 0 {
		return fmt.Errorf("no run in progress")
	}
	argv, err := json.Marshal(res.Argv)
	if err != nil {
		return fmt.Errorf("encoding argv: %w", err)
	}
	var errText sql.NullString
	if res.Err != nil {
		errText = sql.NullString{String: res.Err.Error(), Valid: true}
	}
	_, err = j.db.ExecContext(ctx,
		`INSERT INTO commands (run_id, section, argv, dry_run, exit_code, duration_ms, error)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		j.runID, res.Section, string(argv), res.DryRun, res.ExitCode, res.Duration.Milliseconds(), errText,
	)
	if err != nil {
		return fmt.Errorf("recording command: %w", err)
	}
	return nil
}

// RunSummary is one row of the run history.
type RunSummary struct {
	ID         int64     `json:"id"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at,omitzero"`
	DryRun     bool      `json:"dry_run"`
	ConfigPath string    `json:"config_path"`
	Commands   int       `json:"commands"`
	Failed     int       `json:"failed"`
}

// Recent returns up to limit runs, newest first.
func (j *Journal) Recent(ctx context.Context, limit int) ([]RunSummary, error) {
	if limit <= 0 {
		limit = 10
	}
	rows, err := j.db.QueryContext(ctx, `
		SELECT r.id, r.started_at, COALESCE(r.finished_at, ''), r.dry_run, COALESCE(r.config_path, ''),
		       COUNT(c.id), COALESCE(SUM(CASE WHEN c.error IS NOT NULL THEN 1 ELSE 0 END), 0)
		FROM runs r
		LEFT JOIN commands c ON c.run_id = r.id
		GROUP BY r.id
		ORDER BY r.id DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("querying runs: %w", err)
	}
	defer rows.Close()

	var out []RunSummary
	for rows.Next() {
		var s RunSummary
		var started, finished string
		if err := rows.Scan(&s.ID, &started, &finished, &s.DryRun, &s.ConfigPath, &s.Commands, &s.Failed); err != nil {
			return nil, fmt.Errorf("scanning run: %w", err)
		}
		if s.StartedAt, err = time.Parse(time.RFC3339, started); err != nil {
			return nil, fmt.Errorf("scanning run %d: started_at: %w", s.ID, err)
		}
		if finished != "" {
			if s.FinishedAt, err = time.Parse(time.RFC3339, finished); err != nil {
				return nil, fmt.Errorf("scanning run %d: finished_at: %w", s.ID, err)
			}
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func (j *Journal) timestamp() string {
	return j.now().UTC().Format(time.RFC3339)
}
