// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package report persists digest run history in a SQLite database so past
// batches can be listed and inspected after the fact.
package report

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/paper-digest/pkg/types"
)

const dbFile = "digest.db"

// Store manages the run history SQLite database.
type Store struct {
	db *sql.DB
}

// RunRecord is one recorded digest run.
type RunRecord struct {
	ID        int64
	InputFile string
	OutputDir string
	StartedAt time.Time
	Succeeded int
	Failed    int
}

// Open opens or creates the history database at dir/digest.db, creating
// the schema if needed.
func Open(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating history directory: %w", err)
	}

	dbPath := filepath.Join(dir, dbFile)
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{db: db}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			input_file TEXT NOT NULL,
			output_dir TEXT NOT NULL,
			started_at TEXT NOT NULL,
			succeeded INTEGER NOT NULL,
			failed INTEGER NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS outcomes (
			run_id INTEGER NOT NULL REFERENCES runs(id),
			idx INTEGER NOT NULL,
			title TEXT NOT NULL,
			status TEXT NOT NULL,
			output_path TEXT,
			reason TEXT,
			PRIMARY KEY (run_id, idx)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_outcomes_run_id ON outcomes(run_id)`,
	}

	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// Record stores a completed run and all its per-paper outcomes in one
// transaction. Returns the new run's ID.
func (s *Store) Record(ctx context.Context, report *types.Report) (int64, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		`INSERT INTO runs (input_file, output_dir, started_at, succeeded, failed)
		 VALUES (?, ?, ?, ?, ?)`,
		report.InputFile, report.OutputDir,
		report.StartedAt.UTC().Format(time.RFC3339Nano),
		report.Succeeded(), report.Failed(),
	)
	if err != nil {
		return 0, fmt.Errorf("inserting run: %w", err)
	}
	runID, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("reading run id: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO outcomes (run_id, idx, title, status, output_path, reason)
		 VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return 0, fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	for _, o := range report.Outcomes {
		if _, err := stmt.ExecContext(ctx, runID, o.Index, o.Title, string(o.Status), o.OutputPath, o.Reason); err != nil {
			return 0, fmt.Errorf("inserting outcome %d: %w", o.Index, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("committing run: %w", err)
	}
	return runID, nil
}

// Runs returns the most recent runs, newest first. A limit of 0 returns
// everything.
func (s *Store) Runs(ctx context.Context, limit int) ([]RunRecord, error) {
	query := `SELECT id, input_file, output_dir, started_at, succeeded, failed
		FROM runs ORDER BY id DESC`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying runs: %w", err)
	}
	defer rows.Close()

	var runs []RunRecord
	for rows.Next() {
		var r RunRecord
		var started string
		if err := rows.Scan(&r.ID, &r.InputFile, &r.OutputDir, &started, &r.Succeeded, &r.Failed); err != nil {
			return nil, fmt.Errorf("scanning run: %w", err)
		}
		if t, parseErr := time.Parse(time.RFC3339Nano, started); parseErr == nil {
			r.StartedAt = t
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// Outcomes returns the per-paper outcomes of one run in corpus order.
func (s *Store) Outcomes(ctx context.Context, runID int64) ([]types.Outcome, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT idx, title, status, output_path, reason
		 FROM outcomes WHERE run_id = ? ORDER BY idx`, runID)
	if err != nil {
		return nil, fmt.Errorf("querying outcomes: %w", err)
	}
	defer rows.Close()

	var outcomes []types.Outcome
	for rows.Next() {
		var o types.Outcome
		var status string
		if err := rows.Scan(&o.Index, &o.Title, &status, &o.OutputPath, &o.Reason); err != nil {
			return nil, fmt.Errorf("scanning outcome: %w", err)
		}
		o.Status = types.OutcomeStatus(status)
		outcomes = append(outcomes, o)
	}
	return outcomes, rows.Err()
}
