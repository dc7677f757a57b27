package runlog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// Store is the run-history ledger backed by SQLite. One row per pipeline
// execution plus its stage transitions; the per-job JSON cache remains the
// source of truth for offline replay.
type Store struct {
	db   *sql.DB
	path string
}

// Open initializes or connects to the ledger database at dir/runs.db.
func Open(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("ensure ledger directory: %w", err)
	}

	dbPath := filepath.Join(dir, "runs.db")
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{db: db, path: dbPath}
	if err := store.initSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// StartRun records a new execution and returns it with a fresh run ID.
func (s *Store) StartRun(ctx context.Context, jobName string, offline bool) (*Run, error) {
	runID := uuid.NewString()
	now := time.Now().UTC()

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO runs (run_id, job_name, offline, status, started_at)
         VALUES (?, ?, ?, ?, ?)`,
		runID, jobName, boolToInt(offline), StatusRunning, now.Format(time.RFC3339Nano),
	)
	if err != nil {
		return nil, fmt.Errorf("insert run: %w", err)
	}
	return s.Get(ctx, runID)
}

// RecordStage appends one stage transition to a run.
func (s *Store) RecordStage(ctx context.Context, runID string, stage int, message string, isError bool) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO run_stages (run_id, stage, message, is_error, created_at)
         VALUES (?, ?, ?, ?, ?)`,
		runID, stage, message, boolToInt(isError), time.Now().UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("insert stage event: %w", err)
	}
	return nil
}

// FinishRun marks a run completed or failed.
func (s *Store) FinishRun(ctx context.Context, runID string, status Status, finalPath, errorMessage string) error {
	result, err := s.db.ExecContext(ctx,
		`UPDATE runs SET status = ?, final_path = ?, error_message = ?, finished_at = ?
         WHERE run_id = ?`,
		status, finalPath, errorMessage, time.Now().UTC().Format(time.RFC3339Nano), runID,
	)
	if err != nil {
		return fmt.Errorf("finish run: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("finish run rows: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("finish run: unknown run %s", runID)
	}
	return nil
}

// Get returns one run by its run ID.
func (s *Store) Get(ctx context.Context, runID string) (*Run, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, run_id, job_name, offline, status, final_path, error_message, started_at, finished_at
         FROM runs WHERE run_id = ?`, runID)
	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("run %s not found", runID)
	}
	if err != nil {
		return nil, err
	}
	return run, nil
}

// List returns the most recent runs, newest first.
func (s *Store) List(ctx context.Context, limit int) ([]*Run, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, run_id, job_name, offline, status, final_path, error_message, started_at, finished_at
         FROM runs ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var runs []*Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// Stages returns a run's recorded stage transitions in order.
func (s *Store) Stages(ctx context.Context, runID string) ([]StageEvent, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, run_id, stage, message, is_error, created_at
         FROM run_stages WHERE run_id = ? ORDER BY id`, runID)
	if err != nil {
		return nil, fmt.Errorf("list stage events: %w", err)
	}
	defer rows.Close()

	var events []StageEvent
	for rows.Next() {
		var (
			event     StageEvent
			isError   int
			createdAt string
		)
		if err := rows.Scan(&event.ID, &event.RunID, &event.Stage, &event.Message, &isError, &createdAt); err != nil {
			return nil, fmt.Errorf("scan stage event: %w", err)
		}
		event.IsError = isError != 0
		event.CreatedAt = parseTime(createdAt)
		events = append(events, event)
	}
	return events, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(row rowScanner) (*Run, error) {
	var (
		run        Run
		offline    int
		status     string
		startedAt  string
		finishedAt string
	)
	err := row.Scan(&run.ID, &run.RunID, &run.JobName, &offline, &status,
		&run.FinalPath, &run.ErrorMessage, &startedAt, &finishedAt)
	if err != nil {
		return nil, err
	}
	run.Offline = offline != 0
	run.Status = Status(status)
	run.StartedAt = parseTime(startedAt)
	run.FinishedAt = parseTime(finishedAt)
	return &run, nil
}

func parseTime(value string) time.Time {
	if value == "" {
		return time.Time{}
	}
	parsed, err := time.Parse(time.RFC3339Nano, value)
	if err != nil {
		return time.Time{}
	}
	return parsed
}

func boolToInt(value bool) int {
	if value {
		return 1
	}
	return 0
}
