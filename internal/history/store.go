package history

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"catscan/internal/config"
)

// Store persists batch runs and per-image outcomes, backed by SQLite.
type Store struct {
	db   *sql.DB
	path string
}

// Open initializes or connects to the run database under the log directory.
func Open(cfg *config.Config) (*Store, error) {
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("ensure directories: %w", err)
	}

	dbPath := filepath.Join(cfg.Paths.LogDir, "runs.db")
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

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// StartRun inserts a new run covering total items and returns it.
func (s *Store) StartRun(ctx context.Context, total int) (*Run, error) {
	now := time.Now().UTC()
	runUUID := uuid.NewString()

	res, err := s.db.ExecContext(ctx,
		`INSERT INTO runs (uuid, started_at, total) VALUES (?, ?, ?)`,
		runUUID, now.Format(time.RFC3339Nano), total,
	)
	if err != nil {
		return nil, fmt.Errorf("insert run: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}

	return &Run{ID: id, UUID: runUUID, StartedAt: now, Total: total}, nil
}

// RecordResult stores one image outcome and bumps the run counters.
func (s *Store) RecordResult(ctx context.Context, result Result) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin result tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO run_results (run_id, item_id, filename, has_cat, failure, duration_ms)
         VALUES (?, ?, ?, ?, ?, ?)`,
		result.RunID, result.ItemID, result.Filename,
		boolToInt(result.HasCat), result.Failure, result.DurationMillis,
	)
	if err != nil {
		return fmt.Errorf("insert result: %w", err)
	}

	_, err = tx.ExecContext(ctx,
		`UPDATE runs SET
            cats = cats + ?,
            failures = failures + ?
         WHERE id = ?`,
		boolToInt(result.HasCat), boolToInt(result.Failure != ""), result.RunID,
	)
	if err != nil {
		return fmt.Errorf("update run counters: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit result: %w", err)
	}
	return nil
}

// FinishRun marks a run terminal. aborted records that the subscriber went
// away before Done.
func (s *Store) FinishRun(ctx context.Context, runID int64, aborted bool) error {
	now := time.Now().UTC().Format(time.RFC3339Nano)
	_, err := s.db.ExecContext(ctx,
		`UPDATE runs SET finished_at = ?, aborted = ? WHERE id = ?`,
		now, boolToInt(aborted), runID,
	)
	if err != nil {
		return fmt.Errorf("finish run: %w", err)
	}
	return nil
}

// ListRuns returns the most recent runs, newest first.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, uuid, started_at, finished_at, total, cats, failures, aborted
         FROM runs ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// GetRun returns a run by numeric id, or nil when absent.
func (s *Store) GetRun(ctx context.Context, id int64) (*Run, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, uuid, started_at, finished_at, total, cats, failures, aborted
         FROM runs WHERE id = ?`, id)
	run, err := scanRun(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &run, nil
}

// ListResults returns a run's per-image outcomes in item order.
func (s *Store) ListResults(ctx context.Context, runID int64) ([]Result, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT run_id, item_id, filename, has_cat, failure, duration_ms
         FROM run_results WHERE run_id = ? ORDER BY item_id`, runID)
	if err != nil {
		return nil, fmt.Errorf("list results: %w", err)
	}
	defer rows.Close()

	var results []Result
	for rows.Next() {
		var result Result
		var hasCat int
		if err := rows.Scan(&result.RunID, &result.ItemID, &result.Filename,
			&hasCat, &result.Failure, &result.DurationMillis); err != nil {
			return nil, fmt.Errorf("scan result: %w", err)
		}
		result.HasCat = hasCat != 0
		results = append(results, result)
	}
	return results, rows.Err()
}

// RunCount returns the total number of recorded runs.
func (s *Store) RunCount(ctx context.Context) (int64, error) {
	var count int64
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(1) FROM runs").Scan(&count); err != nil {
		return 0, fmt.Errorf("count runs: %w", err)
	}
	return count, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(row rowScanner) (Run, error) {
	var run Run
	var started string
	var finished sql.NullString
	var aborted int
	if err := row.Scan(&run.ID, &run.UUID, &started, &finished,
		&run.Total, &run.Cats, &run.Failures, &aborted); err != nil {
		if err == sql.ErrNoRows {
			return Run{}, err
		}
		return Run{}, fmt.Errorf("scan run: %w", err)
	}
	if ts, err := time.Parse(time.RFC3339Nano, started); err == nil {
		run.StartedAt = ts
	}
	if finished.Valid {
		if ts, err := time.Parse(time.RFC3339Nano, finished.String); err == nil {
			run.FinishedAt = &ts
		}
	}
	run.Aborted = aborted != 0
	return run, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
