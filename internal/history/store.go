package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// Store manages run persistence backed by SQLite.
type Store struct {
	db   *sql.DB
	path string
}

// Open initializes or connects to the history database at dbPath and
// applies pending migrations.
func Open(dbPath string) (*Store, error) {
	if dir := filepath.Dir(dbPath); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("ensure history directory: %w", err)
		}
	}

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
	if err := store.applyMigrations(context.Background()); err != nil {
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

// Path returns the database file location.
func (s *Store) Path() string { return s.path }

// Record inserts a finished run.
func (s *Store) Record(ctx context.Context, run Run) (int64, error) {
	outputs, err := json.Marshal(run.OutputPaths)
	if err != nil {
		return 0, fmt.Errorf("marshal output paths: %w", err)
	}

	res, err := s.db.ExecContext(ctx,
		`INSERT INTO runs (
            run_id, source_path, status, language,
            total_chunks, failed_chunks, total_segments, deduped_segments,
            duration_seconds, processing_seconds, speed_ratio,
            output_paths, diarization_error, error, started_at, finished_at
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.RunID,
		run.SourcePath,
		run.Status,
		run.Language,
		run.TotalChunks,
		run.FailedChunks,
		run.TotalSegments,
		run.DedupedSegments,
		run.DurationSeconds,
		run.ProcessingSecs,
		run.SpeedRatio,
		string(outputs),
		run.DiarizationError,
		run.Error,
		run.StartedAt.UTC().Format(time.RFC3339Nano),
		run.FinishedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return 0, fmt.Errorf("insert run: %w", err)
	}
	return res.LastInsertId()
}

// List returns the most recent runs, newest first.
func (s *Store) List(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, run_id, source_path, status, language,
            total_chunks, failed_chunks, total_segments, deduped_segments,
            duration_seconds, processing_seconds, speed_ratio,
            output_paths, diarization_error, error, started_at, finished_at
        FROM runs ORDER BY started_at DESC, id DESC LIMIT ?`, limit)
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

// Get fetches one run by its identifier.
func (s *Store) Get(ctx context.Context, runID string) (*Run, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, run_id, source_path, status, language,
            total_chunks, failed_chunks, total_segments, deduped_segments,
            duration_seconds, processing_seconds, speed_ratio,
            output_paths, diarization_error, error, started_at, finished_at
        FROM runs WHERE run_id = ?`, runID)
	run, err := scanRun(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &run, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(row rowScanner) (Run, error) {
	var run Run
	var outputs, startedAt, finishedAt string
	err := row.Scan(
		&run.ID, &run.RunID, &run.SourcePath, &run.Status, &run.Language,
		&run.TotalChunks, &run.FailedChunks, &run.TotalSegments, &run.DedupedSegments,
		&run.DurationSeconds, &run.ProcessingSecs, &run.SpeedRatio,
		&outputs, &run.DiarizationError, &run.Error, &startedAt, &finishedAt,
	)
	if err != nil {
		return run, err
	}
	if err := json.Unmarshal([]byte(outputs), &run.OutputPaths); err != nil {
		return run, fmt.Errorf("decode output paths: %w", err)
	}
	if run.StartedAt, err = time.Parse(time.RFC3339Nano, startedAt); err != nil {
		return run, fmt.Errorf("parse started_at: %w", err)
	}
	if run.FinishedAt, err = time.Parse(time.RFC3339Nano, finishedAt); err != nil {
		return run, fmt.Errorf("parse finished_at: %w", err)
	}
	return run, nil
}
