// Package store persists job history in SQLite so past sessions can be
// inspected after the fact.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"remuxd/internal/scheduler"
)

// Store manages job history persistence backed by SQLite.
type Store struct {
	db   *sql.DB
	path string
}

// Entry is one persisted job outcome.
type Entry struct {
	ID         int64
	JobID      string
	SourcePath string
	OutputPath string
	Status     string
	Message    string
	SizeBytes  int64
	StartedAt  time.Time
	FinishedAt time.Time
}

const schema = `
CREATE TABLE IF NOT EXISTS job_history (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    job_id TEXT NOT NULL,
    source_path TEXT NOT NULL,
    output_path TEXT,
    status TEXT NOT NULL,
    message TEXT,
    size_bytes INTEGER NOT NULL DEFAULT 0,
    started_at TEXT NOT NULL,
    finished_at TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_job_history_finished_at ON job_history(finished_at);
`

// Open initializes or connects to the history database at path.
func Open(dbPath string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("ensure state directory: %w", err)
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

	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}

	return &Store{db: db, path: dbPath}, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Record inserts one finished job outcome. It satisfies the scheduler's
// history sink.
func (s *Store) Record(ctx context.Context, rec scheduler.HistoryRecord) error {
	_, err := s.db.ExecContext(
		ctx,
		`INSERT INTO job_history (
            job_id, source_path, output_path, status, message,
            size_bytes, started_at, finished_at
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.JobID,
		rec.SourcePath,
		nullableString(rec.OutputPath),
		string(rec.Status),
		nullableString(rec.Message),
		rec.SizeBytes,
		rec.StartedAt.UTC().Format(time.RFC3339Nano),
		rec.FinishedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("insert history record: %w", err)
	}
	return nil
}

// List returns the most recent entries, newest first. A limit below 1
// returns everything.
func (s *Store) List(ctx context.Context, limit int) ([]Entry, error) {
	query := `SELECT id, job_id, source_path, output_path, status, message,
        size_bytes, started_at, finished_at
        FROM job_history ORDER BY finished_at DESC, id DESC`
	args := []any{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query history: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate history: %w", err)
	}
	return entries, nil
}

// Clear deletes every history entry and reports how many were removed.
func (s *Store) Clear(ctx context.Context) (int64, error) {
	res, err := s.db.ExecContext(ctx, "DELETE FROM job_history")
	if err != nil {
		return 0, fmt.Errorf("clear history: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected: %w", err)
	}
	return affected, nil
}

func scanEntry(rows *sql.Rows) (Entry, error) {
	var (
		entry      Entry
		outputPath sql.NullString
		message    sql.NullString
		startedAt  string
		finishedAt string
	)
	if err := rows.Scan(
		&entry.ID,
		&entry.JobID,
		&entry.SourcePath,
		&outputPath,
		&entry.Status,
		&message,
		&entry.SizeBytes,
		&startedAt,
		&finishedAt,
	); err != nil {
		return Entry{}, fmt.Errorf("scan history row: %w", err)
	}
	entry.OutputPath = outputPath.String
	entry.Message = message.String
	entry.StartedAt = parseTime(startedAt)
	entry.FinishedAt = parseTime(finishedAt)
	return entry, nil
}

func parseTime(value string) time.Time {
	parsed, err := time.Parse(time.RFC3339Nano, value)
	if err != nil {
		return time.Time{}
	}
	return parsed
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}
