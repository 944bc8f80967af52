package jobs

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"legenda/internal/services"
)

// Job statuses. A job is running from receipt until its pipeline finishes.
const (
	StatusRunning   = "running"
	StatusCompleted = "completed"
	StatusFailed    = "failed"
)

// Job kinds mirror the API operations.
const (
	KindTranscribe = "transcribe"
	KindCaption    = "caption"
	KindTranslate  = "translate"
)

// Job is one recorded pipeline execution. The journal is observational:
// request handling never depends on it, it exists for operators.
type Job struct {
	ID         int64      `json:"id"`
	Kind       string     `json:"kind"`
	Filename   string     `json:"filename,omitempty"`
	Status     string     `json:"status"`
	Detail     string     `json:"detail,omitempty"`
	StartedAt  time.Time  `json:"startedAt"`
	FinishedAt *time.Time `json:"finishedAt,omitempty"`
}

// Store persists the job journal in SQLite.
type Store struct {
	db   *sql.DB
	path string
}

const schemaSQL = `
CREATE TABLE IF NOT EXISTS jobs (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	kind TEXT NOT NULL,
	filename TEXT NOT NULL DEFAULT '',
	status TEXT NOT NULL,
	detail TEXT NOT NULL DEFAULT '',
	started_at TEXT NOT NULL,
	finished_at TEXT
);
CREATE INDEX IF NOT EXISTS idx_jobs_status ON jobs(status);
`

// Open initializes or connects to the journal database at path.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	if _, err := db.Exec(schemaSQL); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}

	return &Store{db: db, path: filepath.Clean(path)}, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Begin records a job as running and returns its identifier.
func (s *Store) Begin(ctx context.Context, kind, filename string) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		"INSERT INTO jobs (kind, filename, status, started_at) VALUES (?, ?, ?, ?)",
		kind, filename, StatusRunning, time.Now().UTC().Format(time.RFC3339Nano))
	if err != nil {
		return 0, fmt.Errorf("insert job: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("job id: %w", err)
	}
	return id, nil
}

// Complete marks a running job finished successfully.
func (s *Store) Complete(ctx context.Context, id int64) error {
	return s.finish(ctx, id, StatusCompleted, "")
}

// Fail marks a running job finished with an error description.
func (s *Store) Fail(ctx context.Context, id int64, detail string) error {
	return s.finish(ctx, id, StatusFailed, detail)
}

func (s *Store) finish(ctx context.Context, id int64, status, detail string) error {
	_, err := s.db.ExecContext(ctx,
		"UPDATE jobs SET status = ?, detail = ?, finished_at = ? WHERE id = ?",
		status, detail, time.Now().UTC().Format(time.RFC3339Nano), id)
	if err != nil {
		return fmt.Errorf("finish job %d: %w", id, err)
	}
	return nil
}

// Get returns one job by identifier.
func (s *Store) Get(ctx context.Context, id int64) (*Job, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT id, kind, filename, status, detail, started_at, finished_at FROM jobs WHERE id = ?", id)
	job, err := scanJob(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, services.Wrap(services.ErrNotFound, "jobs", "get",
			fmt.Sprintf("job %d does not exist", id), nil)
	}
	if err != nil {
		return nil, fmt.Errorf("get job %d: %w", id, err)
	}
	return job, nil
}

// List returns the most recent jobs, newest first, bounded by limit.
func (s *Store) List(ctx context.Context, limit int) ([]Job, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, kind, filename, status, detail, started_at, finished_at FROM jobs ORDER BY id DESC LIMIT ?", limit)
	if err != nil {
		return nil, fmt.Errorf("list jobs: %w", err)
	}
	defer rows.Close()

	jobs := make([]Job, 0, limit)
	for rows.Next() {
		job, err := scanJob(rows)
		if err != nil {
			return nil, fmt.Errorf("scan job: %w", err)
		}
		jobs = append(jobs, *job)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list jobs: %w", err)
	}
	return jobs, nil
}

// Counts reports how many jobs sit in each status.
func (s *Store) Counts(ctx context.Context) (map[string]int, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT status, COUNT(1) FROM jobs GROUP BY status")
	if err != nil {
		return nil, fmt.Errorf("count jobs: %w", err)
	}
	defer rows.Close()

	counts := map[string]int{}
	for rows.Next() {
		var status string
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			return nil, fmt.Errorf("scan count: %w", err)
		}
		counts[status] = n
	}
	return counts, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanJob(row rowScanner) (*Job, error) {
	var job Job
	var started string
	var finished sql.NullString
	if err := row.Scan(&job.ID, &job.Kind, &job.Filename, &job.Status, &job.Detail, &started, &finished); err != nil {
		return nil, err
	}
	if ts, err := time.Parse(time.RFC3339Nano, started); err == nil {
		job.StartedAt = ts
	}
	if finished.Valid && strings.TrimSpace(finished.String) != "" {
		if ts, err := time.Parse(time.RFC3339Nano, finished.String); err == nil {
			job.FinishedAt = &ts
		}
	}
	return &job, nil
}
