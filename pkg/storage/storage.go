package storage

import (
	"context"
	"database/sql"
	"errors"
	"time"

	_ "modernc.org/sqlite"
)

type DB struct {
	sql *sql.DB
}

func Open(path string) (*DB, error) {
	dsn := "file:" + path + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	if err := db.Ping(); err != nil {
		return nil, err
	}
	// Ensure schema exists for convenience.
	if _, err := db.Exec(`
CREATE TABLE IF NOT EXISTS runs (
  id          TEXT PRIMARY KEY,
  page_id     TEXT NOT NULL,
  generation  INTEGER NOT NULL DEFAULT 0,
  status      TEXT NOT NULL CHECK (status IN ('ok','failed','stale')),
  category    TEXT,
  error       TEXT,
  started_at  TEXT NOT NULL,
  finished_at TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_runs_started ON runs(started_at);
CREATE INDEX IF NOT EXISTS idx_runs_page ON runs(page_id, started_at);
    `); err != nil {
		return nil, err
	}
	return &DB{sql: db}, nil
}

func (d *DB) Close() error {
	if d == nil || d.sql == nil {
		return nil
	}
	return d.sql.Close()
}

// RecordRun inserts r. Runs are immutable once written.
func (d *DB) RecordRun(ctx context.Context, r Run) error {
	if r.ID == "" {
		return errors.New("run id is required")
	}
	switch r.Status {
	case StatusOK, StatusFailed, StatusStale:
	default:
		return errors.New("invalid run status: " + r.Status)
	}
	_, err := d.sql.ExecContext(ctx,
		`INSERT INTO runs(id, page_id, generation, status, category, error, started_at, finished_at) VALUES(?,?,?,?,?,?,?,?)`,
		r.ID, r.PageID, int64(r.Generation), r.Status, nullIfEmpty(r.Category), nullIfEmpty(r.Error),
		formatTime(r.StartedAt), formatTime(r.FinishedAt))
	return err
}

// ListRuns returns the most recent N runs, newest first.
func (d *DB) ListRuns(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 50
	}
	q := "SELECT id, page_id, generation, status, category, error, started_at, finished_at FROM runs ORDER BY started_at DESC, id LIMIT ?"
	rows, err := d.sql.QueryContext(ctx, q, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	runs := []Run{}
	for rows.Next() {
		var (
			r                   Run
			gen                 int64
			category, errText   sql.NullString
			startedAt, finished string
		)
		if err := rows.Scan(&r.ID, &r.PageID, &gen, &r.Status, &category, &errText, &startedAt, &finished); err != nil {
			return nil, err
		}
		r.Generation = uint64(gen)
		r.Category = category.String
		r.Error = errText.String
		r.StartedAt = parseTime(startedAt)
		r.FinishedAt = parseTime(finished)
		runs = append(runs, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return runs, nil
}

func (d *DB) GetRunStats(ctx context.Context) ([]RunStats, error) {
	query := `
		SELECT
			status,
			COUNT(*),
			MAX(started_at)
		FROM
			runs
		GROUP BY
			status
		ORDER BY
			status;
	`
	rows, err := d.sql.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var stats []RunStats
	for rows.Next() {
		var s RunStats
		var last string
		if err := rows.Scan(&s.Status, &s.Count, &last); err != nil {
			return nil, err
		}
		s.Last = parseTime(last)
		stats = append(stats, s)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return stats, nil
}

// PruneRuns deletes runs started before cutoff and returns how many were removed.
func (d *DB) PruneRuns(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := d.sql.ExecContext(ctx, "DELETE FROM runs WHERE started_at < ?", formatTime(cutoff))
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// Timestamps are stored as fixed-width UTC strings so they sort lexically.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) time.Time {
	if t, err := time.Parse(timeLayout, s); err == nil {
		return t
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t
	}
	return time.Time{}
}

func nullIfEmpty(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}
