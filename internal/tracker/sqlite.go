package tracker

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/jonathan/career-pilot/internal/types"

	_ "modernc.org/sqlite"
)

// SQLiteRepository stores tracked jobs in a local SQLite file
type SQLiteRepository struct {
	db *sql.DB
}

// OpenSQLite opens (or creates) the database at path
func OpenSQLite(ctx context.Context, path string) (*SQLiteRepository, error) {
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return nil, fmt.Errorf("tracker: mkdir %s: %w", dir, err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("tracker: open db: %w", err)
	}
	db.SetMaxOpenConns(1) // SQLite: single writer

	if _, err := db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS tracked_jobs (
		seq         INTEGER PRIMARY KEY AUTOINCREMENT,
		id          TEXT NOT NULL UNIQUE,
		title       TEXT NOT NULL,
		company     TEXT NOT NULL,
		location    TEXT NOT NULL DEFAULT '',
		snippet     TEXT NOT NULL DEFAULT '',
		url         TEXT NOT NULL DEFAULT '',
		match_score REAL,
		status      TEXT NOT NULL,
		updated_at  TEXT NOT NULL
	)`); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("tracker: init schema: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

// List returns every tracked job in the order it was first tracked
func (r *SQLiteRepository) List(ctx context.Context) ([]types.TrackedJob, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, title, company, location, snippet, url, match_score, status, updated_at
		 FROM tracked_jobs ORDER BY seq`)
	if err != nil {
		return nil, fmt.Errorf("tracker: list: %w", err)
	}
	defer rows.Close()

	var jobs []types.TrackedJob
	for rows.Next() {
		var (
			job       types.TrackedJob
			score     sql.NullFloat64
			status    string
			updatedAt string
		)
		if err := rows.Scan(&job.ID, &job.Title, &job.Company, &job.Location, &job.Snippet,
			&job.URL, &score, &status, &updatedAt); err != nil {
			return nil, fmt.Errorf("tracker: scan: %w", err)
		}
		if score.Valid {
			v := score.Float64
			job.MatchScore = &v
		}
		job.Status = types.TrackingStatus(status)
		if t, err := time.Parse(time.RFC3339Nano, updatedAt); err == nil {
			job.UpdatedAt = t
		}
		jobs = append(jobs, job)
	}
	return jobs, rows.Err()
}

// Upsert inserts the job or overwrites the row with the same ID, keeping its position
func (r *SQLiteRepository) Upsert(ctx context.Context, job types.TrackedJob) error {
	var score sql.NullFloat64
	if job.MatchScore != nil {
		score = sql.NullFloat64{Float64: *job.MatchScore, Valid: true}
	}

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO tracked_jobs (id, title, company, location, snippet, url, match_score, status, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT (id) DO UPDATE SET
		     title = excluded.title,
		     company = excluded.company,
		     location = excluded.location,
		     snippet = excluded.snippet,
		     url = excluded.url,
		     match_score = excluded.match_score,
		     status = excluded.status,
		     updated_at = excluded.updated_at`,
		job.ID, job.Title, job.Company, job.Location, job.Snippet, job.URL,
		score, string(job.Status), job.UpdatedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("tracker: upsert: %w", err)
	}
	return nil
}

// Close closes the database
func (r *SQLiteRepository) Close() error {
	return r.db.Close()
}
