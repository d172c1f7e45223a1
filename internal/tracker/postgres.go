package tracker

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jonathan/career-pilot/internal/types"
)

// PostgresRepository stores tracked jobs in PostgreSQL
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// ConnectPostgres opens a pool, verifies it and ensures the table exists
func ConnectPostgres(ctx context.Context, databaseURL string) (*PostgresRepository, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	repo := &PostgresRepository{pool: pool}
	if err := repo.Migrate(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return repo, nil
}

// Migrate creates the tracked_jobs table if it does not exist
func (r *PostgresRepository) Migrate(ctx context.Context) error {
	_, err := r.pool.Exec(ctx,
		`CREATE TABLE IF NOT EXISTS tracked_jobs (
		     id          TEXT PRIMARY KEY,
		     title       TEXT NOT NULL,
		     company     TEXT NOT NULL,
		     location    TEXT NOT NULL DEFAULT '',
		     snippet     TEXT NOT NULL DEFAULT '',
		     url         TEXT NOT NULL DEFAULT '',
		     match_score DOUBLE PRECISION,
		     status      TEXT NOT NULL,
		     created_at  TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		     updated_at  TIMESTAMPTZ NOT NULL
		 )`)
	if err != nil {
		return fmt.Errorf("failed to migrate tracked_jobs: %w", err)
	}
	return nil
}

// List returns every tracked job in the order it was first tracked
func (r *PostgresRepository) List(ctx context.Context) ([]types.TrackedJob, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, title, company, location, snippet, url, match_score, status, updated_at
		 FROM tracked_jobs
		 ORDER BY created_at, id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list tracked jobs: %w", err)
	}
	defer rows.Close()

	var jobs []types.TrackedJob
	for rows.Next() {
		var job types.TrackedJob
		var status string
		if err := rows.Scan(&job.ID, &job.Title, &job.Company, &job.Location, &job.Snippet,
			&job.URL, &job.MatchScore, &status, &job.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan tracked job: %w", err)
		}
		job.Status = types.TrackingStatus(status)
		jobs = append(jobs, job)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate tracked jobs: %w", err)
	}
	return jobs, nil
}

// Upsert inserts the job or overwrites the row with the same ID
func (r *PostgresRepository) Upsert(ctx context.Context, job types.TrackedJob) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO tracked_jobs (id, title, company, location, snippet, url, match_score, status, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		 ON CONFLICT (id) DO UPDATE SET
		     title = $2,
		     company = $3,
		     location = $4,
		     snippet = $5,
		     url = $6,
		     match_score = $7,
		     status = $8,
		     updated_at = $9`,
		job.ID, job.Title, job.Company, job.Location, job.Snippet, job.URL,
		job.MatchScore, string(job.Status), job.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert tracked job: %w", err)
	}
	return nil
}

// Close closes the connection pool
func (r *PostgresRepository) Close() error {
	if r.pool != nil {
		r.pool.Close()
	}
	return nil
}
