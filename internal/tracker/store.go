// Package tracker keeps the jobs the user is actively pursuing, keyed by job ID,
// with optional write-through persistence.
package tracker

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/jonathan/career-pilot/internal/types"
)

var (
	// ErrNotFound is returned when a status update targets an untracked ID
	ErrNotFound = errors.New("tracked job not found")
	// ErrInvalidStatus is returned for statuses users cannot assign
	ErrInvalidStatus = errors.New("invalid tracking status")
)

// Repository persists tracked jobs
type Repository interface {
	List(ctx context.Context) ([]types.TrackedJob, error)
	Upsert(ctx context.Context, job types.TrackedJob) error
	Close() error
}

// Store is the in-memory tracking list. Entries keep first-tracked order.
type Store struct {
	mu    sync.RWMutex
	order []string
	items map[string]types.TrackedJob
	repo  Repository
	now   func() time.Time
}

// Option configures a Store
type Option func(*Store)

// WithRepository writes every change through to repo before applying it in memory
func WithRepository(repo Repository) Option {
	return func(s *Store) {
		s.repo = repo
	}
}

// WithClock overrides the time source used for UpdatedAt
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		s.now = now
	}
}

// NewStore creates an empty store
func NewStore(opts ...Option) *Store {
	s := &Store{
		items: make(map[string]types.TrackedJob),
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Load replaces the in-memory list with the repository contents
func (s *Store) Load(ctx context.Context) error {
	if s.repo == nil {
		return nil
	}
	jobs, err := s.repo.List(ctx)
	if err != nil {
		return fmt.Errorf("failed to load tracked jobs: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.order = s.order[:0]
	s.items = make(map[string]types.TrackedJob, len(jobs))
	for _, job := range jobs {
		if _, exists := s.items[job.ID]; !exists {
			s.order = append(s.order, job.ID)
		}
		s.items[job.ID] = job
	}
	return nil
}

// Track inserts a snapshot of job, or overwrites the entry with the same ID.
// An empty status means Interested.
func (s *Store) Track(ctx context.Context, job types.JobListing, status types.TrackingStatus) (types.TrackedJob, error) {
	if status == "" {
		status = types.StatusInterested
	}
	if !status.Assignable() {
		return types.TrackedJob{}, fmt.Errorf("%w: %q", ErrInvalidStatus, status)
	}
	if job.ID == "" {
		return types.TrackedJob{}, fmt.Errorf("job ID is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tracked := types.NewTrackedJob(job, status, s.now().UTC())
	if err := s.persist(ctx, tracked); err != nil {
		return types.TrackedJob{}, err
	}
	s.put(tracked)
	return tracked, nil
}

// SetStatus changes the status of a tracked job. An untracked ID returns ErrNotFound.
func (s *Store) SetStatus(ctx context.Context, id string, status types.TrackingStatus) (types.TrackedJob, error) {
	if !status.Assignable() {
		return types.TrackedJob{}, fmt.Errorf("%w: %q", ErrInvalidStatus, status)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tracked, ok := s.items[id]
	if !ok {
		return types.TrackedJob{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	tracked.Status = status
	tracked.UpdatedAt = s.now().UTC()

	if err := s.persist(ctx, tracked); err != nil {
		return types.TrackedJob{}, err
	}
	s.put(tracked)
	return tracked, nil
}

// Get returns the tracked job with the given ID
func (s *Store) Get(id string) (types.TrackedJob, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	job, ok := s.items[id]
	return job, ok
}

// List returns every tracked job in first-tracked order
func (s *Store) List() []types.TrackedJob {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]types.TrackedJob, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.items[id])
	}
	return out
}

// Len returns the number of tracked jobs
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.order)
}

// Close closes the repository, if any
func (s *Store) Close() error {
	if s.repo == nil {
		return nil
	}
	return s.repo.Close()
}

func (s *Store) persist(ctx context.Context, job types.TrackedJob) error {
	if s.repo == nil {
		return nil
	}
	if err := s.repo.Upsert(ctx, job); err != nil {
		return fmt.Errorf("failed to persist tracked job %s: %w", job.ID, err)
	}
	return nil
}

// put must be called with the write lock held
func (s *Store) put(job types.TrackedJob) {
	if _, exists := s.items[job.ID]; !exists {
		s.order = append(s.order, job.ID)
	}
	s.items[job.ID] = job
}
