package pipeline

import (
	"context"
	"fmt"

	"github.com/jonathan/career-pilot/internal/types"
)

// Track adds a lead to the tracking list, or overwrites its entry. The job is looked
// up in the current batch first, then in the current selection. An empty status means Interested.
func (c *Controller) Track(ctx context.Context, jobID string, status types.TrackingStatus) (types.TrackedJob, error) {
	job, ok := c.jobs.Get(jobID)
	if !ok {
		c.mu.Lock()
		if c.selected != nil && c.selected.ID == jobID {
			job, ok = c.selected.Clone(), true
		}
		c.mu.Unlock()
	}
	if !ok {
		return types.TrackedJob{}, fmt.Errorf("%w: %s", ErrJobNotFound, jobID)
	}
	return c.TrackJob(ctx, job, status)
}

// TrackJob adds a snapshot of job to the tracking list
func (c *Controller) TrackJob(ctx context.Context, job types.JobListing, status types.TrackingStatus) (types.TrackedJob, error) {
	tracked, err := c.tracker.Track(ctx, job, status)
	if err != nil {
		c.logger.Warn("track failed", "job_id", job.ID, "error", err)
		return types.TrackedJob{}, err
	}
	c.log.Add(fmt.Sprintf("%s status: %s.", tracked.Company, tracked.Status))
	return tracked, nil
}

// SetTrackingStatus changes the status of a tracked job.
// An untracked ID returns tracker.ErrNotFound and changes nothing.
func (c *Controller) SetTrackingStatus(ctx context.Context, id string, status types.TrackingStatus) (types.TrackedJob, error) {
	tracked, err := c.tracker.SetStatus(ctx, id, status)
	if err != nil {
		return types.TrackedJob{}, err
	}
	c.logger.Info("tracking status changed", "job_id", id, "status", string(status))
	return tracked, nil
}

// Tracked returns the tracking list in first-tracked order
func (c *Controller) Tracked() []types.TrackedJob {
	return c.tracker.List()
}

// LoadTracked restores the tracking list from the configured repository
func (c *Controller) LoadTracked(ctx context.Context) error {
	if err := c.tracker.Load(ctx); err != nil {
		return err
	}
	c.logger.Info("tracked jobs loaded", "count", c.tracker.Len())
	return nil
}

// Close releases the tracker's repository
func (c *Controller) Close() error {
	return c.tracker.Close()
}
