// Package jobs holds the current batch of discovered leads and the filter applied when reading it.
package jobs

import (
	"sync"

	"github.com/jonathan/career-pilot/internal/types"
)

// Collection is the most recent discovery batch, in the order discovery returned it
type Collection struct {
	mu    sync.RWMutex
	jobs  []types.JobListing
	index map[string]int
}

// NewCollection returns an empty collection
func NewCollection() *Collection {
	return &Collection{index: make(map[string]int)}
}

// Replace swaps the whole batch for a new one
func (c *Collection) Replace(batch []types.JobListing) {
	jobs := make([]types.JobListing, 0, len(batch))
	index := make(map[string]int, len(batch))
	for _, job := range batch {
		if _, dup := index[job.ID]; dup {
			continue
		}
		index[job.ID] = len(jobs)
		jobs = append(jobs, job.Clone())
	}

	c.mu.Lock()
	c.jobs = jobs
	c.index = index
	c.mu.Unlock()
}

// All returns a copy of every job in the batch
func (c *Collection) All() []types.JobListing {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]types.JobListing, len(c.jobs))
	for i, job := range c.jobs {
		out[i] = job.Clone()
	}
	return out
}

// Get looks a job up by ID
func (c *Collection) Get(id string) (types.JobListing, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	i, ok := c.index[id]
	if !ok {
		return types.JobListing{}, false
	}
	return c.jobs[i].Clone(), true
}

// Len returns the batch size
func (c *Collection) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.jobs)
}

// Visible is the batch filtered by criteria. It is recomputed on every call.
func (c *Collection) Visible(criteria types.FilterCriteria) []types.JobListing {
	return Filter(c.All(), criteria)
}
