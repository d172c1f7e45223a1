package jobs

import (
	"strings"

	"github.com/jonathan/career-pilot/internal/types"
)

// Matches reports whether a job passes every criterion.
// Text criteria are case-insensitive substring matches; a missing score counts as 0.
func Matches(job types.JobListing, criteria types.FilterCriteria) bool {
	if q := strings.ToLower(criteria.Query); q != "" {
		if !strings.Contains(strings.ToLower(job.Title), q) &&
			!strings.Contains(strings.ToLower(job.Company), q) {
			return false
		}
	}

	if job.Score() < criteria.MinScore {
		return false
	}

	if loc := strings.ToLower(criteria.Location); loc != "" {
		if !strings.Contains(strings.ToLower(job.Location), loc) {
			return false
		}
	}

	return true
}

// Filter returns the jobs passing criteria, preserving input order
func Filter(jobs []types.JobListing, criteria types.FilterCriteria) []types.JobListing {
	out := make([]types.JobListing, 0, len(jobs))
	for _, job := range jobs {
		if Matches(job, criteria) {
			out = append(out, job)
		}
	}
	return out
}
