package types

import (
	"fmt"
	"strings"
	"time"
)

// TrackingStatus is the pipeline stage a user assigns to a job they pursue
type TrackingStatus string

const (
	// StatusScouted exists for schema completeness; no operation assigns it.
	StatusScouted      TrackingStatus = "Scouted"
	StatusInterested   TrackingStatus = "Interested"
	StatusApplied      TrackingStatus = "Applied"
	StatusInterviewing TrackingStatus = "Interviewing"
	StatusRejected     TrackingStatus = "Rejected"
)

// AssignableStatuses lists the statuses a user can set, in pipeline order
var AssignableStatuses = []TrackingStatus{
	StatusInterested,
	StatusApplied,
	StatusInterviewing,
	StatusRejected,
}

// Assignable reports whether s can be set through tracking operations
func (s TrackingStatus) Assignable() bool {
	for _, a := range AssignableStatuses {
		if s == a {
			return true
		}
	}
	return false
}

// ParseTrackingStatus parses an assignable status case-insensitively
func ParseTrackingStatus(s string) (TrackingStatus, error) {
	for _, a := range AssignableStatuses {
		if strings.EqualFold(strings.TrimSpace(s), string(a)) {
			return a, nil
		}
	}
	return "", fmt.Errorf("invalid tracking status %q (valid: Interested, Applied, Interviewing, Rejected)", s)
}

// JobListing is a discovered lead
type JobListing struct {
	ID             string          `json:"id"`
	Title          string          `json:"title"`
	Company        string          `json:"company"`
	Location       string          `json:"location"`
	Snippet        string          `json:"snippet"`
	URL            string          `json:"url"`
	MatchScore     *float64        `json:"matchScore,omitempty"`
	TrackingStatus *TrackingStatus `json:"trackingStatus,omitempty"`
}

// Score returns the match score, treating an absent score as 0
func (j JobListing) Score() float64 {
	if j.MatchScore == nil {
		return 0
	}
	return *j.MatchScore
}

// Clone returns a deep copy of the listing
func (j JobListing) Clone() JobListing {
	out := j
	if j.MatchScore != nil {
		score := *j.MatchScore
		out.MatchScore = &score
	}
	if j.TrackingStatus != nil {
		status := *j.TrackingStatus
		out.TrackingStatus = &status
	}
	return out
}

// TrackedJob is a snapshot of a listing the user is pursuing. It is a copy:
// later changes to the discovery list never reach it.
type TrackedJob struct {
	ID         string         `json:"id"`
	Title      string         `json:"title"`
	Company    string         `json:"company"`
	Location   string         `json:"location"`
	Snippet    string         `json:"snippet"`
	URL        string         `json:"url"`
	MatchScore *float64       `json:"matchScore,omitempty"`
	Status     TrackingStatus `json:"trackingStatus"`
	UpdatedAt  time.Time      `json:"updatedAt"`
}

// NewTrackedJob snapshots job with the given status
func NewTrackedJob(job JobListing, status TrackingStatus, now time.Time) TrackedJob {
	job = job.Clone()
	return TrackedJob{
		ID:         job.ID,
		Title:      job.Title,
		Company:    job.Company,
		Location:   job.Location,
		Snippet:    job.Snippet,
		URL:        job.URL,
		MatchScore: job.MatchScore,
		Status:     status,
		UpdatedAt:  now,
	}
}

// Listing converts the snapshot back into a listing carrying its status
func (t TrackedJob) Listing() JobListing {
	status := t.Status
	job := JobListing{
		ID:             t.ID,
		Title:          t.Title,
		Company:        t.Company,
		Location:       t.Location,
		Snippet:        t.Snippet,
		URL:            t.URL,
		MatchScore:     t.MatchScore,
		TrackingStatus: &status,
	}
	return job.Clone()
}

// FilterCriteria narrows the visible set of discovered jobs
type FilterCriteria struct {
	Query    string  `json:"query"`
	MinScore float64 `json:"minScore" validate:"gte=0,lte=100"`
	Location string  `json:"location"`
}
