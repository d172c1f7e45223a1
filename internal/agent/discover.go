package agent

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/jonathan/career-pilot/internal/llm"
	"github.com/jonathan/career-pilot/internal/prompts"
	"github.com/jonathan/career-pilot/internal/types"
)

type discoveryPayload struct {
	Jobs []types.JobListing `json:"jobs"`
}

// DiscoverJobs asks the provider for fresh leads matching the profile.
// An empty location searches the agent's default location.
func (a *CareerAgent) DiscoverJobs(ctx context.Context, profile types.Profile, location string) (*DiscoveryResult, error) {
	location = strings.TrimSpace(location)
	if location == "" {
		location = a.defaultLocation
	}

	skills := strings.Join(profile.SkillNames(), ", ")
	prompt, err := prompts.Render(prompts.DiscoverJobs, map[string]string{
		"Title":    profile.Title,
		"Skills":   skills,
		"Location": location,
	})
	if err != nil {
		return nil, &AgentError{Op: OpDiscover, Message: "failed to build prompt", Cause: err}
	}

	var payload discoveryPayload
	resp, empty, err := a.generate(ctx, OpDiscover, llm.StructuredRequest{Prompt: prompt, Search: true}, a.discoverySchema, llm.TierStandard, &payload)
	if err != nil {
		return nil, err
	}

	result := &DiscoveryResult{
		Jobs:    []types.JobListing{},
		Sources: []llm.Citation{},
	}
	if empty {
		return result, nil
	}
	if resp != nil && resp.Citations != nil {
		result.Sources = resp.Citations
	}
	result.Jobs = normalizeJobs(payload.Jobs)
	return result, nil
}

// normalizeJobs clamps scores, drops any status the provider invented and
// gives every lead a unique ID.
func normalizeJobs(in []types.JobListing) []types.JobListing {
	out := make([]types.JobListing, 0, len(in))
	seen := make(map[string]bool, len(in))
	for _, job := range in {
		job.ID = strings.TrimSpace(job.ID)
		if job.ID == "" || seen[job.ID] {
			job.ID = uuid.NewString()
		}
		seen[job.ID] = true

		if job.MatchScore != nil {
			score := ClampScore(*job.MatchScore)
			job.MatchScore = &score
		}
		job.TrackingStatus = nil
		out = append(out, job)
	}
	return out
}
