package agent

import (
	"context"

	"github.com/jonathan/career-pilot/internal/llm"
	"github.com/jonathan/career-pilot/internal/prompts"
	"github.com/jonathan/career-pilot/internal/types"
)

type refinementPayload struct {
	RefinedTips []string `json:"refinedTips"`
}

// RefineResume regenerates resume tips following the user's instruction.
// originalTips is never modified; the result is a fresh list of any length.
func (a *CareerAgent) RefineResume(ctx context.Context, originalTips []string, job types.JobListing, instruction string) ([]string, error) {
	prompt, err := prompts.Render(prompts.RefineResume, map[string]string{
		"Tips":        mustJSON(nonNil(originalTips)),
		"JobTitle":    job.Title,
		"Company":     job.Company,
		"Instruction": instruction,
	})
	if err != nil {
		return nil, &AgentError{Op: OpRefine, Message: "failed to build prompt", Cause: err}
	}

	var payload refinementPayload
	_, empty, err := a.generate(ctx, OpRefine, llm.StructuredRequest{Prompt: prompt}, a.refinementSchema, llm.TierLite, &payload)
	if err != nil {
		return nil, err
	}
	if empty {
		return []string{}, nil
	}
	return nonNil(payload.RefinedTips), nil
}
