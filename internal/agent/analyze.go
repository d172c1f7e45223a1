package agent

import (
	"context"

	"github.com/jonathan/career-pilot/internal/llm"
	"github.com/jonathan/career-pilot/internal/prompts"
	"github.com/jonathan/career-pilot/internal/types"
)

// AnalyzeJob produces the deep analysis report for one job
func (a *CareerAgent) AnalyzeJob(ctx context.Context, profile types.Profile, job types.JobListing) (*types.JobAnalysis, error) {
	prompt, err := prompts.Render(prompts.AnalyzeJob, map[string]string{
		"Profile":  mustJSON(profile),
		"Job":      mustJSON(job),
		"Company":  job.Company,
		"JobTitle": job.Title,
		"Location": job.Location,
	})
	if err != nil {
		return nil, &AgentError{Op: OpAnalyze, Message: "failed to build prompt", Cause: err}
	}

	var analysis types.JobAnalysis
	_, empty, err := a.generate(ctx, OpAnalyze, llm.StructuredRequest{Prompt: prompt, Search: true}, a.analysisSchema, llm.TierAdvanced, &analysis)
	if err != nil {
		return nil, err
	}
	if empty {
		return nil, &AgentError{Op: OpAnalyze, Message: "empty response", Cause: llm.ErrEmptyResponse}
	}

	normalizeAnalysis(&analysis)
	return &analysis, nil
}

func normalizeAnalysis(a *types.JobAnalysis) {
	a.MatchScore = ClampScore(a.MatchScore)
	a.MatchingSkills = nonNil(a.MatchingSkills)
	a.MissingSkills = nonNil(a.MissingSkills)
	a.ResumeTips = nonNil(a.ResumeTips)
	a.CompanyCulture.Values = nonNil(a.CompanyCulture.Values)
	a.CompanyCulture.Pros = nonNil(a.CompanyCulture.Pros)
	a.CompanyCulture.Cons = nonNil(a.CompanyCulture.Cons)
	a.MarketResearch.IndustryTrends = nonNil(a.MarketResearch.IndustryTrends)
	a.MarketResearch.Competitors = nonNil(a.MarketResearch.Competitors)
	if a.InterviewQuestions == nil {
		a.InterviewQuestions = []types.InterviewQuestion{}
	}
}
