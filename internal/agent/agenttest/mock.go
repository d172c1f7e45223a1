// Package agenttest provides a function-field Agent for tests of packages built on the agent.
package agenttest

import (
	"context"
	"sync"

	"github.com/jonathan/career-pilot/internal/agent"
	"github.com/jonathan/career-pilot/internal/types"
)

// MockAgent implements agent.Agent. Unset functions return canned results.
type MockAgent struct {
	DiscoverJobsFunc func(ctx context.Context, profile types.Profile, location string) (*agent.DiscoveryResult, error)
	AnalyzeJobFunc   func(ctx context.Context, profile types.Profile, job types.JobListing) (*types.JobAnalysis, error)
	RefineResumeFunc func(ctx context.Context, tips []string, job types.JobListing, instruction string) ([]string, error)
	SendMessageFunc  func(ctx context.Context, history []types.ChatMessage, message string, job types.JobListing, analysis *types.JobAnalysis) (string, error)

	mu    sync.Mutex
	calls map[agent.Operation]int
}

var _ agent.Agent = (*MockAgent)(nil)

func (m *MockAgent) record(op agent.Operation) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.calls == nil {
		m.calls = make(map[agent.Operation]int)
	}
	m.calls[op]++
}

// Calls returns how many times op was invoked
func (m *MockAgent) Calls(op agent.Operation) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls[op]
}

func (m *MockAgent) DiscoverJobs(ctx context.Context, profile types.Profile, location string) (*agent.DiscoveryResult, error) {
	m.record(agent.OpDiscover)
	if m.DiscoverJobsFunc != nil {
		return m.DiscoverJobsFunc(ctx, profile, location)
	}
	return &agent.DiscoveryResult{Jobs: Jobs()}, nil
}

func (m *MockAgent) AnalyzeJob(ctx context.Context, profile types.Profile, job types.JobListing) (*types.JobAnalysis, error) {
	m.record(agent.OpAnalyze)
	if m.AnalyzeJobFunc != nil {
		return m.AnalyzeJobFunc(ctx, profile, job)
	}
	return Analysis(), nil
}

func (m *MockAgent) RefineResume(ctx context.Context, tips []string, job types.JobListing, instruction string) ([]string, error) {
	m.record(agent.OpRefine)
	if m.RefineResumeFunc != nil {
		return m.RefineResumeFunc(ctx, tips, job, instruction)
	}
	return []string{"Lead with measurable Go service wins"}, nil
}

func (m *MockAgent) SendMessage(ctx context.Context, history []types.ChatMessage, message string, job types.JobListing, analysis *types.JobAnalysis) (string, error) {
	m.record(agent.OpChat)
	if m.SendMessageFunc != nil {
		return m.SendMessageFunc(ctx, history, message, job, analysis)
	}
	return "Anchor high and cite the salary research.", nil
}

// Score returns a pointer to v
func Score(v float64) *float64 { return &v }

// Jobs returns a small fixed discovery batch
func Jobs() []types.JobListing {
	return []types.JobListing{
		{ID: "j1", Title: "Senior Go Engineer", Company: "Acme", Location: "Remote", URL: "https://acme.example/jobs/1", MatchScore: Score(90)},
		{ID: "j2", Title: "Frontend Engineer", Company: "Globex", Location: "Berlin", URL: "https://globex.example/jobs/2", MatchScore: Score(40)},
		{ID: "j3", Title: "Platform Engineer", Company: "Initech", Location: "Remote (EU)", MatchScore: Score(72)},
	}
}

// Analysis returns a complete analysis fixture
func Analysis() *types.JobAnalysis {
	return &types.JobAnalysis{
		MatchScore:      82,
		MatchingSkills:  []string{"Go", "PostgreSQL"},
		MissingSkills:   []string{"Kubernetes"},
		ResumeTips:      []string{"Quantify latency improvements", "Mention on-call ownership"},
		CoverLetter:     "Dear hiring team,",
		StrategicAdvice: "Emphasize distributed systems work.",
		DecisionSummary: "Strong fit.",
		CompanyCulture: types.CompanyCulture{
			Values: []string{"Ownership"},
			Pros:   []string{"Remote friendly"},
			Cons:   []string{"Fast pace"},
		},
		MarketResearch: types.MarketResearch{
			IndustryTrends:  []string{"Platform consolidation"},
			Competitors:     []string{"Globex"},
			SalaryInsights:  types.SalaryInsights{Low: 150000, High: 190000, Average: 170000, Currency: "USD"},
			GrowthOutlook:   "Growing",
			StabilityRating: types.StabilityHigh,
		},
		InterviewQuestions: []types.InterviewQuestion{
			{Question: "Describe a hard outage.", SuggestedAnswer: "Use STAR."},
		},
	}
}
