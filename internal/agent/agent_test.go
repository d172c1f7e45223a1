package agent

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/jonathan/career-pilot/internal/jobs"
	"github.com/jonathan/career-pilot/internal/llm"
	"github.com/jonathan/career-pilot/internal/schemas"
	"github.com/jonathan/career-pilot/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// MockLLMClient implements llm.Client for testing
type MockLLMClient struct {
	GenerateStructuredFunc func(ctx context.Context, req llm.StructuredRequest, tier llm.ModelTier) (*llm.Response, error)
	ChatFunc               func(ctx context.Context, req llm.ChatRequest, tier llm.ModelTier) (*llm.Response, error)
}

func (m *MockLLMClient) GenerateStructured(ctx context.Context, req llm.StructuredRequest, tier llm.ModelTier) (*llm.Response, error) {
	if m.GenerateStructuredFunc != nil {
		return m.GenerateStructuredFunc(ctx, req, tier)
	}
	return &llm.Response{Text: "{}"}, nil
}

func (m *MockLLMClient) Chat(ctx context.Context, req llm.ChatRequest, tier llm.ModelTier) (*llm.Response, error) {
	if m.ChatFunc != nil {
		return m.ChatFunc(ctx, req, tier)
	}
	return &llm.Response{Text: "mock reply"}, nil
}

func (m *MockLLMClient) GetModel(_ llm.ModelTier) string {
	return "mock-model"
}

func (m *MockLLMClient) Close() error {
	return nil
}

func structured(text string) func(context.Context, llm.StructuredRequest, llm.ModelTier) (*llm.Response, error) {
	return func(_ context.Context, _ llm.StructuredRequest, _ llm.ModelTier) (*llm.Response, error) {
		return &llm.Response{Text: text}, nil
	}
}

func testProfile() types.Profile {
	p := types.Profile{Title: "Backend Engineer"}
	p.AddSkill("Go", types.LevelExpert)
	p.AddSkill("PostgreSQL", "")
	return p
}

func testJob() types.JobListing {
	score := 80.0
	return types.JobListing{
		ID:         "job-1",
		Title:      "Senior Go Engineer",
		Company:    "Acme",
		Location:   "Berlin",
		Snippet:    "Build services",
		URL:        "https://acme.example/jobs/1",
		MatchScore: &score,
	}
}

const validAnalysis = `{
	"matchScore": 87,
	"matchingSkills": ["Go"],
	"missingSkills": ["Kafka"],
	"resumeTips": ["Led Go migration", "Cut p99 latency by 40%", "Owned on-call"],
	"coverLetter": "Dear Acme",
	"companyCulture": {"values": ["Ownership"], "recentNews": "Series C", "pros": ["Remote"], "cons": ["Pace"]},
	"marketResearch": {
		"industryTrends": ["Platform consolidation"],
		"competitors": ["Globex"],
		"salaryInsights": {"low": 90000, "high": 140000, "average": 115000, "currency": "EUR", "context": "Berlin"},
		"growthOutlook": "Strong",
		"stabilityRating": "High"
	},
	"interviewQuestions": [{"question": "Why Go?", "suggestedAnswer": "Simplicity"}],
	"strategicAdvice": "Lead with infra work",
	"decisionSummary": "Strong match. Healthy company."
}`

func newTestAgent(t *testing.T, client llm.Client, opts ...Option) *CareerAgent {
	t.Helper()
	a, err := New(client, opts...)
	require.NoError(t, err)
	return a
}

func TestNew_RequiresClient(t *testing.T) {
	_, err := New(nil)
	assert.Error(t, err)
}

func TestDiscoverJobs_Success(t *testing.T) {
	var gotReq llm.StructuredRequest
	var gotTier llm.ModelTier
	client := &MockLLMClient{
		GenerateStructuredFunc: func(_ context.Context, req llm.StructuredRequest, tier llm.ModelTier) (*llm.Response, error) {
			gotReq = req
			gotTier = tier
			return &llm.Response{
				Text: `{"jobs": [
					{"id": "a", "title": "Go Dev", "company": "Acme", "location": "Remote", "snippet": "s", "url": "u", "matchScore": 91},
					{"id": "b", "title": "SRE", "company": "Globex", "location": "Remote", "snippet": "s", "url": "u", "matchScore": 64}
				]}`,
				Citations: []llm.Citation{{URI: "https://jobs.example/1"}},
			}, nil
		},
	}

	result, err := newTestAgent(t, client).DiscoverJobs(context.Background(), testProfile(), "")
	require.NoError(t, err)

	require.Len(t, result.Jobs, 2)
	assert.Equal(t, "a", result.Jobs[0].ID)
	assert.Equal(t, 91.0, result.Jobs[0].Score())
	assert.Equal(t, "Globex", result.Jobs[1].Company)
	assert.Equal(t, []llm.Citation{{URI: "https://jobs.example/1"}}, result.Sources)

	assert.Equal(t, llm.TierStandard, gotTier)
	assert.NotEmpty(t, gotReq.Schema)
	assert.True(t, gotReq.Search)
	assert.Contains(t, gotReq.Prompt, "Backend Engineer")
	assert.Contains(t, gotReq.Prompt, "Go, PostgreSQL")
	assert.Contains(t, gotReq.Prompt, "located in Remote")
}

func TestDiscoverJobs_Location(t *testing.T) {
	tests := []struct {
		name     string
		opts     []Option
		location string
		want     string
	}{
		{name: "explicit location", location: "Lisbon", want: "located in Lisbon"},
		{name: "default location", want: "located in Remote"},
		{name: "configured default", opts: []Option{WithDefaultLocation("Toronto")}, want: "located in Toronto"},
		{name: "blank configured default ignored", opts: []Option{WithDefaultLocation("  ")}, want: "located in Remote"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var prompt string
			client := &MockLLMClient{
				GenerateStructuredFunc: func(_ context.Context, req llm.StructuredRequest, _ llm.ModelTier) (*llm.Response, error) {
					prompt = req.Prompt
					return &llm.Response{Text: `{"jobs": []}`}, nil
				},
			}
			_, err := newTestAgent(t, client, tt.opts...).DiscoverJobs(context.Background(), testProfile(), tt.location)
			require.NoError(t, err)
			assert.Contains(t, prompt, tt.want)
		})
	}
}

func TestDiscoverJobs_NormalizesLeads(t *testing.T) {
	client := &MockLLMClient{
		GenerateStructuredFunc: structured(`{"jobs": [
			{"id": "", "title": "A", "company": "X", "location": "L", "snippet": "", "url": "", "matchScore": 150},
			{"id": "dup", "title": "B", "company": "X", "location": "L", "snippet": "", "url": "", "matchScore": -10},
			{"id": "dup", "title": "C", "company": "X", "location": "L", "snippet": "", "url": "", "matchScore": 42.5}
		]}`),
	}

	result, err := newTestAgent(t, client).DiscoverJobs(context.Background(), testProfile(), "Remote")
	require.NoError(t, err)
	require.Len(t, result.Jobs, 3)

	assert.NotEmpty(t, result.Jobs[0].ID)
	assert.Equal(t, 100.0, result.Jobs[0].Score())
	assert.Equal(t, "dup", result.Jobs[1].ID)
	assert.Equal(t, 0.0, result.Jobs[1].Score())
	assert.NotEqual(t, "dup", result.Jobs[2].ID)
	assert.Equal(t, 42.5, result.Jobs[2].Score())
	for _, job := range result.Jobs {
		assert.Nil(t, job.TrackingStatus)
	}
}

func TestDiscoverJobs_LeadWithoutScore(t *testing.T) {
	client := &MockLLMClient{
		GenerateStructuredFunc: structured(`{"jobs": [
			{"id": "a", "title": "Go Dev", "company": "Acme", "location": "Remote", "snippet": "s", "url": "u", "matchScore": 91},
			{"id": "b", "title": "SRE", "company": "Globex", "location": "Remote", "snippet": "s", "url": "u"},
			{"id": "c", "title": "DBA", "company": "Initech", "location": "Remote", "snippet": "s", "url": "u", "matchScore": null}
		]}`),
	}

	result, err := newTestAgent(t, client).DiscoverJobs(context.Background(), testProfile(), "Remote")
	require.NoError(t, err)
	require.Len(t, result.Jobs, 3)

	assert.NotNil(t, result.Jobs[0].MatchScore)
	assert.Nil(t, result.Jobs[1].MatchScore)
	assert.Nil(t, result.Jobs[2].MatchScore)

	visible := jobs.Filter(result.Jobs, types.FilterCriteria{MinScore: 1})
	require.Len(t, visible, 1)
	assert.Equal(t, "a", visible[0].ID)
	assert.Len(t, jobs.Filter(result.Jobs, types.FilterCriteria{}), 3)
}

func TestDiscoverJobs_EmptyResponseYieldsNoJobs(t *testing.T) {
	tests := []struct {
		name string
		fn   func(context.Context, llm.StructuredRequest, llm.ModelTier) (*llm.Response, error)
	}{
		{name: "blank text", fn: structured("  ")},
		{name: "empty response error", fn: func(_ context.Context, _ llm.StructuredRequest, _ llm.ModelTier) (*llm.Response, error) {
			return nil, fmt.Errorf("no candidates in response: %w", llm.ErrEmptyResponse)
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := newTestAgent(t, &MockLLMClient{GenerateStructuredFunc: tt.fn}).
				DiscoverJobs(context.Background(), testProfile(), "")
			require.NoError(t, err)
			assert.NotNil(t, result.Jobs)
			assert.Empty(t, result.Jobs)
		})
	}
}

func TestDiscoverJobs_Failures(t *testing.T) {
	tests := []struct {
		name    string
		fn      func(context.Context, llm.StructuredRequest, llm.ModelTier) (*llm.Response, error)
		message string
	}{
		{
			name: "transport failure",
			fn: func(_ context.Context, _ llm.StructuredRequest, _ llm.ModelTier) (*llm.Response, error) {
				return nil, errors.New("connection reset")
			},
			message: "request failed",
		},
		{name: "malformed json", fn: structured(`{"jobs": [`), message: "does not match schema"},
		{name: "missing jobs", fn: structured(`{"leads": []}`), message: "does not match schema"},
		{name: "wrong score type", fn: structured(`{"jobs": [{"id": "a", "title": "A", "company": "X", "location": "L", "snippet": "", "url": "", "matchScore": "high"}]}`), message: "does not match schema"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := newTestAgent(t, &MockLLMClient{GenerateStructuredFunc: tt.fn}).
				DiscoverJobs(context.Background(), testProfile(), "")
			require.Error(t, err)

			var agentErr *AgentError
			require.True(t, errors.As(err, &agentErr))
			assert.Equal(t, OpDiscover, agentErr.Op)
			assert.Contains(t, agentErr.Message, tt.message)
		})
	}
}

func TestAnalyzeJob_Success(t *testing.T) {
	var gotTier llm.ModelTier
	var gotReq llm.StructuredRequest
	var prompt string
	client := &MockLLMClient{
		GenerateStructuredFunc: func(_ context.Context, req llm.StructuredRequest, tier llm.ModelTier) (*llm.Response, error) {
			gotTier = tier
			gotReq = req
			prompt = req.Prompt
			return &llm.Response{Text: validAnalysis}, nil
		},
	}

	analysis, err := newTestAgent(t, client).AnalyzeJob(context.Background(), testProfile(), testJob())
	require.NoError(t, err)

	assert.Equal(t, llm.TierAdvanced, gotTier)
	assert.True(t, gotReq.Search)
	assert.Contains(t, prompt, `company "Acme" culture`)
	assert.Contains(t, prompt, `"Senior Go Engineer" in "Berlin"`)
	assert.Equal(t, 87.0, analysis.MatchScore)
	assert.Len(t, analysis.ResumeTips, 3)
	assert.Equal(t, types.StabilityHigh, analysis.MarketResearch.StabilityRating)
	assert.Equal(t, 115000.0, analysis.MarketResearch.SalaryInsights.Average)
	require.Len(t, analysis.InterviewQuestions, 1)
	assert.Equal(t, "Why Go?", analysis.InterviewQuestions[0].Question)
}

func TestAnalyzeJob_ClampsScore(t *testing.T) {
	text := strings.Replace(validAnalysis, `"matchScore": 87`, `"matchScore": 130`, 1)
	analysis, err := newTestAgent(t, &MockLLMClient{GenerateStructuredFunc: structured(text)}).
		AnalyzeJob(context.Background(), testProfile(), testJob())
	require.NoError(t, err)
	assert.Equal(t, 100.0, analysis.MatchScore)
}

func TestAnalyzeJob_Failures(t *testing.T) {
	tests := []struct {
		name string
		fn   func(context.Context, llm.StructuredRequest, llm.ModelTier) (*llm.Response, error)
	}{
		{name: "empty", fn: structured("")},
		{name: "empty response error", fn: func(_ context.Context, _ llm.StructuredRequest, _ llm.ModelTier) (*llm.Response, error) {
			return nil, llm.ErrEmptyResponse
		}},
		{name: "missing sections", fn: structured(`{"matchScore": 50}`)},
		{name: "bad stability rating", fn: structured(strings.Replace(validAnalysis, `"High"`, `"Rock solid"`, 1))},
		{name: "transport", fn: func(_ context.Context, _ llm.StructuredRequest, _ llm.ModelTier) (*llm.Response, error) {
			return nil, errors.New("503")
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := newTestAgent(t, &MockLLMClient{GenerateStructuredFunc: tt.fn}).
				AnalyzeJob(context.Background(), testProfile(), testJob())
			var agentErr *AgentError
			require.True(t, errors.As(err, &agentErr))
			assert.Equal(t, OpAnalyze, agentErr.Op)
		})
	}
}

func TestAnalyzeJob_SchemaErrorIsWrapped(t *testing.T) {
	_, err := newTestAgent(t, &MockLLMClient{GenerateStructuredFunc: structured(`{"matchScore": 50}`)}).
		AnalyzeJob(context.Background(), testProfile(), testJob())

	var validationErr *schemas.ValidationError
	require.True(t, errors.As(err, &validationErr))
	assert.NotEmpty(t, validationErr.Errors)
}

func TestRefineResume(t *testing.T) {
	original := []string{"Led migration", "Mentored engineers"}
	snapshot := append([]string(nil), original...)

	var gotTier llm.ModelTier
	var search bool
	var prompt string
	client := &MockLLMClient{
		GenerateStructuredFunc: func(_ context.Context, req llm.StructuredRequest, tier llm.ModelTier) (*llm.Response, error) {
			gotTier = tier
			search = req.Search
			prompt = req.Prompt
			return &llm.Response{Text: `{"refinedTips": ["Led Kubernetes migration", "Scaled team", "Drove SLOs", "Cut costs"]}`}, nil
		},
	}

	tips, err := newTestAgent(t, client).RefineResume(context.Background(), original, testJob(), "emphasize Kubernetes")
	require.NoError(t, err)

	assert.Equal(t, llm.TierLite, gotTier)
	assert.False(t, search)
	assert.Len(t, tips, 4)
	assert.Equal(t, snapshot, original)
	assert.Contains(t, prompt, `"Led migration"`)
	assert.Contains(t, prompt, "Senior Go Engineer at Acme")
	assert.Contains(t, prompt, `"emphasize Kubernetes"`)
}

func TestRefineResume_ToleratesAnyCount(t *testing.T) {
	tests := []struct {
		name string
		text string
		want int
	}{
		{name: "none", text: `{"refinedTips": []}`, want: 0},
		{name: "one", text: `{"refinedTips": ["x"]}`, want: 1},
		{name: "seven", text: `{"refinedTips": ["1","2","3","4","5","6","7"]}`, want: 7},
		{name: "empty response", text: "", want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tips, err := newTestAgent(t, &MockLLMClient{GenerateStructuredFunc: structured(tt.text)}).
				RefineResume(context.Background(), nil, testJob(), "shorter")
			require.NoError(t, err)
			assert.NotNil(t, tips)
			assert.Len(t, tips, tt.want)
		})
	}
}

func TestRefineResume_SchemaMismatch(t *testing.T) {
	_, err := newTestAgent(t, &MockLLMClient{GenerateStructuredFunc: structured(`{"tips": "x"}`)}).
		RefineResume(context.Background(), []string{"a"}, testJob(), "shorter")
	var agentErr *AgentError
	require.True(t, errors.As(err, &agentErr))
	assert.Equal(t, OpRefine, agentErr.Op)
}

func TestSendMessage(t *testing.T) {
	history := []types.ChatMessage{
		{Role: types.RoleUser, Text: "Hi"},
		{Role: types.RoleModel, Text: "Hello"},
	}
	analysis := &types.JobAnalysis{MatchScore: 70, DecisionSummary: "Go for it"}

	var got llm.ChatRequest
	client := &MockLLMClient{
		ChatFunc: func(_ context.Context, req llm.ChatRequest, _ llm.ModelTier) (*llm.Response, error) {
			got = req
			return &llm.Response{Text: "Ask for 120k."}, nil
		},
	}

	reply, err := newTestAgent(t, client).SendMessage(context.Background(), history, "How should I negotiate?", testJob(), analysis)
	require.NoError(t, err)
	assert.Equal(t, "Ask for 120k.", reply)

	assert.Equal(t, "How should I negotiate?", got.Message)
	assert.Equal(t, []llm.Message{
		{Role: llm.RoleUser, Text: "Hi"},
		{Role: llm.RoleModel, Text: "Hello"},
	}, got.History)
	assert.Contains(t, got.SystemInstruction, "Senior Go Engineer at Acme")
	assert.Contains(t, got.SystemInstruction, "Go for it")
}

func TestSendMessage_FallbackReply(t *testing.T) {
	tests := []struct {
		name string
		fn   func(context.Context, llm.ChatRequest, llm.ModelTier) (*llm.Response, error)
	}{
		{name: "blank text", fn: func(_ context.Context, _ llm.ChatRequest, _ llm.ModelTier) (*llm.Response, error) {
			return &llm.Response{Text: ""}, nil
		}},
		{name: "empty response error", fn: func(_ context.Context, _ llm.ChatRequest, _ llm.ModelTier) (*llm.Response, error) {
			return nil, fmt.Errorf("no content: %w", llm.ErrEmptyResponse)
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reply, err := newTestAgent(t, &MockLLMClient{ChatFunc: tt.fn}).
				SendMessage(context.Background(), nil, "hello", testJob(), &types.JobAnalysis{})
			require.NoError(t, err)
			assert.Equal(t, FallbackReply, reply)
		})
	}
}

func TestSendMessage_TransportFailure(t *testing.T) {
	client := &MockLLMClient{
		ChatFunc: func(_ context.Context, _ llm.ChatRequest, _ llm.ModelTier) (*llm.Response, error) {
			return nil, context.DeadlineExceeded
		},
	}
	_, err := newTestAgent(t, client).SendMessage(context.Background(), nil, "hello", testJob(), &types.JobAnalysis{})

	var agentErr *AgentError
	require.True(t, errors.As(err, &agentErr))
	assert.Equal(t, OpChat, agentErr.Op)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestClampScore(t *testing.T) {
	assert.Equal(t, 0.0, ClampScore(-1))
	assert.Equal(t, 55.5, ClampScore(55.5))
	assert.Equal(t, 100.0, ClampScore(100.01))
}

func TestAgentError_Error(t *testing.T) {
	err := &AgentError{Op: OpRefine, Message: "request failed", Cause: errors.New("timeout")}
	assert.Equal(t, "agent refine error: request failed: timeout", err.Error())

	err = &AgentError{Op: OpChat, Message: "empty"}
	assert.Equal(t, "agent chat error: empty", err.Error())
}

func TestAnalyzeMany(t *testing.T) {
	var mu sync.Mutex
	calls := 0
	client := &MockLLMClient{
		GenerateStructuredFunc: func(_ context.Context, req llm.StructuredRequest, _ llm.ModelTier) (*llm.Response, error) {
			mu.Lock()
			calls++
			mu.Unlock()
			if strings.Contains(req.Prompt, "Globex") {
				return nil, errors.New("boom")
			}
			return &llm.Response{Text: validAnalysis}, nil
		},
	}
	a := newTestAgent(t, client)

	first := testJob()
	second := testJob()
	second.ID = "job-2"
	second.Company = "Globex"

	results := AnalyzeMany(context.Background(), a, testProfile(), []types.JobListing{first, second}, 2)
	require.Len(t, results, 2)
	assert.Equal(t, 2, calls)

	assert.Equal(t, "job-1", results[0].Job.ID)
	assert.NoError(t, results[0].Err)
	assert.NotNil(t, results[0].Analysis)

	assert.Equal(t, "job-2", results[1].Job.ID)
	assert.Error(t, results[1].Err)
	assert.Nil(t, results[1].Analysis)
}
