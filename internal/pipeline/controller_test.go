package pipeline

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/jonathan/career-pilot/internal/activity"
	"github.com/jonathan/career-pilot/internal/agent"
	"github.com/jonathan/career-pilot/internal/agent/agenttest"
	"github.com/jonathan/career-pilot/internal/llm"
	"github.com/jonathan/career-pilot/internal/tracker"
	"github.com/jonathan/career-pilot/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func twoJobs() []types.JobListing {
	return []types.JobListing{
		{ID: "j1", Title: "Senior Go Engineer", Company: "Acme", Location: "Remote", MatchScore: agenttest.Score(90)},
		{ID: "j2", Title: "Frontend Engineer", Company: "Globex", Location: "Berlin", MatchScore: agenttest.Score(40)},
	}
}

func discovering(batch []types.JobListing) func(context.Context, types.Profile, string) (*agent.DiscoveryResult, error) {
	return func(_ context.Context, _ types.Profile, _ string) (*agent.DiscoveryResult, error) {
		return &agent.DiscoveryResult{Jobs: batch}, nil
	}
}

func readyController(t *testing.T, a agent.Agent, opts ...Option) *Controller {
	t.Helper()
	c := NewController(a, opts...)
	c.SetTitle("Backend Engineer")
	_, added := c.AddSkill("Go", "")
	require.True(t, added)
	return c
}

func errorLines(c *Controller) []activity.Line {
	return c.Activity().Errors()
}

func TestNewController_InitialState(t *testing.T) {
	c := NewController(&agenttest.MockAgent{})
	state := c.State()

	assert.Equal(t, StepProfile, state.Step)
	assert.False(t, state.ProfileReady)
	assert.False(t, state.HasAnalysis)
	assert.Empty(t, state.SelectedJobID)

	lines := c.Activity().Lines()
	require.Len(t, lines, 1)
	assert.Equal(t, activity.InitialLine, lines[0].Text)
}

func TestStartDiscovery_RequiresCompleteProfile(t *testing.T) {
	called := false
	a := &agenttest.MockAgent{DiscoverJobsFunc: func(_ context.Context, _ types.Profile, _ string) (*agent.DiscoveryResult, error) {
		called = true
		return nil, nil
	}}

	tests := []struct {
		name  string
		setup func(c *Controller)
	}{
		{name: "empty profile", setup: func(_ *Controller) {}},
		{name: "title only", setup: func(c *Controller) { c.SetTitle("Engineer") }},
		{name: "skills only", setup: func(c *Controller) { c.AddSkill("Go", "") }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewController(a)
			tt.setup(c)
			_, err := c.StartDiscovery(context.Background(), "")
			assert.ErrorIs(t, err, ErrProfileIncomplete)
			assert.Equal(t, StepProfile, c.Step())
		})
	}
	assert.False(t, called)
}

func TestStartDiscovery_Success(t *testing.T) {
	var gotProfile types.Profile
	var gotLocation string
	a := &agenttest.MockAgent{DiscoverJobsFunc: func(_ context.Context, p types.Profile, loc string) (*agent.DiscoveryResult, error) {
		gotProfile = p
		gotLocation = loc
		return &agent.DiscoveryResult{Jobs: twoJobs(), Sources: []llm.Citation{{URI: "https://src"}}}, nil
	}}
	c := readyController(t, a, WithDefaultLocation("Lisbon"))

	batch, err := c.StartDiscovery(context.Background(), "")
	require.NoError(t, err)

	assert.Len(t, batch, 2)
	assert.Equal(t, StepSearch, c.Step())
	assert.Equal(t, "Backend Engineer", gotProfile.Title)
	assert.Equal(t, "Lisbon", gotLocation)
	assert.Equal(t, []llm.Citation{{URI: "https://src"}}, c.Sources())
	assert.False(t, c.State().IsDiscovering)

	lines := c.Activity().Lines()
	assert.Equal(t, `Agent "Stagehand" scouting...`, lines[len(lines)-2].Text)
	assert.Equal(t, "Discovery complete. Found 2 leads.", lines[len(lines)-1].Text)
}

func TestStartDiscovery_ReplacesBatchWholesale(t *testing.T) {
	batches := [][]types.JobListing{twoJobs(), {{ID: "j9", Title: "SRE", Company: "Initech"}}}
	call := 0
	a := &agenttest.MockAgent{DiscoverJobsFunc: func(_ context.Context, _ types.Profile, _ string) (*agent.DiscoveryResult, error) {
		b := batches[call]
		call++
		return &agent.DiscoveryResult{Jobs: b}, nil
	}}
	c := readyController(t, a)

	_, err := c.StartDiscovery(context.Background(), "Remote")
	require.NoError(t, err)
	_, err = c.StartDiscovery(context.Background(), "Remote")
	require.NoError(t, err)

	visible := c.Jobs(types.FilterCriteria{})
	require.Len(t, visible, 1)
	assert.Equal(t, "j9", visible[0].ID)
}

func TestStartDiscovery_FailureKeepsPreviousBatch(t *testing.T) {
	fail := false
	a := &agenttest.MockAgent{DiscoverJobsFunc: func(_ context.Context, _ types.Profile, _ string) (*agent.DiscoveryResult, error) {
		if fail {
			return nil, &agent.AgentError{Op: agent.OpDiscover, Message: "request failed"}
		}
		return &agent.DiscoveryResult{Jobs: twoJobs()}, nil
	}}
	c := readyController(t, a)

	_, err := c.StartDiscovery(context.Background(), "")
	require.NoError(t, err)
	require.NoError(t, c.GoTo(StepProfile))
	before := c.Jobs(types.FilterCriteria{})
	errsBefore := len(errorLines(c))

	fail = true
	_, err = c.StartDiscovery(context.Background(), "")

	var agentErr *agent.AgentError
	require.True(t, errors.As(err, &agentErr))
	assert.Equal(t, StepSearch, c.Step())
	assert.Equal(t, before, c.Jobs(types.FilterCriteria{}))
	assert.False(t, c.State().IsDiscovering)

	errs := errorLines(c)
	require.Len(t, errs, errsBefore+1)
	assert.Equal(t, "ERR: Scouting failed.", errs[len(errs)-1].Text)
}

func TestStartDiscovery_FirstRunFailureLeavesEmptyList(t *testing.T) {
	a := &agenttest.MockAgent{DiscoverJobsFunc: func(_ context.Context, _ types.Profile, _ string) (*agent.DiscoveryResult, error) {
		return nil, errors.New("network down")
	}}
	c := readyController(t, a)

	_, err := c.StartDiscovery(context.Background(), "")
	require.Error(t, err)
	assert.Equal(t, StepSearch, c.Step())
	assert.Empty(t, c.Jobs(types.FilterCriteria{}))
	assert.Len(t, errorLines(c), 1)
}

func TestScenario_DiscoverThenFilterByScore(t *testing.T) {
	c := NewController(&agenttest.MockAgent{DiscoverJobsFunc: discovering(twoJobs())})
	c.SetProfile(types.Profile{Title: "Backend Engineer", Skills: []types.Skill{{Name: "Go"}}})

	_, err := c.StartDiscovery(context.Background(), "")
	require.NoError(t, err)

	visible := c.Jobs(types.FilterCriteria{MinScore: 50})
	require.Len(t, visible, 1)
	assert.Equal(t, 90.0, visible[0].Score())
}

func TestAnalyze_Success(t *testing.T) {
	var analyzed types.JobListing
	a := &agenttest.MockAgent{
		DiscoverJobsFunc: discovering(twoJobs()),
		AnalyzeJobFunc: func(_ context.Context, _ types.Profile, job types.JobListing) (*types.JobAnalysis, error) {
			analyzed = job
			return &types.JobAnalysis{MatchScore: 87.5, ResumeTips: []string{"tip"}}, nil
		},
	}
	c := readyController(t, a)
	_, err := c.StartDiscovery(context.Background(), "")
	require.NoError(t, err)

	result, err := c.Analyze(context.Background(), "j1")
	require.NoError(t, err)

	assert.Equal(t, "Acme", analyzed.Company)
	assert.Equal(t, 87.5, result.MatchScore)
	state := c.State()
	assert.Equal(t, StepAnalysis, state.Step)
	assert.Equal(t, "j1", state.SelectedJobID)
	assert.True(t, state.HasAnalysis)

	lines := c.Activity().Lines()
	assert.Equal(t, "Initiating deep scan & market research for Acme...", lines[len(lines)-2].Text)
	assert.Equal(t, "Analysis complete. Alignment: 87.5%", lines[len(lines)-1].Text)
}

func TestAnalyze_UnknownJob(t *testing.T) {
	c := readyController(t, &agenttest.MockAgent{})
	_, err := c.Analyze(context.Background(), "nope")
	assert.ErrorIs(t, err, ErrJobNotFound)
	assert.Equal(t, StepProfile, c.Step())
}

func TestAnalyze_FailureClearsPriorAnalysis(t *testing.T) {
	fail := false
	a := &agenttest.MockAgent{
		DiscoverJobsFunc: discovering(twoJobs()),
		AnalyzeJobFunc: func(_ context.Context, _ types.Profile, _ types.JobListing) (*types.JobAnalysis, error) {
			if fail {
				return nil, &agent.AgentError{Op: agent.OpAnalyze, Message: "empty response"}
			}
			return &types.JobAnalysis{MatchScore: 60}, nil
		},
	}
	c := readyController(t, a)
	_, err := c.StartDiscovery(context.Background(), "")
	require.NoError(t, err)
	_, err = c.Analyze(context.Background(), "j1")
	require.NoError(t, err)

	fail = true
	_, err = c.Analyze(context.Background(), "j2")
	require.Error(t, err)

	_, ok := c.Analysis()
	assert.False(t, ok)
	state := c.State()
	assert.Equal(t, StepAnalysis, state.Step)
	assert.Equal(t, "j2", state.SelectedJobID)
	assert.False(t, state.IsAnalyzing)

	errs := errorLines(c)
	require.Len(t, errs, 1)
	assert.Equal(t, "ERR: Deep scan failed.", errs[0].Text)
}

func TestAnalyze_NewSelectionClearsChat(t *testing.T) {
	c := readyController(t, &agenttest.MockAgent{DiscoverJobsFunc: discovering(twoJobs())})
	_, err := c.StartDiscovery(context.Background(), "")
	require.NoError(t, err)
	_, err = c.Analyze(context.Background(), "j1")
	require.NoError(t, err)

	_, err = c.SendChat(context.Background(), "How should I negotiate?")
	require.NoError(t, err)
	require.Len(t, c.ChatMessages(), 2)

	_, err = c.Analyze(context.Background(), "j2")
	require.NoError(t, err)
	assert.Empty(t, c.ChatMessages())
}

func TestRefine_Guards(t *testing.T) {
	called := false
	a := &agenttest.MockAgent{
		DiscoverJobsFunc: discovering(twoJobs()),
		RefineResumeFunc: func(_ context.Context, _ []string, _ types.JobListing, _ string) ([]string, error) {
			called = true
			return nil, nil
		},
	}
	c := readyController(t, a)

	_, err := c.Refine(context.Background(), "shorter")
	assert.ErrorIs(t, err, ErrNoAnalysis)

	_, err = c.StartDiscovery(context.Background(), "")
	require.NoError(t, err)
	_, err = c.Analyze(context.Background(), "j1")
	require.NoError(t, err)

	_, err = c.Refine(context.Background(), "  ")
	assert.ErrorIs(t, err, ErrEmptyInstruction)
	assert.False(t, called)
}

func TestRefine_DoesNotMutateOriginalTips(t *testing.T) {
	var received []string
	a := &agenttest.MockAgent{
		DiscoverJobsFunc: discovering(twoJobs()),
		AnalyzeJobFunc: func(_ context.Context, _ types.Profile, _ types.JobListing) (*types.JobAnalysis, error) {
			return &types.JobAnalysis{MatchScore: 80, ResumeTips: []string{"a", "b"}}, nil
		},
		RefineResumeFunc: func(_ context.Context, tips []string, _ types.JobListing, _ string) ([]string, error) {
			received = tips
			return []string{"c"}, nil
		},
	}
	c := readyController(t, a)
	_, err := c.StartDiscovery(context.Background(), "")
	require.NoError(t, err)
	_, err = c.Analyze(context.Background(), "j1")
	require.NoError(t, err)

	refined, err := c.Refine(context.Background(), "emphasize Go")
	require.NoError(t, err)
	assert.Equal(t, []string{"c"}, refined)

	analysis, ok := c.Analysis()
	require.True(t, ok)
	assert.Equal(t, []string{"c"}, analysis.ResumeTips)
	assert.Equal(t, []string{"a", "b"}, received)
	assert.Equal(t, 80.0, analysis.MatchScore, "only resume tips change")

	lines := c.Activity().Lines()
	assert.Equal(t, `Refining resume based on: "emphasize Go"`, lines[len(lines)-2].Text)
	assert.Equal(t, "Resume optimization updated.", lines[len(lines)-1].Text)
}

func TestRefine_FailureKeepsTips(t *testing.T) {
	a := &agenttest.MockAgent{
		DiscoverJobsFunc: discovering(twoJobs()),
		RefineResumeFunc: func(_ context.Context, _ []string, _ types.JobListing, _ string) ([]string, error) {
			return nil, &agent.AgentError{Op: agent.OpRefine, Message: "request failed"}
		},
	}
	c := readyController(t, a)
	_, err := c.StartDiscovery(context.Background(), "")
	require.NoError(t, err)
	_, err = c.Analyze(context.Background(), "j1")
	require.NoError(t, err)

	_, err = c.Refine(context.Background(), "shorter")
	require.Error(t, err)

	analysis, _ := c.Analysis()
	assert.Equal(t, agenttest.Analysis().ResumeTips, analysis.ResumeTips)
	assert.False(t, c.State().IsRefining)
	errs := errorLines(c)
	require.Len(t, errs, 1)
	assert.Equal(t, "ERR: Refinement failed.", errs[0].Text)
}

func TestSendChat_RejectsBlankText(t *testing.T) {
	called := false
	a := &agenttest.MockAgent{
		DiscoverJobsFunc: discovering(twoJobs()),
		SendMessageFunc: func(_ context.Context, _ []types.ChatMessage, _ string, _ types.JobListing, _ *types.JobAnalysis) (string, error) {
			called = true
			return "", nil
		},
	}
	c := readyController(t, a)
	_, err := c.StartDiscovery(context.Background(), "")
	require.NoError(t, err)
	_, err = c.Analyze(context.Background(), "j1")
	require.NoError(t, err)

	_, err = c.SendChat(context.Background(), "   ")
	assert.ErrorIs(t, err, ErrEmptyMessage)
	assert.Empty(t, c.ChatMessages())
	assert.False(t, called)
}

func TestSendChat_RequiresAnalysis(t *testing.T) {
	c := readyController(t, &agenttest.MockAgent{})
	_, err := c.SendChat(context.Background(), "hello")
	assert.ErrorIs(t, err, ErrNoAnalysis)
	assert.Empty(t, c.ChatMessages())
}

func TestSendChat_HistoryExcludesCurrentMessage(t *testing.T) {
	var histories [][]types.ChatMessage
	var messages []string
	a := &agenttest.MockAgent{
		DiscoverJobsFunc: discovering(twoJobs()),
		SendMessageFunc: func(_ context.Context, history []types.ChatMessage, message string, job types.JobListing, analysis *types.JobAnalysis) (string, error) {
			histories = append(histories, history)
			messages = append(messages, message)
			assert.Equal(t, "j1", job.ID)
			assert.NotNil(t, analysis)
			return "answer to " + message, nil
		},
	}
	c := readyController(t, a)
	_, err := c.StartDiscovery(context.Background(), "")
	require.NoError(t, err)
	_, err = c.Analyze(context.Background(), "j1")
	require.NoError(t, err)

	_, err = c.SendChat(context.Background(), "first")
	require.NoError(t, err)
	reply, err := c.SendChat(context.Background(), "second")
	require.NoError(t, err)
	assert.Equal(t, "answer to second", reply)

	assert.Empty(t, histories[0])
	assert.Equal(t, []types.ChatMessage{
		{Role: types.RoleUser, Text: "first"},
		{Role: types.RoleModel, Text: "answer to first"},
	}, histories[1])
	assert.Equal(t, []string{"first", "second"}, messages)
	assert.Len(t, c.ChatMessages(), 4)
}

func TestSendChat_FailureLeavesUserMessage(t *testing.T) {
	a := &agenttest.MockAgent{
		DiscoverJobsFunc: discovering(twoJobs()),
		SendMessageFunc: func(_ context.Context, _ []types.ChatMessage, _ string, _ types.JobListing, _ *types.JobAnalysis) (string, error) {
			return "", &agent.AgentError{Op: agent.OpChat, Message: "request failed"}
		},
	}
	c := readyController(t, a)
	_, err := c.StartDiscovery(context.Background(), "")
	require.NoError(t, err)
	_, err = c.Analyze(context.Background(), "j1")
	require.NoError(t, err)

	_, err = c.SendChat(context.Background(), "Company outlook?")
	require.Error(t, err)

	assert.Equal(t, []types.ChatMessage{{Role: types.RoleUser, Text: "Company outlook?"}}, c.ChatMessages())
	assert.False(t, c.State().IsChatting)
	errs := errorLines(c)
	require.Len(t, errs, 1)
	assert.Equal(t, "ERR: Chat agent unavailable.", errs[0].Text)
}

// blockingAgent parks calls until released so tests can interleave operations
type blockingAgent struct {
	agenttest.MockAgent
	started chan string
	release chan struct{}
}

func newBlockingAgent() *blockingAgent {
	return &blockingAgent{started: make(chan string, 4), release: make(chan struct{})}
}

func (b *blockingAgent) wait(t *testing.T, op string) {
	t.Helper()
	select {
	case got := <-b.started:
		require.Equal(t, op, got)
	case <-time.After(2 * time.Second):
		t.Fatalf("timed out waiting for %s to start", op)
	}
}

func TestConcurrency_SameCategoryIsNoOp(t *testing.T) {
	b := newBlockingAgent()
	calls := 0
	b.DiscoverJobsFunc = func(_ context.Context, _ types.Profile, _ string) (*agent.DiscoveryResult, error) {
		calls++
		b.started <- "discover"
		<-b.release
		return &agent.DiscoveryResult{Jobs: twoJobs()}, nil
	}
	c := readyController(t, b)

	done := make(chan error, 1)
	go func() {
		_, err := c.StartDiscovery(context.Background(), "")
		done <- err
	}()
	b.wait(t, "discover")

	assert.True(t, c.State().IsDiscovering)
	_, err := c.StartDiscovery(context.Background(), "")
	assert.ErrorIs(t, err, ErrBusy)

	close(b.release)
	require.NoError(t, <-done)
	assert.Equal(t, 1, calls)
	assert.False(t, c.State().IsDiscovering)
}

func TestConcurrency_StaleRefinementIsDropped(t *testing.T) {
	b := newBlockingAgent()
	b.DiscoverJobsFunc = discovering(twoJobs())
	b.AnalyzeJobFunc = func(_ context.Context, _ types.Profile, job types.JobListing) (*types.JobAnalysis, error) {
		return &types.JobAnalysis{MatchScore: 50, ResumeTips: []string{"tips for " + job.ID}}, nil
	}
	b.RefineResumeFunc = func(_ context.Context, _ []string, _ types.JobListing, _ string) ([]string, error) {
		b.started <- "refine"
		<-b.release
		return []string{"refined for j1"}, nil
	}
	c := readyController(t, b)
	_, err := c.StartDiscovery(context.Background(), "")
	require.NoError(t, err)
	_, err = c.Analyze(context.Background(), "j1")
	require.NoError(t, err)

	done := make(chan error, 1)
	go func() {
		_, err := c.Refine(context.Background(), "shorter")
		done <- err
	}()
	b.wait(t, "refine")

	_, err = c.Analyze(context.Background(), "j2")
	require.NoError(t, err)

	close(b.release)
	assert.ErrorIs(t, <-done, ErrStaleResult)

	analysis, ok := c.Analysis()
	require.True(t, ok)
	assert.Equal(t, []string{"tips for j2"}, analysis.ResumeTips)
	assert.False(t, c.State().IsRefining)
}

func TestConcurrency_StaleChatReplyIsDropped(t *testing.T) {
	b := newBlockingAgent()
	b.DiscoverJobsFunc = discovering(twoJobs())
	b.SendMessageFunc = func(_ context.Context, _ []types.ChatMessage, _ string, _ types.JobListing, _ *types.JobAnalysis) (string, error) {
		b.started <- "chat"
		<-b.release
		return "about j1", nil
	}
	c := readyController(t, b)
	_, err := c.StartDiscovery(context.Background(), "")
	require.NoError(t, err)
	_, err = c.Analyze(context.Background(), "j1")
	require.NoError(t, err)

	done := make(chan error, 1)
	go func() {
		_, err := c.SendChat(context.Background(), "Interview me for this")
		done <- err
	}()
	b.wait(t, "chat")

	_, err = c.Analyze(context.Background(), "j2")
	require.NoError(t, err)

	close(b.release)
	assert.ErrorIs(t, <-done, ErrStaleResult)
	assert.Empty(t, c.ChatMessages())
}

func TestConcurrency_CategoriesAreIndependent(t *testing.T) {
	b := newBlockingAgent()
	b.DiscoverJobsFunc = discovering(twoJobs())
	b.SendMessageFunc = func(_ context.Context, _ []types.ChatMessage, _ string, _ types.JobListing, _ *types.JobAnalysis) (string, error) {
		b.started <- "chat"
		<-b.release
		return "ok", nil
	}
	c := readyController(t, b)
	_, err := c.StartDiscovery(context.Background(), "")
	require.NoError(t, err)
	_, err = c.Analyze(context.Background(), "j1")
	require.NoError(t, err)

	done := make(chan error, 1)
	go func() {
		_, err := c.SendChat(context.Background(), "hi")
		done <- err
	}()
	b.wait(t, "chat")

	refined, err := c.Refine(context.Background(), "shorter")
	require.NoError(t, err)
	assert.Len(t, refined, 1)
	assert.Equal(t, 1, b.Calls(agent.OpRefine))

	_, err = c.SendChat(context.Background(), "again")
	assert.ErrorIs(t, err, ErrBusy)

	close(b.release)
	require.NoError(t, <-done)
	assert.Len(t, c.ChatMessages(), 2)
}

func TestConcurrency_ProfileEditKeepsInFlightResult(t *testing.T) {
	b := newBlockingAgent()
	b.DiscoverJobsFunc = discovering(twoJobs())
	b.RefineResumeFunc = func(_ context.Context, _ []string, _ types.JobListing, _ string) ([]string, error) {
		b.started <- "refine"
		<-b.release
		return []string{"Highlight Rust services"}, nil
	}
	c := readyController(t, b)
	_, err := c.StartDiscovery(context.Background(), "")
	require.NoError(t, err)
	_, err = c.Analyze(context.Background(), "j1")
	require.NoError(t, err)

	done := make(chan error, 1)
	go func() {
		_, err := c.Refine(context.Background(), "mention Rust")
		done <- err
	}()
	b.wait(t, "refine")

	c.AddSkill("Rust", types.LevelBeginner)
	c.SetTitle("Staff Engineer")

	close(b.release)
	require.NoError(t, <-done)

	analysis, ok := c.Analysis()
	require.True(t, ok)
	assert.Equal(t, []string{"Highlight Rust services"}, analysis.ResumeTips)
	assert.Equal(t, "j1", c.State().SelectedJobID)
}

func TestTrack_Upserts(t *testing.T) {
	c := readyController(t, &agenttest.MockAgent{DiscoverJobsFunc: discovering(twoJobs())})
	_, err := c.StartDiscovery(context.Background(), "")
	require.NoError(t, err)

	_, err = c.Track(context.Background(), "j1", types.StatusApplied)
	require.NoError(t, err)
	_, err = c.Track(context.Background(), "j1", types.StatusInterviewing)
	require.NoError(t, err)

	tracked := c.Tracked()
	require.Len(t, tracked, 1)
	assert.Equal(t, types.StatusInterviewing, tracked[0].Status)

	lines := c.Activity().Lines()
	assert.Equal(t, "Acme status: Applied.", lines[len(lines)-2].Text)
	assert.Equal(t, "Acme status: Interviewing.", lines[len(lines)-1].Text)
}

func TestTrack_DefaultStatusAndSelectedFallback(t *testing.T) {
	c := readyController(t, &agenttest.MockAgent{DiscoverJobsFunc: discovering(twoJobs())})
	_, err := c.StartDiscovery(context.Background(), "")
	require.NoError(t, err)
	_, err = c.Analyze(context.Background(), "j2")
	require.NoError(t, err)

	c.jobs.Replace(nil)

	tracked, err := c.Track(context.Background(), "j2", "")
	require.NoError(t, err)
	assert.Equal(t, types.StatusInterested, tracked.Status)
	assert.Equal(t, "Globex", tracked.Company)

	_, err = c.Track(context.Background(), "missing", "")
	assert.ErrorIs(t, err, ErrJobNotFound)
}

func TestSetTrackingStatus(t *testing.T) {
	c := readyController(t, &agenttest.MockAgent{DiscoverJobsFunc: discovering(twoJobs())})
	_, err := c.StartDiscovery(context.Background(), "")
	require.NoError(t, err)
	_, err = c.Track(context.Background(), "j1", "")
	require.NoError(t, err)

	updated, err := c.SetTrackingStatus(context.Background(), "j1", types.StatusRejected)
	require.NoError(t, err)
	assert.Equal(t, types.StatusRejected, updated.Status)

	_, err = c.SetTrackingStatus(context.Background(), "ghost", types.StatusApplied)
	assert.ErrorIs(t, err, tracker.ErrNotFound)
	assert.Len(t, c.Tracked(), 1)
}

func TestTrackedCopyDivergesFromDiscovery(t *testing.T) {
	batches := [][]types.JobListing{
		twoJobs(),
		{{ID: "j1", Title: "Renamed", Company: "Acme", MatchScore: agenttest.Score(10)}},
	}
	call := 0
	c := readyController(t, &agenttest.MockAgent{DiscoverJobsFunc: func(_ context.Context, _ types.Profile, _ string) (*agent.DiscoveryResult, error) {
		b := batches[call]
		call++
		return &agent.DiscoveryResult{Jobs: b}, nil
	}})
	_, err := c.StartDiscovery(context.Background(), "")
	require.NoError(t, err)
	_, err = c.Track(context.Background(), "j1", "")
	require.NoError(t, err)
	_, err = c.StartDiscovery(context.Background(), "")
	require.NoError(t, err)

	tracked := c.Tracked()
	require.Len(t, tracked, 1)
	assert.Equal(t, "Senior Go Engineer", tracked[0].Title)
}

func TestViewTracked(t *testing.T) {
	var analyzed types.JobListing
	a := &agenttest.MockAgent{
		DiscoverJobsFunc: discovering(twoJobs()),
		AnalyzeJobFunc: func(_ context.Context, _ types.Profile, job types.JobListing) (*types.JobAnalysis, error) {
			analyzed = job
			return &types.JobAnalysis{MatchScore: 70}, nil
		},
	}
	c := readyController(t, a)
	_, err := c.StartDiscovery(context.Background(), "")
	require.NoError(t, err)
	_, err = c.Track(context.Background(), "j2", types.StatusApplied)
	require.NoError(t, err)
	require.NoError(t, c.GoTo(StepTracker))

	_, err = c.ViewTracked(context.Background(), "j2")
	require.NoError(t, err)
	assert.Equal(t, "j2", analyzed.ID)
	require.NotNil(t, analyzed.TrackingStatus)
	assert.Equal(t, types.StatusApplied, *analyzed.TrackingStatus)
	assert.Equal(t, StepAnalysis, c.Step())

	_, err = c.ViewTracked(context.Background(), "ghost")
	assert.ErrorIs(t, err, tracker.ErrNotFound)
}

func TestGoTo(t *testing.T) {
	c := readyController(t, &agenttest.MockAgent{DiscoverJobsFunc: discovering(twoJobs())})

	require.NoError(t, c.GoTo(StepTracker))
	require.NoError(t, c.GoTo(StepSearch))
	require.NoError(t, c.GoTo(StepProfile))

	err := c.GoTo(StepAnalysis)
	assert.ErrorIs(t, err, ErrInvalidTransition)

	err = c.GoTo(Step("Nowhere"))
	assert.ErrorIs(t, err, ErrInvalidTransition)

	_, err = c.StartDiscovery(context.Background(), "")
	require.NoError(t, err)
	_, err = c.Analyze(context.Background(), "j1")
	require.NoError(t, err)

	require.NoError(t, c.GoTo(StepSearch))
	assert.Empty(t, c.State().SelectedJobID, "selection is only reported on the Analysis step")
	require.NoError(t, c.GoTo(StepAnalysis))
	assert.Equal(t, "j1", c.State().SelectedJobID)
}

func TestProfileOperations(t *testing.T) {
	c := NewController(&agenttest.MockAgent{})

	p := c.SetTitle("Staff Engineer")
	assert.Equal(t, "Staff Engineer", p.Title)

	p, added := c.AddSkill("  Rust ", "")
	assert.True(t, added)
	assert.Equal(t, []types.Skill{{Name: "Rust", Level: types.LevelIntermediate}}, p.Skills)

	_, added = c.AddSkill("   ", types.LevelExpert)
	assert.False(t, added)

	c.AddSkill("Go", types.LevelExpert)
	p, removed := c.RemoveSkill("Rust")
	assert.Equal(t, 1, removed)
	assert.Equal(t, []string{"Go"}, p.SkillNames())
	assert.True(t, c.State().ProfileReady)

	p = c.SetProfile(types.Profile{Name: " Ada ", Title: "CTO", Skills: []types.Skill{{Name: "Leadership"}, {Name: " "}}})
	assert.Equal(t, "Ada", p.Name)
	assert.Equal(t, []types.Skill{{Name: "Leadership", Level: types.LevelIntermediate}}, p.Skills)

	snapshot := c.Profile()
	snapshot.Skills[0].Name = "mutated"
	assert.Equal(t, "Leadership", c.Profile().Skills[0].Name)
}

func TestLoadTracked(t *testing.T) {
	store := tracker.NewStore()
	c := NewController(&agenttest.MockAgent{}, WithTracker(store))
	_, err := c.TrackJob(context.Background(), types.JobListing{ID: "x", Company: "Initech"}, "")
	require.NoError(t, err)

	require.NoError(t, c.LoadTracked(context.Background()))
	assert.Len(t, c.Tracked(), 1)
	assert.True(t, strings.HasSuffix(c.Activity().Lines()[1].Text, "status: Interested."))
	assert.NoError(t, c.Close())
}

func TestParseStepAndTransitions(t *testing.T) {
	step, err := ParseStep("tracker")
	require.NoError(t, err)
	assert.Equal(t, StepTracker, step)

	_, err = ParseStep("settings")
	assert.Error(t, err)

	assert.True(t, CanTransition(StepProfile, StepSearch))
	assert.True(t, CanTransition(StepAnalysis, StepSearch))
	assert.True(t, CanTransition(StepTracker, StepAnalysis))
	assert.False(t, CanTransition(StepProfile, StepAnalysis))
	assert.False(t, CanTransition(Step("x"), StepSearch))
}
