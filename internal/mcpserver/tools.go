package mcpserver

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/jonathan/career-pilot/internal/llm"
	"github.com/jonathan/career-pilot/internal/types"
)

// SkillInput is one profile skill
type SkillInput struct {
	Name  string `json:"name" jsonschema:"Skill name"`
	Level string `json:"level,omitempty" jsonschema:"Beginner, Intermediate or Expert; defaults to Intermediate"`
}

// SetProfileInput replaces the candidate profile
type SetProfileInput struct {
	Name       string       `json:"name,omitempty" jsonschema:"Candidate name"`
	Title      string       `json:"title" jsonschema:"Target job title"`
	Skills     []SkillInput `json:"skills" jsonschema:"Skills in priority order"`
	Experience string       `json:"experience,omitempty" jsonschema:"Free-form experience summary"`
}

// ProfileOutput is the stored profile and whether discovery can start
type ProfileOutput struct {
	Profile types.Profile `json:"profile"`
	Ready   bool          `json:"ready"`
}

// DiscoverInput starts a discovery run
type DiscoverInput struct {
	Location string `json:"location,omitempty" jsonschema:"Preferred location; the configured default is used when empty"`
}

// JobsOutput is a list of leads with the sources reported for the batch
type JobsOutput struct {
	Jobs    []types.JobListing `json:"jobs"`
	Sources []llm.Citation     `json:"sources"`
}

// ListJobsInput filters the current batch
type ListJobsInput struct {
	Query    string  `json:"query,omitempty" jsonschema:"Case-insensitive match on title or company"`
	MinScore float64 `json:"min_score,omitempty" jsonschema:"Minimum match score, 0-100"`
	Location string  `json:"location,omitempty" jsonschema:"Case-insensitive location substring"`
}

// JobIDInput names a lead by ID
type JobIDInput struct {
	JobID string `json:"job_id" jsonschema:"Lead ID from discover_jobs or list_tracked"`
}

// AnalysisOutput is the selected job with its analysis
type AnalysisOutput struct {
	Job      types.JobListing  `json:"job"`
	Analysis types.JobAnalysis `json:"analysis"`
}

// RefineInput asks for rewritten resume tips
type RefineInput struct {
	Instruction string `json:"instruction" jsonschema:"How the resume tips should change"`
}

// RefineOutput carries the rewritten tips
type RefineOutput struct {
	ResumeTips []string `json:"resume_tips"`
}

// ChatInput is one user message about the selected job
type ChatInput struct {
	Message string `json:"message" jsonschema:"Question for the career coach"`
}

// ChatOutput is the coach's reply
type ChatOutput struct {
	Reply string `json:"reply"`
}

// TrackInput adds a lead to the tracker
type TrackInput struct {
	JobID  string `json:"job_id" jsonschema:"Lead ID from the current batch or the selected job"`
	Status string `json:"status,omitempty" jsonschema:"Interested, Applied, Interviewing or Rejected; defaults to Interested"`
}

// UpdateStatusInput changes a tracked job's status
type UpdateStatusInput struct {
	JobID  string `json:"job_id" jsonschema:"Tracked job ID"`
	Status string `json:"status" jsonschema:"Interested, Applied, Interviewing or Rejected"`
}

// ListTrackedInput takes no arguments
type ListTrackedInput struct{}

// TrackedView is a tracked job as reported to MCP clients
type TrackedView struct {
	ID         string   `json:"id"`
	Title      string   `json:"title"`
	Company    string   `json:"company"`
	Location   string   `json:"location"`
	URL        string   `json:"url"`
	MatchScore *float64 `json:"match_score,omitempty"`
	Status     string   `json:"status"`
	UpdatedAt  string   `json:"updated_at"`
}

// TrackedOutput lists tracked jobs in first-tracked order
type TrackedOutput struct {
	Tracked []TrackedView `json:"tracked"`
}

func trackedView(t types.TrackedJob) TrackedView {
	return TrackedView{
		ID:         t.ID,
		Title:      t.Title,
		Company:    t.Company,
		Location:   t.Location,
		URL:        t.URL,
		MatchScore: t.MatchScore,
		Status:     string(t.Status),
		UpdatedAt:  t.UpdatedAt.UTC().Format(time.RFC3339),
	}
}

func (s *Server) registerTools() {
	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "set_profile",
		Description: "Replace the candidate profile (title, skills, experience) used by discovery and analysis.",
	}, s.setProfile)

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "discover_jobs",
		Description: "Search the web for job leads matching the profile. Replaces the current batch on success.",
	}, s.discoverJobs)

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "list_jobs",
		Description: "List leads from the current batch, filtered by query, minimum score and location.",
		Annotations: &mcp.ToolAnnotations{ReadOnlyHint: true},
	}, s.listJobs)

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "analyze_job",
		Description: "Run a deep analysis of one lead: fit, resume tips, cover letter, culture, market research and interview prep.",
	}, s.analyzeJob)

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "refine_resume",
		Description: "Rewrite the resume tips of the current analysis following an instruction.",
	}, s.refineResume)

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "chat",
		Description: "Ask the career coach about the job under analysis.",
	}, s.chat)

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "track_job",
		Description: "Add a lead to the application tracker.",
	}, s.trackJob)

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "update_tracking_status",
		Description: "Change the status of a tracked job.",
	}, s.updateTrackingStatus)

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "list_tracked",
		Description: "List tracked jobs in the order they were first tracked.",
		Annotations: &mcp.ToolAnnotations{ReadOnlyHint: true},
	}, s.listTracked)
}

func (s *Server) setProfile(_ context.Context, _ *mcp.CallToolRequest, input SetProfileInput) (*mcp.CallToolResult, ProfileOutput, error) {
	profile := types.Profile{Name: input.Name, Title: input.Title, Experience: input.Experience}
	for _, skill := range input.Skills {
		level, err := parseLevel(skill.Level)
		if err != nil {
			return nil, ProfileOutput{}, err
		}
		profile.Skills = append(profile.Skills, types.Skill{Name: skill.Name, Level: level})
	}
	stored := s.controller.SetProfile(profile)
	if stored.Skills == nil {
		stored.Skills = []types.Skill{}
	}
	return nil, ProfileOutput{Profile: stored, Ready: stored.Ready()}, nil
}

func (s *Server) discoverJobs(ctx context.Context, _ *mcp.CallToolRequest, input DiscoverInput) (*mcp.CallToolResult, JobsOutput, error) {
	jobs, err := s.controller.StartDiscovery(ctx, input.Location)
	if err != nil {
		s.logger.Warn("discover_jobs failed", "error", err)
		return nil, JobsOutput{}, err
	}
	return nil, JobsOutput{Jobs: nonNil(jobs), Sources: s.controller.Sources()}, nil
}

func (s *Server) listJobs(_ context.Context, _ *mcp.CallToolRequest, input ListJobsInput) (*mcp.CallToolResult, JobsOutput, error) {
	if input.MinScore < 0 || input.MinScore > 100 {
		return nil, JobsOutput{}, fmt.Errorf("min_score must be between 0 and 100, got %v", input.MinScore)
	}
	jobs := s.controller.Jobs(types.FilterCriteria{
		Query:    input.Query,
		MinScore: input.MinScore,
		Location: input.Location,
	})
	return nil, JobsOutput{Jobs: nonNil(jobs), Sources: s.controller.Sources()}, nil
}

func (s *Server) analyzeJob(ctx context.Context, _ *mcp.CallToolRequest, input JobIDInput) (*mcp.CallToolResult, AnalysisOutput, error) {
	if input.JobID == "" {
		return nil, AnalysisOutput{}, errors.New("job_id is required")
	}
	analysis, err := s.controller.Analyze(ctx, input.JobID)
	if err != nil {
		s.logger.Warn("analyze_job failed", "job_id", input.JobID, "error", err)
		return nil, AnalysisOutput{}, err
	}
	job, _ := s.controller.SelectedJob()
	return nil, AnalysisOutput{Job: job, Analysis: *analysis}, nil
}

func (s *Server) refineResume(ctx context.Context, _ *mcp.CallToolRequest, input RefineInput) (*mcp.CallToolResult, RefineOutput, error) {
	tips, err := s.controller.Refine(ctx, input.Instruction)
	if err != nil {
		return nil, RefineOutput{}, err
	}
	return nil, RefineOutput{ResumeTips: tips}, nil
}

func (s *Server) chat(ctx context.Context, _ *mcp.CallToolRequest, input ChatInput) (*mcp.CallToolResult, ChatOutput, error) {
	reply, err := s.controller.SendChat(ctx, input.Message)
	if err != nil {
		return nil, ChatOutput{}, err
	}
	return nil, ChatOutput{Reply: reply}, nil
}

func (s *Server) trackJob(ctx context.Context, _ *mcp.CallToolRequest, input TrackInput) (*mcp.CallToolResult, TrackedView, error) {
	var status types.TrackingStatus
	if input.Status != "" {
		parsed, err := types.ParseTrackingStatus(input.Status)
		if err != nil {
			return nil, TrackedView{}, err
		}
		status = parsed
	}
	tracked, err := s.controller.Track(ctx, input.JobID, status)
	if err != nil {
		return nil, TrackedView{}, err
	}
	return nil, trackedView(tracked), nil
}

func (s *Server) updateTrackingStatus(ctx context.Context, _ *mcp.CallToolRequest, input UpdateStatusInput) (*mcp.CallToolResult, TrackedView, error) {
	status, err := types.ParseTrackingStatus(input.Status)
	if err != nil {
		return nil, TrackedView{}, err
	}
	tracked, err := s.controller.SetTrackingStatus(ctx, input.JobID, status)
	if err != nil {
		return nil, TrackedView{}, err
	}
	return nil, trackedView(tracked), nil
}

func (s *Server) listTracked(_ context.Context, _ *mcp.CallToolRequest, _ ListTrackedInput) (*mcp.CallToolResult, TrackedOutput, error) {
	tracked := s.controller.Tracked()
	out := TrackedOutput{Tracked: make([]TrackedView, 0, len(tracked))}
	for _, t := range tracked {
		out.Tracked = append(out.Tracked, trackedView(t))
	}
	return nil, out, nil
}

func parseLevel(raw string) (types.SkillLevel, error) {
	switch types.SkillLevel(raw) {
	case "":
		return "", nil
	case types.LevelBeginner, types.LevelIntermediate, types.LevelExpert:
		return types.SkillLevel(raw), nil
	default:
		return "", fmt.Errorf("invalid skill level %q (valid: Beginner, Intermediate, Expert)", raw)
	}
}

func nonNil(jobs []types.JobListing) []types.JobListing {
	if jobs == nil {
		return []types.JobListing{}
	}
	return jobs
}
