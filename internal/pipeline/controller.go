package pipeline

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/jonathan/career-pilot/internal/activity"
	"github.com/jonathan/career-pilot/internal/agent"
	"github.com/jonathan/career-pilot/internal/chat"
	"github.com/jonathan/career-pilot/internal/jobs"
	"github.com/jonathan/career-pilot/internal/llm"
	"github.com/jonathan/career-pilot/internal/logging"
	"github.com/jonathan/career-pilot/internal/tracker"
	"github.com/jonathan/career-pilot/internal/types"
)

// Category groups operations sharing one in-flight flag
type Category int

const (
	CategoryDiscover Category = iota
	CategoryAnalyze
	CategoryRefine
	CategoryChat
	numCategories
)

func (c Category) String() string {
	switch c {
	case CategoryDiscover:
		return "discover"
	case CategoryAnalyze:
		return "analyze"
	case CategoryRefine:
		return "refine"
	case CategoryChat:
		return "chat"
	default:
		return "unknown"
	}
}

// State is a point-in-time snapshot of the workflow
type State struct {
	Step          Step   `json:"step"`
	IsDiscovering bool   `json:"isDiscovering"`
	IsAnalyzing   bool   `json:"isAnalyzing"`
	IsRefining    bool   `json:"isRefining"`
	IsChatting    bool   `json:"isChatting"`
	SelectedJobID string `json:"selectedJobId,omitempty"`
	ProfileReady  bool   `json:"profileReady"`
	HasAnalysis   bool   `json:"hasAnalysis"`
	JobCount      int    `json:"jobCount"`
	TrackedCount  int    `json:"trackedCount"`
	ChatCount     int    `json:"chatCount"`
}

// Controller owns the workflow state and sequences calls to the agent.
// The lock is never held across an agent call; results are applied only if
// their category generation and selection context are unchanged.
type Controller struct {
	mu sync.Mutex

	agent   agent.Agent
	log     *activity.Log
	logger  *logging.Logger
	jobs    *jobs.Collection
	tracker *tracker.Store
	chat    *chat.Session

	step     Step
	profile  types.Profile
	sources  []llm.Citation
	selected *types.JobListing
	analysis *types.JobAnalysis

	busy [numCategories]bool
	gens [numCategories]uint64
	// contextGen changes whenever the selected job/analysis context is replaced
	contextGen uint64

	defaultLocation string
}

// Option configures a Controller
type Option func(*Controller)

// WithActivityLog sets the activity log the controller writes to
func WithActivityLog(log *activity.Log) Option {
	return func(c *Controller) {
		if log != nil {
			c.log = log
		}
	}
}

// WithLogger sets the structured logger
func WithLogger(logger *logging.Logger) Option {
	return func(c *Controller) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithTracker sets the tracking store
func WithTracker(store *tracker.Store) Option {
	return func(c *Controller) {
		if store != nil {
			c.tracker = store
		}
	}
}

// WithDefaultLocation sets the location used when discovery is started without one
func WithDefaultLocation(location string) Option {
	return func(c *Controller) {
		c.defaultLocation = strings.TrimSpace(location)
	}
}

// WithProfile seeds the initial profile
func WithProfile(profile types.Profile) Option {
	return func(c *Controller) {
		c.profile = profile.Clone()
	}
}

// NewController creates a controller in the Profile step
func NewController(a agent.Agent, opts ...Option) *Controller {
	c := &Controller{
		agent: a,
		step:  StepProfile,
		jobs:  jobs.NewCollection(),
		chat:  chat.NewSession(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.logger == nil {
		c.logger = logging.NewNop()
	}
	if c.log == nil {
		c.log = activity.New(activity.WithLogger(c.logger))
	}
	if c.tracker == nil {
		c.tracker = tracker.NewStore()
	}
	c.logger = c.logger.With("component", "pipeline")
	return c
}

// Activity returns the activity log
func (c *Controller) Activity() *activity.Log {
	return c.log
}

// State returns a snapshot of the workflow
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()

	s := State{
		Step:          c.step,
		IsDiscovering: c.busy[CategoryDiscover],
		IsAnalyzing:   c.busy[CategoryAnalyze],
		IsRefining:    c.busy[CategoryRefine],
		IsChatting:    c.busy[CategoryChat],
		ProfileReady:  c.profile.Ready(),
		HasAnalysis:   c.analysis != nil,
		JobCount:      c.jobs.Len(),
		TrackedCount:  c.tracker.Len(),
		ChatCount:     c.chat.Len(),
	}
	if c.step == StepAnalysis && c.selected != nil {
		s.SelectedJobID = c.selected.ID
	}
	return s
}

// Step returns the current step
func (c *Controller) Step() Step {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.step
}

// GoTo navigates directly to a step. Analysis is only reachable while a job is selected.
func (c *Controller) GoTo(to Step) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	def, ok := StepRegistry[to]
	if !ok {
		return &TransitionError{From: c.step, To: to, Reason: "unknown step"}
	}
	if !def.Navigable && !CanTransition(c.step, to) && c.step != to {
		return &TransitionError{From: c.step, To: to, Reason: "not reachable from here"}
	}
	if to == StepAnalysis && c.selected == nil {
		return &TransitionError{From: c.step, To: to, Reason: "no job selected"}
	}
	c.step = to
	return nil
}

// begin marks a category in flight and returns its new generation.
// Must be called with the lock held.
func (c *Controller) begin(cat Category) (uint64, error) {
	if c.busy[cat] {
		c.logger.Debug("request dropped, category busy", "category", cat.String())
		return 0, ErrBusy
	}
	c.busy[cat] = true
	c.gens[cat]++
	return c.gens[cat], nil
}

// end clears the in-flight flag. Must be called with the lock held.
func (c *Controller) end(cat Category) {
	c.busy[cat] = false
}

// current reports whether a completing call still belongs to the live context.
// Must be called with the lock held.
func (c *Controller) current(cat Category, gen, ctxGen uint64) bool {
	return c.gens[cat] == gen && c.contextGen == ctxGen
}

// StartDiscovery moves to Search and asks the agent for a new batch of leads.
// On success the batch replaces the previous one; on failure the previous batch stays.
func (c *Controller) StartDiscovery(ctx context.Context, location string) ([]types.JobListing, error) {
	c.mu.Lock()
	if !c.profile.Ready() {
		c.mu.Unlock()
		return nil, ErrProfileIncomplete
	}
	gen, err := c.begin(CategoryDiscover)
	if err != nil {
		c.mu.Unlock()
		return nil, err
	}
	profile := c.profile.Clone()
	if strings.TrimSpace(location) == "" {
		location = c.defaultLocation
	}
	c.step = StepSearch
	c.log.Add(`Agent "Stagehand" scouting...`)
	c.mu.Unlock()

	result, err := c.agent.DiscoverJobs(ctx, profile, location)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.end(CategoryDiscover)

	if err != nil {
		c.logger.Warn("discovery failed", "error", err)
		c.log.Error("Scouting failed.")
		return nil, err
	}
	if c.gens[CategoryDiscover] != gen {
		return nil, ErrStaleResult
	}

	c.jobs.Replace(result.Jobs)
	c.sources = append([]llm.Citation(nil), result.Sources...)
	c.log.Add(fmt.Sprintf("Discovery complete. Found %d leads.", len(result.Jobs)))
	return c.jobs.All(), nil
}

// Jobs returns the current batch filtered by criteria
func (c *Controller) Jobs(criteria types.FilterCriteria) []types.JobListing {
	return c.jobs.Visible(criteria)
}

// Job looks up a lead in the current batch
func (c *Controller) Job(id string) (types.JobListing, bool) {
	return c.jobs.Get(id)
}

// Sources returns the citations reported with the last successful discovery
func (c *Controller) Sources() []llm.Citation {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]llm.Citation{}, c.sources...)
}

// Analyze selects a lead from the current batch and runs the deep analysis on it
func (c *Controller) Analyze(ctx context.Context, jobID string) (*types.JobAnalysis, error) {
	job, ok := c.jobs.Get(jobID)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrJobNotFound, jobID)
	}
	return c.analyze(ctx, job)
}

// ViewTracked selects a tracked job and runs the deep analysis on its snapshot
func (c *Controller) ViewTracked(ctx context.Context, id string) (*types.JobAnalysis, error) {
	tracked, ok := c.tracker.Get(id)
	if !ok {
		return nil, fmt.Errorf("%w: %s", tracker.ErrNotFound, id)
	}
	return c.analyze(ctx, tracked.Listing())
}

func (c *Controller) analyze(ctx context.Context, job types.JobListing) (*types.JobAnalysis, error) {
	c.mu.Lock()
	gen, err := c.begin(CategoryAnalyze)
	if err != nil {
		c.mu.Unlock()
		return nil, err
	}
	c.contextGen++
	ctxGen := c.contextGen

	selected := job.Clone()
	c.selected = &selected
	c.step = StepAnalysis
	c.chat.Reset()
	c.analysis = nil
	profile := c.profile.Clone()
	c.log.Add(fmt.Sprintf("Initiating deep scan & market research for %s...", job.Company))
	c.mu.Unlock()

	result, err := c.agent.AnalyzeJob(ctx, profile, job)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.end(CategoryAnalyze)

	if err != nil {
		c.logger.Warn("analysis failed", "job_id", job.ID, "error", err)
		c.log.Error("Deep scan failed.")
		return nil, err
	}
	if !c.current(CategoryAnalyze, gen, ctxGen) || c.selected == nil || c.selected.ID != job.ID {
		c.logger.Info("dropping stale analysis", "job_id", job.ID)
		return nil, ErrStaleResult
	}

	c.analysis = result.Clone()
	c.log.Add(fmt.Sprintf("Analysis complete. Alignment: %s%%", strconv.FormatFloat(result.MatchScore, 'f', -1, 64)))
	return result.Clone(), nil
}

// SelectedJob returns the job under analysis
func (c *Controller) SelectedJob() (types.JobListing, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.selected == nil {
		return types.JobListing{}, false
	}
	return c.selected.Clone(), true
}

// Analysis returns a copy of the resident analysis, if any
func (c *Controller) Analysis() (*types.JobAnalysis, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.analysis == nil {
		return nil, false
	}
	return c.analysis.Clone(), true
}

// Refine regenerates the resident analysis' resume tips following instruction
func (c *Controller) Refine(ctx context.Context, instruction string) ([]string, error) {
	c.mu.Lock()
	if strings.TrimSpace(instruction) == "" {
		c.mu.Unlock()
		return nil, ErrEmptyInstruction
	}
	if c.analysis == nil || c.selected == nil {
		c.mu.Unlock()
		return nil, ErrNoAnalysis
	}
	gen, err := c.begin(CategoryRefine)
	if err != nil {
		c.mu.Unlock()
		return nil, err
	}
	ctxGen := c.contextGen
	tips := append([]string{}, c.analysis.ResumeTips...)
	job := c.selected.Clone()
	c.log.Add(fmt.Sprintf(`Refining resume based on: "%s"`, instruction))
	c.mu.Unlock()

	refined, err := c.agent.RefineResume(ctx, tips, job, instruction)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.end(CategoryRefine)

	if err != nil {
		c.logger.Warn("refinement failed", "job_id", job.ID, "error", err)
		c.log.Error("Refinement failed.")
		return nil, err
	}
	if !c.current(CategoryRefine, gen, ctxGen) || c.analysis == nil {
		c.logger.Info("dropping stale refinement", "job_id", job.ID)
		return nil, ErrStaleResult
	}

	c.analysis.ResumeTips = append([]string{}, refined...)
	c.log.Add("Resume optimization updated.")
	return append([]string{}, refined...), nil
}

// SendChat appends the user's message, asks the agent and appends its reply.
// A failed call leaves the user's message in place without a reply.
func (c *Controller) SendChat(ctx context.Context, text string) (string, error) {
	c.mu.Lock()
	if strings.TrimSpace(text) == "" {
		c.mu.Unlock()
		return "", ErrEmptyMessage
	}
	if c.analysis == nil || c.selected == nil {
		c.mu.Unlock()
		return "", ErrNoAnalysis
	}
	gen, err := c.begin(CategoryChat)
	if err != nil {
		c.mu.Unlock()
		return "", err
	}
	ctxGen := c.contextGen
	history := c.chat.Messages()
	c.chat.Append(types.RoleUser, text)
	job := c.selected.Clone()
	analysis := c.analysis.Clone()
	c.mu.Unlock()

	reply, err := c.agent.SendMessage(ctx, history, text, job, analysis)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.end(CategoryChat)

	if err != nil {
		c.logger.Warn("chat failed", "job_id", job.ID, "error", err)
		c.log.Error("Chat agent unavailable.")
		return "", err
	}
	if !c.current(CategoryChat, gen, ctxGen) {
		c.logger.Info("dropping stale chat reply", "job_id", job.ID)
		return "", ErrStaleResult
	}

	c.chat.Append(types.RoleModel, reply)
	return reply, nil
}

// ChatMessages returns the transcript for the selected job
func (c *Controller) ChatMessages() []types.ChatMessage {
	return c.chat.Messages()
}
