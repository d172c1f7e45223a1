// Package agent is the typed gateway to the generation service: job discovery,
// deep analysis, resume refinement and job-scoped chat.
package agent

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/jonathan/career-pilot/internal/llm"
	"github.com/jonathan/career-pilot/internal/schemas"
	"github.com/jonathan/career-pilot/internal/types"
	rootschemas "github.com/jonathan/career-pilot/schemas"
)

const (
	// DefaultLocation is searched when the caller gives no location
	DefaultLocation = "Remote"

	// FallbackReply replaces an empty chat answer
	FallbackReply = "I'm sorry, I couldn't process that request."
)

// Agent is the contract of the four remote operations
type Agent interface {
	DiscoverJobs(ctx context.Context, profile types.Profile, location string) (*DiscoveryResult, error)
	AnalyzeJob(ctx context.Context, profile types.Profile, job types.JobListing) (*types.JobAnalysis, error)
	RefineResume(ctx context.Context, originalTips []string, job types.JobListing, instruction string) ([]string, error)
	SendMessage(ctx context.Context, history []types.ChatMessage, message string, job types.JobListing, analysis *types.JobAnalysis) (string, error)
}

// DiscoveryResult is one batch of leads plus the sources the provider cited
type DiscoveryResult struct {
	Jobs    []types.JobListing `json:"jobs"`
	Sources []llm.Citation     `json:"sources"`
}

// CareerAgent implements Agent on top of an llm.Client
type CareerAgent struct {
	client          llm.Client
	defaultLocation string

	discoverySchema  *schema
	analysisSchema   *schema
	refinementSchema *schema
}

// schema pairs the raw schema sent to the provider with its compiled validator
type schema struct {
	raw       []byte
	validator *schemas.Schema
}

// Option configures a CareerAgent
type Option func(*CareerAgent)

// WithDefaultLocation overrides the location used when DiscoverJobs gets none
func WithDefaultLocation(location string) Option {
	return func(a *CareerAgent) {
		if strings.TrimSpace(location) != "" {
			a.defaultLocation = strings.TrimSpace(location)
		}
	}
}

// New creates a CareerAgent and compiles the embedded response schemas
func New(client llm.Client, opts ...Option) (*CareerAgent, error) {
	if client == nil {
		return nil, fmt.Errorf("llm client is required")
	}

	a := &CareerAgent{
		client:          client,
		defaultLocation: DefaultLocation,
	}
	for _, opt := range opts {
		opt(a)
	}

	var err error
	if a.discoverySchema, err = loadSchema(rootschemas.Discovery); err != nil {
		return nil, err
	}
	if a.analysisSchema, err = loadSchema(rootschemas.Analysis); err != nil {
		return nil, err
	}
	if a.refinementSchema, err = loadSchema(rootschemas.Refinement); err != nil {
		return nil, err
	}

	return a, nil
}

func loadSchema(name string) (*schema, error) {
	raw, err := rootschemas.Load(name)
	if err != nil {
		return nil, &schemas.SchemaLoadError{Path: name, Message: "embedded schema missing", Cause: err}
	}
	compiled, err := schemas.Compile(name, raw)
	if err != nil {
		return nil, err
	}
	return &schema{raw: raw, validator: compiled}, nil
}

// generate runs a structured request and decodes the validated answer into out.
// It reports empty=true when the provider returned no text at all.
func (a *CareerAgent) generate(ctx context.Context, op Operation, req llm.StructuredRequest, s *schema, tier llm.ModelTier, out any) (*llm.Response, bool, error) {
	req.Schema = s.raw
	resp, err := a.client.GenerateStructured(ctx, req, tier)
	if err != nil {
		if errors.Is(err, llm.ErrEmptyResponse) {
			return nil, true, nil
		}
		return nil, false, &AgentError{Op: op, Message: "request failed", Cause: err}
	}
	if resp == nil || strings.TrimSpace(resp.Text) == "" {
		return resp, true, nil
	}

	if err := s.validator.Validate([]byte(resp.Text)); err != nil {
		return nil, false, &AgentError{Op: op, Message: "response does not match schema", Cause: err}
	}
	if err := json.Unmarshal([]byte(resp.Text), out); err != nil {
		return nil, false, &AgentError{Op: op, Message: "failed to parse response", Cause: err}
	}
	return resp, false, nil
}

// ClampScore bounds a match score to [0, 100]
func ClampScore(score float64) float64 {
	if math.IsNaN(score) || score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}

func mustJSON(v any) string {
	data, err := json.Marshal(v)
	if err != nil {
		return "{}"
	}
	return string(data)
}

func nonNil(in []string) []string {
	if in == nil {
		return []string{}
	}
	return in
}
