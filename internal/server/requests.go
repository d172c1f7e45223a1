package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/jonathan/career-pilot/internal/llm"
	"github.com/jonathan/career-pilot/internal/types"
)

// TitleRequest is the body of PUT /profile/title
type TitleRequest struct {
	Title string `json:"title" validate:"max=200"`
}

// SkillRequest is the body of POST /profile/skills
type SkillRequest struct {
	Name  string           `json:"name" validate:"required,max=100"`
	Level types.SkillLevel `json:"level" validate:"omitempty,oneof=Beginner Intermediate Expert"`
}

// DiscoverRequest is the optional body of POST /discover
type DiscoverRequest struct {
	Location string `json:"location" validate:"max=200"`
}

// DiscoverResponse carries a discovery batch and its grounding sources
type DiscoverResponse struct {
	Jobs    []types.JobListing `json:"jobs"`
	Sources []llm.Citation     `json:"sources"`
}

// AnalysisResponse pairs the selected job with its analysis
type AnalysisResponse struct {
	Job      types.JobListing   `json:"job"`
	Analysis *types.JobAnalysis `json:"analysis"`
}

// RefineRequest is the body of POST /analysis/refine
type RefineRequest struct {
	Instruction string `json:"instruction" validate:"required"`
}

// ChatRequest is the body of POST /chat
type ChatRequest struct {
	Message string `json:"message" validate:"required"`
}

// TrackRequest is the body of POST /tracker
type TrackRequest struct {
	JobID  string `json:"jobId" validate:"required"`
	Status string `json:"status"`
}

// StatusRequest is the body of PUT /tracker/{id}/status
type StatusRequest struct {
	Status string `json:"status" validate:"required"`
}

// NavigateRequest is the body of POST /navigate
type NavigateRequest struct {
	Step string `json:"step" validate:"required"`
}

// decode reads a JSON body into dst and validates it
func (s *Server) decode(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return &ErrValidation{Field: "body", Message: "invalid JSON: " + err.Error()}
	}
	return s.check(dst)
}

// decodeOptional is decode for endpoints whose body may be empty
func (s *Server) decodeOptional(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil && !errors.Is(err, io.EOF) {
		return &ErrValidation{Field: "body", Message: "invalid JSON: " + err.Error()}
	}
	return s.check(dst)
}

func (s *Server) check(v any) error {
	if err := s.validator.Struct(v); err != nil {
		return validationError(err)
	}
	return nil
}

// parseStatus parses an optional tracking status; empty means the store default
func parseStatus(raw string) (types.TrackingStatus, error) {
	if raw == "" {
		return "", nil
	}
	status, err := types.ParseTrackingStatus(raw)
	if err != nil {
		return "", &ErrValidation{Field: "status", Message: err.Error()}
	}
	return status, nil
}
