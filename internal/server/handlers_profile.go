package server

import (
	"encoding/json"
	"net/http"

	"github.com/jonathan/career-pilot/internal/pipeline"
	"github.com/jonathan/career-pilot/internal/types"
)

// handleState returns the workflow snapshot
func (s *Server) handleState(w http.ResponseWriter, _ *http.Request) {
	s.jsonResponse(w, http.StatusOK, s.controller.State())
}

// handleNavigate moves the workflow to another step
func (s *Server) handleNavigate(w http.ResponseWriter, r *http.Request) {
	var req NavigateRequest
	if err := s.decode(r, &req); err != nil {
		s.failure(w, err)
		return
	}
	step, err := pipeline.ParseStep(req.Step)
	if err != nil {
		s.failure(w, &ErrValidation{Field: "step", Message: err.Error()})
		return
	}
	if err := s.controller.GoTo(step); err != nil {
		s.failure(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, s.controller.State())
}

func (s *Server) handleGetProfile(w http.ResponseWriter, _ *http.Request) {
	s.jsonResponse(w, http.StatusOK, s.controller.Profile())
}

// handlePutProfile replaces the whole profile. An incomplete profile is accepted;
// readiness is only enforced when discovery starts.
func (s *Server) handlePutProfile(w http.ResponseWriter, r *http.Request) {
	var req types.Profile
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.failure(w, &ErrValidation{Field: "body", Message: "invalid JSON: " + err.Error()})
		return
	}
	for _, skill := range req.Skills {
		if err := s.check(skill); err != nil {
			s.failure(w, err)
			return
		}
	}
	s.jsonResponse(w, http.StatusOK, s.controller.SetProfile(req))
}

func (s *Server) handleSetTitle(w http.ResponseWriter, r *http.Request) {
	var req TitleRequest
	if err := s.decode(r, &req); err != nil {
		s.failure(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, s.controller.SetTitle(req.Title))
}

func (s *Server) handleAddSkill(w http.ResponseWriter, r *http.Request) {
	var req SkillRequest
	if err := s.decode(r, &req); err != nil {
		s.failure(w, err)
		return
	}
	profile, added := s.controller.AddSkill(req.Name, req.Level)
	if !added {
		s.failure(w, &ErrValidation{Field: "name", Message: "blank skill name"})
		return
	}
	s.jsonResponse(w, http.StatusCreated, profile)
}

func (s *Server) handleRemoveSkill(w http.ResponseWriter, r *http.Request) {
	profile, removed := s.controller.RemoveSkill(r.PathValue("name"))
	if removed == 0 {
		s.errorResponse(w, http.StatusNotFound, "skill not found: "+r.PathValue("name"))
		return
	}
	s.jsonResponse(w, http.StatusOK, profile)
}
