package server

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/jonathan/career-pilot/internal/chat"
	"github.com/jonathan/career-pilot/internal/types"
)

// handleDiscover asks the agent for a fresh batch of leads
func (s *Server) handleDiscover(w http.ResponseWriter, r *http.Request) {
	var req DiscoverRequest
	if err := s.decodeOptional(r, &req); err != nil {
		s.failure(w, err)
		return
	}
	jobs, err := s.controller.StartDiscovery(r.Context(), req.Location)
	if err != nil {
		s.failure(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, DiscoverResponse{Jobs: jobs, Sources: s.controller.Sources()})
}

// handleListJobs returns the current batch narrowed by query, min_score and location
func (s *Server) handleListJobs(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	criteria := types.FilterCriteria{
		Query:    q.Get("query"),
		Location: q.Get("location"),
	}
	if raw := strings.TrimSpace(q.Get("min_score")); raw != "" {
		score, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			s.failure(w, &ErrValidation{Field: "min_score", Message: "must be a number"})
			return
		}
		criteria.MinScore = score
	}
	if err := s.check(criteria); err != nil {
		s.failure(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, s.controller.Jobs(criteria))
}

func (s *Server) handleGetJob(w http.ResponseWriter, r *http.Request) {
	job, ok := s.controller.Job(r.PathValue("id"))
	if !ok {
		s.errorResponse(w, http.StatusNotFound, "job not found: "+r.PathValue("id"))
		return
	}
	s.jsonResponse(w, http.StatusOK, job)
}

func (s *Server) handleSources(w http.ResponseWriter, _ *http.Request) {
	s.jsonResponse(w, http.StatusOK, s.controller.Sources())
}

// handleAnalyze selects a lead and runs the deep analysis
func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	analysis, err := s.controller.Analyze(r.Context(), r.PathValue("id"))
	if err != nil {
		s.failure(w, err)
		return
	}
	job, _ := s.controller.SelectedJob()
	s.jsonResponse(w, http.StatusOK, AnalysisResponse{Job: job, Analysis: analysis})
}

func (s *Server) handleGetAnalysis(w http.ResponseWriter, _ *http.Request) {
	analysis, ok := s.controller.Analysis()
	if !ok {
		s.errorResponse(w, http.StatusNotFound, "no job analysis selected")
		return
	}
	job, _ := s.controller.SelectedJob()
	s.jsonResponse(w, http.StatusOK, AnalysisResponse{Job: job, Analysis: analysis})
}

func (s *Server) handleRefine(w http.ResponseWriter, r *http.Request) {
	var req RefineRequest
	if err := s.decode(r, &req); err != nil {
		s.failure(w, err)
		return
	}
	tips, err := s.controller.Refine(r.Context(), req.Instruction)
	if err != nil {
		s.failure(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, map[string][]string{"resumeTips": tips})
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req ChatRequest
	if err := s.decode(r, &req); err != nil {
		s.failure(w, err)
		return
	}
	reply, err := s.controller.SendChat(r.Context(), req.Message)
	if err != nil {
		s.failure(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, map[string]string{"reply": reply})
}

func (s *Server) handleChatHistory(w http.ResponseWriter, _ *http.Request) {
	s.jsonResponse(w, http.StatusOK, s.controller.ChatMessages())
}

func (s *Server) handleChatHints(w http.ResponseWriter, _ *http.Request) {
	s.jsonResponse(w, http.StatusOK, chat.Hints)
}
