package server

import (
	"net/http"
)

// handleTrack adds a lead from the current batch (or the selection) to the tracker
func (s *Server) handleTrack(w http.ResponseWriter, r *http.Request) {
	var req TrackRequest
	if err := s.decode(r, &req); err != nil {
		s.failure(w, err)
		return
	}
	status, err := parseStatus(req.Status)
	if err != nil {
		s.failure(w, err)
		return
	}
	tracked, err := s.controller.Track(r.Context(), req.JobID, status)
	if err != nil {
		s.failure(w, err)
		return
	}
	s.jsonResponse(w, http.StatusCreated, tracked)
}

func (s *Server) handleListTracked(w http.ResponseWriter, _ *http.Request) {
	s.jsonResponse(w, http.StatusOK, s.controller.Tracked())
}

func (s *Server) handleSetTrackedStatus(w http.ResponseWriter, r *http.Request) {
	var req StatusRequest
	if err := s.decode(r, &req); err != nil {
		s.failure(w, err)
		return
	}
	status, err := parseStatus(req.Status)
	if err != nil {
		s.failure(w, err)
		return
	}
	tracked, err := s.controller.SetTrackingStatus(r.Context(), r.PathValue("id"), status)
	if err != nil {
		s.failure(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, tracked)
}

// handleViewTracked reopens a tracked job in the analysis step
func (s *Server) handleViewTracked(w http.ResponseWriter, r *http.Request) {
	analysis, err := s.controller.ViewTracked(r.Context(), r.PathValue("id"))
	if err != nil {
		s.failure(w, err)
		return
	}
	job, _ := s.controller.SelectedJob()
	s.jsonResponse(w, http.StatusOK, AnalysisResponse{Job: job, Analysis: analysis})
}
