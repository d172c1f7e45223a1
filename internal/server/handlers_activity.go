package server

import (
	"net/http"
	"time"
)

const keepAliveInterval = 15 * time.Second

func (s *Server) handleActivity(w http.ResponseWriter, _ *http.Request) {
	s.jsonResponse(w, http.StatusOK, s.controller.Activity().Lines())
}

// handleActivityStream replays the retained lines, then pushes new ones as "line" events.
// A line appended during the replay may be delivered twice.
func (s *Server) handleActivityStream(w http.ResponseWriter, r *http.Request) {
	log := s.controller.Activity()
	lines, cancel := log.Subscribe()
	defer cancel()

	sse, err := NewSSEWriter(w)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, err.Error())
		return
	}
	// The stream outlives the server's write timeout
	_ = http.NewResponseController(w).SetWriteDeadline(time.Time{})

	for _, line := range log.Lines() {
		if err := sse.WriteEvent("line", line); err != nil {
			return
		}
	}

	ticker := time.NewTicker(keepAliveInterval)
	defer ticker.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case line, ok := <-lines:
			if !ok {
				return
			}
			if err := sse.WriteEvent("line", line); err != nil {
				s.logger.Debug("activity stream closed", "error", err)
				return
			}
		case <-ticker.C:
			if err := sse.WriteComment("ping"); err != nil {
				return
			}
		}
	}
}
