package api

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/mattjoyce/playhook/internal/history"
	"github.com/mattjoyce/playhook/internal/player"
)

// maxEventBodyBytes caps POST /events request bodies.
const maxEventBodyBytes = 64 * 1024

// handleHealthz handles GET /healthz
func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, HealthzResponse{
		Status:        "ok",
		UptimeSeconds: int64(time.Since(s.startedAt).Seconds()),
	})
}

// handlePostEvent handles POST /events
// The event is delivered synchronously, so the response is written only after
// the configured hook has exited.
func (s *Server) handlePostEvent(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxEventBodyBytes)

	var ev player.Event
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&ev); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid JSON body: "+err.Error())
		return
	}

	if err := ev.Validate(); err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	// Published first so stream clients see the event before its outcomes.
	s.hub.PublishReceived(ev)
	if err := s.sink.Deliver(ev); err != nil {
		s.writeError(w, http.StatusServiceUnavailable, err.Error())
		return
	}

	respondJSON(w, http.StatusAccepted, PostEventResponse{
		Status: "dispatched",
		Kind:   string(ev.Kind),
	})
}

// handleListExecutions handles GET /executions?limit=N
func (s *Server) handleListExecutions(w http.ResponseWriter, r *http.Request) {
	if s.history == nil {
		s.writeError(w, http.StatusNotFound, "execution history is disabled")
		return
	}

	limit := history.DefaultListLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			s.writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = n
	}

	records, err := s.history.List(r.Context(), limit)
	if err != nil {
		s.logger.Error("failed to list executions", "error", err)
		s.writeError(w, http.StatusInternalServerError, "failed to list executions")
		return
	}
	if records == nil {
		records = []history.Record{}
	}
	respondJSON(w, http.StatusOK, ListExecutionsResponse{Executions: records})
}

func respondJSON(w http.ResponseWriter, statusCode int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(data)
}

func (s *Server) writeError(w http.ResponseWriter, statusCode int, message string) {
	respondJSON(w, statusCode, ErrorResponse{Error: message})
}
