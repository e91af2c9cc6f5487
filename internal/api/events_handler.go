package api

import (
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/mattjoyce/playhook/internal/events"
)

const keepAliveInterval = 15 * time.Second

// handleEventStream serves GET /events/stream as Server-Sent Events. Retained
// events newer than Last-Event-ID are replayed first. ?type= takes a
// comma-separated list of stream event types.
func (s *Server) handleEventStream(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		s.writeError(w, http.StatusInternalServerError, "streaming unsupported")
		return
	}
	types := parseTypes(r.URL.Query().Get("type"))

	h := w.Header()
	h.Set("Content-Type", "text/event-stream")
	h.Set("Cache-Control", "no-cache")
	h.Set("Connection", "keep-alive")
	h.Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)

	// Subscribe first; anything published before the replay finishes shows
	// up on both paths and is skipped by ID.
	live, cancel := s.hub.Subscribe(types...)
	defer cancel()

	lastID, _ := strconv.ParseInt(r.Header.Get("Last-Event-ID"), 10, 64)
	for _, ev := range s.hub.Since(max(lastID, 0), types...) {
		if writeSSE(w, ev) != nil {
			return
		}
		lastID = ev.ID
	}
	flusher.Flush()

	ticker := time.NewTicker(keepAliveInterval)
	defer ticker.Stop()

	for {
		var err error
		select {
		case <-r.Context().Done():
			return
		case ev, open := <-live:
			if !open {
				return
			}
			if ev.ID <= lastID {
				continue
			}
			err = writeSSE(w, ev)
		case <-ticker.C:
			_, err = io.WriteString(w, ": keep-alive\n\n")
		}
		if err != nil {
			return
		}
		flusher.Flush()
	}
}

func parseTypes(raw string) []string {
	var types []string
	for _, t := range strings.Split(raw, ",") {
		if t = strings.TrimSpace(t); t != "" {
			types = append(types, t)
		}
	}
	return types
}

// writeSSE writes one frame. Payloads are single-line JSON so one data line
// is enough.
func writeSSE(w io.Writer, ev events.Event) error {
	_, err := fmt.Fprintf(w, "id: %d\nevent: %s\ndata: %s\n\n", ev.ID, ev.Type, ev.Data)
	return err
}
