package http

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/luminex/symptomcheck/pkg/domain"
)

// SubscribeEvents handles GET /events (SSE).
// With session_id it streams the state diffs of that session, optionally
// filtered by the comma separated watch list. Without it, graph reloads are
// streamed when the server has a graph watcher.
func (s *Server) SubscribeEvents(w http.ResponseWriter, r *http.Request, params SubscribeEventsParams) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, http.StatusInternalServerError, "streaming not supported")
		return
	}

	sessionID := deref(params.SessionID)
	if sessionID == "" && s.watcher == nil {
		writeError(w, http.StatusBadRequest, "session_id is required")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	if sessionID == "" {
		events, err := s.watcher.Watch(r.Context())
		if err != nil {
			writeError(w, http.StatusInternalServerError, "watch failed")
			return
		}
		fmt.Fprintf(w, "event: ping\ndata: connected\n\n")
		flusher.Flush()
		for {
			select {
			case <-r.Context().Done():
				return
			case _, ok := <-events:
				if !ok {
					return
				}
				fmt.Fprintf(w, "event: reload\ndata: graph\n\n")
				flusher.Flush()
			}
		}
	}

	s.logger.Info("SSE subscription", "session_id", sessionID)
	ch, cancel := s.Streams.Subscribe(sessionID)
	defer cancel()

	fmt.Fprintf(w, "event: ping\ndata: connected\n\n")
	flusher.Flush()

	var watch []string
	if v := deref(params.Watch); v != "" {
		watch = strings.Split(v, ",")
	}

	for {
		select {
		case <-r.Context().Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			if len(watch) > 0 && !matches(msg, watch) {
				continue
			}
			fmt.Fprintf(w, "data: %s\n\n", msg)
			flusher.Flush()
		}
	}
}

// matches reports whether the diff in msg touches any watched field.
func matches(msg string, watch []string) bool {
	var diff domain.StateDiff
	if err := json.Unmarshal([]byte(msg), &diff); err != nil {
		return true
	}
	for _, field := range watch {
		switch strings.TrimSpace(field) {
		case "phase":
			if diff.Phase != nil {
				return true
			}
		case "language":
			if diff.Language != nil {
				return true
			}
		case "history":
			if diff.History != nil || diff.CurrentKey != nil {
				return true
			}
		case "result":
			if diff.ResultID != nil {
				return true
			}
		case "demographics":
			if diff.Demographics != nil {
				return true
			}
		}
	}
	return false
}
