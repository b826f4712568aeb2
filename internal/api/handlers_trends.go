package api

import (
	"encoding/json"
	"net/http"
)

// handleTrends returns a user's stored trend points, optionally filtered to
// one parameter. Points are ordered ascending by timestamp per parameter.
func (s *Server) handleTrends(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("user_id")
	if userID == "" {
		jsonError(w, "user_id is required", http.StatusBadRequest)
		return
	}

	points, err := s.store.Snapshot(r.Context(), userID)
	if err != nil {
		s.log.Error("history snapshot failed", "user_id", userID, "error", err)
		jsonError(w, "history unavailable", http.StatusInternalServerError)
		return
	}

	if param := r.URL.Query().Get("parameter"); param != "" {
		filtered := map[string]any{}
		if seq, ok := points[param]; ok {
			filtered[param] = seq
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{"user_id": userID, "trends": filtered})
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{"user_id": userID, "trends": points})
}
