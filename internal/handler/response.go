package handler

import (
	"encoding/json"
	"net/http"
	"plantidentifier/internal/dto"
	"plantidentifier/internal/logger"
)

// writeState sends the UI state as JSON with the given status code.
func writeState(w http.ResponseWriter, logger *logger.Logger, status int, state dto.State) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-cache")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(state); err != nil {
		logger.Error("Error encoding state: %v", err)
	}
}

// allowMethod replies 405 and returns false unless r uses method.
func allowMethod(w http.ResponseWriter, r *http.Request, method string) bool {
	if r.Method != method {
		w.Header().Set("Allow", method)
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return false
	}
	return true
}
