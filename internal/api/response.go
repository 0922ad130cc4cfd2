package api

import (
	"encoding/json"
	"log/slog"
	"net/http"
)

// envelope is the consistent JSON response shape every handler returns
// through, named after the teacher's APIResponse/APIError pattern.
type envelope struct {
	Data  interface{} `json:"data,omitempty"`
	Error *apiError   `json:"error,omitempty"`
}

type apiError struct {
	Message string `json:"message"`
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(envelope{Data: data}); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func respondError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(envelope{Error: &apiError{Message: message}})
}

func respondBadRequest(w http.ResponseWriter, message string)   { respondError(w, http.StatusBadRequest, message) }
func respondNotFound(w http.ResponseWriter, message string)     { respondError(w, http.StatusNotFound, message) }
func respondInternalError(w http.ResponseWriter, message string) { respondError(w, http.StatusInternalServerError, message) }
