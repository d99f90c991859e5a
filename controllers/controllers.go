// Package controllers decodes HTTP requests, calls the services and encodes
// responses.
package controllers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"mentacrush_server/services"
)

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}

// writeError maps the service failure taxonomy onto HTTP status codes.
func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, services.ErrInvalidArgument):
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
	case errors.Is(err, services.ErrNotFound):
		writeJSON(w, http.StatusNotFound, map[string]string{"error": err.Error()})
	case errors.Is(err, services.ErrUnauthenticated):
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "Unauthenticated"})
	case errors.Is(err, services.ErrUnavailable):
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "Store unavailable"})
	case errors.Is(err, services.ErrInconclusive):
		// The hint stood but the match state is unknown; the client should
		// retry the check, not assume "no match".
		writeJSON(w, http.StatusAccepted, map[string]interface{}{
			"error":        "match check inconclusive",
			"inconclusive": true,
		})
	default:
		log.Printf("❌ Internal error: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "Internal server error"})
	}
}
