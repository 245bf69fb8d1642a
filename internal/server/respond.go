package server

import (
	"encoding/json"
	"net/http"

	"github.com/jonathan/content-agent/internal/logger"
)

// writeJSON writes a JSON response
func writeJSON(w http.ResponseWriter, log *logger.Logger, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Warn("failed to encode response", "error", err)
	}
}

// writeError writes an error JSON response
func writeError(w http.ResponseWriter, log *logger.Logger, status int, message string) {
	writeJSON(w, log, status, map[string]string{"error": message})
}

// errorResponse maps err to a status. Server-side failures are logged and
// hidden from the client.
func (s *Server) errorResponse(w http.ResponseWriter, err error) {
	status := HTTPStatus(err)
	if status >= http.StatusInternalServerError && status != http.StatusBadGateway {
		s.log.Error("request failed", "error", err)
		writeError(w, s.log, status, "internal server error")
		return
	}
	writeError(w, s.log, status, err.Error())
}
