package server

import (
	"encoding/json"
	"net/http"

	"github.com/sirupsen/logrus"
)

// writeJSON writes data as a JSON response.
func writeJSON(w http.ResponseWriter, log logrus.FieldLogger, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.WithError(err).Error("failed to encode JSON response")
	}
}

// writeError maps err to a status with HTTPStatus and writes it as {"error": ...}.
// Internal errors are logged and reported without detail.
func writeError(w http.ResponseWriter, log logrus.FieldLogger, err error) {
	status := HTTPStatus(err)
	message := err.Error()
	if status == http.StatusInternalServerError {
		log.WithError(err).Error("request failed")
		message = "internal server error"
	} else if status >= http.StatusInternalServerError {
		log.WithError(err).Warn("upstream store failure")
	}
	writeJSON(w, log, status, map[string]string{"error": message})
}

// jsonResponse writes a JSON response
func (s *Server) jsonResponse(w http.ResponseWriter, status int, data any) {
	writeJSON(w, s.log, status, data)
}

// errorResponse writes an error JSON response
func (s *Server) errorResponse(w http.ResponseWriter, status int, message string) {
	writeJSON(w, s.log, status, map[string]string{"error": message})
}

// failure writes err using its mapped status.
func (s *Server) failure(w http.ResponseWriter, err error) {
	writeError(w, s.log, err)
}
