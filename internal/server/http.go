package server

import (
	"encoding/json"
	"errors"
	"net/http"
)

// NewHTTPHandler returns an http.Handler with all routes registered.
// When authToken is non-empty, requests (except GET /v1/health) must include
// a valid Authorization: Bearer <token> header.
func (s *Server) NewHTTPHandler(authToken string) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /v1/routes", s.handleCreateRoute)
	mux.HandleFunc("GET /v1/routes", s.handleListRoutes)
	mux.HandleFunc("GET /v1/routes/{id}", s.handleGetRoute)
	mux.HandleFunc("GET /v1/stats/distances", s.handleDistanceStats)
	mux.HandleFunc("GET /v1/stations", s.handleListStations)
	mux.HandleFunc("GET /v1/stations/{id}", s.handleGetStation)
	mux.HandleFunc("GET /v1/stations/p/{short}", s.handleGetStationByShortName)
	mux.HandleFunc("GET /v1/distances", s.handleListLinks)
	mux.HandleFunc("GET /v1/distances/{id}", s.handleGetLink)
	mux.HandleFunc("GET /v1/distance-between", s.handleDistanceBetween)
	mux.HandleFunc("GET /v1/events/stream", s.handleEventStream)
	mux.HandleFunc("GET /v1/health", s.handleHealth)
	mux.Handle("GET /metrics", s.metrics.Handler())
	return RequestIDMiddleware(LoggingMiddleware(AuthMiddleware(authToken, mux)))
}

// handleHealth handles GET /v1/health.
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.health())
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

// writeLookupError reports a failed read of a single resource: 400 for bad
// input, 404 when the store found nothing, 500 otherwise.
func writeLookupError(w http.ResponseWriter, err error, resource string) {
	var ie inputError
	switch {
	case errors.As(err, &ie):
		writeError(w, http.StatusBadRequest, ie.Error())
	case isNotFound(err):
		writeError(w, http.StatusNotFound, resource+" not found")
	default:
		writeError(w, http.StatusInternalServerError, "failed to get "+resource)
	}
}
