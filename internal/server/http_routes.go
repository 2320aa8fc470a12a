package server

import (
	"errors"
	"io"
	"net/http"

	"github.com/alfredjeanlab/trackline/internal/model"
)

// handleCreateRoute handles POST /v1/routes.
func (s *Server) handleCreateRoute(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		writeError(w, http.StatusBadRequest, "failed to read request body")
		return
	}
	req, err := model.DecodeRouteRequest(body)
	var ve *model.ValidationError
	if err != nil && !errors.As(err, &ve) {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	var route *model.Route
	if err == nil {
		route, err = s.createRoute(r.Context(), req)
	}
	if err != nil {
		f := classifyRouteError(err)
		if f.fields != nil {
			writeJSON(w, f.status, map[string]any{
				"error":  f.message,
				"fields": f.fields,
			})
			return
		}
		writeError(w, f.status, f.message)
		return
	}

	writeJSON(w, http.StatusCreated, route)
}

// handleGetRoute handles GET /v1/routes/{id}.
func (s *Server) handleGetRoute(w http.ResponseWriter, r *http.Request) {
	route, err := s.store.GetRoute(r.Context(), r.PathValue("id"))
	if err != nil {
		writeLookupError(w, err, "route")
		return
	}
	writeJSON(w, http.StatusOK, route)
}

// handleListRoutes handles GET /v1/routes?from=&to=.
func (s *Server) handleListRoutes(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	list, err := s.listRoutes(r.Context(), q.Get("from"), q.Get("to"))
	if err != nil {
		writeQueryError(w, err, "failed to list routes")
		return
	}
	writeJSON(w, http.StatusOK, list)
}

// handleDistanceStats handles GET /v1/stats/distances?from=&to=&groupBy=.
func (s *Server) handleDistanceStats(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	report, err := s.distanceReport(r.Context(), q.Get("from"), q.Get("to"), q.Get("groupBy"))
	if err != nil {
		writeQueryError(w, err, "failed to aggregate distances")
		return
	}
	writeJSON(w, http.StatusOK, report)
}

// writeQueryError maps unusable query values to 422 and anything else to 500.
func writeQueryError(w http.ResponseWriter, err error, message string) {
	var qe queryError
	if errors.As(err, &qe) {
		writeError(w, http.StatusUnprocessableEntity, qe.Error())
		return
	}
	writeError(w, http.StatusInternalServerError, message)
}
