package server

import (
	"net/http"
	"strconv"

	"github.com/alfredjeanlab/trackline/internal/model"
)

// handleListStations handles GET /v1/stations?search=.
func (s *Server) handleListStations(w http.ResponseWriter, r *http.Request) {
	list, err := s.listStations(r.Context(), r.URL.Query().Get("search"))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list stations")
		return
	}
	writeJSON(w, http.StatusOK, list)
}

// handleGetStation handles GET /v1/stations/{id}.
func (s *Server) handleGetStation(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeLookupError(w, err, "station")
		return
	}
	st, err := s.store.GetStation(r.Context(), id)
	if err != nil {
		writeLookupError(w, err, "station")
		return
	}
	writeJSON(w, http.StatusOK, st)
}

// handleGetStationByShortName handles GET /v1/stations/p/{short}.
func (s *Server) handleGetStationByShortName(w http.ResponseWriter, r *http.Request) {
	st, err := s.store.GetStationByShortName(r.Context(), r.PathValue("short"))
	if err != nil {
		writeLookupError(w, err, "station")
		return
	}
	writeJSON(w, http.StatusOK, st)
}

// handleListLinks handles GET /v1/distances?network=&from=&to=.
func (s *Server) handleListLinks(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	list, err := s.listLinks(r.Context(), model.LinkFilter{
		Network: q.Get("network"),
		From:    q.Get("from"),
		To:      q.Get("to"),
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list distances")
		return
	}
	writeJSON(w, http.StatusOK, list)
}

// handleGetLink handles GET /v1/distances/{id}.
func (s *Server) handleGetLink(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeLookupError(w, err, "distance")
		return
	}
	link, err := s.store.GetLink(r.Context(), id)
	if err != nil {
		writeLookupError(w, err, "distance")
		return
	}
	writeJSON(w, http.StatusOK, link)
}

// handleDistanceBetween handles GET /v1/distance-between?from=&to=.
func (s *Server) handleDistanceBetween(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	link, err := s.distanceBetween(r.Context(), q.Get("from"), q.Get("to"))
	if isNotFound(err) {
		writeError(w, http.StatusNotFound, "no direct distance between stations")
		return
	}
	if err != nil {
		writeLookupError(w, err, "distance")
		return
	}
	writeJSON(w, http.StatusOK, link)
}

func pathID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, inputError("id must be a positive integer")
	}
	return id, nil
}
