package server

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rotisserie/eris"

	"github.com/riverbend-maps/gagemap/internal/markers"
	"github.com/riverbend-maps/gagemap/internal/model"
)

func (s *Server) handleListMarkers(w http.ResponseWriter, r *http.Request) {
	viewport, err := parseBBox(r.URL.Query().Get("bbox"))
	if err != nil {
		s.writeError(w, eris.Wrap(err, "bbox must be west,south,east,north"))
		return
	}

	all, err := s.markers.List(r.Context(), viewport)
	if err != nil {
		s.writeError(w, err)
		return
	}
	if all == nil {
		all = []model.Marker{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"markers": all})
}

func (s *Server) handleCreateMarker(w http.ResponseWriter, r *http.Request) {
	var in markers.CreateInput
	if err := decodeBody(r, &in); err != nil {
		s.writeError(w, eris.Wrap(err, "invalid request body"))
		return
	}
	if in.UserID == "" {
		in.UserID = requesterID(r)
	}

	m, index, err := s.markers.Create(r.Context(), in)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"marker": m, "index": index})
}

func markerIndex(r *http.Request) (int, error) {
	index, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil {
		return 0, eris.Wrap(model.ErrValidation, "index must be an integer")
	}
	return index, nil
}

func (s *Server) handleGetMarker(w http.ResponseWriter, r *http.Request) {
	index, err := markerIndex(r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	m, err := s.markers.Get(r.Context(), index)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"marker": m, "index": index})
}

func (s *Server) handleUpdateMarker(w http.ResponseWriter, r *http.Request) {
	index, err := markerIndex(r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	var in markers.CreateInput
	if err := decodeBody(r, &in); err != nil {
		s.writeError(w, eris.Wrap(err, "invalid request body"))
		return
	}
	m, err := s.markers.Update(r.Context(), index, in)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"marker": m, "index": index})
}

func (s *Server) handleDeleteMarker(w http.ResponseWriter, r *http.Request) {
	index, err := markerIndex(r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	if err := s.markers.Delete(r.Context(), index); err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
