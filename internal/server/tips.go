package server

import (
	"net/http"
	"strconv"

	"github.com/rotisserie/eris"

	"github.com/riverbend-maps/gagemap/internal/model"
	"github.com/riverbend-maps/gagemap/internal/tips"
)

// keyFromQuery builds a tip location key from query params: key, siteId, or
// markerIndex.
func keyFromQuery(r *http.Request) (tips.KeyInput, error) {
	in := tips.KeyInput{
		Key:    r.URL.Query().Get("key"),
		SiteID: r.URL.Query().Get("siteId"),
	}
	if raw := r.URL.Query().Get("markerIndex"); raw != "" {
		index, err := strconv.Atoi(raw)
		if err != nil {
			return tips.KeyInput{}, eris.Wrap(model.ErrValidation, "markerIndex must be an integer")
		}
		in.MarkerIndex = &index
	}
	return in, nil
}

func (s *Server) handleListTips(w http.ResponseWriter, r *http.Request) {
	in, err := keyFromQuery(r)
	if err != nil {
		s.writeError(w, err)
		return
	}

	listed, err := s.tips.List(r.Context(), in, requesterID(r))
	if err != nil {
		s.writeError(w, err)
		return
	}
	if listed == nil {
		listed = []model.Tip{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"tips": listed})
}

func (s *Server) handleCreateTip(w http.ResponseWriter, r *http.Request) {
	var in tips.CreateInput
	if err := decodeBody(r, &in); err != nil {
		s.writeError(w, eris.Wrap(err, "invalid request body"))
		return
	}
	if in.UserID == "" {
		in.UserID = requesterID(r)
	}

	tip, err := s.tips.Create(r.Context(), in)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"tip": tip})
}

// tipMutation addresses a tip for update, delete, and publish. ID wins over
// index when both are set.
type tipMutation struct {
	tips.KeyInput
	tips.TipRef
	Text     string `json:"text,omitempty"`
	PhotoURL string `json:"photoUrl,omitempty"`
}

func (s *Server) handleUpdateTip(w http.ResponseWriter, r *http.Request) {
	var req tipMutation
	if err := decodeBody(r, &req); err != nil {
		s.writeError(w, eris.Wrap(err, "invalid request body"))
		return
	}

	tip, err := s.tips.Update(r.Context(), req.KeyInput, req.TipRef, req.Text, req.PhotoURL)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"tip": tip})
}

func (s *Server) handleDeleteTip(w http.ResponseWriter, r *http.Request) {
	var req tipMutation
	if err := decodeBody(r, &req); err != nil {
		s.writeError(w, eris.Wrap(err, "invalid request body"))
		return
	}

	if err := s.tips.Delete(r.Context(), req.KeyInput, req.TipRef); err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handlePublishTip(w http.ResponseWriter, r *http.Request) {
	var req tipMutation
	if err := decodeBody(r, &req); err != nil {
		s.writeError(w, eris.Wrap(err, "invalid request body"))
		return
	}

	tip, err := s.tips.Publish(r.Context(), req.KeyInput, req.TipRef, requesterID(r))
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"tip": tip})
}
