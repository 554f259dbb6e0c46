package server

import (
	"net/http"
	"strconv"

	"github.com/rotisserie/eris"

	"github.com/riverbend-maps/gagemap/internal/model"
	"github.com/riverbend-maps/gagemap/pkg/geocode"
)

// handleGeocode runs the fallback chain for a single query. An exhausted
// chain is an empty result list, not an error.
func (s *Server) handleGeocode(w http.ResponseWriter, r *http.Request) {
	raw := r.URL.Query().Get("q")
	if raw == "" {
		s.writeError(w, eris.Wrap(model.ErrValidation, "q is required"))
		return
	}

	viewport, err := parseBBox(r.URL.Query().Get("bbox"))
	if err != nil {
		s.writeError(w, eris.Wrap(err, "bbox must be west,south,east,north"))
		return
	}

	q := geocode.NewQuery(raw)
	q.Viewport = viewport

	results := s.geocoder.Geocode(r.Context(), q)
	writeJSON(w, http.StatusOK, map[string]any{"results": emptyNotNil(results)})
}

type batchGeocodeRequest struct {
	Queries []string `json:"queries"`
	BBox    string   `json:"bbox,omitempty"`
}

func (s *Server) handleGeocodeBatch(w http.ResponseWriter, r *http.Request) {
	var req batchGeocodeRequest
	if err := decodeBody(r, &req); err != nil {
		s.writeError(w, eris.Wrap(err, "invalid request body"))
		return
	}
	if len(req.Queries) == 0 {
		s.writeError(w, eris.Wrap(model.ErrValidation, "queries is empty"))
		return
	}

	viewport, err := parseBBox(req.BBox)
	if err != nil {
		s.writeError(w, eris.Wrap(err, "bbox must be west,south,east,north"))
		return
	}

	queries := make([]geocode.Query, len(req.Queries))
	for i, raw := range req.Queries {
		q := geocode.NewQuery(raw)
		q.Viewport = viewport
		queries[i] = q
	}

	batch := s.geocoder.GeocodeBatch(r.Context(), queries)
	out := make([][]geocode.Result, len(batch))
	for i, results := range batch {
		out[i] = emptyNotNil(results)
	}
	writeJSON(w, http.StatusOK, map[string]any{"results": out})
}

func (s *Server) handleSuggest(w http.ResponseWriter, r *http.Request) {
	text := r.URL.Query().Get("q")
	if text == "" {
		s.writeError(w, eris.Wrap(model.ErrValidation, "q is required"))
		return
	}
	limit := 5
	if rawLimit := r.URL.Query().Get("limit"); rawLimit != "" {
		n, err := strconv.Atoi(rawLimit)
		if err != nil || n < 1 {
			s.writeError(w, eris.Wrap(model.ErrValidation, "limit must be a positive integer"))
			return
		}
		limit = n
	}

	results := s.geocoder.Suggest(r.Context(), text, limit)
	writeJSON(w, http.StatusOK, map[string]any{"results": emptyNotNil(results)})
}

func (s *Server) handleReverse(w http.ResponseWriter, r *http.Request) {
	lat, errLat := strconv.ParseFloat(r.URL.Query().Get("lat"), 64)
	lon, errLon := strconv.ParseFloat(r.URL.Query().Get("lon"), 64)
	if errLat != nil || errLon != nil {
		s.writeError(w, eris.Wrap(model.ErrValidation, "lat and lon are required"))
		return
	}

	results := s.geocoder.Reverse(r.Context(), lat, lon)
	writeJSON(w, http.StatusOK, map[string]any{"results": emptyNotNil(results)})
}

// emptyNotNil keeps "no results" as [] in JSON rather than null.
func emptyNotNil(results []geocode.Result) []geocode.Result {
	if results == nil {
		return []geocode.Result{}
	}
	return results
}
