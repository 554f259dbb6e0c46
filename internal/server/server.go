// Package server exposes the HTTP API: geocoding, markers, tips, and the
// server-side gateway for third-party geodata services.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/twpayne/go-geom"
	"go.uber.org/zap"

	"github.com/riverbend-maps/gagemap/internal/markers"
	"github.com/riverbend-maps/gagemap/internal/model"
	"github.com/riverbend-maps/gagemap/internal/tips"
	"github.com/riverbend-maps/gagemap/pkg/geocode"
)

// Geocoder is the chain surface the handlers need. *geocode.Chain satisfies
// it; tests substitute stubs.
type Geocoder interface {
	Geocode(ctx context.Context, q geocode.Query) []geocode.Result
	GeocodeBatch(ctx context.Context, queries []geocode.Query) [][]geocode.Result
	Suggest(ctx context.Context, text string, limit int) []geocode.Result
	Reverse(ctx context.Context, lat, lon float64) []geocode.Result
}

// Server wires the services into an HTTP router.
type Server struct {
	geocoder Geocoder
	markers  *markers.Service
	tips     *tips.Service
	gateway  *Gateway
	log      *zap.Logger
}

// Options configures router construction.
type Options struct {
	AllowedOrigins []string
}

// New creates a Server. Gateway may be nil, in which case the gateway routes
// are not mounted.
func New(g Geocoder, m *markers.Service, t *tips.Service, gw *Gateway, log *zap.Logger) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	return &Server{geocoder: g, markers: m, tips: t, gateway: gw, log: log}
}

// Router builds the chi router with all API routes mounted.
func (s *Server) Router(opts Options) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	origins := opts.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-User-ID"},
	}))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api", func(r chi.Router) {
		r.Get("/geocode", s.handleGeocode)
		r.Post("/geocode/batch", s.handleGeocodeBatch)
		r.Get("/suggest", s.handleSuggest)
		r.Get("/reverse", s.handleReverse)

		r.Route("/markers", func(r chi.Router) {
			r.Get("/", s.handleListMarkers)
			r.Post("/", s.handleCreateMarker)
			r.Get("/{index}", s.handleGetMarker)
			r.Put("/{index}", s.handleUpdateMarker)
			r.Delete("/{index}", s.handleDeleteMarker)
		})

		r.Route("/tips", func(r chi.Router) {
			r.Get("/", s.handleListTips)
			r.Post("/", s.handleCreateTip)
			r.Post("/update", s.handleUpdateTip)
			r.Post("/delete", s.handleDeleteTip)
			r.Post("/publish", s.handlePublishTip)
		})

		if s.gateway != nil {
			s.gateway.Mount(r)
		}
	})

	return r
}

// requesterID returns the caller identity the client asserted. There is no
// authentication layer; ownership checks are advisory.
func requesterID(r *http.Request) string {
	return r.Header.Get("X-User-ID")
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError maps domain error kinds to HTTP statuses.
func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, model.ErrValidation):
		status = http.StatusBadRequest
	case errors.Is(err, model.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, model.ErrForbidden):
		status = http.StatusForbidden
	}
	if status == http.StatusInternalServerError {
		s.log.Error("request failed", zap.Error(err))
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func decodeBody(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return model.ErrValidation
	}
	return nil
}

// parseBBox parses "west,south,east,north" into bounds. Empty input is nil
// bounds, not an error.
func parseBBox(raw string) (*geom.Bounds, error) {
	if raw == "" {
		return nil, nil
	}
	parts := strings.Split(raw, ",")
	if len(parts) != 4 {
		return nil, model.ErrValidation
	}
	var vals [4]float64
	for i, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return nil, model.ErrValidation
		}
		vals[i] = v
	}
	return geom.NewBounds(geom.XY).Set(vals[0], vals[1], vals[2], vals[3]), nil
}
