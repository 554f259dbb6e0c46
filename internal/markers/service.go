// Package markers manages the user-created marker collection: an
// insertion-ordered list persisted as one document, addressed externally by
// positional index.
package markers

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
	"go.uber.org/zap"

	"github.com/riverbend-maps/gagemap/internal/model"
	"github.com/riverbend-maps/gagemap/internal/store"
)

type Service struct {
	store store.Store
	log   *zap.Logger
}

func NewService(s store.Store, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{store: s, log: log}
}

// CreateInput is a marker as submitted by a client. Category defaults to
// misc when omitted.
type CreateInput struct {
	Lat         float64              `json:"lat"`
	Lon         float64              `json:"lon"`
	Title       string               `json:"title"`
	Description string               `json:"description,omitempty"`
	Category    model.MarkerCategory `json:"category,omitempty"`
	UserID      string               `json:"userId,omitempty"`
}

func (in CreateInput) validate() error {
	if strings.TrimSpace(in.Title) == "" {
		return eris.Wrap(model.ErrValidation, "marker title is empty")
	}
	if in.Lat < -90 || in.Lat > 90 {
		return eris.Wrap(model.ErrValidation, "latitude out of range")
	}
	if in.Lon < -180 || in.Lon > 180 {
		return eris.Wrap(model.ErrValidation, "longitude out of range")
	}
	if in.Category != "" && !model.ValidCategory(in.Category) {
		return eris.Wrap(model.ErrValidation, "unknown marker category")
	}
	return nil
}

func (s *Service) load(ctx context.Context) ([]model.Marker, error) {
	var all []model.Marker
	if err := store.Load(ctx, s.store, store.CollectionMarkers, &all); err != nil {
		return nil, eris.Wrap(err, "load markers")
	}
	return all, nil
}

func (s *Service) save(ctx context.Context, all []model.Marker) error {
	if err := store.Save(ctx, s.store, store.CollectionMarkers, all); err != nil {
		return eris.Wrap(err, "save markers")
	}
	return nil
}

// Create appends a marker and returns it along with its positional index.
func (s *Service) Create(ctx context.Context, in CreateInput) (model.Marker, int, error) {
	if err := in.validate(); err != nil {
		return model.Marker{}, 0, err
	}

	all, err := s.load(ctx)
	if err != nil {
		return model.Marker{}, 0, err
	}

	m := model.Marker{
		ID:          uuid.New().String(),
		Lat:         in.Lat,
		Lon:         in.Lon,
		Title:       in.Title,
		Description: in.Description,
		Category:    in.Category,
		UserID:      in.UserID,
		Timestamp:   time.Now().UTC(),
	}
	if m.Category == "" {
		m.Category = model.CategoryMisc
	}
	all = append(all, m)

	if err := s.save(ctx, all); err != nil {
		return model.Marker{}, 0, err
	}
	s.log.Debug("marker created", zap.String("id", m.ID), zap.Int("index", len(all)-1))
	return m, len(all) - 1, nil
}

// List returns markers in insertion order. A non-nil viewport keeps only
// markers inside it.
func (s *Service) List(ctx context.Context, viewport *geom.Bounds) ([]model.Marker, error) {
	all, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	if viewport == nil {
		return all, nil
	}
	inView := make([]model.Marker, 0, len(all))
	for _, m := range all {
		if viewport.OverlapsPoint(geom.XY, geom.Coord{m.Lon, m.Lat}) {
			inView = append(inView, m)
		}
	}
	return inView, nil
}

// Get returns the marker at a positional index.
func (s *Service) Get(ctx context.Context, index int) (model.Marker, error) {
	all, err := s.load(ctx)
	if err != nil {
		return model.Marker{}, err
	}
	if index < 0 || index >= len(all) {
		return model.Marker{}, eris.Wrap(model.ErrNotFound, "marker index out of range")
	}
	return all[index], nil
}

// Update replaces the editable fields of the marker at index. Identity,
// author, and creation time are preserved.
func (s *Service) Update(ctx context.Context, index int, in CreateInput) (model.Marker, error) {
	if err := in.validate(); err != nil {
		return model.Marker{}, err
	}

	all, err := s.load(ctx)
	if err != nil {
		return model.Marker{}, err
	}
	if index < 0 || index >= len(all) {
		return model.Marker{}, eris.Wrap(model.ErrNotFound, "marker index out of range")
	}

	m := &all[index]
	m.Lat = in.Lat
	m.Lon = in.Lon
	m.Title = in.Title
	m.Description = in.Description
	if in.Category != "" {
		m.Category = in.Category
	}

	if err := s.save(ctx, all); err != nil {
		return model.Marker{}, err
	}
	return all[index], nil
}

// Delete removes the marker at index. Indices of later markers shift down
// by one, which also shifts any "custom:<n>" tip keys pointing past the
// removed slot.
func (s *Service) Delete(ctx context.Context, index int) error {
	all, err := s.load(ctx)
	if err != nil {
		return err
	}
	if index < 0 || index >= len(all) {
		return eris.Wrap(model.ErrNotFound, "marker index out of range")
	}
	all = append(all[:index], all[index+1:]...)
	return s.save(ctx, all)
}
