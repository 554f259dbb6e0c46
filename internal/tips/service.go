package tips

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/riverbend-maps/gagemap/internal/model"
	"github.com/riverbend-maps/gagemap/internal/store"
)

// Service owns the tips collection: threaded annotations grouped under a
// location key, persisted as a single document in the store.
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

// CreateInput carries everything needed to attach a new tip to a location.
type CreateInput struct {
	KeyInput
	Text     string `json:"text"`
	UserID   string `json:"userId"`
	PhotoURL string `json:"photoUrl,omitempty"`
	Publish  bool   `json:"publish,omitempty"`
}

// TipRef identifies one tip inside a group, by id or by position. ID wins
// when both are set.
type TipRef struct {
	ID    string `json:"id,omitempty"`
	Index *int   `json:"index,omitempty"`
}

func (s *Service) load(ctx context.Context) (model.TipsByKey, error) {
	var byKey model.TipsByKey
	if err := store.Load(ctx, s.store, store.CollectionTips, &byKey); err != nil {
		return nil, eris.Wrap(err, "load tips")
	}
	if byKey == nil {
		byKey = model.TipsByKey{}
	}
	return byKey, nil
}

func (s *Service) save(ctx context.Context, byKey model.TipsByKey) error {
	if err := store.Save(ctx, s.store, store.CollectionTips, byKey); err != nil {
		return eris.Wrap(err, "save tips")
	}
	return nil
}

// Create appends a tip under the resolved location key. New tips start as
// drafts unless the caller publishes immediately.
func (s *Service) Create(ctx context.Context, in CreateInput) (model.Tip, error) {
	key, ok := ResolveKey(in.KeyInput)
	if !ok {
		return model.Tip{}, eris.Wrap(model.ErrValidation, "tip requires a location key")
	}
	if strings.TrimSpace(in.Text) == "" {
		return model.Tip{}, eris.Wrap(model.ErrValidation, "tip text is empty")
	}

	byKey, err := s.load(ctx)
	if err != nil {
		return model.Tip{}, err
	}

	tip := model.Tip{
		ID:        uuid.New().String(),
		Text:      in.Text,
		Timestamp: time.Now().UTC(),
		UserID:    in.UserID,
		PhotoURL:  in.PhotoURL,
		Status:    model.TipStatusDraft,
	}
	if in.Publish {
		tip.Status = model.TipStatusPublished
	}
	byKey[key] = append(byKey[key], tip)

	if err := s.save(ctx, byKey); err != nil {
		return model.Tip{}, err
	}
	s.log.Debug("tip created", zap.String("key", key), zap.String("id", tip.ID))
	return tip, nil
}

// List returns the tips under a key that the viewer may see. Drafts are
// visible only to their author. A missing group is an empty list, not an
// error.
func (s *Service) List(ctx context.Context, in KeyInput, viewerID string) ([]model.Tip, error) {
	key, ok := ResolveKey(in)
	if !ok {
		return nil, eris.Wrap(model.ErrValidation, "tip lookup requires a location key")
	}
	byKey, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	return VisibleTo(byKey[key], viewerID), nil
}

// Update replaces the text and photo of one tip. The tip keeps its id,
// author, status, and timestamp.
func (s *Service) Update(ctx context.Context, in KeyInput, ref TipRef, text, photoURL string) (model.Tip, error) {
	key, ok := ResolveKey(in)
	if !ok {
		return model.Tip{}, eris.Wrap(model.ErrValidation, "tip lookup requires a location key")
	}
	if strings.TrimSpace(text) == "" {
		return model.Tip{}, eris.Wrap(model.ErrValidation, "tip text is empty")
	}

	byKey, err := s.load(ctx)
	if err != nil {
		return model.Tip{}, err
	}
	group := byKey[key]
	pos, ok := ResolvePosition(group, ref.ID, ref.Index)
	if !ok || pos < 0 || pos >= len(group) {
		return model.Tip{}, eris.Wrap(model.ErrNotFound, "tip not found")
	}

	group[pos].Text = text
	group[pos].PhotoURL = photoURL
	byKey[key] = group

	if err := s.save(ctx, byKey); err != nil {
		return model.Tip{}, err
	}
	return group[pos], nil
}

// Delete removes one tip from its group. Deleting the last tip leaves an
// empty group rather than removing the key, so positional references held by
// concurrent clients stay within one document write of reality.
func (s *Service) Delete(ctx context.Context, in KeyInput, ref TipRef) error {
	key, ok := ResolveKey(in)
	if !ok {
		return eris.Wrap(model.ErrValidation, "tip lookup requires a location key")
	}
	byKey, err := s.load(ctx)
	if err != nil {
		return err
	}
	group := byKey[key]
	pos, ok := ResolvePosition(group, ref.ID, ref.Index)
	if !ok || pos < 0 || pos >= len(group) {
		return eris.Wrap(model.ErrNotFound, "tip not found")
	}

	byKey[key] = append(group[:pos], group[pos+1:]...)
	return s.save(ctx, byKey)
}

// Publish flips a draft to published. Only the recorded author may publish,
// and publishing is one-way: publishing an already-published tip succeeds
// without changing anything.
func (s *Service) Publish(ctx context.Context, in KeyInput, ref TipRef, requesterID string) (model.Tip, error) {
	key, ok := ResolveKey(in)
	if !ok {
		return model.Tip{}, eris.Wrap(model.ErrValidation, "tip lookup requires a location key")
	}
	byKey, err := s.load(ctx)
	if err != nil {
		return model.Tip{}, err
	}
	group := byKey[key]
	pos, ok := ResolvePosition(group, ref.ID, ref.Index)
	if !ok || pos < 0 || pos >= len(group) {
		return model.Tip{}, eris.Wrap(model.ErrNotFound, "tip not found")
	}

	// Ownership is advisory: the guard trips only when both sides carry an
	// identity and they disagree.
	tip := group[pos]
	if tip.UserID != "" && requesterID != "" && requesterID != tip.UserID {
		return model.Tip{}, eris.Wrap(model.ErrForbidden, "only the author can publish a tip")
	}
	if tip.Status == model.TipStatusPublished {
		return tip, nil
	}

	group[pos].Status = model.TipStatusPublished
	byKey[key] = group
	if err := s.save(ctx, byKey); err != nil {
		return model.Tip{}, err
	}
	return group[pos], nil
}

// MigrateLegacy rewrites unprefixed tip keys in place and reports how many
// were moved. Running it again is a no-op.
func (s *Service) MigrateLegacy(ctx context.Context) (int, error) {
	byKey, err := s.load(ctx)
	if err != nil {
		return 0, err
	}
	migrated, moved := MigrateLegacyKeys(byKey)
	if moved == 0 {
		return 0, nil
	}
	if err := s.save(ctx, migrated); err != nil {
		return 0, err
	}
	s.log.Info("legacy tip keys migrated", zap.Int("moved", moved))
	return moved, nil
}
