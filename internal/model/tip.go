package model

import "time"

// TipStatus is the publication state of a tip. The only supported transition
// is draft to published; there is no way back.
type TipStatus string

const (
	TipStatusDraft     TipStatus = "draft"
	TipStatusPublished TipStatus = "published"
)

// Tip is an annotation attached to a target key (a USGS gage site or a custom
// marker). ID is the stable identity; legacy callers may still address a tip
// by its current position within its group.
type Tip struct {
	ID        string    `json:"id"`
	Text      string    `json:"text"`
	Timestamp time.Time `json:"timestamp"`
	UserID    string    `json:"userId,omitempty"`
	PhotoURL  string    `json:"photoUrl,omitempty"`
	Status    TipStatus `json:"status"`
}

// TipsByKey maps a target key ("usgs:<siteId>" or "custom:<markerIndex>") to
// its insertion-ordered tips. This is the whole-document shape persisted in
// the tips collection.
type TipsByKey map[string][]Tip
