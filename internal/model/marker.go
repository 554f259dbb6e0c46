// Package model defines the shared domain types for markers, tips, and their
// persisted collections.
package model

import "time"

// MarkerCategory classifies a user-created marker for map styling.
type MarkerCategory string

const (
	CategoryPlant   MarkerCategory = "plant"
	CategoryHistory MarkerCategory = "history"
	CategoryMisc    MarkerCategory = "misc"
)

// ValidCategory reports whether c is one of the supported marker categories.
func ValidCategory(c MarkerCategory) bool {
	switch c {
	case CategoryPlant, CategoryHistory, CategoryMisc:
		return true
	}
	return false
}

// Marker is a user-created point on the map. Markers live in an
// insertion-ordered collection; external callers address them by positional
// index, which is only stable until an earlier marker is deleted. ID is the
// authoritative internal identity.
type Marker struct {
	ID          string         `json:"id,omitempty"`
	Lat         float64        `json:"lat"`
	Lon         float64        `json:"lon"`
	Title       string         `json:"title"`
	Description string         `json:"description,omitempty"`
	Category    MarkerCategory `json:"category"`
	UserID      string         `json:"userId,omitempty"`
	Timestamp   time.Time      `json:"timestamp"`
}
