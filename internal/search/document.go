// Package search provides game discovery using Bleve. Games are indexed with
// their type, note, location name, and coordinates so players can combine
// free-text queries with geo-distance and start-time filters.
package search

import (
	"github.com/dwinston/pushpickup/internal/domain"
)

// GameDocument is the document structure for the Bleve index.
type GameDocument struct {
	ID           string  `json:"id"`
	Type         string  `json:"type"`   // game type slug, exact match
	Status       string  `json:"status"` // proposed | on
	Note         string  `json:"note"`
	LocationName string  `json:"location_name"`
	Longitude    float64 `json:"-"`
	Latitude     float64 `json:"-"`
	StartsAt     int64   `json:"starts_at"` // unix seconds, range queries
	CreatedAt    int64   `json:"created_at"`
}

// ToMap converts the document to a map for indexing.
// Field names must match the mapping exactly (lowercase), and the location
// must be shaped as a {lon, lat} object for Bleve's geo point support.
func (d *GameDocument) ToMap() map[string]any {
	m := map[string]any{
		"id":         d.ID,
		"type":       d.Type,
		"status":     d.Status,
		"starts_at":  d.StartsAt,
		"created_at": d.CreatedAt,
		"location": map[string]any{
			"lon": d.Longitude,
			"lat": d.Latitude,
		},
	}

	if d.Note != "" {
		m["note"] = d.Note
	}
	if d.LocationName != "" {
		m["location_name"] = d.LocationName
	}

	return m
}

// GameToDocument converts a domain Game to its index document.
func GameToDocument(game *domain.Game) *GameDocument {
	return &GameDocument{
		ID:           game.ID,
		Type:         game.Type,
		Status:       string(game.Status),
		Note:         game.Note,
		LocationName: game.Location.Name,
		Longitude:    game.Location.GeoPoint.Longitude(),
		Latitude:     game.Location.GeoPoint.Latitude(),
		StartsAt:     game.StartsAt.Unix(),
		CreatedAt:    game.CreatedAt.UnixMilli(),
	}
}
