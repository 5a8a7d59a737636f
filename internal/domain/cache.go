package domain

import "github.com/egghunt/egghunt-server/internal/geo"

// Cache is a hidden object placed at a fixed coordinate within an event.
type Cache struct {
	Entity
	EventID     string  `json:"event_id"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Hint        string  `json:"hint,omitempty"`
	Latitude    float64 `json:"latitude"`
	Longitude   float64 `json:"longitude"`
	Active      bool    `json:"active"`
}

// Point returns the cache location.
func (c *Cache) Point() geo.Point {
	return geo.Point{Lat: c.Latitude, Lon: c.Longitude}
}

// FoundSummary describes who has found a cache so far.
type FoundSummary struct {
	FoundCount    int    `json:"found_count"`
	FirstFinderID string `json:"first_finder_id,omitempty"`
	FoundByMe     bool   `json:"found_by_me"`
}

// VisibleCache is a cache within the player's visibility radius, annotated
// with its distance and found state.
type VisibleCache struct {
	Cache
	FoundSummary
	DistanceMeters float64 `json:"distance_meters"`
}

// ClaimEvaluation is the outcome of checking whether a player stands close
// enough to a cache to claim it.
type ClaimEvaluation struct {
	WithinRange    bool    `json:"within_range"`
	DistanceMeters float64 `json:"distance_meters"`
	RadiusMeters   float64 `json:"radius_meters"`
}
