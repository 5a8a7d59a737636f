package domain

import "time"

// Event is a time-bounded hunt grouping caches and invites.
// An inactive event hides every one of its caches from players.
type Event struct {
	Entity
	Name     string     `json:"name"`
	Slug     string     `json:"slug"`
	Active   bool       `json:"active"`
	StartsAt *time.Time `json:"starts_at,omitempty"`
	EndsAt   *time.Time `json:"ends_at,omitempty"`
}
