package domain

import "time"

// FoundRecord links one user to one cache they have found.
// There is at most one record per (user, cache) pair and at most one record
// per cache with FirstFound set.
type FoundRecord struct {
	ID         string    `json:"id"`
	UserID     string    `json:"user_id"`
	CacheID    string    `json:"cache_id"`
	EventID    string    `json:"event_id"`
	FirstFound bool      `json:"first_found"`
	CreatedAt  time.Time `json:"created_at"`
}
