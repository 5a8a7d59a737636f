package domain

import "time"

// InviteState is the redemption state of an invite token at a point in time.
type InviteState string

const (
	InviteValid     InviteState = "valid"
	InviteExpired   InviteState = "expired"
	InviteExhausted InviteState = "exhausted"
)

// InviteToken grants registration into an event.
// UsedCount never exceeds MaxUses. Once exhausted a token stays inert even
// if MaxUses is raised later.
type InviteToken struct {
	Entity
	Token     string     `json:"token"`
	EventID   string     `json:"event_id"`
	MaxUses   int        `json:"max_uses"`
	UsedCount int        `json:"used_count"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
	CreatedBy string     `json:"created_by,omitempty"`
}

// State classifies the token at now. Expiry wins over exhaustion so an
// expired token reports Expired regardless of remaining uses.
func (t *InviteToken) State(now time.Time) InviteState {
	if t.ExpiresAt != nil && !now.Before(*t.ExpiresAt) {
		return InviteExpired
	}
	if t.UsedCount >= t.MaxUses {
		return InviteExhausted
	}
	return InviteValid
}

// RemainingUses returns how many registrations the token still allows.
func (t *InviteToken) RemainingUses() int {
	if t.UsedCount >= t.MaxUses {
		return 0
	}
	return t.MaxUses - t.UsedCount
}
