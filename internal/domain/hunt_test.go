package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestInviteToken_State(t *testing.T) {
	now := time.Date(2026, 4, 5, 10, 0, 0, 0, time.UTC)
	past := now.Add(-time.Minute)
	future := now.Add(time.Hour)

	tests := []struct {
		name  string
		token InviteToken
		want  InviteState
	}{
		{"fresh", InviteToken{MaxUses: 1}, InviteValid},
		{"one use left", InviteToken{MaxUses: 3, UsedCount: 2, ExpiresAt: &future}, InviteValid},
		{"exhausted", InviteToken{MaxUses: 1, UsedCount: 1}, InviteExhausted},
		{"expired with uses left", InviteToken{MaxUses: 5, ExpiresAt: &past}, InviteExpired},
		{"expired and exhausted", InviteToken{MaxUses: 1, UsedCount: 1, ExpiresAt: &past}, InviteExpired},
		{"expires exactly now", InviteToken{MaxUses: 1, ExpiresAt: &now}, InviteExpired},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.token.State(now))
		})
	}
}

func TestInviteToken_RemainingUses(t *testing.T) {
	assert.Equal(t, 2, (&InviteToken{MaxUses: 3, UsedCount: 1}).RemainingUses())
	assert.Equal(t, 0, (&InviteToken{MaxUses: 1, UsedCount: 1}).RemainingUses())
	// Raising MaxUses later is reflected here but never touches UsedCount.
	assert.Equal(t, 1, (&InviteToken{MaxUses: 2, UsedCount: 1}).RemainingUses())
}

func TestSettingDefaults_CoverEveryKey(t *testing.T) {
	assert.Len(t, SettingKeys, len(SettingDefaults))
	for _, key := range SettingKeys {
		assert.True(t, IsKnownSetting(key), key)
	}
	assert.False(t, IsKnownSetting("NOPE"))

	assert.Equal(t, "2000", SettingDefaults[SettingVisibilityRadius])
	assert.Equal(t, "1", SettingDefaults[SettingFoundRadius])
	assert.Equal(t, HuntSettings{VisibilityRadiusMeters: 2000, FoundRadiusMeters: 1}, DefaultHuntSettings())
}

func TestUser_IsAdmin(t *testing.T) {
	assert.True(t, (&User{Role: RoleAdmin}).IsAdmin())
	assert.False(t, (&User{Role: RolePlayer}).IsAdmin())
	assert.False(t, Role("root").Valid())
}
