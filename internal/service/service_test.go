package service

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/egghunt/egghunt-server/internal/auth"
	"github.com/egghunt/egghunt-server/internal/domain"
	"github.com/egghunt/egghunt-server/internal/geo"
	"github.com/egghunt/egghunt-server/internal/id"
	"github.com/egghunt/egghunt-server/internal/kvcache"
	"github.com/egghunt/egghunt-server/internal/store/sqlite"
	"github.com/stretchr/testify/require"
)

// hunt is the reference position most tests place caches around.
var hunt = geo.Point{Lat: 50.937531, Lon: 6.960279}

type testServices struct {
	store     *sqlite.Store
	tokens    *auth.TokenService
	settings  *SettingsService
	proximity *ProximityService
	claims    *ClaimService
	invites   *InviteService
	auth      *AuthService
	events    *EventService
}

// setupTestServices wires every service against a fresh SQLite store. A
// positive cacheTTL enables the settings cache.
func setupTestServices(t *testing.T, cacheTTL time.Duration) *testServices {
	t.Helper()

	s, err := sqlite.Open(filepath.Join(t.TempDir(), "test.db"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() }) //nolint:errcheck // Test cleanup

	cache, err := kvcache.New(cacheTTL, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = cache.Close() }) //nolint:errcheck // Test cleanup

	tokens, err := auth.NewTokenService(make([]byte, auth.KeySize), time.Hour)
	require.NoError(t, err)

	settings := NewSettingsService(s, cache, nil)
	proximity := NewProximityService(s, settings, nil)

	return &testServices{
		store:     s,
		tokens:    tokens,
		settings:  settings,
		proximity: proximity,
		claims:    NewClaimService(s, proximity, nil),
		invites:   NewInviteService(s, tokens, nil),
		auth:      NewAuthService(s, tokens, settings, nil),
		events:    NewEventService(s, nil),
	}
}

func (ts *testServices) makeEvent(t *testing.T, name string, active bool) *domain.Event {
	t.Helper()
	e, err := ts.events.CreateEvent(context.Background(), CreateEventRequest{
		Name:   name,
		Active: &active,
	})
	require.NoError(t, err)
	return e
}

func (ts *testServices) makeCache(t *testing.T, eventID string, at geo.Point, active bool) *domain.Cache {
	t.Helper()
	c, err := ts.events.CreateCache(context.Background(), CreateCacheRequest{
		EventID:   eventID,
		Name:      "Egg",
		Latitude:  at.Lat,
		Longitude: at.Lon,
		Active:    &active,
	})
	require.NoError(t, err)
	return c
}

// makePlayer inserts a player directly; most tests do not need a real
// password hash.
func (ts *testServices) makePlayer(t *testing.T, email string) *domain.User {
	t.Helper()
	u := &domain.User{
		Entity:       domain.Entity{ID: id.MustGenerate("user")},
		Email:        email,
		PasswordHash: "unused",
		Role:         domain.RolePlayer,
	}
	u.InitTimestamps()
	require.NoError(t, ts.store.CreateUser(context.Background(), u))
	return u
}
