package api

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"path/filepath"
	"testing"
	"time"

	"github.com/danielgtaylor/huma/v2/humatest"
	"github.com/egghunt/egghunt-server/internal/auth"
	"github.com/egghunt/egghunt-server/internal/domain"
	domainerrors "github.com/egghunt/egghunt-server/internal/errors"
	"github.com/egghunt/egghunt-server/internal/geo"
	"github.com/egghunt/egghunt-server/internal/kvcache"
	"github.com/egghunt/egghunt-server/internal/service"
	"github.com/egghunt/egghunt-server/internal/store/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// square is where the API tests hide their caches.
var square = geo.Point{Lat: 50.941278, Lon: 6.958281}

// testEnvelope mirrors Envelope with a typed payload.
type testEnvelope[T any] struct {
	Version int            `json:"v"`
	Success bool           `json:"success"`
	Data    T              `json:"data"`
	Error   string         `json:"error"`
	Code    string         `json:"code"`
	Details map[string]any `json:"details"`
}

type testServer struct {
	*Server
	api    humatest.TestAPI
	db     *sqlite.Store
	tokens *auth.TokenService
}

// setupTestServer builds the full HTTP stack on a temporary database.
// Rate limits are generous unless opts overrides them.
func setupTestServer(t *testing.T, opts ...func(*Options)) *testServer {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	db, err := sqlite.Open(filepath.Join(t.TempDir(), "test.db"), logger)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() }) //nolint:errcheck // Test cleanup

	cache, err := kvcache.New(0, logger)
	require.NoError(t, err)
	t.Cleanup(func() { _ = cache.Close() }) //nolint:errcheck // Test cleanup

	tokens, err := auth.NewTokenService(make([]byte, auth.KeySize), time.Hour)
	require.NoError(t, err)

	settings := service.NewSettingsService(db, cache, logger)
	proximity := service.NewProximityService(db, settings, logger)
	services := &Services{
		Settings:  settings,
		Proximity: proximity,
		Claim:     service.NewClaimService(db, proximity, logger),
		Invite:    service.NewInviteService(db, tokens, logger),
		Auth:      service.NewAuthService(db, tokens, settings, logger),
		Event:     service.NewEventService(db, logger),
	}

	options := Options{Version: "test", ClaimPerMinute: 1000, AuthPerMinute: 1000}
	for _, opt := range opts {
		opt(&options)
	}

	s := NewServer(db, services, tokens, options, logger)
	t.Cleanup(s.Close)

	return &testServer{
		Server: s,
		api:    humatest.Wrap(t, s.API()),
		db:     db,
		tokens: tokens,
	}
}

func bearer(token string) string {
	return "Authorization: Bearer " + token
}

func decode[T any](t *testing.T, body []byte) testEnvelope[T] {
	t.Helper()
	var env testEnvelope[T]
	require.NoError(t, json.Unmarshal(body, &env), "body: %s", body)
	return env
}

// setupAdmin runs first-time setup and returns the admin token.
func (ts *testServer) setupAdmin(t *testing.T) string {
	t.Helper()

	resp := ts.api.Post("/api/v1/setup", map[string]any{
		"email":         "admin@example.com",
		"password":      "correct horse battery",
		"instance_name": "Osterfest",
	})
	require.Equal(t, http.StatusCreated, resp.Code, resp.Body.String())

	return decode[AuthResponse](t, resp.Body.Bytes()).Data.AccessToken
}

func (ts *testServer) createEvent(t *testing.T, adminToken, name string) *domain.Event {
	t.Helper()

	resp := ts.api.Post("/api/v1/admin/events", bearer(adminToken), map[string]any{"name": name})
	require.Equal(t, http.StatusCreated, resp.Code, resp.Body.String())

	event := decode[domain.Event](t, resp.Body.Bytes()).Data
	return &event
}

func (ts *testServer) createCache(t *testing.T, adminToken, eventID string, at geo.Point) *domain.Cache {
	t.Helper()

	resp := ts.api.Post("/api/v1/admin/caches", bearer(adminToken), map[string]any{
		"event_id":    eventID,
		"name":        "Golden egg",
		"description": "Behind the fountain",
		"latitude":    at.Lat,
		"longitude":   at.Lon,
	})
	require.Equal(t, http.StatusCreated, resp.Code, resp.Body.String())

	cache := decode[domain.Cache](t, resp.Body.Bytes()).Data
	return &cache
}

func (ts *testServer) createInvite(t *testing.T, adminToken, eventID string, maxUses int) *domain.InviteToken {
	t.Helper()

	resp := ts.api.Post("/api/v1/admin/invites", bearer(adminToken), map[string]any{
		"event_id": eventID,
		"max_uses": maxUses,
	})
	require.Equal(t, http.StatusCreated, resp.Code, resp.Body.String())

	invite := decode[domain.InviteToken](t, resp.Body.Bytes()).Data
	return &invite
}

// registerPlayer registers email through invite and returns the player token.
func (ts *testServer) registerPlayer(t *testing.T, token, email string) string {
	t.Helper()

	resp := ts.api.Post("/api/v1/auth/register", map[string]any{
		"token":    token,
		"email":    email,
		"password": "hunting season",
	})
	require.Equal(t, http.StatusCreated, resp.Code, resp.Body.String())

	return decode[AuthResponse](t, resp.Body.Bytes()).Data.AccessToken
}

// huntFixture is an admin, an active event with one cache and a player.
type huntFixture struct {
	adminToken  string
	playerToken string
	event       *domain.Event
	cache       *domain.Cache
}

func (ts *testServer) setupHunt(t *testing.T) *huntFixture {
	t.Helper()

	adminToken := ts.setupAdmin(t)
	event := ts.createEvent(t, adminToken, "Spring Hunt")
	cache := ts.createCache(t, adminToken, event.ID, square)
	invite := ts.createInvite(t, adminToken, event.ID, 5)

	return &huntFixture{
		adminToken:  adminToken,
		playerToken: ts.registerPlayer(t, invite.Token, "player@example.com"),
		event:       event,
		cache:       cache,
	}
}

func TestSecurityHeaders(t *testing.T) {
	ts := setupTestServer(t)

	for _, path := range []string{"/health", "/api/v1/setup/status", "/api/v1/events"} {
		t.Run(path, func(t *testing.T) {
			resp := ts.api.Get(path)
			assert.Equal(t, "nosniff", resp.Header().Get("X-Content-Type-Options"))
			assert.Equal(t, "DENY", resp.Header().Get("X-Frame-Options"))
			assert.Equal(t, "no-referrer", resp.Header().Get("Referrer-Policy"))
			assert.Contains(t, resp.Header().Get("Content-Security-Policy"), "default-src 'self'")
			assert.Contains(t, resp.Header().Get("Content-Security-Policy"), "https://*.tile.openstreetmap.org")
		})
	}
}

func TestSetupGuard_BlocksUntilSetup(t *testing.T) {
	ts := setupTestServer(t)

	requests := map[string]func() (int, []byte){
		"instance": func() (int, []byte) {
			r := ts.api.Get("/api/v1/instance")
			return r.Code, r.Body.Bytes()
		},
		"register": func() (int, []byte) {
			r := ts.api.Post("/api/v1/auth/register", map[string]any{
				"token": "00000000-0000-4000-8000-000000000000", "email": "early@example.com", "password": "hunting season",
			})
			return r.Code, r.Body.Bytes()
		},
		"login": func() (int, []byte) {
			r := ts.api.Post("/api/v1/auth/login", map[string]any{"email": "early@example.com", "password": "hunting season"})
			return r.Code, r.Body.Bytes()
		},
		"invite lookup": func() (int, []byte) {
			r := ts.api.Get("/api/v1/invites/00000000-0000-4000-8000-000000000000")
			return r.Code, r.Body.Bytes()
		},
		"events": func() (int, []byte) {
			r := ts.api.Get("/api/v1/events")
			return r.Code, r.Body.Bytes()
		},
	}

	for name, do := range requests {
		t.Run(name, func(t *testing.T) {
			code, body := do()
			assert.Equal(t, http.StatusForbidden, code)
			env := decode[any](t, body)
			assert.False(t, env.Success)
			assert.Equal(t, string(domainerrors.CodeSetupRequired), env.Code)
		})
	}

	assert.Equal(t, http.StatusOK, ts.api.Get("/health").Code)
	assert.Equal(t, http.StatusOK, ts.api.Get("/api/v1/setup/status").Code)

	ts.setupAdmin(t)

	assert.Equal(t, http.StatusOK, ts.api.Get("/api/v1/instance").Code)
	assert.Equal(t, http.StatusUnauthorized, ts.api.Get("/api/v1/events").Code)
}

func TestSetupGuard_StoredFlagCompletesSetup(t *testing.T) {
	ts := setupTestServer(t)
	require.NoError(t, ts.db.UpsertSetting(context.Background(), domain.SettingSetupCompleted, "true"))

	assert.Equal(t, http.StatusOK, ts.api.Get("/api/v1/instance").Code)
}

func TestRequireUser_UnknownUser(t *testing.T) {
	ts := setupTestServer(t)
	ts.setupAdmin(t)

	ghost := &domain.User{Entity: domain.Entity{ID: "user-ghost"}, Email: "ghost@example.com", Role: domain.RolePlayer}
	token, _, err := ts.tokens.GenerateAccessToken(ghost)
	require.NoError(t, err)

	resp := ts.api.Get("/api/v1/events", bearer(token))
	assert.Equal(t, http.StatusUnauthorized, resp.Code)
	assert.Equal(t, string(domainerrors.CodeUnauthenticated), decode[any](t, resp.Body.Bytes()).Code)
}

func TestRequireUser_StoreFailureIsInternal(t *testing.T) {
	ts := setupTestServer(t)
	f := ts.setupHunt(t)

	_ = ts.db.Close() //nolint:errcheck // closing early on purpose

	resp := ts.api.Get("/api/v1/events", bearer(f.playerToken))
	assert.Equal(t, http.StatusInternalServerError, resp.Code)
	assert.Equal(t, string(domainerrors.CodeInternal), decode[any](t, resp.Body.Bytes()).Code)
}
