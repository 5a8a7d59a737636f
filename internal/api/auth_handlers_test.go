package api

import (
	"net/http"
	"testing"

	"github.com/egghunt/egghunt-server/internal/domain"
	"github.com/egghunt/egghunt-server/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetup_Flow(t *testing.T) {
	ts := setupTestServer(t)

	resp := ts.api.Get("/api/v1/setup/status")
	require.Equal(t, http.StatusOK, resp.Code)
	status := decode[service.SetupStatus](t, resp.Body.Bytes())
	assert.False(t, status.Data.SetupComplete)
	assert.False(t, status.Data.AdminExists)

	resp = ts.api.Post("/api/v1/setup", map[string]any{
		"email":         "admin@example.com",
		"password":      "correct horse battery",
		"instance_name": "Osterfest",
	})
	require.Equal(t, http.StatusCreated, resp.Code, resp.Body.String())

	auth := decode[AuthResponse](t, resp.Body.Bytes())
	assert.Equal(t, 1, auth.Version)
	assert.True(t, auth.Success)
	assert.Equal(t, "Bearer", auth.Data.TokenType)
	assert.Equal(t, domain.RoleAdmin, auth.Data.User.Role)
	assert.NotContains(t, resp.Body.String(), "password")

	claims, err := ts.tokens.VerifyAccessToken(auth.Data.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, auth.Data.User.ID, claims.UserID)

	resp = ts.api.Get("/api/v1/setup/status")
	status = decode[service.SetupStatus](t, resp.Body.Bytes())
	assert.True(t, status.Data.SetupComplete)
	assert.True(t, status.Data.AdminExists)
}

func TestSetup_OnlyOnce(t *testing.T) {
	ts := setupTestServer(t)
	ts.setupAdmin(t)

	resp := ts.api.Post("/api/v1/setup", map[string]any{
		"email":    "second@example.com",
		"password": "another password",
	})
	assert.Equal(t, http.StatusConflict, resp.Code)

	env := decode[any](t, resp.Body.Bytes())
	assert.False(t, env.Success)
	assert.Equal(t, "ALREADY_CONFIGURED", env.Code)
}

func TestSetup_ValidationError(t *testing.T) {
	ts := setupTestServer(t)

	resp := ts.api.Post("/api/v1/setup", map[string]any{
		"email":    "not-an-email",
		"password": "short",
	})
	assert.Equal(t, http.StatusBadRequest, resp.Code)

	env := decode[any](t, resp.Body.Bytes())
	assert.Equal(t, "VALIDATION", env.Code)
	assert.Contains(t, env.Details, "email")
	assert.Contains(t, env.Details, "password")
}

func TestLogin(t *testing.T) {
	ts := setupTestServer(t)
	ts.setupAdmin(t)

	t.Run("success", func(t *testing.T) {
		resp := ts.api.Post("/api/v1/auth/login", map[string]any{
			"email":    "admin@example.com",
			"password": "correct horse battery",
		})
		require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

		env := decode[AuthResponse](t, resp.Body.Bytes())
		assert.NotEmpty(t, env.Data.AccessToken)
		assert.NotNil(t, env.Data.User.LastLoginAt)
	})

	t.Run("wrong password", func(t *testing.T) {
		resp := ts.api.Post("/api/v1/auth/login", map[string]any{
			"email":    "admin@example.com",
			"password": "wrong horse battery",
		})
		assert.Equal(t, http.StatusUnauthorized, resp.Code)
		assert.Equal(t, "INVALID_CREDENTIALS", decode[any](t, resp.Body.Bytes()).Code)
	})

	t.Run("unknown email", func(t *testing.T) {
		resp := ts.api.Post("/api/v1/auth/login", map[string]any{
			"email":    "nobody@example.com",
			"password": "correct horse battery",
		})
		assert.Equal(t, http.StatusUnauthorized, resp.Code)
		assert.Equal(t, "INVALID_CREDENTIALS", decode[any](t, resp.Body.Bytes()).Code)
	})
}

func TestRegister(t *testing.T) {
	ts := setupTestServer(t)
	adminToken := ts.setupAdmin(t)
	event := ts.createEvent(t, adminToken, "Spring Hunt")
	invite := ts.createInvite(t, adminToken, event.ID, 1)

	resp := ts.api.Post("/api/v1/auth/register", map[string]any{
		"token":    invite.Token,
		"email":    "player@example.com",
		"password": "hunting season",
	})
	require.Equal(t, http.StatusCreated, resp.Code, resp.Body.String())

	env := decode[AuthResponse](t, resp.Body.Bytes())
	assert.Equal(t, domain.RolePlayer, env.Data.User.Role)
	assert.Equal(t, event.ID, env.Data.EventID)

	t.Run("exhausted token", func(t *testing.T) {
		resp := ts.api.Post("/api/v1/auth/register", map[string]any{
			"token":    invite.Token,
			"email":    "late@example.com",
			"password": "hunting season",
		})
		assert.Equal(t, http.StatusGone, resp.Code)
		assert.Equal(t, "TOKEN_EXHAUSTED", decode[any](t, resp.Body.Bytes()).Code)
	})

	t.Run("unknown token", func(t *testing.T) {
		resp := ts.api.Post("/api/v1/auth/register", map[string]any{
			"token":    "does-not-exist",
			"email":    "lost@example.com",
			"password": "hunting season",
		})
		assert.Equal(t, http.StatusNotFound, resp.Code)
		assert.Equal(t, "NOT_FOUND", decode[any](t, resp.Body.Bytes()).Code)
	})

	t.Run("duplicate email", func(t *testing.T) {
		other := ts.createInvite(t, adminToken, event.ID, 1)
		resp := ts.api.Post("/api/v1/auth/register", map[string]any{
			"token":    other.Token,
			"email":    "player@example.com",
			"password": "hunting season",
		})
		assert.Equal(t, http.StatusConflict, resp.Code)
		assert.Equal(t, "DUPLICATE_EMAIL", decode[any](t, resp.Body.Bytes()).Code)
	})

	t.Run("missing field", func(t *testing.T) {
		resp := ts.api.Post("/api/v1/auth/register", map[string]any{
			"token": invite.Token,
			"email": "player2@example.com",
		})
		assert.Equal(t, http.StatusBadRequest, resp.Code)
		assert.Equal(t, "VALIDATION", decode[any](t, resp.Body.Bytes()).Code)
	})
}

func TestAuthRateLimit(t *testing.T) {
	ts := setupTestServer(t, func(o *Options) { o.AuthPerMinute = 3 })
	// Setup shares the per-IP budget with login.
	ts.setupAdmin(t)

	login := map[string]any{"email": "nobody@example.com", "password": "whatever it is"}

	assert.Equal(t, http.StatusUnauthorized, ts.api.Post("/api/v1/auth/login", login).Code)
	assert.Equal(t, http.StatusUnauthorized, ts.api.Post("/api/v1/auth/login", login).Code)

	resp := ts.api.Post("/api/v1/auth/login", login)
	assert.Equal(t, http.StatusTooManyRequests, resp.Code)

	env := decode[any](t, resp.Body.Bytes())
	assert.False(t, env.Success)
	assert.Equal(t, "RATE_LIMITED", env.Code)

	// Unlimited routes are unaffected.
	assert.Equal(t, http.StatusOK, ts.api.Get("/api/v1/setup/status").Code)
}
