package api

import (
	"net/http"
	"strings"

	"github.com/danielgtaylor/huma/v2"
	"github.com/go-chi/chi/v5/middleware"

	domainerrors "github.com/egghunt/egghunt-server/internal/errors"
)

// contentSecurityPolicy allows map tiles from OpenStreetMap and nothing
// else from outside the origin.
const contentSecurityPolicy = "default-src 'self'; " +
	"img-src 'self' https://*.tile.openstreetmap.org data:; " +
	"style-src 'self' 'unsafe-inline'; " +
	"script-src 'self'; " +
	"connect-src 'self'"

// securityHeaders are set on every response.
func securityHeaders() []func(http.Handler) http.Handler {
	return []func(http.Handler) http.Handler{
		middleware.SetHeader("X-Content-Type-Options", "nosniff"),
		middleware.SetHeader("X-Frame-Options", "DENY"),
		middleware.SetHeader("Referrer-Policy", "no-referrer"),
		middleware.SetHeader("Content-Security-Policy", contentSecurityPolicy),
	}
}

// setupExempt reports whether path stays reachable before first-time setup.
func setupExempt(path string) bool {
	return path == "/health" || strings.HasPrefix(path, "/api/v1/setup")
}

// setupGuard rejects every operation except health and setup with 403
// SETUP_REQUIRED until an admin exists. Setup never reverts, so once it is
// observed complete the store is no longer consulted.
func (s *Server) setupGuard(ctx huma.Context, next func(huma.Context)) {
	if s.setupDone.Load() || setupExempt(ctx.URL().Path) {
		next(ctx)
		return
	}

	status, err := s.services.Auth.SetupStatus(ctx.Context())
	if err != nil {
		//nolint:errcheck // the response is already being written
		_ = huma.WriteErr(s.api, ctx, http.StatusInternalServerError, "setup state unavailable", err)
		return
	}
	if status.SetupComplete || status.AdminExists {
		s.setupDone.Store(true)
		next(ctx)
		return
	}

	//nolint:errcheck // the response is already being written
	_ = huma.WriteErr(s.api, ctx, http.StatusForbidden, "setup required",
		domainerrors.SetupRequired("server setup has not been completed"))
}
