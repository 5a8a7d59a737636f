package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/egghunt/egghunt-server/internal/auth"
	"github.com/egghunt/egghunt-server/internal/domain"
	domainerrors "github.com/egghunt/egghunt-server/internal/errors"
	"github.com/egghunt/egghunt-server/internal/store"
)

// ctxKey is the type for context keys to avoid collisions.
type ctxKey string

// claimsKey is the context key for verified access token claims.
const claimsKey ctxKey = "claims"

// getClaims returns the verified claims stored by authMiddleware.
func getClaims(ctx context.Context) (*auth.AccessClaims, bool) {
	claims, ok := ctx.Value(claimsKey).(*auth.AccessClaims)
	return claims, ok && claims != nil
}

// authMiddleware verifies a Bearer token when present and stores its claims
// in the request context. Requests without a valid token continue
// anonymously; handlers decide whether authentication is required.
func authMiddleware(tokens *auth.TokenService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
			if !ok || token == "" {
				next.ServeHTTP(w, r)
				return
			}

			claims, err := tokens.VerifyAccessToken(token)
			if err != nil {
				next.ServeHTTP(w, r)
				return
			}

			ctx := context.WithValue(r.Context(), claimsKey, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireUser returns the authenticated user, re-read from the store so a
// token for a removed account stops working.
func (s *Server) RequireUser(ctx context.Context) (*domain.User, error) {
	claims, ok := getClaims(ctx)
	if !ok {
		return nil, domainerrors.Unauthenticated("authentication required")
	}

	user, err := s.store.GetUser(ctx, claims.UserID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, domainerrors.Unauthenticated("user not found")
	}
	if err != nil {
		return nil, fmt.Errorf("load user: %w", err)
	}
	return user, nil
}

// RequireAdmin validates the user is authenticated and has admin role.
func (s *Server) RequireAdmin(ctx context.Context) (*domain.User, error) {
	user, err := s.RequireUser(ctx)
	if err != nil {
		return nil, err
	}
	if !user.IsAdmin() {
		return nil, domainerrors.Forbidden("admin access required")
	}
	return user, nil
}
