package api

import (
	"net"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	domainerrors "github.com/egghunt/egghunt-server/internal/errors"
)

// authRateLimit is a per-operation huma middleware limiting requests per
// client IP. The client IP comes from RemoteAddr, which chi's RealIP
// middleware has already rewritten from proxy headers.
func (s *Server) authRateLimit(ctx huma.Context, next func(huma.Context)) {
	if !s.authLimiter.Allow(clientIP(ctx.RemoteAddr())) {
		if s.logger != nil {
			s.logger.Warn("Rate limit exceeded",
				"ip", clientIP(ctx.RemoteAddr()),
				"operation", ctx.Operation().OperationID,
			)
		}
		//nolint:errcheck // the response is already being written
		_ = huma.WriteErr(s.api, ctx, http.StatusTooManyRequests, "too many requests",
			domainerrors.RateLimited("too many requests, please try again later"))
		return
	}
	next(ctx)
}

// allowClaim applies the per-user claim limit.
func (s *Server) allowClaim(userID string) error {
	if !s.claimLimiter.Allow(userID) {
		return domainerrors.RateLimited("too many claims, please slow down")
	}
	return nil
}

// clientIP strips the port from a RemoteAddr value.
func clientIP(remoteAddr string) string {
	host, _, err := net.SplitHostPort(remoteAddr)
	if err != nil {
		return remoteAddr
	}
	return host
}
