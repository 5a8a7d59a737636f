package api

import "github.com/egghunt/egghunt-server/internal/service"

// Services groups the business logic services used by the API server.
type Services struct {
	Settings  *service.SettingsService
	Proximity *service.ProximityService
	Claim     *service.ClaimService
	Invite    *service.InviteService
	Auth      *service.AuthService
	Event     *service.EventService
}
