package api

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
)

func (s *Server) registerInviteRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "getInviteDetails",
		Method:      http.MethodGet,
		Path:        "/api/v1/invites/{token}",
		Summary:     "Get invite details",
		Description: "Checks an invite token without consuming it. Expired and used-up tokens return 410.",
		Tags:        []string{"Invites"},
		Middlewares: huma.Middlewares{s.authRateLimit},
	}, s.handleGetInviteDetails)
}

// InviteTokenInput carries the token path parameter.
type InviteTokenInput struct {
	Token string `path:"token" doc:"Invite token"`
}

// InviteDetailsResponse is the public view of a redeemable invite.
type InviteDetailsResponse struct {
	EventID       string     `json:"event_id" doc:"Event the invite joins"`
	EventName     string     `json:"event_name" doc:"Event display name"`
	RemainingUses int        `json:"remaining_uses" doc:"Registrations still allowed"`
	ExpiresAt     *time.Time `json:"expires_at,omitempty" doc:"Expiry, if any"`
}

// InviteDetailsOutput wraps the invite details for Huma.
type InviteDetailsOutput struct {
	Body InviteDetailsResponse
}

func (s *Server) handleGetInviteDetails(ctx context.Context, input *InviteTokenInput) (*InviteDetailsOutput, error) {
	invite, err := s.services.Invite.Validate(ctx, input.Token, time.Now())
	if err != nil {
		return nil, err
	}

	resp := InviteDetailsResponse{
		EventID:       invite.EventID,
		RemainingUses: invite.RemainingUses(),
		ExpiresAt:     invite.ExpiresAt,
	}
	if event, err := s.store.GetEvent(ctx, invite.EventID); err == nil {
		resp.EventName = event.Name
	}

	return &InviteDetailsOutput{Body: resp}, nil
}
