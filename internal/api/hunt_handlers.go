package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/egghunt/egghunt-server/internal/domain"
	"github.com/egghunt/egghunt-server/internal/service"
)

func (s *Server) registerHuntRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "listEvents",
		Method:      http.MethodGet,
		Path:        "/api/v1/events",
		Summary:     "List active events",
		Tags:        []string{"Hunt"},
		Security:    bearerAuth,
	}, s.handleListEvents)

	huma.Register(s.api, huma.Operation{
		OperationID: "nearbyCaches",
		Method:      http.MethodPost,
		Path:        "/api/v1/caches/nearby",
		Summary:     "List nearby caches",
		Description: "Returns the active caches within the visibility radius of the given position, nearest first",
		Tags:        []string{"Hunt"},
		Security:    bearerAuth,
	}, s.handleNearbyCaches)

	huma.Register(s.api, huma.Operation{
		OperationID: "claimCache",
		Method:      http.MethodPost,
		Path:        "/api/v1/caches/found",
		Summary:     "Claim a cache",
		Description: "Marks a cache as found when the player is within the found radius. Returns 201 for a new find and 200 when the cache was already claimed by this player.",
		Tags:        []string{"Hunt"},
		Security:    bearerAuth,
	}, s.handleClaimCache)

	huma.Register(s.api, huma.Operation{
		OperationID: "listFinds",
		Method:      http.MethodGet,
		Path:        "/api/v1/events/{id}/finds",
		Summary:     "List my finds",
		Description: "Returns the caches the current player has found in an event",
		Tags:        []string{"Hunt"},
		Security:    bearerAuth,
	}, s.handleListFinds)
}

// === DTOs ===

// PositionRequest is a player position within an event.
type PositionRequest struct {
	EventID   string  `json:"event_id" doc:"Event ID"`
	Latitude  float64 `json:"latitude" minimum:"-90" maximum:"90" doc:"Latitude in decimal degrees"`
	Longitude float64 `json:"longitude" minimum:"-180" maximum:"180" doc:"Longitude in decimal degrees"`
}

// NearbyInput wraps the nearby request for Huma.
type NearbyInput struct {
	Body PositionRequest
}

// NearbyOutput wraps the visible caches for Huma.
type NearbyOutput struct {
	Body struct {
		Caches []domain.VisibleCache `json:"caches" doc:"Visible caches, nearest first"`
	}
}

// ClaimRequest is a claim attempt at the player's current position.
type ClaimRequest struct {
	CacheID   string  `json:"cache_id" doc:"Cache ID"`
	EventID   string  `json:"event_id" doc:"Event ID"`
	Latitude  float64 `json:"latitude" minimum:"-90" maximum:"90" doc:"Latitude in decimal degrees"`
	Longitude float64 `json:"longitude" minimum:"-180" maximum:"180" doc:"Longitude in decimal degrees"`
}

// ClaimInput wraps the claim request for Huma.
type ClaimInput struct {
	Body ClaimRequest
}

// ClaimResponse reports the stored find.
type ClaimResponse struct {
	domain.FoundRecord
	Created bool `json:"created" doc:"False when the find already existed"`
}

// ClaimOutput wraps the claim response for Huma.
type ClaimOutput struct {
	Status int
	Body   ClaimResponse
}

// EventsOutput wraps the event list for Huma.
type EventsOutput struct {
	Body struct {
		Events []*domain.Event `json:"events" doc:"Active events"`
	}
}

// EventIDInput carries the event path parameter.
type EventIDInput struct {
	ID string `path:"id" doc:"Event ID"`
}

// FindsOutput wraps the find list for Huma.
type FindsOutput struct {
	Body struct {
		Finds []*domain.FoundRecord `json:"finds" doc:"Finds, oldest first"`
	}
}

// === Handlers ===

func (s *Server) handleListEvents(ctx context.Context, _ *struct{}) (*EventsOutput, error) {
	if _, err := s.RequireUser(ctx); err != nil {
		return nil, err
	}

	events, err := s.services.Event.ListActiveEvents(ctx)
	if err != nil {
		return nil, err
	}

	out := &EventsOutput{}
	out.Body.Events = events
	if out.Body.Events == nil {
		out.Body.Events = []*domain.Event{}
	}
	return out, nil
}

func (s *Server) handleNearbyCaches(ctx context.Context, input *NearbyInput) (*NearbyOutput, error) {
	user, err := s.RequireUser(ctx)
	if err != nil {
		return nil, err
	}

	caches, err := s.services.Proximity.FindVisibleCaches(ctx, user.ID, service.NearbyRequest{
		EventID:   input.Body.EventID,
		Latitude:  input.Body.Latitude,
		Longitude: input.Body.Longitude,
	})
	if err != nil {
		return nil, err
	}

	out := &NearbyOutput{}
	out.Body.Caches = caches
	if out.Body.Caches == nil {
		out.Body.Caches = []domain.VisibleCache{}
	}
	return out, nil
}

func (s *Server) handleClaimCache(ctx context.Context, input *ClaimInput) (*ClaimOutput, error) {
	user, err := s.RequireUser(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.allowClaim(user.ID); err != nil {
		return nil, err
	}

	record, created, err := s.services.Claim.Claim(ctx, user.ID, service.ClaimRequest{
		CacheID:   input.Body.CacheID,
		EventID:   input.Body.EventID,
		Latitude:  input.Body.Latitude,
		Longitude: input.Body.Longitude,
	})
	if err != nil {
		return nil, err
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	return &ClaimOutput{
		Status: status,
		Body:   ClaimResponse{FoundRecord: *record, Created: created},
	}, nil
}

func (s *Server) handleListFinds(ctx context.Context, input *EventIDInput) (*FindsOutput, error) {
	user, err := s.RequireUser(ctx)
	if err != nil {
		return nil, err
	}

	finds, err := s.services.Claim.ListFinds(ctx, user.ID, input.ID)
	if err != nil {
		return nil, err
	}

	out := &FindsOutput{}
	out.Body.Finds = finds
	if out.Body.Finds == nil {
		out.Body.Finds = []*domain.FoundRecord{}
	}
	return out, nil
}
