package api

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/egghunt/egghunt-server/internal/domain"
	"github.com/egghunt/egghunt-server/internal/service"
)

func (s *Server) registerAdminRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID:   "createEvent",
		Method:        http.MethodPost,
		Path:          "/api/v1/admin/events",
		Summary:       "Create event",
		Description:   "Creates a hunt event. The slug is derived from the name when omitted (admin only).",
		Tags:          []string{"Admin"},
		Security:      bearerAuth,
		DefaultStatus: http.StatusCreated,
	}, s.handleCreateEvent)

	huma.Register(s.api, huma.Operation{
		OperationID:   "createCache",
		Method:        http.MethodPost,
		Path:          "/api/v1/admin/caches",
		Summary:       "Create cache",
		Description:   "Places a cache within an event (admin only)",
		Tags:          []string{"Admin"},
		Security:      bearerAuth,
		DefaultStatus: http.StatusCreated,
	}, s.handleCreateCache)

	huma.Register(s.api, huma.Operation{
		OperationID:   "createInvite",
		Method:        http.MethodPost,
		Path:          "/api/v1/admin/invites",
		Summary:       "Create invite",
		Description:   "Creates an invite token for an event (admin only)",
		Tags:          []string{"Admin"},
		Security:      bearerAuth,
		DefaultStatus: http.StatusCreated,
	}, s.handleCreateInvite)

	huma.Register(s.api, huma.Operation{
		OperationID: "listInvites",
		Method:      http.MethodGet,
		Path:        "/api/v1/admin/invites",
		Summary:     "List invites",
		Description: "Lists all invite tokens, newest first (admin only)",
		Tags:        []string{"Admin"},
		Security:    bearerAuth,
	}, s.handleListInvites)

	huma.Register(s.api, huma.Operation{
		OperationID:   "deleteInvite",
		Method:        http.MethodDelete,
		Path:          "/api/v1/admin/invites/{id}",
		Summary:       "Delete invite",
		Description:   "Deletes an invite token. Accounts created with it are kept (admin only).",
		Tags:          []string{"Admin"},
		Security:      bearerAuth,
		DefaultStatus: http.StatusNoContent,
	}, s.handleDeleteInvite)

	s.registerAdminSettingsRoutes()
}

// === DTOs ===

// CreateEventRequest is the request body for creating an event.
type CreateEventRequest struct {
	Name     string     `json:"name" doc:"Display name"`
	Slug     string     `json:"slug,omitempty" doc:"URL slug; derived from the name when empty"`
	Active   *bool      `json:"active,omitempty" doc:"Defaults to true"`
	StartsAt *time.Time `json:"starts_at,omitempty" doc:"Informational start time"`
	EndsAt   *time.Time `json:"ends_at,omitempty" doc:"Informational end time"`
}

// CreateEventInput wraps the create event request for Huma.
type CreateEventInput struct {
	Body CreateEventRequest
}

// EventOutput wraps an event for Huma.
type EventOutput struct {
	Body *domain.Event
}

// CreateCacheRequest is the request body for creating a cache.
type CreateCacheRequest struct {
	EventID     string  `json:"event_id" doc:"Event the cache belongs to"`
	Name        string  `json:"name" doc:"Display name"`
	Description string  `json:"description,omitempty" doc:"Shown to players in range"`
	Hint        string  `json:"hint,omitempty" doc:"Optional hint"`
	Latitude    float64 `json:"latitude" minimum:"-90" maximum:"90" doc:"Latitude in decimal degrees"`
	Longitude   float64 `json:"longitude" minimum:"-180" maximum:"180" doc:"Longitude in decimal degrees"`
	Active      *bool   `json:"active,omitempty" doc:"Defaults to true"`
}

// CreateCacheInput wraps the create cache request for Huma.
type CreateCacheInput struct {
	Body CreateCacheRequest
}

// CacheOutput wraps a cache for Huma.
type CacheOutput struct {
	Body *domain.Cache
}

// CreateInviteRequest is the request body for creating an invite.
type CreateInviteRequest struct {
	EventID   string     `json:"event_id" doc:"Event the invite joins"`
	MaxUses   int        `json:"max_uses,omitempty" doc:"Registrations allowed; defaults to 1"`
	ExpiresAt *time.Time `json:"expires_at,omitempty" doc:"Optional expiry"`
}

// CreateInviteInput wraps the create invite request for Huma.
type CreateInviteInput struct {
	Body CreateInviteRequest
}

// InviteOutput wraps an invite for Huma.
type InviteOutput struct {
	Body *domain.InviteToken
}

// ListInvitesOutput wraps the invite list for Huma.
type ListInvitesOutput struct {
	Body struct {
		Invites []*domain.InviteToken `json:"invites" doc:"Invite tokens"`
	}
}

// InviteIDInput carries the invite path parameter.
type InviteIDInput struct {
	ID string `path:"id" doc:"Invite ID"`
}

// === Handlers ===

func (s *Server) handleCreateEvent(ctx context.Context, input *CreateEventInput) (*EventOutput, error) {
	if _, err := s.RequireAdmin(ctx); err != nil {
		return nil, err
	}

	event, err := s.services.Event.CreateEvent(ctx, service.CreateEventRequest{
		Name:     input.Body.Name,
		Slug:     input.Body.Slug,
		Active:   input.Body.Active,
		StartsAt: input.Body.StartsAt,
		EndsAt:   input.Body.EndsAt,
	})
	if err != nil {
		return nil, err
	}
	return &EventOutput{Body: event}, nil
}

func (s *Server) handleCreateCache(ctx context.Context, input *CreateCacheInput) (*CacheOutput, error) {
	if _, err := s.RequireAdmin(ctx); err != nil {
		return nil, err
	}

	cache, err := s.services.Event.CreateCache(ctx, service.CreateCacheRequest{
		EventID:     input.Body.EventID,
		Name:        input.Body.Name,
		Description: input.Body.Description,
		Hint:        input.Body.Hint,
		Latitude:    input.Body.Latitude,
		Longitude:   input.Body.Longitude,
		Active:      input.Body.Active,
	})
	if err != nil {
		return nil, err
	}
	return &CacheOutput{Body: cache}, nil
}

func (s *Server) handleCreateInvite(ctx context.Context, input *CreateInviteInput) (*InviteOutput, error) {
	admin, err := s.RequireAdmin(ctx)
	if err != nil {
		return nil, err
	}

	invite, err := s.services.Invite.Create(ctx, admin.ID, service.CreateInviteRequest{
		EventID:   input.Body.EventID,
		MaxUses:   input.Body.MaxUses,
		ExpiresAt: input.Body.ExpiresAt,
	})
	if err != nil {
		return nil, err
	}
	return &InviteOutput{Body: invite}, nil
}

func (s *Server) handleListInvites(ctx context.Context, _ *struct{}) (*ListInvitesOutput, error) {
	if _, err := s.RequireAdmin(ctx); err != nil {
		return nil, err
	}

	invites, err := s.services.Invite.List(ctx)
	if err != nil {
		return nil, err
	}

	out := &ListInvitesOutput{}
	out.Body.Invites = invites
	if out.Body.Invites == nil {
		out.Body.Invites = []*domain.InviteToken{}
	}
	return out, nil
}

func (s *Server) handleDeleteInvite(ctx context.Context, input *InviteIDInput) (*struct{}, error) {
	if _, err := s.RequireAdmin(ctx); err != nil {
		return nil, err
	}

	if err := s.services.Invite.Delete(ctx, input.ID); err != nil {
		return nil, err
	}
	return nil, nil
}
