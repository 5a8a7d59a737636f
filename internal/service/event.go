package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/egghunt/egghunt-server/internal/domain"
	domainerrors "github.com/egghunt/egghunt-server/internal/errors"
	"github.com/egghunt/egghunt-server/internal/id"
	"github.com/egghunt/egghunt-server/internal/slug"
	"github.com/egghunt/egghunt-server/internal/store"
)

// maxSlugAttempts bounds the search for a free generated slug.
const maxSlugAttempts = 50

// EventService manages events and the caches placed in them.
type EventService struct {
	store  store.Store
	logger *slog.Logger
}

// NewEventService creates an event service.
func NewEventService(store store.Store, logger *slog.Logger) *EventService {
	return &EventService{
		store:  store,
		logger: logger,
	}
}

// CreateEventRequest contains the data for a new event.
type CreateEventRequest struct {
	Name     string     `json:"name" validate:"required,max=100"`
	Slug     string     `json:"slug,omitempty" validate:"omitempty,slug,max=100"`
	Active   *bool      `json:"active,omitempty"` // defaults to true
	StartsAt *time.Time `json:"starts_at,omitempty"`
	EndsAt   *time.Time `json:"ends_at,omitempty"`
}

// CreateCacheRequest contains the data for a new cache.
type CreateCacheRequest struct {
	EventID     string  `json:"event_id" validate:"required"`
	Name        string  `json:"name" validate:"required,max=100"`
	Description string  `json:"description" validate:"max=2000"`
	Hint        string  `json:"hint,omitempty" validate:"max=500"`
	Latitude    float64 `json:"latitude" validate:"latitude"`
	Longitude   float64 `json:"longitude" validate:"longitude"`
	Active      *bool   `json:"active,omitempty"` // defaults to true
}

// CreateEvent creates an event. Without an explicit slug one is derived
// from the name and suffixed until it is free.
func (s *EventService) CreateEvent(ctx context.Context, req CreateEventRequest) (*domain.Event, error) {
	req.Name = strings.TrimSpace(req.Name)
	if err := validate.Validate(req); err != nil {
		return nil, err
	}
	if req.StartsAt != nil && req.EndsAt != nil && !req.EndsAt.After(*req.StartsAt) {
		return nil, domainerrors.ValidationWithDetails("validation failed",
			map[string]string{"ends_at": "must be after starts_at"})
	}

	eventSlug := req.Slug
	if eventSlug == "" {
		var err error
		if eventSlug, err = s.freeSlug(ctx, slug.Make(req.Name)); err != nil {
			return nil, err
		}
	}

	eventID, err := id.Generate("event")
	if err != nil {
		return nil, fmt.Errorf("generate event ID: %w", err)
	}

	event := &domain.Event{
		Entity:   domain.Entity{ID: eventID},
		Name:     req.Name,
		Slug:     eventSlug,
		Active:   req.Active == nil || *req.Active,
		StartsAt: req.StartsAt,
		EndsAt:   req.EndsAt,
	}
	event.InitTimestamps()

	if err := s.store.CreateEvent(ctx, event); err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			return nil, domainerrors.Conflict(fmt.Sprintf("slug %q is already taken", eventSlug)).WithCause(err)
		}
		return nil, fmt.Errorf("create event: %w", err)
	}

	if s.logger != nil {
		s.logger.Info("Event created", "event_id", event.ID, "slug", event.Slug)
	}
	return event, nil
}

// freeSlug returns base or the first suffixed variant not used by an event.
func (s *EventService) freeSlug(ctx context.Context, base string) (string, error) {
	for n := 1; n <= maxSlugAttempts; n++ {
		candidate := slug.WithSuffix(base, n)
		_, err := s.store.GetEventBySlug(ctx, candidate)
		if errors.Is(err, store.ErrNotFound) {
			return candidate, nil
		}
		if err != nil {
			return "", fmt.Errorf("check slug: %w", err)
		}
	}
	return "", domainerrors.Conflict("could not find a free slug, please choose one")
}

// CreateCache places a new cache in an existing event.
func (s *EventService) CreateCache(ctx context.Context, req CreateCacheRequest) (*domain.Cache, error) {
	req.Name = strings.TrimSpace(req.Name)
	if err := validate.Validate(req); err != nil {
		return nil, err
	}

	if _, err := s.store.GetEvent(ctx, req.EventID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, domainerrors.NotFound("event not found").WithCause(err)
		}
		return nil, fmt.Errorf("get event: %w", err)
	}

	cacheID, err := id.Generate("cache")
	if err != nil {
		return nil, fmt.Errorf("generate cache ID: %w", err)
	}

	cache := &domain.Cache{
		Entity:      domain.Entity{ID: cacheID},
		EventID:     req.EventID,
		Name:        req.Name,
		Description: req.Description,
		Hint:        req.Hint,
		Latitude:    req.Latitude,
		Longitude:   req.Longitude,
		Active:      req.Active == nil || *req.Active,
	}
	cache.InitTimestamps()

	if err := s.store.CreateCache(ctx, cache); err != nil {
		switch {
		case errors.Is(err, store.ErrNotFound):
			return nil, domainerrors.NotFound("event not found").WithCause(err)
		case errors.Is(err, store.ErrInvalidInput):
			return nil, domainerrors.Validation("cache coordinates are out of range").WithCause(err)
		}
		return nil, fmt.Errorf("create cache: %w", err)
	}

	if s.logger != nil {
		s.logger.Info("Cache created", "cache_id", cache.ID, "event_id", cache.EventID)
	}
	return cache, nil
}

// ListActiveEvents returns the events players can join, by start time.
func (s *EventService) ListActiveEvents(ctx context.Context) ([]*domain.Event, error) {
	events, err := s.store.ListEvents(ctx, true)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	return events, nil
}
