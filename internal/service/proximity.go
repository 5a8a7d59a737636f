package service

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/egghunt/egghunt-server/internal/domain"
	domainerrors "github.com/egghunt/egghunt-server/internal/errors"
	"github.com/egghunt/egghunt-server/internal/geo"
	"github.com/egghunt/egghunt-server/internal/store"
)

// ProximityService decides which caches a player can see and whether a
// player stands close enough to claim one.
type ProximityService struct {
	store    store.Store
	settings *SettingsService
	logger   *slog.Logger
}

// NewProximityService creates a proximity service.
func NewProximityService(store store.Store, settings *SettingsService, logger *slog.Logger) *ProximityService {
	return &ProximityService{
		store:    store,
		settings: settings,
		logger:   logger,
	}
}

// NearbyRequest is a player's position within an event.
type NearbyRequest struct {
	EventID   string  `json:"event_id" validate:"required"`
	Latitude  float64 `json:"latitude" validate:"latitude"`
	Longitude float64 `json:"longitude" validate:"longitude"`
}

// FindVisibleCaches returns the active caches of an active event within the
// visibility radius of the player, nearest first. userID is used only to
// fill FoundByMe.
func (s *ProximityService) FindVisibleCaches(ctx context.Context, userID string, req NearbyRequest) ([]domain.VisibleCache, error) {
	if err := validate.Validate(req); err != nil {
		return nil, err
	}

	if _, err := s.activeEvent(ctx, req.EventID); err != nil {
		return nil, err
	}

	hunt, err := s.settings.HuntSettings(ctx)
	if err != nil {
		return nil, fmt.Errorf("resolve hunt settings: %w", err)
	}

	player := geo.Point{Lat: req.Latitude, Lon: req.Longitude}
	box := geo.BoundingBox(player, hunt.VisibilityRadiusMeters)

	candidates, err := s.store.ListActiveCachesInBox(ctx, req.EventID, box)
	if err != nil {
		return nil, fmt.Errorf("list caches: %w", err)
	}

	visible := make([]domain.VisibleCache, 0, len(candidates))
	for _, c := range candidates {
		d := geo.Distance(player, c.Point())
		if d > hunt.VisibilityRadiusMeters {
			continue
		}
		visible = append(visible, domain.VisibleCache{Cache: *c, DistanceMeters: d})
	}

	if len(visible) == 0 {
		return visible, nil
	}

	ids := make([]string, len(visible))
	for i := range visible {
		ids[i] = visible[i].ID
	}
	summaries, err := s.store.FoundSummaries(ctx, ids, userID)
	if err != nil {
		return nil, fmt.Errorf("found summaries: %w", err)
	}
	for i := range visible {
		visible[i].FoundSummary = summaries[visible[i].ID]
	}

	// Equidistant caches fall back to id order so the list is stable
	// between calls.
	slices.SortFunc(visible, func(a, b domain.VisibleCache) int {
		return cmp.Or(
			cmp.Compare(a.DistanceMeters, b.DistanceMeters),
			strings.Compare(a.ID, b.ID),
		)
	})

	return visible, nil
}

// EvaluateClaim measures the player's distance to cache against the found
// radius. It does not check whether the cache or its event is active.
func (s *ProximityService) EvaluateClaim(ctx context.Context, lat, lon float64, cache *domain.Cache) (domain.ClaimEvaluation, error) {
	hunt, err := s.settings.HuntSettings(ctx)
	if err != nil {
		return domain.ClaimEvaluation{}, fmt.Errorf("resolve hunt settings: %w", err)
	}
	return evaluateClaim(geo.Point{Lat: lat, Lon: lon}, cache, hunt.FoundRadiusMeters), nil
}

func evaluateClaim(player geo.Point, cache *domain.Cache, radius float64) domain.ClaimEvaluation {
	d := geo.Distance(player, cache.Point())
	return domain.ClaimEvaluation{
		WithinRange:    d <= radius,
		DistanceMeters: d,
		RadiusMeters:   radius,
	}
}

// activeEvent loads an event and rejects it when it does not exist or is
// switched off.
func (s *ProximityService) activeEvent(ctx context.Context, eventID string) (*domain.Event, error) {
	event, err := s.store.GetEvent(ctx, eventID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, domainerrors.NotFound("event not found").WithCause(err)
		}
		return nil, fmt.Errorf("get event: %w", err)
	}
	if !event.Active {
		return nil, domainerrors.Inactive("event is not active")
	}
	return event, nil
}
