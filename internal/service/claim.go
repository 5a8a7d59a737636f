package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/egghunt/egghunt-server/internal/domain"
	domainerrors "github.com/egghunt/egghunt-server/internal/errors"
	"github.com/egghunt/egghunt-server/internal/id"
	"github.com/egghunt/egghunt-server/internal/store"
)

// ClaimService records caches found by players and tracks who found each
// cache first.
type ClaimService struct {
	store     store.Store
	proximity *ProximityService
	logger    *slog.Logger
	now       func() time.Time
}

// NewClaimService creates a claim service.
func NewClaimService(store store.Store, proximity *ProximityService, logger *slog.Logger) *ClaimService {
	return &ClaimService{
		store:     store,
		proximity: proximity,
		logger:    logger,
		now:       time.Now,
	}
}

// ClaimRequest is a player's attempt to mark a cache as found.
type ClaimRequest struct {
	CacheID   string  `json:"cache_id" validate:"required"`
	EventID   string  `json:"event_id" validate:"required"`
	Latitude  float64 `json:"latitude" validate:"latitude"`
	Longitude float64 `json:"longitude" validate:"longitude"`
}

// IsFirstFinder reports whether a claim on cacheID right now would be the
// first. The answer is informational only; Claim decides atomically.
func (s *ClaimService) IsFirstFinder(ctx context.Context, cacheID string) (bool, error) {
	found, err := s.store.HasFoundRecord(ctx, cacheID)
	if err != nil {
		return false, fmt.Errorf("check found records: %w", err)
	}
	return !found, nil
}

// Claim records that userID found the cache. It returns the record and
// whether it was created by this call; a repeated claim returns the
// existing record with created=false.
func (s *ClaimService) Claim(ctx context.Context, userID string, req ClaimRequest) (*domain.FoundRecord, bool, error) {
	if err := validate.Validate(req); err != nil {
		return nil, false, err
	}

	cache, err := s.store.GetCache(ctx, req.CacheID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, false, domainerrors.NotFound("cache not found").WithCause(err)
		}
		return nil, false, fmt.Errorf("get cache: %w", err)
	}
	// A cache from another event or one that is switched off is hidden from
	// the player, so it is reported the same as a missing one.
	if cache.EventID != req.EventID || !cache.Active {
		return nil, false, domainerrors.NotFound("cache not found")
	}

	if _, err := s.proximity.activeEvent(ctx, cache.EventID); err != nil {
		return nil, false, err
	}

	eval, err := s.proximity.EvaluateClaim(ctx, req.Latitude, req.Longitude, cache)
	if err != nil {
		return nil, false, err
	}
	if !eval.WithinRange {
		if s.logger != nil {
			s.logger.Debug("Claim rejected: out of range",
				"user_id", userID,
				"cache_id", cache.ID,
				"distance_m", eval.DistanceMeters,
				"radius_m", eval.RadiusMeters,
			)
		}
		return nil, false, domainerrors.OutOfRange(eval.DistanceMeters, eval.RadiusMeters)
	}

	recordID, err := id.Generate("found")
	if err != nil {
		return nil, false, fmt.Errorf("generate found record ID: %w", err)
	}

	record, created, err := s.store.ClaimCache(ctx, &domain.FoundRecord{
		ID:        recordID,
		UserID:    userID,
		CacheID:   cache.ID,
		EventID:   cache.EventID,
		CreatedAt: s.now(),
	})
	if err != nil {
		switch {
		case errors.Is(err, store.ErrNotFound):
			return nil, false, domainerrors.NotFound("cache or user no longer exists").WithCause(err)
		case errors.Is(err, store.ErrAlreadyExists):
			return nil, false, domainerrors.Conflict("claim conflicted with a concurrent claim").WithCause(err)
		}
		return nil, false, fmt.Errorf("claim cache: %w", err)
	}

	if created && s.logger != nil {
		s.logger.Info("Cache claimed",
			"user_id", userID,
			"cache_id", cache.ID,
			"event_id", cache.EventID,
			"first_found", record.FirstFound,
		)
	}

	return record, created, nil
}

// ListFinds returns the caches userID has found in eventID.
func (s *ClaimService) ListFinds(ctx context.Context, userID, eventID string) ([]*domain.FoundRecord, error) {
	if _, err := s.store.GetEvent(ctx, eventID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, domainerrors.NotFound("event not found").WithCause(err)
		}
		return nil, fmt.Errorf("get event: %w", err)
	}

	records, err := s.store.ListFoundRecords(ctx, userID, eventID)
	if err != nil {
		return nil, fmt.Errorf("list found records: %w", err)
	}
	return records, nil
}
