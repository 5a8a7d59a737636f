package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strconv"
	"strings"

	"github.com/egghunt/egghunt-server/internal/domain"
	domainerrors "github.com/egghunt/egghunt-server/internal/errors"
	"github.com/egghunt/egghunt-server/internal/kvcache"
	"github.com/egghunt/egghunt-server/internal/store"
)

// Cached entries carry a one-byte marker so a key with no stored row can be
// cached too.
const (
	cacheMarkerStored = "="
	cacheMarkerAbsent = "-"
)

// SettingsService resolves runtime settings: a stored override wins over the
// compiled default. Reads may be served from a short-lived cache; writes
// through this service invalidate it immediately.
type SettingsService struct {
	store  store.Store
	cache  *kvcache.Cache
	logger *slog.Logger
}

// NewSettingsService creates a settings service. cache may be nil.
func NewSettingsService(store store.Store, cache *kvcache.Cache, logger *slog.Logger) *SettingsService {
	return &SettingsService{
		store:  store,
		cache:  cache,
		logger: logger,
	}
}

// Resolve returns the stored value for key, or compiledDefault when no
// value is stored.
func (s *SettingsService) Resolve(ctx context.Context, key, compiledDefault string) (string, error) {
	value, ok, err := s.lookup(ctx, key)
	if err != nil {
		return "", err
	}
	if !ok {
		return compiledDefault, nil
	}
	return value, nil
}

// HuntSettings resolves the radii used by the proximity rules. A stored
// value that is not a positive number is ignored in favour of the default.
func (s *SettingsService) HuntSettings(ctx context.Context) (domain.HuntSettings, error) {
	visibility, err := s.resolveRadius(ctx, domain.SettingVisibilityRadius, domain.DefaultVisibilityRadiusMeters)
	if err != nil {
		return domain.HuntSettings{}, err
	}
	found, err := s.resolveRadius(ctx, domain.SettingFoundRadius, domain.DefaultFoundRadiusMeters)
	if err != nil {
		return domain.HuntSettings{}, err
	}
	return domain.HuntSettings{
		VisibilityRadiusMeters: visibility,
		FoundRadiusMeters:      found,
	}, nil
}

func (s *SettingsService) resolveRadius(ctx context.Context, key string, def float64) (float64, error) {
	raw, err := s.Resolve(ctx, key, strconv.FormatFloat(def, 'f', -1, 64))
	if err != nil {
		return 0, err
	}
	v, err := parseRadius(raw)
	if err != nil {
		if s.logger != nil {
			s.logger.Warn("ignoring invalid radius setting",
				"key", key,
				"value", raw,
				"default", def,
			)
		}
		return def, nil
	}
	return v, nil
}

func parseRadius(raw string) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return 0, err
	}
	if v <= 0 || math.IsInf(v, 0) || math.IsNaN(v) {
		return 0, fmt.Errorf("radius must be a positive number, got %q", raw)
	}
	return v, nil
}

// SetSettingRequest is the body of an admin settings update.
type SetSettingRequest struct {
	Key   string `json:"key" validate:"required,setting_key"`
	Value string `json:"value" validate:"max=10000"`
}

// Set stores value for a known key. Radius keys must hold positive numbers.
func (s *SettingsService) Set(ctx context.Context, req SetSettingRequest) (*domain.EffectiveSetting, error) {
	if err := validate.Validate(req); err != nil {
		return nil, err
	}
	if !domain.IsKnownSetting(req.Key) {
		return nil, domainerrors.Validationf("unknown setting %q", req.Key)
	}
	switch req.Key {
	case domain.SettingVisibilityRadius, domain.SettingFoundRadius:
		if _, err := parseRadius(req.Value); err != nil {
			return nil, domainerrors.ValidationWithDetails("invalid setting value",
				map[string]string{"value": "must be a positive number of meters"})
		}
	case domain.SettingSetupCompleted:
		if req.Value != "true" && req.Value != "false" {
			return nil, domainerrors.ValidationWithDetails("invalid setting value",
				map[string]string{"value": "must be true or false"})
		}
	}

	if err := s.store.UpsertSetting(ctx, req.Key, req.Value); err != nil {
		return nil, fmt.Errorf("upsert setting: %w", err)
	}
	s.Invalidate(req.Key)

	if s.logger != nil {
		s.logger.Info("Setting changed", "key", req.Key)
	}

	return &domain.EffectiveSetting{
		Key:        req.Key,
		Value:      req.Value,
		Default:    domain.SettingDefaults[req.Key],
		Overridden: true,
	}, nil
}

// All returns every known setting with the value currently in force.
func (s *SettingsService) All(ctx context.Context) ([]domain.EffectiveSetting, error) {
	stored, err := s.store.ListSettings(ctx)
	if err != nil {
		return nil, fmt.Errorf("list settings: %w", err)
	}

	byKey := make(map[string]string, len(stored))
	for _, st := range stored {
		byKey[st.Key] = st.Value
	}

	out := make([]domain.EffectiveSetting, 0, len(domain.SettingKeys))
	for _, key := range domain.SettingKeys {
		def := domain.SettingDefaults[key]
		value, ok := byKey[key]
		if !ok {
			value = def
		}
		out = append(out, domain.EffectiveSetting{
			Key:        key,
			Value:      value,
			Default:    def,
			Overridden: ok,
		})
	}
	return out, nil
}

// Invalidate drops cached values for keys.
func (s *SettingsService) Invalidate(keys ...string) {
	if s.cache == nil {
		return
	}
	for _, key := range keys {
		if err := s.cache.Delete(key); err != nil && s.logger != nil {
			s.logger.Warn("failed to invalidate cached setting", "key", key, "error", err)
		}
	}
}

// lookup returns the stored value for key and whether one exists.
func (s *SettingsService) lookup(ctx context.Context, key string) (string, bool, error) {
	if s.cache != nil {
		if entry, hit, err := s.cache.Get(key); err == nil && hit {
			if value, ok := strings.CutPrefix(entry, cacheMarkerStored); ok {
				return value, true, nil
			}
			return "", false, nil
		}
	}

	setting, err := s.store.GetSetting(ctx, key)
	switch {
	case errors.Is(err, store.ErrNotFound):
		s.remember(key, cacheMarkerAbsent)
		return "", false, nil
	case err != nil:
		return "", false, fmt.Errorf("get setting %s: %w", key, err)
	}

	s.remember(key, cacheMarkerStored+setting.Value)
	return setting.Value, true, nil
}

func (s *SettingsService) remember(key, entry string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Set(key, entry); err != nil && s.logger != nil {
		s.logger.Debug("failed to cache setting", "key", key, "error", err)
	}
}
