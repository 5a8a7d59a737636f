package providers

import (
	"github.com/samber/do/v2"

	"github.com/egghunt/egghunt-server/internal/auth"
	"github.com/egghunt/egghunt-server/internal/logger"
	"github.com/egghunt/egghunt-server/internal/service"
)

// ProvideSettingsService provides the settings resolver.
func ProvideSettingsService(i do.Injector) (*service.SettingsService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	cacheHandle := do.MustInvoke[*SettingsCacheHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewSettingsService(storeHandle.Store, cacheHandle.Cache, log.Component("settings").Logger), nil
}

// ProvideProximityService provides the proximity rules engine.
func ProvideProximityService(i do.Injector) (*service.ProximityService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	settings := do.MustInvoke[*service.SettingsService](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewProximityService(storeHandle.Store, settings, log.Component("proximity").Logger), nil
}

// ProvideClaimService provides the cache claim service.
func ProvideClaimService(i do.Injector) (*service.ClaimService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	proximity := do.MustInvoke[*service.ProximityService](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewClaimService(storeHandle.Store, proximity, log.Component("claim").Logger), nil
}

// ProvideInviteService provides the invite service.
func ProvideInviteService(i do.Injector) (*service.InviteService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	tokenService := do.MustInvoke[*auth.TokenService](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewInviteService(storeHandle.Store, tokenService, log.Component("invite").Logger), nil
}

// ProvideAuthService provides the authentication service.
func ProvideAuthService(i do.Injector) (*service.AuthService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	tokenService := do.MustInvoke[*auth.TokenService](i)
	settings := do.MustInvoke[*service.SettingsService](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewAuthService(storeHandle.Store, tokenService, settings, log.Component("auth").Logger), nil
}

// ProvideEventService provides the event and cache administration service.
func ProvideEventService(i do.Injector) (*service.EventService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewEventService(storeHandle.Store, log.Component("event").Logger), nil
}
