// Package di provides dependency injection configuration for the egg hunt server.
package di

import (
	"github.com/samber/do/v2"

	"github.com/egghunt/egghunt-server/internal/auth"
	"github.com/egghunt/egghunt-server/internal/config"
	"github.com/egghunt/egghunt-server/internal/di/providers"
	"github.com/egghunt/egghunt-server/internal/logger"
	"github.com/egghunt/egghunt-server/internal/service"
)

// NewContainer creates and configures the DI container with all providers.
func NewContainer() *do.RootScope {
	injector := do.New()

	// Core infrastructure
	do.Provide(injector, providers.ProvideConfig)
	do.Provide(injector, providers.ProvideLogger)
	do.Provide(injector, providers.ProvideAuthKey)

	// Storage layer
	do.Provide(injector, providers.ProvideStore)
	do.Provide(injector, providers.ProvideSettingsCache)

	// Auth layer
	do.Provide(injector, providers.ProvideTokenService)

	// Business services
	do.Provide(injector, providers.ProvideSettingsService)
	do.Provide(injector, providers.ProvideProximityService)
	do.Provide(injector, providers.ProvideClaimService)
	do.Provide(injector, providers.ProvideInviteService)
	do.Provide(injector, providers.ProvideAuthService)
	do.Provide(injector, providers.ProvideEventService)
	do.Provide(injector, providers.ProvideSetupState)

	// Server
	do.Provide(injector, providers.ProvideHTTPServer)

	return injector
}

// Bootstrap initializes all services and starts the HTTP server.
// Providers are lazy, so invoking them here surfaces configuration and
// database errors before the process starts waiting for signals.
func Bootstrap(injector *do.RootScope) error {
	if _, err := do.Invoke[*config.Config](injector); err != nil {
		return err
	}
	_ = do.MustInvoke[*logger.Logger](injector)
	if _, err := do.Invoke[*providers.StoreHandle](injector); err != nil {
		return err
	}
	if _, err := do.Invoke[*auth.TokenService](injector); err != nil {
		return err
	}

	// Business services
	_ = do.MustInvoke[*service.SettingsService](injector)
	_ = do.MustInvoke[*service.ProximityService](injector)
	_ = do.MustInvoke[*service.ClaimService](injector)
	_ = do.MustInvoke[*service.InviteService](injector)
	_ = do.MustInvoke[*service.AuthService](injector)
	_ = do.MustInvoke[*service.EventService](injector)
	if _, err := do.Invoke[*providers.SetupState](injector); err != nil {
		return err
	}

	// Server
	_, err := do.Invoke[*providers.HTTPServerHandle](injector)
	return err
}
