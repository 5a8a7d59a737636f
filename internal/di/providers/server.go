package providers

import (
	"context"
	"errors"
	"net/http"

	"github.com/samber/do/v2"

	"github.com/egghunt/egghunt-server/internal/api"
	"github.com/egghunt/egghunt-server/internal/auth"
	"github.com/egghunt/egghunt-server/internal/config"
	"github.com/egghunt/egghunt-server/internal/logger"
	"github.com/egghunt/egghunt-server/internal/service"
)

// Version is stamped at build time with -ldflags.
var Version = "dev"

// HTTPServerHandle wraps http.Server with Shutdownable.
type HTTPServerHandle struct {
	*http.Server
	api *api.Server
}

// Shutdown implements do.Shutdownable.
func (h *HTTPServerHandle) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	err := h.Server.Shutdown(ctx)
	h.api.Close()
	return err
}

// ProvideHTTPServer provides the HTTP server and starts listening.
func ProvideHTTPServer(i do.Injector) (*HTTPServerHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	storeHandle := do.MustInvoke[*StoreHandle](i)
	tokenService := do.MustInvoke[*auth.TokenService](i)
	log := do.MustInvoke[*logger.Logger](i)

	services := &api.Services{
		Settings:  do.MustInvoke[*service.SettingsService](i),
		Proximity: do.MustInvoke[*service.ProximityService](i),
		Claim:     do.MustInvoke[*service.ClaimService](i),
		Invite:    do.MustInvoke[*service.InviteService](i),
		Auth:      do.MustInvoke[*service.AuthService](i),
		Event:     do.MustInvoke[*service.EventService](i),
	}

	handler := api.NewServer(storeHandle.Store, services, tokenService, api.Options{
		Version:        Version,
		AllowedOrigin:  cfg.Server.BaseURL,
		ClaimPerMinute: cfg.RateLimit.ClaimPerMinute,
		AuthPerMinute:  cfg.RateLimit.AuthPerMinute,
	}, log.Component("api").Logger)

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// Start in background
	go func() {
		log.Info("HTTP server starting", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Error("HTTP server error")
		}
	}()

	return &HTTPServerHandle{Server: srv, api: handler}, nil
}

// SetupState reports whether the server still waits for first-time setup.
type SetupState struct {
	Required bool
}

// ProvideSetupState logs whether first-time setup is still pending.
func ProvideSetupState(i do.Injector) (*SetupState, error) {
	authService := do.MustInvoke[*service.AuthService](i)
	log := do.MustInvoke[*logger.Logger](i)

	status, err := authService.SetupStatus(context.Background())
	if err != nil {
		return nil, err
	}

	if status.SetupComplete {
		log.Info("Server is configured and ready")
	} else {
		log.Warn("Server needs setup - POST /api/v1/setup to create the first admin",
			"setup_required", true,
		)
	}

	return &SetupState{Required: !status.SetupComplete}, nil
}
