package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/egghunt/egghunt-server/internal/domain"
	"github.com/egghunt/egghunt-server/internal/service"
)

func (s *Server) registerAdminSettingsRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "getServerSettings",
		Method:      http.MethodGet,
		Path:        "/api/v1/admin/settings",
		Summary:     "Get server settings",
		Description: "Lists every known setting with its effective value and default (admin only)",
		Tags:        []string{"Admin"},
		Security:    bearerAuth,
	}, s.handleGetServerSettings)

	huma.Register(s.api, huma.Operation{
		OperationID: "updateServerSetting",
		Method:      http.MethodPut,
		Path:        "/api/v1/admin/settings/{key}",
		Summary:     "Update a server setting",
		Description: "Stores an override for one setting. Takes effect on the next request (admin only).",
		Tags:        []string{"Admin"},
		Security:    bearerAuth,
	}, s.handleUpdateServerSetting)
}

// === DTOs ===

// ServerSettingsOutput is the Huma output wrapper for listing settings.
type ServerSettingsOutput struct {
	Body struct {
		Settings []domain.EffectiveSetting `json:"settings" doc:"Known settings in display order"`
	}
}

// UpdateServerSettingRequest is the request body for updating a setting.
type UpdateServerSettingRequest struct {
	Value string `json:"value" doc:"New value"`
}

// UpdateServerSettingInput is the Huma input for updating a setting.
type UpdateServerSettingInput struct {
	Key  string `path:"key" doc:"Setting key, for example CACHE_FOUND_RADIUS_METERS"`
	Body UpdateServerSettingRequest
}

// UpdateServerSettingOutput is the Huma output wrapper for updating a setting.
type UpdateServerSettingOutput struct {
	Body domain.EffectiveSetting
}

// === Handlers ===

func (s *Server) handleGetServerSettings(ctx context.Context, _ *struct{}) (*ServerSettingsOutput, error) {
	if _, err := s.RequireAdmin(ctx); err != nil {
		return nil, err
	}

	settings, err := s.services.Settings.All(ctx)
	if err != nil {
		return nil, err
	}

	out := &ServerSettingsOutput{}
	out.Body.Settings = settings
	return out, nil
}

func (s *Server) handleUpdateServerSetting(ctx context.Context, input *UpdateServerSettingInput) (*UpdateServerSettingOutput, error) {
	admin, err := s.RequireAdmin(ctx)
	if err != nil {
		return nil, err
	}

	setting, err := s.services.Settings.Set(ctx, service.SetSettingRequest{
		Key:   input.Key,
		Value: input.Body.Value,
	})
	if err != nil {
		return nil, err
	}

	if s.logger != nil {
		s.logger.Info("Setting updated", "key", setting.Key, "admin_id", admin.ID)
	}
	return &UpdateServerSettingOutput{Body: *setting}, nil
}
