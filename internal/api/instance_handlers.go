package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/egghunt/egghunt-server/internal/domain"
)

func (s *Server) registerInstanceRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "getInstance",
		Method:      http.MethodGet,
		Path:        "/api/v1/instance",
		Summary:     "Get instance info",
		Description: "Returns the public settings a client needs before login",
		Tags:        []string{"Instance"},
	}, s.handleGetInstance)
}

// publicSettings are safe to show unauthenticated clients.
var publicSettings = map[string]bool{
	domain.SettingInstanceName:     true,
	domain.SettingDefaultLocale:    true,
	domain.SettingEnabledLocales:   true,
	domain.SettingImpressumURL:     true,
	domain.SettingPrivacyURL:       true,
	domain.SettingSupportEmail:     true,
	domain.SettingInfoTextHome:     true,
	domain.SettingVisibilityRadius: true,
	domain.SettingFoundRadius:      true,
	domain.SettingSetupCompleted:   true,
}

// InstanceOutput wraps the public settings for Huma.
type InstanceOutput struct {
	Body struct {
		Settings map[string]string `json:"settings" doc:"Effective public settings by key"`
	}
}

func (s *Server) handleGetInstance(ctx context.Context, _ *struct{}) (*InstanceOutput, error) {
	all, err := s.services.Settings.All(ctx)
	if err != nil {
		return nil, err
	}

	out := &InstanceOutput{}
	out.Body.Settings = make(map[string]string, len(all))
	for _, setting := range all {
		if publicSettings[setting.Key] {
			out.Body.Settings[setting.Key] = setting.Value
		}
	}
	return out, nil
}
