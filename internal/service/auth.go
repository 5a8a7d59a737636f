package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/egghunt/egghunt-server/internal/auth"
	"github.com/egghunt/egghunt-server/internal/domain"
	domainerrors "github.com/egghunt/egghunt-server/internal/errors"
	"github.com/egghunt/egghunt-server/internal/id"
	"github.com/egghunt/egghunt-server/internal/slug"
	"github.com/egghunt/egghunt-server/internal/store"
)

// AuthService handles first-time setup and login.
type AuthService struct {
	store    store.Store
	tokens   *auth.TokenService
	settings *SettingsService
	logger   *slog.Logger
}

// NewAuthService creates a new authentication service.
func NewAuthService(store store.Store, tokens *auth.TokenService, settings *SettingsService, logger *slog.Logger) *AuthService {
	return &AuthService{
		store:    store,
		tokens:   tokens,
		settings: settings,
		logger:   logger,
	}
}

// AuthResult is returned by every operation that establishes a session.
type AuthResult struct {
	User        *domain.User `json:"user"`
	AccessToken string       `json:"access_token"`
	ExpiresAt   time.Time    `json:"expires_at"`
	EventID     string       `json:"event_id,omitempty"` // event of the redeemed invite
}

// SetupRequest contains the first admin account and instance settings.
type SetupRequest struct {
	Email                  string  `json:"email" validate:"required,email,max=254"`
	Password               string  `json:"password" validate:"required,min=10,max=1024"`
	InstanceName           string  `json:"instance_name" validate:"omitempty,max=100"`
	DefaultLocale          string  `json:"default_locale" validate:"omitempty,oneof=de en"`
	SupportEmail           string  `json:"support_email" validate:"omitempty,email"`
	VisibilityRadiusMeters float64 `json:"visibility_radius_meters" validate:"omitempty,gt=0,lte=100000"`
	FoundRadiusMeters      float64 `json:"found_radius_meters" validate:"omitempty,gt=0,lte=1000"`
}

// SetupStatus reports whether first-time setup has run.
type SetupStatus struct {
	SetupComplete bool `json:"setup_complete"`
	AdminExists   bool `json:"admin_exists"`
}

// LoginRequest contains user credentials.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,max=1024"`
}

// SetupStatus reports the current setup state.
func (s *AuthService) SetupStatus(ctx context.Context) (*SetupStatus, error) {
	admins, err := s.store.CountAdmins(ctx)
	if err != nil {
		return nil, fmt.Errorf("count admins: %w", err)
	}
	completed, err := s.settings.Resolve(ctx, domain.SettingSetupCompleted, domain.SettingDefaults[domain.SettingSetupCompleted])
	if err != nil {
		return nil, err
	}
	return &SetupStatus{
		SetupComplete: completed == "true",
		AdminExists:   admins > 0,
	}, nil
}

// Setup creates the first admin, stores the instance settings and creates a
// default event named after the instance. It only succeeds once.
func (s *AuthService) Setup(ctx context.Context, req SetupRequest) (*AuthResult, error) {
	req.Email = strings.TrimSpace(req.Email)
	req.InstanceName = strings.TrimSpace(req.InstanceName)
	if err := validate.Validate(req); err != nil {
		return nil, err
	}

	status, err := s.SetupStatus(ctx)
	if err != nil {
		return nil, err
	}
	if status.SetupComplete || status.AdminExists {
		return nil, domainerrors.AlreadyConfigured("server is already set up")
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	userID, err := id.Generate("user")
	if err != nil {
		return nil, fmt.Errorf("generate user ID: %w", err)
	}
	admin := &domain.User{
		Entity:       domain.Entity{ID: userID},
		Email:        req.Email,
		PasswordHash: hash,
		Role:         domain.RoleAdmin,
	}
	admin.InitTimestamps()

	settings := setupSettings(req)

	eventID, err := id.Generate("event")
	if err != nil {
		return nil, fmt.Errorf("generate event ID: %w", err)
	}
	event := &domain.Event{
		Entity: domain.Entity{ID: eventID},
		Name:   settings[domain.SettingInstanceName],
		Slug:   slug.Make(settings[domain.SettingInstanceName]),
		Active: true,
	}
	event.InitTimestamps()

	if err := s.store.CompleteSetup(ctx, admin, settings, event); err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			return nil, domainerrors.AlreadyConfigured("server is already set up").WithCause(err)
		}
		return nil, fmt.Errorf("complete setup: %w", err)
	}

	keys := make([]string, 0, len(settings))
	for k := range settings {
		keys = append(keys, k)
	}
	s.settings.Invalidate(keys...)

	token, expires, err := s.tokens.GenerateAccessToken(admin)
	if err != nil {
		return nil, fmt.Errorf("generate access token: %w", err)
	}

	if s.logger != nil {
		s.logger.Info("Setup completed",
			"admin_id", admin.ID,
			"instance", settings[domain.SettingInstanceName],
		)
	}

	return &AuthResult{
		User:        admin,
		AccessToken: token,
		ExpiresAt:   expires,
	}, nil
}

// setupSettings turns the setup request into stored settings. Fields left
// empty keep their compiled default and are not stored, except the instance
// name, which the default event is named after.
func setupSettings(req SetupRequest) map[string]string {
	settings := map[string]string{
		domain.SettingSetupCompleted: "true",
		domain.SettingInstanceName:   domain.SettingDefaults[domain.SettingInstanceName],
	}
	if req.InstanceName != "" {
		settings[domain.SettingInstanceName] = req.InstanceName
	}
	if req.DefaultLocale != "" {
		settings[domain.SettingDefaultLocale] = req.DefaultLocale
	}
	if req.SupportEmail != "" {
		settings[domain.SettingSupportEmail] = req.SupportEmail
	}
	if req.VisibilityRadiusMeters > 0 {
		settings[domain.SettingVisibilityRadius] = strconv.FormatFloat(req.VisibilityRadiusMeters, 'f', -1, 64)
	}
	if req.FoundRadiusMeters > 0 {
		settings[domain.SettingFoundRadius] = strconv.FormatFloat(req.FoundRadiusMeters, 'f', -1, 64)
	}
	return settings
}

// Login authenticates a user by email and password.
func (s *AuthService) Login(ctx context.Context, req LoginRequest) (*AuthResult, error) {
	req.Email = strings.TrimSpace(req.Email)
	if err := validate.Validate(req); err != nil {
		return nil, err
	}

	user, err := s.store.GetUserByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			// Don't leak whether email exists
			return nil, domainerrors.InvalidCredentials("invalid email or password")
		}
		return nil, fmt.Errorf("lookup user: %w", err)
	}

	valid, err := auth.VerifyPassword(user.PasswordHash, req.Password)
	if err != nil {
		return nil, fmt.Errorf("verify password: %w", err)
	}
	if !valid {
		return nil, domainerrors.InvalidCredentials("invalid email or password")
	}

	now := time.Now()
	if err := s.store.TouchLastLogin(ctx, user.ID, now); err != nil {
		// Log but don't fail login
		if s.logger != nil {
			s.logger.Warn("Failed to update last login time",
				"user_id", user.ID,
				"error", err,
			)
		}
	} else {
		user.LastLoginAt = &now
	}

	token, expires, err := s.tokens.GenerateAccessToken(user)
	if err != nil {
		return nil, fmt.Errorf("generate access token: %w", err)
	}

	if s.logger != nil {
		s.logger.Info("User logged in", "user_id", user.ID, "role", user.Role)
	}

	return &AuthResult{
		User:        user,
		AccessToken: token,
		ExpiresAt:   expires,
	}, nil
}
