package api

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/egghunt/egghunt-server/internal/domain"
	"github.com/egghunt/egghunt-server/internal/service"
)

func (s *Server) registerAuthRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "getSetupStatus",
		Method:      http.MethodGet,
		Path:        "/api/v1/setup/status",
		Summary:     "Setup status",
		Description: "Reports whether first-time setup has been completed",
		Tags:        []string{"Setup"},
	}, s.handleSetupStatus)

	huma.Register(s.api, huma.Operation{
		OperationID: "setup",
		Method:      http.MethodPost,
		Path:        "/api/v1/setup",
		Summary:     "Initial server setup",
		Description: "Creates the first admin and the default event. Can only be called once.",
		Tags:        []string{"Setup"},
		Middlewares: huma.Middlewares{s.authRateLimit},
	}, s.handleSetup)

	huma.Register(s.api, huma.Operation{
		OperationID: "login",
		Method:      http.MethodPost,
		Path:        "/api/v1/auth/login",
		Summary:     "User login",
		Description: "Authenticates a user and returns an access token",
		Tags:        []string{"Authentication"},
		Middlewares: huma.Middlewares{s.authRateLimit},
	}, s.handleLogin)

	huma.Register(s.api, huma.Operation{
		OperationID: "register",
		Method:      http.MethodPost,
		Path:        "/api/v1/auth/register",
		Summary:     "Register with an invite",
		Description: "Redeems one use of an invite token and creates a player account",
		Tags:        []string{"Authentication"},
		Middlewares: huma.Middlewares{s.authRateLimit},
	}, s.handleRegister)
}

// === DTOs ===

// SetupRequest is the request body for initial server setup.
type SetupRequest struct {
	Email                  string  `json:"email" doc:"Admin email address"`
	Password               string  `json:"password" doc:"Admin password, at least 10 characters"`
	InstanceName           string  `json:"instance_name,omitempty" doc:"Display name, also used for the default event"`
	DefaultLocale          string  `json:"default_locale,omitempty" enum:"de,en" doc:"Default UI locale"`
	SupportEmail           string  `json:"support_email,omitempty" doc:"Contact address shown to players"`
	VisibilityRadiusMeters float64 `json:"visibility_radius_meters,omitempty" doc:"Radius in which caches are listed"`
	FoundRadiusMeters      float64 `json:"found_radius_meters,omitempty" doc:"Radius in which a cache can be claimed"`
}

// SetupInput wraps the setup request for Huma.
type SetupInput struct {
	Body SetupRequest
}

// LoginRequest is the request body for user login.
type LoginRequest struct {
	Email    string `json:"email" doc:"User email"`
	Password string `json:"password" doc:"User password"`
}

// LoginInput wraps the login request for Huma.
type LoginInput struct {
	Body LoginRequest
}

// RegisterRequest is the request body for invite registration.
type RegisterRequest struct {
	Token    string `json:"token" doc:"Invite token"`
	Email    string `json:"email" doc:"Player email"`
	Password string `json:"password" doc:"Player password, at least 10 characters"`
}

// RegisterInput wraps the register request for Huma.
type RegisterInput struct {
	Body RegisterRequest
}

// UserResponse is the public view of an account.
type UserResponse struct {
	ID          string      `json:"id" doc:"User ID"`
	Email       string      `json:"email" doc:"Email address"`
	Role        domain.Role `json:"role" doc:"admin or player"`
	CreatedAt   time.Time   `json:"created_at" doc:"Creation time"`
	LastLoginAt *time.Time  `json:"last_login_at,omitempty" doc:"Last successful login"`
}

// AuthResponse is returned by every endpoint that starts a session.
type AuthResponse struct {
	AccessToken string       `json:"access_token" doc:"PASETO access token"`
	TokenType   string       `json:"token_type" doc:"Always Bearer"`
	ExpiresAt   time.Time    `json:"expires_at" doc:"Token expiry"`
	User        UserResponse `json:"user" doc:"Authenticated user"`
	EventID     string       `json:"event_id,omitempty" doc:"Event joined through the invite"`
}

// AuthOutput wraps the auth response for Huma.
type AuthOutput struct {
	Status int
	Body   AuthResponse
}

// SetupStatusOutput wraps the setup status for Huma.
type SetupStatusOutput struct {
	Body service.SetupStatus
}

// === Handlers ===

func (s *Server) handleSetupStatus(ctx context.Context, _ *struct{}) (*SetupStatusOutput, error) {
	status, err := s.services.Auth.SetupStatus(ctx)
	if err != nil {
		return nil, err
	}
	return &SetupStatusOutput{Body: *status}, nil
}

func (s *Server) handleSetup(ctx context.Context, input *SetupInput) (*AuthOutput, error) {
	res, err := s.services.Auth.Setup(ctx, service.SetupRequest{
		Email:                  input.Body.Email,
		Password:               input.Body.Password,
		InstanceName:           input.Body.InstanceName,
		DefaultLocale:          input.Body.DefaultLocale,
		SupportEmail:           input.Body.SupportEmail,
		VisibilityRadiusMeters: input.Body.VisibilityRadiusMeters,
		FoundRadiusMeters:      input.Body.FoundRadiusMeters,
	})
	if err != nil {
		return nil, err
	}
	return &AuthOutput{Status: http.StatusCreated, Body: toAuthResponse(res)}, nil
}

func (s *Server) handleLogin(ctx context.Context, input *LoginInput) (*AuthOutput, error) {
	res, err := s.services.Auth.Login(ctx, service.LoginRequest{
		Email:    input.Body.Email,
		Password: input.Body.Password,
	})
	if err != nil {
		return nil, err
	}
	return &AuthOutput{Status: http.StatusOK, Body: toAuthResponse(res)}, nil
}

func (s *Server) handleRegister(ctx context.Context, input *RegisterInput) (*AuthOutput, error) {
	res, err := s.services.Invite.RegisterWithInvite(ctx, service.RegisterRequest{
		Token:    input.Body.Token,
		Email:    input.Body.Email,
		Password: input.Body.Password,
	})
	if err != nil {
		return nil, err
	}
	return &AuthOutput{Status: http.StatusCreated, Body: toAuthResponse(res)}, nil
}

func toAuthResponse(res *service.AuthResult) AuthResponse {
	return AuthResponse{
		AccessToken: res.AccessToken,
		TokenType:   "Bearer",
		ExpiresAt:   res.ExpiresAt,
		User:        toUserResponse(res.User),
		EventID:     res.EventID,
	}
}

func toUserResponse(u *domain.User) UserResponse {
	return UserResponse{
		ID:          u.ID,
		Email:       u.Email,
		Role:        u.Role,
		CreatedAt:   u.CreatedAt,
		LastLoginAt: u.LastLoginAt,
	}
}
