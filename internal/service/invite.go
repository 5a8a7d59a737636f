package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/egghunt/egghunt-server/internal/auth"
	"github.com/egghunt/egghunt-server/internal/domain"
	domainerrors "github.com/egghunt/egghunt-server/internal/errors"
	"github.com/egghunt/egghunt-server/internal/id"
	"github.com/egghunt/egghunt-server/internal/store"
)

// InviteService handles invite creation, validation and redemption.
type InviteService struct {
	store  store.Store
	tokens *auth.TokenService
	logger *slog.Logger
	now    func() time.Time
}

// NewInviteService creates a new invite service.
func NewInviteService(store store.Store, tokens *auth.TokenService, logger *slog.Logger) *InviteService {
	return &InviteService{
		store:  store,
		tokens: tokens,
		logger: logger,
		now:    time.Now,
	}
}

// CreateInviteRequest contains the data needed to create an invite.
type CreateInviteRequest struct {
	EventID   string     `json:"event_id" validate:"required"`
	MaxUses   int        `json:"max_uses" validate:"gte=0,lte=10000"` // 0 means 1
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
}

// RegisterRequest redeems an invite and creates a player account.
type RegisterRequest struct {
	Token    string `json:"token" validate:"required"`
	Email    string `json:"email" validate:"required,email,max=254"`
	Password string `json:"password" validate:"required,min=10,max=1024"`
}

// Validate checks token without consuming it.
func (s *InviteService) Validate(ctx context.Context, token string, now time.Time) (*domain.InviteToken, error) {
	invite, err := s.store.GetInviteByToken(ctx, token)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, domainerrors.NotFound("invite not found").WithCause(err)
		}
		return nil, fmt.Errorf("get invite: %w", err)
	}

	switch invite.State(now) {
	case domain.InviteExpired:
		return nil, domainerrors.TokenExpired("invite has expired")
	case domain.InviteExhausted:
		return nil, domainerrors.TokenExhausted("invite has no uses left")
	}
	return invite, nil
}

// Redeem consumes one use of token. The check and the increment happen in
// one conditional write, so concurrent redemptions never push the use count
// past the limit.
func (s *InviteService) Redeem(ctx context.Context, token string, now time.Time) (*domain.InviteToken, error) {
	invite, err := s.store.RedeemInvite(ctx, token, now)
	if err != nil {
		if errors.Is(err, store.ErrConditionFailed) {
			return nil, s.classifyRejected(ctx, token, now)
		}
		return nil, fmt.Errorf("redeem invite: %w", err)
	}

	if s.logger != nil {
		s.logger.Info("Invite redeemed",
			"invite_id", invite.ID,
			"used", invite.UsedCount,
			"max", invite.MaxUses,
		)
	}
	return invite, nil
}

// classifyRejected explains why a conditional redeem matched no row.
func (s *InviteService) classifyRejected(ctx context.Context, token string, now time.Time) error {
	if _, err := s.Validate(ctx, token, now); err != nil {
		return err
	}
	// The token looked valid on re-read, so another redemption took the
	// last use between the write and the read.
	return domainerrors.TokenExhausted("invite has no uses left")
}

// RegisterWithInvite creates a player account and consumes one invite use.
// Either both happen or neither does.
func (s *InviteService) RegisterWithInvite(ctx context.Context, req RegisterRequest) (*AuthResult, error) {
	req.Email = strings.TrimSpace(req.Email)
	if err := validate.Validate(req); err != nil {
		return nil, err
	}

	now := s.now()
	if _, err := s.Validate(ctx, req.Token, now); err != nil {
		return nil, err
	}

	switch _, err := s.store.GetUserByEmail(ctx, req.Email); {
	case err == nil:
		return nil, domainerrors.DuplicateEmail("email already registered")
	case !errors.Is(err, store.ErrNotFound):
		return nil, fmt.Errorf("lookup user: %w", err)
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	userID, err := id.Generate("user")
	if err != nil {
		return nil, fmt.Errorf("generate user ID: %w", err)
	}

	user := &domain.User{
		Entity:       domain.Entity{ID: userID},
		Email:        req.Email,
		PasswordHash: hash,
		Role:         domain.RolePlayer,
	}
	user.InitTimestamps()

	invite, err := s.store.CreateUserWithInvite(ctx, user, req.Token, now)
	if err != nil {
		switch {
		case errors.Is(err, store.ErrAlreadyExists):
			return nil, domainerrors.DuplicateEmail("email already registered")
		case errors.Is(err, store.ErrConditionFailed):
			return nil, s.classifyRejected(ctx, req.Token, now)
		}
		return nil, fmt.Errorf("create user with invite: %w", err)
	}

	token, expires, err := s.tokens.GenerateAccessToken(user)
	if err != nil {
		return nil, fmt.Errorf("generate access token: %w", err)
	}

	if s.logger != nil {
		s.logger.Info("Player registered",
			"user_id", user.ID,
			"invite_id", invite.ID,
			"event_id", invite.EventID,
			"remaining_uses", invite.RemainingUses(),
		)
	}

	return &AuthResult{
		User:        user,
		AccessToken: token,
		ExpiresAt:   expires,
		EventID:     invite.EventID,
	}, nil
}

// Create issues a new invite for an existing event.
func (s *InviteService) Create(ctx context.Context, adminID string, req CreateInviteRequest) (*domain.InviteToken, error) {
	if err := validate.Validate(req); err != nil {
		return nil, err
	}
	if req.MaxUses == 0 {
		req.MaxUses = 1
	}

	now := s.now()
	if req.ExpiresAt != nil && !req.ExpiresAt.After(now) {
		return nil, domainerrors.ValidationWithDetails("validation failed",
			map[string]string{"expires_at": "must be in the future"})
	}

	if _, err := s.store.GetEvent(ctx, req.EventID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, domainerrors.NotFound("event not found").WithCause(err)
		}
		return nil, fmt.Errorf("get event: %w", err)
	}

	inviteID, err := id.Generate("invite")
	if err != nil {
		return nil, fmt.Errorf("generate invite ID: %w", err)
	}
	token, err := id.NewToken()
	if err != nil {
		return nil, fmt.Errorf("generate invite token: %w", err)
	}

	invite := &domain.InviteToken{
		Entity:    domain.Entity{ID: inviteID},
		Token:     token,
		EventID:   req.EventID,
		MaxUses:   req.MaxUses,
		ExpiresAt: req.ExpiresAt,
		CreatedBy: adminID,
	}
	invite.InitTimestamps()

	if err := s.store.CreateInvite(ctx, invite); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, domainerrors.NotFound("event not found").WithCause(err)
		}
		return nil, fmt.Errorf("create invite: %w", err)
	}

	if s.logger != nil {
		s.logger.Info("Invite created",
			"invite_id", invite.ID,
			"event_id", invite.EventID,
			"max_uses", invite.MaxUses,
			"created_by", adminID,
		)
	}

	return invite, nil
}

// List returns all invites, newest first.
func (s *InviteService) List(ctx context.Context) ([]*domain.InviteToken, error) {
	invites, err := s.store.ListInvites(ctx)
	if err != nil {
		return nil, fmt.Errorf("list invites: %w", err)
	}
	return invites, nil
}

// Delete removes an invite. Accounts registered with it are kept.
func (s *InviteService) Delete(ctx context.Context, inviteID string) error {
	if err := s.store.DeleteInvite(ctx, inviteID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domainerrors.NotFound("invite not found").WithCause(err)
		}
		return fmt.Errorf("delete invite: %w", err)
	}

	if s.logger != nil {
		s.logger.Info("Invite deleted", "invite_id", inviteID)
	}
	return nil
}
