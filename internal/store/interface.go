// Package store defines the persistence interface for the egg hunt server.
package store

import (
	"context"
	"time"

	"github.com/egghunt/egghunt-server/internal/domain"
	"github.com/egghunt/egghunt-server/internal/geo"
)

// Store defines the interface for all persistence operations.
//
// The two write paths that must stay correct under concurrency,
// RedeemInvite and ClaimCache, are single atomic units inside the
// implementation. Callers never hold locks across them.
type Store interface {
	// Lifecycle
	Close() error
	Ping(ctx context.Context) error

	// Users
	CreateUser(ctx context.Context, user *domain.User) error
	GetUser(ctx context.Context, id string) (*domain.User, error)
	GetUserByEmail(ctx context.Context, email string) (*domain.User, error)
	TouchLastLogin(ctx context.Context, userID string, at time.Time) error
	CountAdmins(ctx context.Context) (int, error)
	SetupCompleted(ctx context.Context) (bool, error)

	// CreateUserWithInvite inserts user and consumes one use of token in a
	// single transaction. Returns ErrAlreadyExists if the email is taken and
	// ErrConditionFailed if the token could not be redeemed; in both cases
	// nothing is written.
	CreateUserWithInvite(ctx context.Context, user *domain.User, token string, now time.Time) (*domain.InviteToken, error)

	// CompleteSetup creates the first admin, stores settings and the
	// optional default event atomically. Returns ErrAlreadyExists if an
	// admin already exists or setup was already marked complete.
	CompleteSetup(ctx context.Context, admin *domain.User, settings map[string]string, event *domain.Event) error

	// Events
	CreateEvent(ctx context.Context, event *domain.Event) error
	GetEvent(ctx context.Context, id string) (*domain.Event, error)
	GetEventBySlug(ctx context.Context, slug string) (*domain.Event, error)
	ListEvents(ctx context.Context, activeOnly bool) ([]*domain.Event, error)

	// Caches
	CreateCache(ctx context.Context, cache *domain.Cache) error
	GetCache(ctx context.Context, id string) (*domain.Cache, error)
	// ListActiveCachesInBox returns the active caches of an event whose
	// coordinates fall inside box. It is a pre-filter only.
	ListActiveCachesInBox(ctx context.Context, eventID string, box geo.Box) ([]*domain.Cache, error)

	// Found records
	HasFoundRecord(ctx context.Context, cacheID string) (bool, error)
	// ClaimCache returns the existing record for (record.UserID,
	// record.CacheID) with created=false, or inserts record with FirstFound
	// computed inside the same transaction and returns created=true.
	ClaimCache(ctx context.Context, record *domain.FoundRecord) (*domain.FoundRecord, bool, error)
	ListFoundRecords(ctx context.Context, userID, eventID string) ([]*domain.FoundRecord, error)
	FoundSummaries(ctx context.Context, cacheIDs []string, userID string) (map[string]domain.FoundSummary, error)

	// Invites
	CreateInvite(ctx context.Context, invite *domain.InviteToken) error
	GetInvite(ctx context.Context, id string) (*domain.InviteToken, error)
	GetInviteByToken(ctx context.Context, token string) (*domain.InviteToken, error)
	ListInvites(ctx context.Context) ([]*domain.InviteToken, error)
	DeleteInvite(ctx context.Context, id string) error
	// RedeemInvite increments used_count by one if and only if the token
	// is unexpired at now and has a use left. Returns ErrConditionFailed
	// when no row qualified.
	RedeemInvite(ctx context.Context, token string, now time.Time) (*domain.InviteToken, error)

	// Settings
	GetSetting(ctx context.Context, key string) (*domain.Setting, error)
	ListSettings(ctx context.Context) ([]*domain.Setting, error)
	UpsertSetting(ctx context.Context, key, value string) error
}
