package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/egghunt/egghunt-server/internal/domain"
	"github.com/egghunt/egghunt-server/internal/store"
)

// inviteColumns is the ordered list of columns selected in invite queries.
// Must match the scan order in scanInvite.
const inviteColumns = `id, created_at, updated_at, token, event_id,
	max_uses, used_count, expires_at, created_by`

// scanInvite scans a sql.Row (or sql.Rows via its Scan method) into a domain.InviteToken.
func scanInvite(row scanner) (*domain.InviteToken, error) {
	var inv domain.InviteToken

	var (
		createdAt string
		updatedAt string
		expiresAt sql.NullString
		createdBy sql.NullString
	)

	err := row.Scan(
		&inv.ID,
		&createdAt,
		&updatedAt,
		&inv.Token,
		&inv.EventID,
		&inv.MaxUses,
		&inv.UsedCount,
		&expiresAt,
		&createdBy,
	)
	if err != nil {
		return nil, err
	}

	inv.CreatedAt, err = parseTime(createdAt)
	if err != nil {
		return nil, err
	}
	inv.UpdatedAt, err = parseTime(updatedAt)
	if err != nil {
		return nil, err
	}
	inv.ExpiresAt, err = parseNullableTime(expiresAt)
	if err != nil {
		return nil, err
	}
	if createdBy.Valid {
		inv.CreatedBy = createdBy.String
	}

	return &inv, nil
}

// CreateInvite inserts a new invite.
// Returns store.ErrAlreadyExists if the token already exists and
// store.ErrNotFound if the event does not exist.
func (s *Store) CreateInvite(ctx context.Context, invite *domain.InviteToken) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO invites (
			id, created_at, updated_at, token, event_id,
			max_uses, used_count, expires_at, created_by
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		invite.ID,
		formatTime(invite.CreatedAt),
		formatTime(invite.UpdatedAt),
		invite.Token,
		invite.EventID,
		invite.MaxUses,
		invite.UsedCount,
		nullTimeString(invite.ExpiresAt),
		nullString(invite.CreatedBy),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return store.ErrAlreadyExists
		}
		if isForeignKeyViolation(err) {
			return store.ErrNotFound.WithCause(err)
		}
		return err
	}
	return nil
}

// GetInvite retrieves an invite by ID.
// Returns store.ErrNotFound if the invite does not exist.
func (s *Store) GetInvite(ctx context.Context, id string) (*domain.InviteToken, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+inviteColumns+` FROM invites WHERE id = ?`, id)

	inv, err := scanInvite(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	return inv, err
}

// GetInviteByToken retrieves an invite by its token string.
// Returns store.ErrNotFound if the invite does not exist.
func (s *Store) GetInviteByToken(ctx context.Context, token string) (*domain.InviteToken, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+inviteColumns+` FROM invites WHERE token = ?`, token)

	inv, err := scanInvite(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	return inv, err
}

// ListInvites returns all invites ordered by created_at descending.
func (s *Store) ListInvites(ctx context.Context) ([]*domain.InviteToken, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+inviteColumns+` FROM invites ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var invites []*domain.InviteToken
	for rows.Next() {
		inv, err := scanInvite(rows)
		if err != nil {
			return nil, err
		}
		invites = append(invites, inv)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return invites, nil
}

// DeleteInvite removes an invite. Users who registered with it keep their
// accounts.
// Returns store.ErrNotFound if the invite does not exist.
func (s *Store) DeleteInvite(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM invites WHERE id = ?`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return nil
}

// RedeemInvite consumes one use of token.
func (s *Store) RedeemInvite(ctx context.Context, token string, now time.Time) (*domain.InviteToken, error) {
	return redeemInvite(ctx, s.db, token, now)
}

// redeemInvite is a single conditional UPDATE: the row only changes when a
// use is left and the token has not expired, so two racing callers can
// never both take the last use.
func redeemInvite(ctx context.Context, q queryer, token string, now time.Time) (*domain.InviteToken, error) {
	ts := formatTime(now)
	row := q.QueryRowContext(ctx, `
		UPDATE invites SET
			used_count = used_count + 1,
			updated_at = ?
		WHERE token = ?
			AND used_count < max_uses
			AND (expires_at IS NULL OR expires_at > ?)
		RETURNING `+inviteColumns,
		ts, token, ts,
	)

	inv, err := scanInvite(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrConditionFailed
	}
	return inv, err
}
