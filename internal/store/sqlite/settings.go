package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/egghunt/egghunt-server/internal/domain"
	"github.com/egghunt/egghunt-server/internal/store"
)

func scanSetting(row scanner) (*domain.Setting, error) {
	var (
		st        domain.Setting
		updatedAt string
	)
	if err := row.Scan(&st.Key, &st.Value, &updatedAt); err != nil {
		return nil, err
	}
	t, err := parseTime(updatedAt)
	if err != nil {
		return nil, err
	}
	st.UpdatedAt = t
	return &st, nil
}

// GetSetting returns the stored override for key.
// Returns store.ErrNotFound if no row exists.
func (s *Store) GetSetting(ctx context.Context, key string) (*domain.Setting, error) {
	st, err := scanSetting(s.db.QueryRowContext(ctx,
		`SELECT key, value, updated_at FROM settings WHERE key = ?`, key))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	return st, err
}

// ListSettings returns every stored override ordered by key.
func (s *Store) ListSettings(ctx context.Context) ([]*domain.Setting, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT key, value, updated_at FROM settings ORDER BY key`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var settings []*domain.Setting
	for rows.Next() {
		st, err := scanSetting(rows)
		if err != nil {
			return nil, err
		}
		settings = append(settings, st)
	}
	return settings, rows.Err()
}

// UpsertSetting stores value for key, replacing any previous value.
func (s *Store) UpsertSetting(ctx context.Context, key, value string) error {
	return upsertSetting(ctx, s.db, key, value, time.Now())
}

func upsertSetting(ctx context.Context, q queryer, key, value string, now time.Time) error {
	_, err := q.ExecContext(ctx, `
		INSERT INTO settings (key, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET
			value = excluded.value,
			updated_at = excluded.updated_at`,
		key, value, formatTime(now))
	return err
}
