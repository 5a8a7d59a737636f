package sqlite

import (
	"context"
	"database/sql"
	"errors"

	"github.com/egghunt/egghunt-server/internal/domain"
	"github.com/egghunt/egghunt-server/internal/geo"
	"github.com/egghunt/egghunt-server/internal/store"
)

const cacheColumns = `id, created_at, updated_at, event_id, name, description, hint,
	latitude, longitude, active`

func scanCache(row scanner) (*domain.Cache, error) {
	var c domain.Cache

	var (
		createdAt string
		updatedAt string
		hint      sql.NullString
		active    int
	)

	err := row.Scan(
		&c.ID,
		&createdAt,
		&updatedAt,
		&c.EventID,
		&c.Name,
		&c.Description,
		&hint,
		&c.Latitude,
		&c.Longitude,
		&active,
	)
	if err != nil {
		return nil, err
	}

	c.CreatedAt, err = parseTime(createdAt)
	if err != nil {
		return nil, err
	}
	c.UpdatedAt, err = parseTime(updatedAt)
	if err != nil {
		return nil, err
	}
	if hint.Valid {
		c.Hint = hint.String
	}
	c.Active = active != 0

	return &c, nil
}

// CreateCache inserts a new cache.
// Returns store.ErrNotFound if the owning event does not exist and
// store.ErrInvalidInput if the coordinates are out of range.
func (s *Store) CreateCache(ctx context.Context, cache *domain.Cache) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO caches (
			id, created_at, updated_at, event_id, name, description, hint,
			latitude, longitude, active
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		cache.ID,
		formatTime(cache.CreatedAt),
		formatTime(cache.UpdatedAt),
		cache.EventID,
		cache.Name,
		cache.Description,
		nullString(cache.Hint),
		cache.Latitude,
		cache.Longitude,
		boolToInt(cache.Active),
	)
	switch {
	case err == nil:
		return nil
	case isUniqueViolation(err):
		return store.ErrAlreadyExists
	case isForeignKeyViolation(err):
		return store.ErrNotFound.WithCause(err)
	case isCheckViolation(err):
		return store.ErrInvalidInput.WithCause(err)
	default:
		return err
	}
}

// GetCache retrieves a cache by ID.
// Returns store.ErrNotFound if the cache does not exist.
func (s *Store) GetCache(ctx context.Context, id string) (*domain.Cache, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+cacheColumns+` FROM caches WHERE id = ?`, id)

	c, err := scanCache(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	return c, err
}

// ListActiveCachesInBox returns the active caches of eventID inside box.
func (s *Store) ListActiveCachesInBox(ctx context.Context, eventID string, box geo.Box) ([]*domain.Cache, error) {
	query := `SELECT ` + cacheColumns + ` FROM caches
		WHERE event_id = ? AND active = 1
			AND latitude BETWEEN ? AND ?`
	args := []any{eventID, box.MinLat, box.MaxLat}
	if !box.WrapsLon {
		query += ` AND longitude BETWEEN ? AND ?`
		args = append(args, box.MinLon, box.MaxLon)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var caches []*domain.Cache
	for rows.Next() {
		c, err := scanCache(rows)
		if err != nil {
			return nil, err
		}
		caches = append(caches, c)
	}
	return caches, rows.Err()
}
