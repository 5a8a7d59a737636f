package sqlite

import (
	"context"
	"database/sql"
	"errors"

	"github.com/egghunt/egghunt-server/internal/domain"
	"github.com/egghunt/egghunt-server/internal/store"
)

const eventColumns = `id, created_at, updated_at, name, slug, active, starts_at, ends_at`

func scanEvent(row scanner) (*domain.Event, error) {
	var e domain.Event

	var (
		createdAt string
		updatedAt string
		active    int
		startsAt  sql.NullString
		endsAt    sql.NullString
	)

	err := row.Scan(
		&e.ID,
		&createdAt,
		&updatedAt,
		&e.Name,
		&e.Slug,
		&active,
		&startsAt,
		&endsAt,
	)
	if err != nil {
		return nil, err
	}

	e.CreatedAt, err = parseTime(createdAt)
	if err != nil {
		return nil, err
	}
	e.UpdatedAt, err = parseTime(updatedAt)
	if err != nil {
		return nil, err
	}
	e.StartsAt, err = parseNullableTime(startsAt)
	if err != nil {
		return nil, err
	}
	e.EndsAt, err = parseNullableTime(endsAt)
	if err != nil {
		return nil, err
	}
	e.Active = active != 0

	return &e, nil
}

func insertEvent(ctx context.Context, q queryer, event *domain.Event) error {
	_, err := q.ExecContext(ctx, `
		INSERT INTO events (
			id, created_at, updated_at, name, slug, active, starts_at, ends_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		event.ID,
		formatTime(event.CreatedAt),
		formatTime(event.UpdatedAt),
		event.Name,
		event.Slug,
		boolToInt(event.Active),
		nullTimeString(event.StartsAt),
		nullTimeString(event.EndsAt),
	)
	if isUniqueViolation(err) {
		return store.ErrAlreadyExists
	}
	return err
}

// CreateEvent inserts a new event.
// Returns store.ErrAlreadyExists if the ID or slug is taken.
func (s *Store) CreateEvent(ctx context.Context, event *domain.Event) error {
	return insertEvent(ctx, s.db, event)
}

// GetEvent retrieves an event by ID.
// Returns store.ErrNotFound if the event does not exist.
func (s *Store) GetEvent(ctx context.Context, id string) (*domain.Event, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+eventColumns+` FROM events WHERE id = ?`, id)

	e, err := scanEvent(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	return e, err
}

// GetEventBySlug retrieves an event by its slug.
// Returns store.ErrNotFound if no event has that slug.
func (s *Store) GetEventBySlug(ctx context.Context, slug string) (*domain.Event, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+eventColumns+` FROM events WHERE slug = ?`, slug)

	e, err := scanEvent(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	return e, err
}

// ListEvents returns events ordered by start time, undated events last.
func (s *Store) ListEvents(ctx context.Context, activeOnly bool) ([]*domain.Event, error) {
	query := `SELECT ` + eventColumns + ` FROM events`
	if activeOnly {
		query += ` WHERE active = 1`
	}
	query += ` ORDER BY starts_at IS NULL, starts_at, created_at`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []*domain.Event
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

func countEvents(ctx context.Context, q queryer) (int, error) {
	var n int
	err := q.QueryRowContext(ctx, `SELECT COUNT(*) FROM events`).Scan(&n)
	return n, err
}
