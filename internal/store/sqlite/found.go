package sqlite

import (
	"context"
	"database/sql"
	"errors"

	"github.com/egghunt/egghunt-server/internal/domain"
	"github.com/egghunt/egghunt-server/internal/store"
)

const foundColumns = `id, user_id, cache_id, event_id, first_found, created_at`

func scanFound(row scanner) (*domain.FoundRecord, error) {
	var f domain.FoundRecord

	var (
		firstFound int
		createdAt  string
	)

	err := row.Scan(
		&f.ID,
		&f.UserID,
		&f.CacheID,
		&f.EventID,
		&firstFound,
		&createdAt,
	)
	if err != nil {
		return nil, err
	}

	f.CreatedAt, err = parseTime(createdAt)
	if err != nil {
		return nil, err
	}
	f.FirstFound = firstFound != 0

	return &f, nil
}

// HasFoundRecord reports whether anyone has found cacheID yet.
func (s *Store) HasFoundRecord(ctx context.Context, cacheID string) (bool, error) {
	var exists int
	err := s.db.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM found_records WHERE cache_id = ?)`, cacheID).Scan(&exists)
	if err != nil {
		return false, err
	}
	return exists != 0, nil
}

// ClaimCache records that record.UserID found record.CacheID.
//
// The transaction starts with BEGIN IMMEDIATE, so the lookup of an existing
// record, the first-find check and the insert all run while this connection
// holds the write lock. The first_found value is computed by the INSERT
// itself. The partial unique index on first_found backs this up.
func (s *Store) ClaimCache(ctx context.Context, record *domain.FoundRecord) (*domain.FoundRecord, bool, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, false, err
	}
	defer tx.Rollback()

	existing, err := scanFound(tx.QueryRowContext(ctx,
		`SELECT `+foundColumns+` FROM found_records WHERE user_id = ? AND cache_id = ?`,
		record.UserID, record.CacheID))
	switch {
	case err == nil:
		return existing, false, tx.Commit()
	case !errors.Is(err, sql.ErrNoRows):
		return nil, false, err
	}

	created, err := scanFound(tx.QueryRowContext(ctx, `
		INSERT INTO found_records (
			id, user_id, cache_id, event_id, first_found, created_at
		) VALUES (
			?, ?, ?, ?,
			NOT EXISTS(SELECT 1 FROM found_records WHERE cache_id = ?),
			?
		)
		RETURNING `+foundColumns,
		record.ID,
		record.UserID,
		record.CacheID,
		record.EventID,
		record.CacheID,
		formatTime(record.CreatedAt),
	))
	if err != nil {
		if isForeignKeyViolation(err) {
			return nil, false, store.ErrNotFound.WithCause(err)
		}
		if isUniqueViolation(err) {
			return nil, false, store.ErrAlreadyExists.WithCause(err)
		}
		return nil, false, err
	}

	if err := tx.Commit(); err != nil {
		return nil, false, err
	}
	return created, true, nil
}

// ListFoundRecords returns the records of userID within eventID, oldest first.
func (s *Store) ListFoundRecords(ctx context.Context, userID, eventID string) ([]*domain.FoundRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+foundColumns+` FROM found_records
		WHERE user_id = ? AND event_id = ?
		ORDER BY created_at`,
		userID, eventID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []*domain.FoundRecord
	for rows.Next() {
		f, err := scanFound(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, f)
	}
	return records, rows.Err()
}

// FoundSummaries returns the found state of each cache in cacheIDs from the
// point of view of userID. Caches nobody has found are absent from the map.
func (s *Store) FoundSummaries(ctx context.Context, cacheIDs []string, userID string) (map[string]domain.FoundSummary, error) {
	summaries := make(map[string]domain.FoundSummary, len(cacheIDs))
	if len(cacheIDs) == 0 {
		return summaries, nil
	}

	args := make([]any, 0, len(cacheIDs)+1)
	args = append(args, userID)
	for _, id := range cacheIDs {
		args = append(args, id)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT
			cache_id,
			COUNT(*),
			COALESCE(MAX(CASE WHEN first_found = 1 THEN user_id END), ''),
			MAX(CASE WHEN user_id = ? THEN 1 ELSE 0 END)
		FROM found_records
		WHERE cache_id IN (`+placeholders(len(cacheIDs))+`)
		GROUP BY cache_id`,
		args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			cacheID string
			sum     domain.FoundSummary
			mine    int
		)
		if err := rows.Scan(&cacheID, &sum.FoundCount, &sum.FirstFinderID, &mine); err != nil {
			return nil, err
		}
		sum.FoundByMe = mine != 0
		summaries[cacheID] = sum
	}
	return summaries, rows.Err()
}
