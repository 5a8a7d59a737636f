package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"maps"
	"slices"
	"time"

	"github.com/egghunt/egghunt-server/internal/domain"
	"github.com/egghunt/egghunt-server/internal/store"
)

// CompleteSetup runs first-time initialisation in one transaction. The
// precondition (no admin and no completed flag) is checked under the write
// lock so two concurrent setups cannot both pass it. event is only inserted
// when no event exists yet.
func (s *Store) CompleteSetup(ctx context.Context, admin *domain.User, settings map[string]string, event *domain.Event) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	done, err := setupCompleted(ctx, tx)
	if err != nil {
		return err
	}
	if done {
		return store.ErrAlreadyExists
	}

	if err := insertUser(ctx, tx, admin); err != nil {
		return err
	}

	now := time.Now()
	for _, key := range slices.Sorted(maps.Keys(settings)) {
		if err := upsertSetting(ctx, tx, key, settings[key], now); err != nil {
			return err
		}
	}

	if event != nil {
		events, err := countEvents(ctx, tx)
		if err != nil {
			return err
		}
		if events == 0 {
			if err := insertEvent(ctx, tx, event); err != nil {
				return err
			}
		}
	}

	return tx.Commit()
}

// SetupCompleted reports whether first-time setup has run: an admin exists
// or the SETUP_COMPLETED setting is "true".
func (s *Store) SetupCompleted(ctx context.Context) (bool, error) {
	return setupCompleted(ctx, s.db)
}

func setupCompleted(ctx context.Context, q queryer) (bool, error) {
	admins, err := countAdmins(ctx, q)
	if err != nil {
		return false, err
	}
	if admins > 0 {
		return true, nil
	}

	var flag string
	err = q.QueryRowContext(ctx,
		`SELECT value FROM settings WHERE key = ?`, domain.SettingSetupCompleted).Scan(&flag)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return flag == "true", nil
}
