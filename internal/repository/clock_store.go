package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/subculture-collective/adserve/internal/apperr"
)

// ClockStore persists the singleton simulated-day row so the clock survives
// process restarts. The single row has a fixed id so upserts are trivial.
type ClockStore struct {
	pool *pgxpool.Pool
}

// NewClockStore wires a ClockStore to the shared connection pool.
func NewClockStore(pool *pgxpool.Pool) *ClockStore {
	return &ClockStore{pool: pool}
}

// Load returns the persisted day, creating the singleton row at 0 if absent.
func (s *ClockStore) Load(ctx context.Context) (uint32, error) {
	var day uint32
	err := s.pool.QueryRow(ctx, `SELECT now_day FROM clock_state WHERE id = 1`).Scan(&day)
	if errors.Is(err, pgx.ErrNoRows) {
		if _, insErr := s.pool.Exec(ctx,
			`INSERT INTO clock_state (id, now_day) VALUES (1, 0) ON CONFLICT (id) DO NOTHING`); insErr != nil {
			return 0, apperr.Wrap(apperr.CodeCacheUnavailable, "initializing clock state", insErr)
		}
		return 0, nil
	}
	if err != nil {
		return 0, apperr.Wrap(apperr.CodeCacheUnavailable, "loading clock state", err)
	}
	return day, nil
}

// Save persists the new day value. Callers are responsible for monotonicity.
func (s *ClockStore) Save(ctx context.Context, day uint32) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO clock_state (id, now_day) VALUES (1, $1)
		 ON CONFLICT (id) DO UPDATE SET now_day = EXCLUDED.now_day`, day)
	if err != nil {
		return apperr.Wrap(apperr.CodeCacheUnavailable, "persisting clock state", err)
	}
	return nil
}
