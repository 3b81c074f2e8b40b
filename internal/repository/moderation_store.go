package repository

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/subculture-collective/adserve/internal/apperr"
)

// ModerationStore persists the obscene-word list and the singleton
// auto-moderate toggle (§3, §4.9).
type ModerationStore struct {
	pool *pgxpool.Pool
}

// NewModerationStore wires a ModerationStore to the shared connection pool.
func NewModerationStore(pool *pgxpool.Pool) *ModerationStore {
	return &ModerationStore{pool: pool}
}

// ListWords returns the full obscene-word set, lowercased.
func (s *ModerationStore) ListWords(ctx context.Context) ([]string, error) {
	rows, err := s.pool.Query(ctx, `SELECT word FROM obscene_words ORDER BY word ASC`)
	if err != nil {
		return nil, apperr.Wrap(apperr.CodeUnknown, "listing obscene words", err)
	}
	defer rows.Close()

	out := []string{}
	for rows.Next() {
		var w string
		if err := rows.Scan(&w); err != nil {
			return nil, apperr.Wrap(apperr.CodeUnknown, "scanning obscene word", err)
		}
		out = append(out, w)
	}
	return out, rows.Err()
}

// AddWords appends words to the store, lowercased and deduplicated.
func (s *ModerationStore) AddWords(ctx context.Context, words []string) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return apperr.Wrap(apperr.CodeUnknown, "starting word add transaction", err)
	}
	defer tx.Rollback(ctx)

	seen := make(map[string]struct{}, len(words))
	for _, w := range words {
		lw := strings.ToLower(strings.TrimSpace(w))
		if lw == "" {
			continue
		}
		if _, dup := seen[lw]; dup {
			continue
		}
		seen[lw] = struct{}{}
		if _, err := tx.Exec(ctx,
			`INSERT INTO obscene_words (word) VALUES ($1) ON CONFLICT (word) DO NOTHING`, lw,
		); err != nil {
			return apperr.Wrap(apperr.CodeUnknown, "adding obscene word", err)
		}
	}
	if err := tx.Commit(ctx); err != nil {
		return apperr.Wrap(apperr.CodeUnknown, "committing word add", err)
	}
	return nil
}

// RemoveWords deletes words from the store (case-insensitive).
func (s *ModerationStore) RemoveWords(ctx context.Context, words []string) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return apperr.Wrap(apperr.CodeUnknown, "starting word remove transaction", err)
	}
	defer tx.Rollback(ctx)

	for _, w := range words {
		lw := strings.ToLower(strings.TrimSpace(w))
		if lw == "" {
			continue
		}
		if _, err := tx.Exec(ctx, `DELETE FROM obscene_words WHERE word = $1`, lw); err != nil {
			return apperr.Wrap(apperr.CodeUnknown, "removing obscene word", err)
		}
	}
	if err := tx.Commit(ctx); err != nil {
		return apperr.Wrap(apperr.CodeUnknown, "committing word remove", err)
	}
	return nil
}

// GetAutoModerateEnabled reads the singleton setting, defaulting to false
// if the row has never been written (§3).
func (s *ModerationStore) GetAutoModerateEnabled(ctx context.Context) (bool, error) {
	var enabled bool
	err := s.pool.QueryRow(ctx,
		`SELECT auto_moderate_enabled FROM moderation_settings WHERE id = 1`).Scan(&enabled)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, apperr.Wrap(apperr.CodeUnknown, "loading moderation setting", err)
	}
	return enabled, nil
}

// SetAutoModerateEnabled flips the singleton setting.
func (s *ModerationStore) SetAutoModerateEnabled(ctx context.Context, enabled bool) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO moderation_settings (id, auto_moderate_enabled) VALUES (1, $1)
		ON CONFLICT (id) DO UPDATE SET auto_moderate_enabled = EXCLUDED.auto_moderate_enabled
	`, enabled)
	if err != nil {
		return apperr.Wrap(apperr.CodeUnknown, "setting moderation setting", err)
	}
	return nil
}
