package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/subculture-collective/adserve/internal/apperr"
	"github.com/subculture-collective/adserve/internal/models"
)

// ProfileStore persists clients, advertisers, and the ML-score relation
// between them (§4.2).
type ProfileStore struct {
	pool *pgxpool.Pool
}

// NewProfileStore wires a ProfileStore to the shared connection pool.
func NewProfileStore(pool *pgxpool.Pool) *ProfileStore {
	return &ProfileStore{pool: pool}
}

// RegisterClients upserts batch keyed on client_id; duplicate ids within
// batch collapse to last-writer-wins since the statements run in batch order
// within a single transaction and later writes overwrite earlier ones.
func (s *ProfileStore) RegisterClients(ctx context.Context, batch []models.Client) ([]models.Client, error) {
	if len(batch) == 0 {
		return batch, nil
	}
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, apperr.Wrap(apperr.CodeUnknown, "starting client upsert transaction", err)
	}
	defer tx.Rollback(ctx)

	for _, c := range batch {
		_, err := tx.Exec(ctx, `
			INSERT INTO clients (client_id, login, location, gender, age)
			VALUES ($1, $2, $3, $4, $5)
			ON CONFLICT (client_id) DO UPDATE SET
				login = EXCLUDED.login,
				location = EXCLUDED.location,
				gender = EXCLUDED.gender,
				age = EXCLUDED.age
		`, c.ClientID, c.Login, c.Location, c.Gender, c.Age)
		if err != nil {
			return nil, apperr.Wrap(apperr.CodeUnknown, "upserting client", err)
		}
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, apperr.Wrap(apperr.CodeUnknown, "committing client upsert", err)
	}
	return batch, nil
}

// RegisterAdvertisers upserts batch keyed on advertiser_id with the same
// last-writer-wins semantics as RegisterClients.
func (s *ProfileStore) RegisterAdvertisers(ctx context.Context, batch []models.Advertiser) ([]models.Advertiser, error) {
	if len(batch) == 0 {
		return batch, nil
	}
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, apperr.Wrap(apperr.CodeUnknown, "starting advertiser upsert transaction", err)
	}
	defer tx.Rollback(ctx)

	for _, a := range batch {
		_, err := tx.Exec(ctx, `
			INSERT INTO advertisers (advertiser_id, name)
			VALUES ($1, $2)
			ON CONFLICT (advertiser_id) DO UPDATE SET name = EXCLUDED.name
		`, a.AdvertiserID, a.Name)
		if err != nil {
			return nil, apperr.Wrap(apperr.CodeUnknown, "upserting advertiser", err)
		}
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, apperr.Wrap(apperr.CodeUnknown, "committing advertiser upsert", err)
	}
	return batch, nil
}

// GetClient returns the client by id, or NotFound.
func (s *ProfileStore) GetClient(ctx context.Context, id uuid.UUID) (*models.Client, error) {
	var c models.Client
	err := s.pool.QueryRow(ctx,
		`SELECT client_id, login, location, gender, age FROM clients WHERE client_id = $1`, id,
	).Scan(&c.ClientID, &c.Login, &c.Location, &c.Gender, &c.Age)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.NotFoundf("client %s not found", id)
	}
	if err != nil {
		return nil, apperr.Wrap(apperr.CodeUnknown, "loading client", err)
	}
	return &c, nil
}

// GetAdvertiser returns the advertiser by id, or NotFound.
func (s *ProfileStore) GetAdvertiser(ctx context.Context, id uuid.UUID) (*models.Advertiser, error) {
	var a models.Advertiser
	err := s.pool.QueryRow(ctx,
		`SELECT advertiser_id, name FROM advertisers WHERE advertiser_id = $1`, id,
	).Scan(&a.AdvertiserID, &a.Name)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.NotFoundf("advertiser %s not found", id)
	}
	if err != nil {
		return nil, apperr.Wrap(apperr.CodeUnknown, "loading advertiser", err)
	}
	return &a, nil
}

// SetMLScore upserts the (client, advertiser) relevance scalar, failing
// NotFound if either id is absent (§4.2).
func (s *ProfileStore) SetMLScore(ctx context.Context, clientID, advertiserID uuid.UUID, score float64) error {
	if _, err := s.GetClient(ctx, clientID); err != nil {
		return err
	}
	if _, err := s.GetAdvertiser(ctx, advertiserID); err != nil {
		return err
	}
	_, err := s.pool.Exec(ctx, `
		INSERT INTO ml_scores (client_id, advertiser_id, score)
		VALUES ($1, $2, $3)
		ON CONFLICT (client_id, advertiser_id) DO UPDATE SET score = EXCLUDED.score
	`, clientID, advertiserID, score)
	if err != nil {
		return apperr.Wrap(apperr.CodeUnknown, "upserting ml score", err)
	}
	return nil
}

// GetMLScore returns the relevance scalar for (client, advertiser), or 0.0
// if no row exists — this is the selector's contract, not an error (§4.2).
func (s *ProfileStore) GetMLScore(ctx context.Context, clientID, advertiserID uuid.UUID) (float64, error) {
	var score float64
	err := s.pool.QueryRow(ctx,
		`SELECT score FROM ml_scores WHERE client_id = $1 AND advertiser_id = $2`,
		clientID, advertiserID,
	).Scan(&score)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, apperr.Wrap(apperr.CodeUnknown, "loading ml score", err)
	}
	return score, nil
}
