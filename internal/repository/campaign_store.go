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

// clockReader is the minimal clock dependency CampaignStore needs to apply
// the frozen-field-after-start_date rule (§4.3); satisfied by *clock.Service.
type clockReader interface {
	Now() uint32
}

// CampaignStore persists campaigns and enforces the invariants and
// mutability rules of §3 / §4.3.
type CampaignStore struct {
	pool   *pgxpool.Pool
	clock  clockReader
	helper *RepositoryHelper
}

// NewCampaignStore wires a CampaignStore to the shared pool and clock.
func NewCampaignStore(pool *pgxpool.Pool, clock clockReader) *CampaignStore {
	return &CampaignStore{pool: pool, clock: clock, helper: NewRepositoryHelper(pool)}
}

func validateCampaignInvariants(c *models.Campaign) error {
	if c.ClicksLimit > c.ImpressionsLimit {
		return apperr.Validation("clicks_limit must be <= impressions_limit")
	}
	if c.CostPerImpression < 0 || c.CostPerClick < 0 {
		return apperr.Validation("costs must be >= 0")
	}
	if c.StartDate > c.EndDate {
		return apperr.Validation("start_date must be <= end_date")
	}
	if c.Targeting.AgeFrom != nil && c.Targeting.AgeTo != nil && *c.Targeting.AgeFrom > *c.Targeting.AgeTo {
		return apperr.Validation("age_from must be <= age_to")
	}
	return nil
}

// Create persists a new campaign, server-assigning campaign_id. created_at
// and updated_at are the database's wall-clock now(), not the simulated day.
func (s *CampaignStore) Create(ctx context.Context, advertiserID uuid.UUID, payload models.Campaign) (*models.Campaign, error) {
	payload.CampaignID = uuid.New()
	payload.AdvertiserID = advertiserID
	if err := validateCampaignInvariants(&payload); err != nil {
		return nil, err
	}

	row := s.pool.QueryRow(ctx, `
		INSERT INTO campaigns (
			campaign_id, advertiser_id, impressions_limit, clicks_limit,
			cost_per_impression, cost_per_click, ad_title, ad_text,
			start_date, end_date, targeting_gender, targeting_age_from,
			targeting_age_to, targeting_location, created_at, updated_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,now(),now())
		RETURNING created_at, updated_at
	`, payload.CampaignID, payload.AdvertiserID, payload.ImpressionsLimit, payload.ClicksLimit,
		payload.CostPerImpression, payload.CostPerClick, payload.AdTitle, payload.AdText,
		payload.StartDate, payload.EndDate, payload.Targeting.Gender, payload.Targeting.AgeFrom,
		payload.Targeting.AgeTo, payload.Targeting.Location)

	if err := row.Scan(&payload.CreatedAt, &payload.UpdatedAt); err != nil {
		if isUniqueViolation(err) {
			return nil, apperr.Conflict("campaign already exists")
		}
		return nil, apperr.Wrap(apperr.CodeUnknown, "creating campaign", err)
	}
	return &payload, nil
}

// Get returns a campaign owned by advertiserID, or NotFound.
func (s *CampaignStore) Get(ctx context.Context, advertiserID, campaignID uuid.UUID) (*models.Campaign, error) {
	return s.scanOne(ctx, `
		SELECT campaign_id, advertiser_id, impressions_limit, clicks_limit,
			cost_per_impression, cost_per_click, ad_title, ad_text,
			start_date, end_date, targeting_gender, targeting_age_from,
			targeting_age_to, targeting_location, created_at, updated_at
		FROM campaigns WHERE advertiser_id = $1 AND campaign_id = $2
	`, advertiserID, campaignID)
}

func (s *CampaignStore) scanOne(ctx context.Context, query string, args ...any) (*models.Campaign, error) {
	var c models.Campaign
	err := s.pool.QueryRow(ctx, query, args...).Scan(
		&c.CampaignID, &c.AdvertiserID, &c.ImpressionsLimit, &c.ClicksLimit,
		&c.CostPerImpression, &c.CostPerClick, &c.AdTitle, &c.AdText,
		&c.StartDate, &c.EndDate, &c.Targeting.Gender, &c.Targeting.AgeFrom,
		&c.Targeting.AgeTo, &c.Targeting.Location, &c.CreatedAt, &c.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.NotFound("campaign not found")
	}
	if err != nil {
		return nil, apperr.Wrap(apperr.CodeUnknown, "loading campaign", err)
	}
	return &c, nil
}

// Update applies payload on top of the existing campaign owned by
// advertiserID. If the clock has reached start_date, impressions_limit,
// clicks_limit, start_date and end_date must match the stored values
// exactly (§4.3); other fields are always mutable.
func (s *CampaignStore) Update(ctx context.Context, advertiserID, campaignID uuid.UUID, payload models.Campaign) (*models.Campaign, error) {
	existing, err := s.Get(ctx, advertiserID, campaignID)
	if err != nil {
		return nil, err
	}

	if s.clock.Now() >= existing.StartDate {
		if payload.ImpressionsLimit != existing.ImpressionsLimit ||
			payload.ClicksLimit != existing.ClicksLimit ||
			payload.StartDate != existing.StartDate ||
			payload.EndDate != existing.EndDate {
			return nil, apperr.Validation("frozen after start")
		}
	}

	merged := *existing
	merged.CostPerImpression = payload.CostPerImpression
	merged.CostPerClick = payload.CostPerClick
	merged.AdTitle = payload.AdTitle
	merged.AdText = payload.AdText
	merged.ImpressionsLimit = payload.ImpressionsLimit
	merged.ClicksLimit = payload.ClicksLimit
	merged.StartDate = payload.StartDate
	merged.EndDate = payload.EndDate
	merged.Targeting = payload.Targeting

	if err := validateCampaignInvariants(&merged); err != nil {
		return nil, err
	}

	row := s.pool.QueryRow(ctx, `
		UPDATE campaigns SET
			impressions_limit = $1, clicks_limit = $2, cost_per_impression = $3,
			cost_per_click = $4, ad_title = $5, ad_text = $6, start_date = $7,
			end_date = $8, targeting_gender = $9, targeting_age_from = $10,
			targeting_age_to = $11, targeting_location = $12, updated_at = now()
		WHERE advertiser_id = $13 AND campaign_id = $14
		RETURNING updated_at
	`, merged.ImpressionsLimit, merged.ClicksLimit, merged.CostPerImpression, merged.CostPerClick,
		merged.AdTitle, merged.AdText, merged.StartDate, merged.EndDate, merged.Targeting.Gender,
		merged.Targeting.AgeFrom, merged.Targeting.AgeTo, merged.Targeting.Location,
		advertiserID, campaignID)

	if err := row.Scan(&merged.UpdatedAt); err != nil {
		return nil, apperr.Wrap(apperr.CodeUnknown, "updating campaign", err)
	}
	return &merged, nil
}

// Delete removes a campaign owned by advertiserID, cascading to its images,
// views, clicks, and daily stat rows via FK ON DELETE CASCADE.
func (s *CampaignStore) Delete(ctx context.Context, advertiserID, campaignID uuid.UUID) error {
	tag, err := s.pool.Exec(ctx,
		`DELETE FROM campaigns WHERE advertiser_id = $1 AND campaign_id = $2`, advertiserID, campaignID)
	if err != nil {
		return apperr.Wrap(apperr.CodeUnknown, "deleting campaign", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("campaign not found")
	}
	return nil
}

// List returns a page of campaigns owned by advertiserID and the total
// count. size=0 or page=0 yields an empty page with the true total (§4.3).
func (s *CampaignStore) List(ctx context.Context, advertiserID uuid.UUID, page, size int) (int, []models.Campaign, error) {
	var total int
	if err := s.pool.QueryRow(ctx,
		`SELECT count(*) FROM campaigns WHERE advertiser_id = $1`, advertiserID).Scan(&total); err != nil {
		return 0, nil, apperr.Wrap(apperr.CodeUnknown, "counting campaigns", err)
	}
	if size == 0 || page == 0 {
		return total, []models.Campaign{}, nil
	}

	offset := (page - 1) * size
	s.helper.EnforcePaginationLimits(&size, &offset)

	rows, err := s.pool.Query(ctx, `
		SELECT campaign_id, advertiser_id, impressions_limit, clicks_limit,
			cost_per_impression, cost_per_click, ad_title, ad_text,
			start_date, end_date, targeting_gender, targeting_age_from,
			targeting_age_to, targeting_location, created_at, updated_at
		FROM campaigns WHERE advertiser_id = $1
		ORDER BY created_at ASC
		LIMIT $2 OFFSET $3
	`, advertiserID, size, offset)
	if err != nil {
		return 0, nil, apperr.Wrap(apperr.CodeUnknown, "listing campaigns", err)
	}
	defer rows.Close()

	out := []models.Campaign{}
	for rows.Next() {
		var c models.Campaign
		if err := rows.Scan(
			&c.CampaignID, &c.AdvertiserID, &c.ImpressionsLimit, &c.ClicksLimit,
			&c.CostPerImpression, &c.CostPerClick, &c.AdTitle, &c.AdText,
			&c.StartDate, &c.EndDate, &c.Targeting.Gender, &c.Targeting.AgeFrom,
			&c.Targeting.AgeTo, &c.Targeting.Location, &c.CreatedAt, &c.UpdatedAt,
		); err != nil {
			return 0, nil, apperr.Wrap(apperr.CodeUnknown, "scanning campaign row", err)
		}
		out = append(out, c)
	}
	return total, out, rows.Err()
}

// ListActive returns every campaign whose window contains day.
func (s *CampaignStore) ListActive(ctx context.Context, day uint32) ([]models.Campaign, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT campaign_id, advertiser_id, impressions_limit, clicks_limit,
			cost_per_impression, cost_per_click, ad_title, ad_text,
			start_date, end_date, targeting_gender, targeting_age_from,
			targeting_age_to, targeting_location, created_at, updated_at
		FROM campaigns WHERE start_date <= $1 AND end_date >= $1
	`, day)
	if err != nil {
		return nil, apperr.Wrap(apperr.CodeUnknown, "listing active campaigns", err)
	}
	defer rows.Close()

	out := []models.Campaign{}
	for rows.Next() {
		var c models.Campaign
		if err := rows.Scan(
			&c.CampaignID, &c.AdvertiserID, &c.ImpressionsLimit, &c.ClicksLimit,
			&c.CostPerImpression, &c.CostPerClick, &c.AdTitle, &c.AdText,
			&c.StartDate, &c.EndDate, &c.Targeting.Gender, &c.Targeting.AgeFrom,
			&c.Targeting.AgeTo, &c.Targeting.Location, &c.CreatedAt, &c.UpdatedAt,
		); err != nil {
			return nil, apperr.Wrap(apperr.CodeUnknown, "scanning active campaign row", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// GetIDsByAdvertiser returns every campaign_id owned by advertiserID.
func (s *CampaignStore) GetIDsByAdvertiser(ctx context.Context, advertiserID uuid.UUID) ([]uuid.UUID, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT campaign_id FROM campaigns WHERE advertiser_id = $1`, advertiserID)
	if err != nil {
		return nil, apperr.Wrap(apperr.CodeUnknown, "listing campaign ids", err)
	}
	defer rows.Close()

	ids := []uuid.UUID{}
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, apperr.Wrap(apperr.CodeUnknown, "scanning campaign id", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// Exists reports whether campaignID is a known campaign, regardless of owner.
func (s *CampaignStore) Exists(ctx context.Context, campaignID uuid.UUID) (bool, error) {
	var exists bool
	err := s.pool.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM campaigns WHERE campaign_id = $1)`, campaignID).Scan(&exists)
	if err != nil {
		return false, apperr.Wrap(apperr.CodeUnknown, "checking campaign existence", err)
	}
	return exists, nil
}

// isUniqueViolation reports whether err is a Postgres unique_violation.
func isUniqueViolation(err error) bool {
	var pgErr interface{ SQLState() string }
	if errors.As(err, &pgErr) {
		return pgErr.SQLState() == "23505"
	}
	return false
}
