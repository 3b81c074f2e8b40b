package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/subculture-collective/adserve/internal/apperr"
	"github.com/subculture-collective/adserve/internal/models"
)

// EventStore persists the append-only view/click fact rows that back
// StatsEngine (§4.8) and the ActiveCache rebuild path (§4.4). Each kind is
// unique on (campaign_id, client_id); re-recording is a no-op.
type EventStore struct {
	pool *pgxpool.Pool
}

// NewEventStore wires an EventStore to the shared connection pool.
func NewEventStore(pool *pgxpool.Pool) *EventStore {
	return &EventStore{pool: pool}
}

// RecordView appends a view row, a no-op if one already exists for
// (campaign_id, client_id).
func (s *EventStore) RecordView(ctx context.Context, campaignID, clientID uuid.UUID, day uint32, cost float64) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO view_events (campaign_id, client_id, day, cost)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (campaign_id, client_id) DO NOTHING
	`, campaignID, clientID, day, cost)
	if err != nil {
		return apperr.Wrap(apperr.CodeUnknown, "recording view event", err)
	}
	return nil
}

// RecordClick appends a click row, a no-op if one already exists.
func (s *EventStore) RecordClick(ctx context.Context, campaignID, clientID uuid.UUID, day uint32, cost float64) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO click_events (campaign_id, client_id, day, cost)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (campaign_id, client_id) DO NOTHING
	`, campaignID, clientID, day, cost)
	if err != nil {
		return apperr.Wrap(apperr.CodeUnknown, "recording click event", err)
	}
	return nil
}

// ViewClientsFor returns every client_id that has viewed campaignID, used
// to seed ActiveCache.ViewClients on rebuild (§4.4).
func (s *EventStore) ViewClientsFor(ctx context.Context, campaignID uuid.UUID) ([]uuid.UUID, error) {
	return s.clientsFor(ctx, "view_events", campaignID)
}

// ClickClientsFor returns every client_id that has clicked campaignID.
func (s *EventStore) ClickClientsFor(ctx context.Context, campaignID uuid.UUID) ([]uuid.UUID, error) {
	return s.clientsFor(ctx, "click_events", campaignID)
}

func (s *EventStore) clientsFor(ctx context.Context, table string, campaignID uuid.UUID) ([]uuid.UUID, error) {
	// table is a fixed internal literal, never user input.
	rows, err := s.pool.Query(ctx,
		`SELECT client_id FROM `+table+` WHERE campaign_id = $1`, campaignID)
	if err != nil {
		return nil, apperr.Wrap(apperr.CodeUnknown, "loading event clients", err)
	}
	defer rows.Close()

	out := []uuid.UUID{}
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, apperr.Wrap(apperr.CodeUnknown, "scanning event client", err)
		}
		out = append(out, id)
	}
	return out, rows.Err()
}

// DailyRowsFor returns every (day, impressions, clicks, spent_imp, spent_clk)
// row for campaignID, one row per day that has at least one view or click,
// used by StatsEngine.Daily to group and gap-fill (§4.8).
func (s *EventStore) DailyRowsFor(ctx context.Context, campaignID uuid.UUID) ([]models.DailyStat, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT day,
			coalesce(sum(imp_count), 0), coalesce(sum(imp_cost), 0),
			coalesce(sum(clk_count), 0), coalesce(sum(clk_cost), 0)
		FROM (
			SELECT day, count(*) AS imp_count, sum(cost) AS imp_cost, 0 AS clk_count, 0::float8 AS clk_cost
			FROM view_events WHERE campaign_id = $1
			GROUP BY day
			UNION ALL
			SELECT day, 0, 0::float8, count(*), sum(cost)
			FROM click_events WHERE campaign_id = $1
			GROUP BY day
		) combined
		GROUP BY day
		ORDER BY day ASC
	`, campaignID)
	if err != nil {
		return nil, apperr.Wrap(apperr.CodeUnknown, "loading daily stat rows", err)
	}
	defer rows.Close()

	out := []models.DailyStat{}
	for rows.Next() {
		var d models.DailyStat
		if err := rows.Scan(&d.Day, &d.Impressions, &d.SpentImp, &d.Clicks, &d.SpentClk); err != nil {
			return nil, apperr.Wrap(apperr.CodeUnknown, "scanning daily stat row", err)
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

// DailyRowsForAdvertiser returns the same shape as DailyRowsFor but unioned
// across every campaign owned by advertiserID, used by
// StatsEngine.DailyForAdvertiser (§4.8).
func (s *EventStore) DailyRowsForAdvertiser(ctx context.Context, advertiserID uuid.UUID) ([]models.DailyStat, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT day,
			coalesce(sum(imp_count), 0), coalesce(sum(imp_cost), 0),
			coalesce(sum(clk_count), 0), coalesce(sum(clk_cost), 0)
		FROM (
			SELECT v.day AS day, count(*) AS imp_count, sum(v.cost) AS imp_cost, 0 AS clk_count, 0::float8 AS clk_cost
			FROM view_events v
			JOIN campaigns c ON c.campaign_id = v.campaign_id
			WHERE c.advertiser_id = $1
			GROUP BY v.day
			UNION ALL
			SELECT k.day, 0, 0::float8, count(*), sum(k.cost)
			FROM click_events k
			JOIN campaigns c ON c.campaign_id = k.campaign_id
			WHERE c.advertiser_id = $1
			GROUP BY k.day
		) combined
		GROUP BY day
		ORDER BY day DESC
	`, advertiserID)
	if err != nil {
		return nil, apperr.Wrap(apperr.CodeUnknown, "loading advertiser daily stat rows", err)
	}
	defer rows.Close()

	out := []models.DailyStat{}
	for rows.Next() {
		var d models.DailyStat
		if err := rows.Scan(&d.Day, &d.Impressions, &d.SpentImp, &d.Clicks, &d.SpentClk); err != nil {
			return nil, apperr.Wrap(apperr.CodeUnknown, "scanning advertiser daily stat row", err)
		}
		out = append(out, d)
	}
	return out, rows.Err()
}
