package selector

import (
	"context"
	"math/rand"

	"github.com/google/uuid"
	"github.com/subculture-collective/adserve/internal/apperr"
	"github.com/subculture-collective/adserve/internal/cache"
	"github.com/subculture-collective/adserve/internal/clock"
	"github.com/subculture-collective/adserve/internal/models"
	"github.com/subculture-collective/adserve/internal/repository"
)

// Service orchestrates the read path (spec §4.5: GET /ads) and write path
// (spec §4.6: POST click) around the pure Select function, wiring it to the
// active cache and the persisted fact stores.
type Service struct {
	cache     *cache.ActiveCache
	campaigns *repository.CampaignStore
	profiles  *repository.ProfileStore
	events    *repository.EventStore
	clock     *clock.Service
	cfg       Config
}

// New wires a Service to its collaborators and scoring configuration.
func New(c *cache.ActiveCache, campaigns *repository.CampaignStore, profiles *repository.ProfileStore, events *repository.EventStore, clk *clock.Service, cfg Config) *Service {
	return &Service{cache: c, campaigns: campaigns, profiles: profiles, events: events, clock: clk, cfg: cfg}
}

// GetAd implements spec §4.5: load the client, snapshot every active
// campaign, pick a winner, record the impression in both the durable event
// store and the cache, and return the winning Ad.
func (s *Service) GetAd(ctx context.Context, clientID uuid.UUID) (*models.Ad, error) {
	client, err := s.profiles.GetClient(ctx, clientID)
	if err != nil {
		return nil, err
	}

	active, err := s.cache.ScanAll(ctx)
	if err != nil {
		return nil, err
	}
	if len(active) == 0 {
		return nil, apperr.NotFound("no active campaigns")
	}

	now := s.clock.Now()
	ad, err := Select(ctx, client, active, now, s.cfg, s.profiles.GetMLScore, rand.Intn)
	if err != nil {
		return nil, err
	}

	if err := s.recordView(ctx, ad.AdID, clientID, now); err != nil {
		return nil, err
	}
	return ad, nil
}

// recordView persists the impression fact (idempotent on repeat views) and
// mirrors it into the cache's view set, matching the campaign's
// cost_per_impression.
func (s *Service) recordView(ctx context.Context, campaignID, clientID uuid.UUID, day uint32) error {
	view, err := s.cache.Get(ctx, campaignID)
	if err != nil {
		return err
	}
	if err := s.events.RecordView(ctx, campaignID, clientID, day, view.CostPerImpression); err != nil {
		return err
	}
	return s.cache.AddView(ctx, campaignID, clientID)
}

// Click implements spec §4.6's click state machine exactly: the client must
// exist (NotFound otherwise), the campaign must exist at all (Validation
// otherwise), the campaign must currently be active in the cache
// (Validation("inactive") on a cache miss, distinct from the campaign never
// having existed), the client must have previously viewed the campaign, and
// a repeat click is a silent no-op rather than an error.
func (s *Service) Click(ctx context.Context, campaignID, clientID uuid.UUID) error {
	if _, err := s.profiles.GetClient(ctx, clientID); err != nil {
		return err
	}

	exists, err := s.campaigns.Exists(ctx, campaignID)
	if err != nil {
		return err
	}
	if !exists {
		return apperr.Validationf("campaign %s does not exist", campaignID)
	}

	view, err := s.cache.Get(ctx, campaignID)
	if err != nil {
		if appErr, ok := apperr.As(err); ok && appErr.Code == apperr.CodeNotFound {
			return apperr.Validationf("campaign %s is not active", campaignID)
		}
		return err
	}
	if !view.HasViewed(clientID) {
		return apperr.Validationf("client %s has not viewed campaign %s", clientID, campaignID)
	}
	if view.HasClicked(clientID) {
		return nil
	}

	now := s.clock.Now()
	if err := s.events.RecordClick(ctx, campaignID, clientID, now, view.CostPerClick); err != nil {
		return err
	}
	return s.cache.AddClick(ctx, campaignID, clientID)
}
