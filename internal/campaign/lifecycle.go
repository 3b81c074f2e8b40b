// Package campaign implements CampaignLifecycle (spec §4.7): the
// orchestration layer around CampaignStore that enforces the moderation
// gate on create, keeps ActiveCache synchronized with every mutation, and
// drives the optional text-generation path.
package campaign

import (
	"context"

	"github.com/google/uuid"
	"github.com/subculture-collective/adserve/internal/cache"
	"github.com/subculture-collective/adserve/internal/clock"
	"github.com/subculture-collective/adserve/internal/models"
	"github.com/subculture-collective/adserve/internal/repository"
)

// moderator is the minimal moderation dependency Lifecycle needs.
type moderator interface {
	CheckAbusiveContent(ctx context.Context, text []string, active bool) error
	AutoModerateEnabled(ctx context.Context) (bool, error)
}

// generator is the minimal TextGenerator dependency Lifecycle needs.
type generator interface {
	Generate(ctx context.Context, mode models.TextGenMode, campaign *models.Campaign) (title, body string, err error)
}

// Lifecycle orchestrates campaign create/update/delete/generate-text.
type Lifecycle struct {
	store      *repository.CampaignStore
	cache      *cache.ActiveCache
	events     *repository.EventStore
	clock      *clock.Service
	moderation moderator
	textgen    generator
}

// New wires a Lifecycle to its collaborators.
func New(store *repository.CampaignStore, c *cache.ActiveCache, events *repository.EventStore, clk *clock.Service, mod moderator, gen generator) *Lifecycle {
	return &Lifecycle{store: store, cache: c, events: events, clock: clk, moderation: mod, textgen: gen}
}

// Create validates and persists payload, gating on moderation if the
// auto-moderate setting is on, then seeds the cache if the new campaign is
// immediately active (spec §4.7).
func (l *Lifecycle) Create(ctx context.Context, advertiserID uuid.UUID, payload models.Campaign) (*models.Campaign, error) {
	autoModerate, err := l.moderation.AutoModerateEnabled(ctx)
	if err != nil {
		return nil, err
	}
	if err := l.moderation.CheckAbusiveContent(ctx, []string{payload.AdTitle, payload.AdText}, autoModerate); err != nil {
		return nil, err
	}

	created, err := l.store.Create(ctx, advertiserID, payload)
	if err != nil {
		return nil, err
	}

	if created.IsActiveOn(l.clock.Now()) {
		if err := l.cache.Put(ctx, &models.ActiveCampaignView{
			Campaign:     *created,
			ViewClients:  map[uuid.UUID]struct{}{},
			ClickClients: map[uuid.UUID]struct{}{},
		}); err != nil {
			return nil, err
		}
	}
	return created, nil
}

// Update applies payload through CampaignStore's mutability rules, then
// synchronizes the cache: puts the refreshed view (carrying existing
// view/click sets) if now-active, evicts if it just became inactive
// (spec §4.7).
func (l *Lifecycle) Update(ctx context.Context, advertiserID, campaignID uuid.UUID, payload models.Campaign) (*models.Campaign, error) {
	updated, err := l.store.Update(ctx, advertiserID, campaignID, payload)
	if err != nil {
		return nil, err
	}
	if err := l.syncCache(ctx, updated); err != nil {
		return nil, err
	}
	return updated, nil
}

// syncCache puts campaign into the cache (preserving any existing
// view/click sets) if its window now contains the current day, and evicts
// it otherwise.
func (l *Lifecycle) syncCache(ctx context.Context, c *models.Campaign) error {
	now := l.clock.Now()
	if !c.IsActiveOn(now) {
		return l.cache.Delete(ctx, c.CampaignID)
	}

	existing, err := l.cache.Get(ctx, c.CampaignID)
	view := &models.ActiveCampaignView{Campaign: *c}
	if err == nil {
		view.ViewClients = existing.ViewClients
		view.ClickClients = existing.ClickClients
	} else {
		view.ViewClients = map[uuid.UUID]struct{}{}
		view.ClickClients = map[uuid.UUID]struct{}{}
	}
	return l.cache.Put(ctx, view)
}

// Delete evicts campaignID from the cache (best-effort: eviction failure
// does not block the persisted delete) then removes it from the store
// (spec §4.7).
func (l *Lifecycle) Delete(ctx context.Context, advertiserID, campaignID uuid.UUID) error {
	_ = l.cache.Delete(ctx, campaignID)
	return l.store.Delete(ctx, advertiserID, campaignID)
}

// GenerateText rewrites ad_title and/or ad_text via the external
// TextGenerator according to mode, gates the generated copy on moderation
// the same way Create does (spec §6 lists 406 on this route), then routes
// the result through Update so mutability rules still apply, and refreshes
// cache creatives if active (spec §4.7).
func (l *Lifecycle) GenerateText(ctx context.Context, advertiserID, campaignID uuid.UUID, mode models.TextGenMode) (*models.Campaign, error) {
	existing, err := l.store.Get(ctx, advertiserID, campaignID)
	if err != nil {
		return nil, err
	}

	title, body, err := l.textgen.Generate(ctx, mode, existing)
	if err != nil {
		return nil, err
	}

	autoModerate, err := l.moderation.AutoModerateEnabled(ctx)
	if err != nil {
		return nil, err
	}
	if err := l.moderation.CheckAbusiveContent(ctx, []string{title, body}, autoModerate); err != nil {
		return nil, err
	}

	payload := *existing
	switch mode {
	case models.TextGenModeTitle:
		payload.AdTitle = title
	case models.TextGenModeText:
		payload.AdText = body
	case models.TextGenModeAll:
		payload.AdTitle = title
		payload.AdText = body
	}

	return l.Update(ctx, advertiserID, campaignID, payload)
}
