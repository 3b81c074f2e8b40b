// Package cache implements the ActiveCache (spec §4.4): the durable,
// Redis-backed projection of every currently-active campaign, carrying the
// per-client view/click sets that the Selector and click path read on every
// request.
package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"
	"github.com/subculture-collective/adserve/internal/apperr"
	"github.com/subculture-collective/adserve/internal/models"
	redispkg "github.com/subculture-collective/adserve/pkg/redis"
)

const (
	activeCampaignKeyPrefix = "active_campaign:"
	lockKeyPrefix           = "active_campaign_lock:"
	lockTTL                 = 2 * time.Second
	lockRetryDelay          = 10 * time.Millisecond
	lockMaxAttempts         = 200
)

func campaignKey(id uuid.UUID) string {
	return activeCampaignKeyPrefix + id.String()
}

func lockKey(id uuid.UUID) string {
	return lockKeyPrefix + id.String()
}

// ActiveCache is the in-memory-shaped, Redis-durable projection described in
// spec §4.4. Every mutation on a single campaign_id is serialized through a
// short-lived SetNX lock (spec §5, §9's "per-key locks" option), so
// concurrent add_view/add_click calls never lose an update.
type ActiveCache struct {
	redis *redispkg.Client
}

// New wires an ActiveCache to the shared Redis client.
func New(redis *redispkg.Client) *ActiveCache {
	return &ActiveCache{redis: redis}
}

// Put overwrites the cached view for view.CampaignID.
func (c *ActiveCache) Put(ctx context.Context, view *models.ActiveCampaignView) error {
	if err := c.redis.SetJSON(ctx, campaignKey(view.CampaignID), view, 0); err != nil {
		return apperr.Wrap(apperr.CodeCacheUnavailable, "writing active campaign", err)
	}
	return nil
}

// Get returns the cached view for campaignID, or NotFound if it is not
// currently active.
func (c *ActiveCache) Get(ctx context.Context, campaignID uuid.UUID) (*models.ActiveCampaignView, error) {
	var view models.ActiveCampaignView
	if err := c.redis.GetJSON(ctx, campaignKey(campaignID), &view); err != nil {
		if errors.Is(err, goredis.Nil) {
			return nil, apperr.NotFoundf("campaign %s is not active", campaignID)
		}
		return nil, apperr.Wrap(apperr.CodeCacheUnavailable, "reading active campaign", err)
	}
	return &view, nil
}

// Delete evicts campaignID from the cache.
func (c *ActiveCache) Delete(ctx context.Context, campaignID uuid.UUID) error {
	if err := c.redis.Delete(ctx, campaignKey(campaignID)); err != nil {
		return apperr.Wrap(apperr.CodeCacheUnavailable, "evicting active campaign", err)
	}
	return nil
}

// ScanAll enumerates every currently-active campaign view via cursor-based
// SCAN. A torn read across concurrent writers is tolerated (spec §4.4):
// a campaign that activates or is evicted mid-scan may or may not appear.
func (c *ActiveCache) ScanAll(ctx context.Context) ([]*models.ActiveCampaignView, error) {
	var keys []string
	iter := c.redis.GetClient().Scan(ctx, 0, activeCampaignKeyPrefix+"*", 0).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return nil, apperr.Wrap(apperr.CodeCacheUnavailable, "scanning active campaigns", err)
	}

	out := make([]*models.ActiveCampaignView, 0, len(keys))
	for _, key := range keys {
		var view models.ActiveCampaignView
		if err := c.redis.GetJSON(ctx, key, &view); err != nil {
			// Evicted between the scan and GetJSON(); tolerate and move on
			// rather than fail the whole scan for one racing delete.
			if errors.Is(err, goredis.Nil) {
				continue
			}
			return nil, apperr.Wrap(apperr.CodeCacheUnavailable, "reading scanned campaign", err)
		}
		out = append(out, &view)
	}
	return out, nil
}

// AddView idempotently records that clientID has viewed campaignID,
// serialized per campaign_id (spec §5).
func (c *ActiveCache) AddView(ctx context.Context, campaignID, clientID uuid.UUID) error {
	return c.withLock(ctx, campaignID, func(view *models.ActiveCampaignView) {
		if view.ViewClients == nil {
			view.ViewClients = make(map[uuid.UUID]struct{})
		}
		view.ViewClients[clientID] = struct{}{}
	})
}

// AddClick idempotently records that clientID has clicked campaignID.
// Callers must have already verified clientID is in ViewClients (spec §4.6);
// AddClick does not re-derive that invariant, it only persists the click.
func (c *ActiveCache) AddClick(ctx context.Context, campaignID, clientID uuid.UUID) error {
	return c.withLock(ctx, campaignID, func(view *models.ActiveCampaignView) {
		if view.ClickClients == nil {
			view.ClickClients = make(map[uuid.UUID]struct{})
		}
		view.ClickClients[clientID] = struct{}{}
	})
}

// withLock performs a locked read-modify-write cycle on campaignID: acquire
// a short-lived SetNX lock, load the current view, apply mutate, persist,
// release. This is option (a) from spec §9's concurrency design notes.
func (c *ActiveCache) withLock(ctx context.Context, campaignID uuid.UUID, mutate func(*models.ActiveCampaignView)) error {
	key := lockKey(campaignID)
	acquired := false
	for attempt := 0; attempt < lockMaxAttempts; attempt++ {
		ok, err := c.redis.SetNX(ctx, key, "1", lockTTL)
		if err != nil {
			return apperr.Wrap(apperr.CodeCacheUnavailable, "acquiring campaign lock", err)
		}
		if ok {
			acquired = true
			break
		}
		select {
		case <-ctx.Done():
			return apperr.Wrap(apperr.CodeCacheUnavailable, "acquiring campaign lock", ctx.Err())
		case <-time.After(lockRetryDelay):
		}
	}
	if !acquired {
		return apperr.CacheUnavailable(fmt.Sprintf("timed out acquiring lock for campaign %s", campaignID))
	}
	defer func() { _ = c.redis.Delete(ctx, key) }()

	view, err := c.Get(ctx, campaignID)
	if err != nil {
		return err
	}
	mutate(view)
	return c.Put(ctx, view)
}

// Reconcile applies the rebuild policy of spec §4.4: evict every cached
// entry whose end_date < newDay, and insert any stored-but-missing campaign
// whose window now contains newDay, carrying its view/click sets from the
// fact stores. It is invoked both at startup and synchronously from
// clock.Service's AdvanceListener hook.
type Reconciler struct {
	cache  *ActiveCache
	store  campaignActiveLister
	events eventClientLister
}

// campaignActiveLister is the minimal CampaignStore dependency Reconciler
// needs; satisfied by *repository.CampaignStore.
type campaignActiveLister interface {
	ListActive(ctx context.Context, day uint32) ([]models.Campaign, error)
}

// eventClientLister is the minimal EventStore dependency Reconciler needs
// to seed newly-activated campaigns' view/click sets.
type eventClientLister interface {
	ViewClientsFor(ctx context.Context, campaignID uuid.UUID) ([]uuid.UUID, error)
	ClickClientsFor(ctx context.Context, campaignID uuid.UUID) ([]uuid.UUID, error)
}

// NewReconciler wires a Reconciler to the cache, campaign store, and event
// store it needs to rebuild cache state from persisted truth.
func NewReconciler(cache *ActiveCache, store campaignActiveLister, events eventClientLister) *Reconciler {
	return &Reconciler{cache: cache, store: store, events: events}
}

// Reconcile rebuilds the cache for the current day, as described above.
func (r *Reconciler) Reconcile(ctx context.Context, day uint32) error {
	active, err := r.store.ListActive(ctx, day)
	if err != nil {
		return err
	}

	current, err := r.cache.ScanAll(ctx)
	if err != nil {
		return err
	}
	cached := make(map[uuid.UUID]*models.ActiveCampaignView, len(current))
	for _, v := range current {
		cached[v.CampaignID] = v
	}

	stillActive := make(map[uuid.UUID]struct{}, len(active))
	for _, campaign := range active {
		stillActive[campaign.CampaignID] = struct{}{}
		if existing, ok := cached[campaign.CampaignID]; ok {
			// Already cached: keep its view/click sets, refresh the campaign
			// fields in case a concurrent update landed between reconciles.
			existing.Campaign = campaign
			if err := r.cache.Put(ctx, existing); err != nil {
				return err
			}
			continue
		}

		viewClients, err := r.events.ViewClientsFor(ctx, campaign.CampaignID)
		if err != nil {
			return err
		}
		clickClients, err := r.events.ClickClientsFor(ctx, campaign.CampaignID)
		if err != nil {
			return err
		}
		view := &models.ActiveCampaignView{
			Campaign:     campaign,
			ViewClients:  toSet(viewClients),
			ClickClients: toSet(clickClients),
		}
		if err := r.cache.Put(ctx, view); err != nil {
			return err
		}
	}

	for id := range cached {
		if _, ok := stillActive[id]; !ok {
			if err := r.cache.Delete(ctx, id); err != nil {
				return err
			}
		}
	}
	return nil
}

func toSet(ids []uuid.UUID) map[uuid.UUID]struct{} {
	out := make(map[uuid.UUID]struct{}, len(ids))
	for _, id := range ids {
		out[id] = struct{}{}
	}
	return out
}
