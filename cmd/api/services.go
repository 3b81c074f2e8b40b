package main

import (
	"github.com/subculture-collective/adserve/internal/blobstore"
	"github.com/subculture-collective/adserve/internal/cache"
	"github.com/subculture-collective/adserve/internal/campaign"
	"github.com/subculture-collective/adserve/internal/clock"
	"github.com/subculture-collective/adserve/internal/moderation"
	"github.com/subculture-collective/adserve/internal/selector"
	"github.com/subculture-collective/adserve/internal/stats"
	"github.com/subculture-collective/adserve/internal/textgen"
	"github.com/subculture-collective/adserve/pkg/telemetry"
)

// Services holds every domain service built on top of Repositories and the
// shared clock/cache infrastructure.
type Services struct {
	Clock       *clock.Service
	ActiveCache *cache.ActiveCache
	Reconciler  *cache.Reconciler
	WordCache   *moderation.WordCache
	Moderation  *moderation.Service
	TextGen     *textgen.Generator
	Selector    *selector.Service
	Campaign    *campaign.Lifecycle
	Stats       *stats.Engine
	Images      *blobstore.Store
}

// initServices wires every domain service to its repositories, cache, and
// clock collaborators. clk and activeCache are constructed by the caller
// (main) since Repositories.Campaign itself depends on clk.
func initServices(infra *Infrastructure, repos *Repositories, clk *clock.Service, activeCache *cache.ActiveCache) *Services {
	cfg := infra.Config

	reconciler := cache.NewReconciler(activeCache, repos.Campaign, repos.Event)

	wordCache := moderation.NewWordCache(infra.Redis, repos.Moderation)
	mod := moderation.New(repos.Moderation, wordCache, cfg.Moderation.Sensitivity)

	gen := textgen.New(cfg.TextGen, telemetry.NewHTTPClient())

	selCfg := selector.Config{
		Weights: selector.Weights{
			Profit:      cfg.Selector.WeightProfit,
			Relevance:   cfg.Selector.WeightRelevance,
			Fulfillment: cfg.Selector.WeightFulfillment,
			TimeLeft:    cfg.Selector.WeightTimeLeft,
		},
		ExplorationEps: cfg.Selector.ExplorationEps,
	}
	sel := selector.New(activeCache, repos.Campaign, repos.Profile, repos.Event, clk, selCfg)

	lifecycle := campaign.New(repos.Campaign, activeCache, repos.Event, clk, mod, gen)

	statsEngine := stats.New(repos.Event)

	images := blobstore.New(infra.DB.Pool, cfg.Media)

	return &Services{
		Clock:       clk,
		ActiveCache: activeCache,
		Reconciler:  reconciler,
		WordCache:   wordCache,
		Moderation:  mod,
		TextGen:     gen,
		Selector:    sel,
		Campaign:    lifecycle,
		Stats:       statsEngine,
		Images:      images,
	}
}
