package main

import "github.com/subculture-collective/adserve/internal/handlers"

// Handlers holds every HTTP handler bound to its domain service.
type Handlers struct {
	Ads        *handlers.AdsHandler
	Campaign   *handlers.CampaignHandler
	Profile    *handlers.ProfileHandler
	Time       *handlers.TimeHandler
	Stats      *handlers.StatsHandler
	Moderation *handlers.ModerationHandler
}

func initHandlers(repos *Repositories, svcs *Services) *Handlers {
	return &Handlers{
		Ads:        handlers.NewAdsHandler(svcs.Selector),
		Campaign:   handlers.NewCampaignHandler(svcs.Campaign, repos.Campaign, svcs.Images),
		Profile:    handlers.NewProfileHandler(repos.Profile),
		Time:       handlers.NewTimeHandler(svcs.Clock),
		Stats:      handlers.NewStatsHandler(svcs.Stats),
		Moderation: handlers.NewModerationHandler(svcs.Moderation),
	}
}
