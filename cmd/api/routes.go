package main

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/subculture-collective/adserve/internal/middleware"
)

// registerRoutes wires every route named in spec §6 onto r, grouped under
// /api the way the teacher groups its own API under /api/v1.
func registerRoutes(r *gin.Engine, h *Handlers, infra *Infrastructure) {
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":      "healthy",
			"environment": infra.Config.Server.Environment,
		})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	cfg := infra.Config
	adsSelectLimit := middleware.RateLimitMiddleware(infra.Redis, cfg.RateLimit.AdsSelectLimit, time.Minute)
	adsClickLimit := middleware.RateLimitMiddleware(infra.Redis, cfg.RateLimit.AdsClickLimit, time.Minute)

	api := r.Group("/api")
	{
		api.POST("/clients/bulk", h.Profile.BulkClients)
		api.GET("/clients/:id", h.Profile.GetClient)
		api.POST("/advertisers/bulk", h.Profile.BulkAdvertisers)
		api.GET("/advertisers/:id", h.Profile.GetAdvertiser)
		api.POST("/ml-scores", h.Profile.SetMLScore)

		api.POST("/advertisers/:aid/campaigns", h.Campaign.Create)
		api.PUT("/advertisers/:aid/campaigns/:cid", h.Campaign.Update)
		api.DELETE("/advertisers/:aid/campaigns/:cid", h.Campaign.Delete)
		api.GET("/advertisers/:aid/campaigns/:cid", h.Campaign.Get)
		api.GET("/advertisers/:aid/campaigns", h.Campaign.List)
		api.PATCH("/advertisers/:aid/campaigns/:cid/generate-text", h.Campaign.GenerateText)

		api.POST("/advertisers/:aid/campaigns/:cid/images", h.Campaign.UploadImages)
		api.GET("/advertisers/:aid/campaigns/:cid/images", h.Campaign.ListImages)
		api.GET("/advertisers/:aid/campaigns/:cid/images/:filename", h.Campaign.GetImage)
		api.DELETE("/advertisers/:aid/campaigns/:cid/images/:filename", h.Campaign.DeleteImage)

		api.GET("/ads", adsSelectLimit, h.Ads.GetAd)
		api.POST("/ads/:cid/click", adsClickLimit, h.Ads.Click)

		api.POST("/time/advance", h.Time.Advance)

		api.GET("/stats/campaigns/:cid", h.Stats.CampaignTotal)
		api.GET("/stats/campaigns/:cid/daily", h.Stats.CampaignDaily)
		api.GET("/stats/advertisers/:aid/campaigns", h.Stats.AdvertiserTotal)
		api.GET("/stats/advertisers/:aid/campaigns/daily", h.Stats.AdvertiserDaily)

		api.POST("/moderate/config", h.Moderation.SetConfig)
		api.GET("/moderate/config", h.Moderation.GetConfig)
		api.GET("/moderate/words", h.Moderation.ListWords)
		api.POST("/moderate/words", h.Moderation.AddWords)
		api.DELETE("/moderate/words", h.Moderation.RemoveWords)
	}
}
