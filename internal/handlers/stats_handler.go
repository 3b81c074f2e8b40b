package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/subculture-collective/adserve/internal/stats"
)

// StatsHandler serves the campaign/advertiser statistics endpoints
// (spec §6, §4.8).
type StatsHandler struct {
	engine *stats.Engine
}

// NewStatsHandler wires a StatsHandler to the shared stats Engine.
func NewStatsHandler(engine *stats.Engine) *StatsHandler {
	return &StatsHandler{engine: engine}
}

// CampaignTotal handles GET /stats/campaigns/{cid}.
func (h *StatsHandler) CampaignTotal(c *gin.Context) {
	campaignID, ok := parseUUIDParam(c, "cid")
	if !ok {
		return
	}

	total, err := h.engine.Total(c.Request.Context(), campaignID)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, total)
}

// CampaignDaily handles GET /stats/campaigns/{cid}/daily.
func (h *StatsHandler) CampaignDaily(c *gin.Context) {
	campaignID, ok := parseUUIDParam(c, "cid")
	if !ok {
		return
	}

	daily, err := h.engine.Daily(c.Request.Context(), campaignID)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, daily)
}

// AdvertiserTotal handles GET /stats/advertisers/{aid}/campaigns.
func (h *StatsHandler) AdvertiserTotal(c *gin.Context) {
	advertiserID, ok := parseUUIDParam(c, "aid")
	if !ok {
		return
	}

	total, err := h.engine.TotalForAdvertiser(c.Request.Context(), advertiserID)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, total)
}

// AdvertiserDaily handles GET /stats/advertisers/{aid}/campaigns/daily.
func (h *StatsHandler) AdvertiserDaily(c *gin.Context) {
	advertiserID, ok := parseUUIDParam(c, "aid")
	if !ok {
		return
	}

	daily, err := h.engine.DailyForAdvertiser(c.Request.Context(), advertiserID)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, daily)
}
