package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/subculture-collective/adserve/internal/apperr"
	"github.com/subculture-collective/adserve/internal/selector"
)

// AdsHandler serves the ad-serving endpoints (spec §6, §4.5, §4.6).
type AdsHandler struct {
	selector *selector.Service
}

// NewAdsHandler wires an AdsHandler to the shared Selector service.
func NewAdsHandler(sel *selector.Service) *AdsHandler {
	return &AdsHandler{selector: sel}
}

// GetAd handles GET /ads?client_id=....
func (h *AdsHandler) GetAd(c *gin.Context) {
	clientID, err := uuid.Parse(c.Query("client_id"))
	if err != nil {
		respondError(c, apperr.Validation("invalid client_id"))
		return
	}

	ad, err := h.selector.GetAd(c.Request.Context(), clientID)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, ad)
}

// clickRequest is the POST /ads/{cid}/click payload.
type clickRequest struct {
	ClientID uuid.UUID `json:"client_id" binding:"required"`
}

// Click handles POST /ads/{cid}/click.
func (h *AdsHandler) Click(c *gin.Context) {
	campaignID, ok := parseUUIDParam(c, "cid")
	if !ok {
		return
	}

	var req clickRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, apperr.Validationf("invalid click payload: %v", err))
		return
	}

	if err := h.selector.Click(c.Request.Context(), campaignID, req.ClientID); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
