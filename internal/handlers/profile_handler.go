package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/subculture-collective/adserve/internal/apperr"
	"github.com/subculture-collective/adserve/internal/models"
	"github.com/subculture-collective/adserve/internal/repository"
)

// ProfileHandler serves the client/advertiser/ml-score endpoints (spec §6).
type ProfileHandler struct {
	profiles *repository.ProfileStore
}

// NewProfileHandler wires a ProfileHandler to the shared ProfileStore.
func NewProfileHandler(profiles *repository.ProfileStore) *ProfileHandler {
	return &ProfileHandler{profiles: profiles}
}

// BulkClients handles POST /clients/bulk.
func (h *ProfileHandler) BulkClients(c *gin.Context) {
	var batch []models.Client
	if err := c.ShouldBindJSON(&batch); err != nil {
		respondError(c, apperr.Validationf("invalid client batch: %v", err))
		return
	}

	created, err := h.profiles.RegisterClients(c.Request.Context(), batch)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusCreated, created)
}

// GetClient handles GET /clients/{id}.
func (h *ProfileHandler) GetClient(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondError(c, apperr.Validation("invalid client id"))
		return
	}

	client, err := h.profiles.GetClient(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, client)
}

// BulkAdvertisers handles POST /advertisers/bulk.
func (h *ProfileHandler) BulkAdvertisers(c *gin.Context) {
	var batch []models.Advertiser
	if err := c.ShouldBindJSON(&batch); err != nil {
		respondError(c, apperr.Validationf("invalid advertiser batch: %v", err))
		return
	}

	created, err := h.profiles.RegisterAdvertisers(c.Request.Context(), batch)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusCreated, created)
}

// GetAdvertiser handles GET /advertisers/{id}.
func (h *ProfileHandler) GetAdvertiser(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondError(c, apperr.Validation("invalid advertiser id"))
		return
	}

	advertiser, err := h.profiles.GetAdvertiser(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, advertiser)
}

// mlScoreRequest is the POST /ml-scores payload.
type mlScoreRequest struct {
	ClientID     uuid.UUID `json:"client_id" binding:"required"`
	AdvertiserID uuid.UUID `json:"advertiser_id" binding:"required"`
	Score        float64   `json:"score"`
}

// SetMLScore handles POST /ml-scores.
func (h *ProfileHandler) SetMLScore(c *gin.Context) {
	var req mlScoreRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, apperr.Validationf("invalid ml score payload: %v", err))
		return
	}

	if err := h.profiles.SetMLScore(c.Request.Context(), req.ClientID, req.AdvertiserID, req.Score); err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, models.MLScore{
		ClientID: req.ClientID, AdvertiserID: req.AdvertiserID, Score: req.Score,
	})
}
