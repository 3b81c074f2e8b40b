package handlers

import (
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/subculture-collective/adserve/internal/apperr"
	"github.com/subculture-collective/adserve/internal/blobstore"
	"github.com/subculture-collective/adserve/internal/campaign"
	"github.com/subculture-collective/adserve/internal/models"
	"github.com/subculture-collective/adserve/internal/repository"
)

// CampaignHandler serves the campaign CRUD, generate-text, and image
// endpoints (spec §6). Reads (Get/List) go straight to the store since
// Lifecycle only orchestrates mutations; writes go through Lifecycle so
// moderation and cache sync are never bypassed.
type CampaignHandler struct {
	lifecycle *campaign.Lifecycle
	store     *repository.CampaignStore
	images    *blobstore.Store
}

// NewCampaignHandler wires a CampaignHandler to its collaborators.
func NewCampaignHandler(lifecycle *campaign.Lifecycle, store *repository.CampaignStore, images *blobstore.Store) *CampaignHandler {
	return &CampaignHandler{lifecycle: lifecycle, store: store, images: images}
}

// campaignPayload is the shared create/update request body.
type campaignPayload struct {
	ImpressionsLimit uint32           `json:"impressions_limit" binding:"required"`
	ClicksLimit      uint32           `json:"clicks_limit"`
	CostPerImpression float64         `json:"cost_per_impression"`
	CostPerClick      float64         `json:"cost_per_click"`
	AdTitle           string          `json:"ad_title" binding:"required"`
	AdText            string          `json:"ad_text" binding:"required"`
	StartDate         uint32          `json:"start_date"`
	EndDate           uint32          `json:"end_date" binding:"required"`
	Targeting         models.Targeting `json:"targeting"`
}

func (p campaignPayload) toCampaign() models.Campaign {
	return models.Campaign{
		ImpressionsLimit:  p.ImpressionsLimit,
		ClicksLimit:       p.ClicksLimit,
		CostPerImpression: p.CostPerImpression,
		CostPerClick:      p.CostPerClick,
		AdTitle:           p.AdTitle,
		AdText:            p.AdText,
		StartDate:         p.StartDate,
		EndDate:           p.EndDate,
		Targeting:         p.Targeting,
	}
}

func parseUUIDParam(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		respondError(c, apperr.Validationf("invalid %s", name))
		return uuid.UUID{}, false
	}
	return id, true
}

// Create handles POST /advertisers/{aid}/campaigns.
func (h *CampaignHandler) Create(c *gin.Context) {
	advertiserID, ok := parseUUIDParam(c, "aid")
	if !ok {
		return
	}

	var payload campaignPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondError(c, apperr.Validationf("invalid campaign payload: %v", err))
		return
	}

	created, err := h.lifecycle.Create(c.Request.Context(), advertiserID, payload.toCampaign())
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusCreated, created)
}

// Update handles PUT /advertisers/{aid}/campaigns/{cid}.
func (h *CampaignHandler) Update(c *gin.Context) {
	advertiserID, ok := parseUUIDParam(c, "aid")
	if !ok {
		return
	}
	campaignID, ok := parseUUIDParam(c, "cid")
	if !ok {
		return
	}

	var payload campaignPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondError(c, apperr.Validationf("invalid campaign payload: %v", err))
		return
	}

	updated, err := h.lifecycle.Update(c.Request.Context(), advertiserID, campaignID, payload.toCampaign())
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, updated)
}

// Delete handles DELETE /advertisers/{aid}/campaigns/{cid}.
func (h *CampaignHandler) Delete(c *gin.Context) {
	advertiserID, ok := parseUUIDParam(c, "aid")
	if !ok {
		return
	}
	campaignID, ok := parseUUIDParam(c, "cid")
	if !ok {
		return
	}

	if err := h.lifecycle.Delete(c.Request.Context(), advertiserID, campaignID); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Get handles GET /advertisers/{aid}/campaigns/{cid}.
func (h *CampaignHandler) Get(c *gin.Context) {
	advertiserID, ok := parseUUIDParam(c, "aid")
	if !ok {
		return
	}
	campaignID, ok := parseUUIDParam(c, "cid")
	if !ok {
		return
	}

	found, err := h.store.Get(c.Request.Context(), advertiserID, campaignID)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, found)
}

// List handles GET /advertisers/{aid}/campaigns?size&page.
func (h *CampaignHandler) List(c *gin.Context) {
	advertiserID, ok := parseUUIDParam(c, "aid")
	if !ok {
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	size, _ := strconv.Atoi(c.DefaultQuery("size", "20"))

	total, campaigns, err := h.store.List(c.Request.Context(), advertiserID, page, size)
	if err != nil {
		respondError(c, err)
		return
	}

	c.Header("x-total-count", strconv.Itoa(total))
	respondPage(c, campaigns, paginationMeta(page, size, total))
}

// generateTextRequest is the PATCH .../generate-text payload.
type generateTextRequest struct {
	GenerateType models.TextGenMode `json:"generate_type" binding:"required"`
}

// GenerateText handles PATCH /advertisers/{aid}/campaigns/{cid}/generate-text.
func (h *CampaignHandler) GenerateText(c *gin.Context) {
	advertiserID, ok := parseUUIDParam(c, "aid")
	if !ok {
		return
	}
	campaignID, ok := parseUUIDParam(c, "cid")
	if !ok {
		return
	}

	var req generateTextRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, apperr.Validationf("invalid generate-text payload: %v", err))
		return
	}

	updated, err := h.lifecycle.GenerateText(c.Request.Context(), advertiserID, campaignID, req.GenerateType)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, updated)
}

// UploadImages handles a multipart image upload for a campaign.
func (h *CampaignHandler) UploadImages(c *gin.Context) {
	campaignID, ok := parseUUIDParam(c, "cid")
	if !ok {
		return
	}

	form, err := c.MultipartForm()
	if err != nil {
		respondError(c, apperr.PayloadError("invalid multipart form"))
		return
	}

	files := form.File["images"]
	images := make([]blobstore.Image, 0, len(files))
	for _, fh := range files {
		f, err := fh.Open()
		if err != nil {
			respondError(c, apperr.PayloadError("unreadable image upload"))
			return
		}
		data, err := io.ReadAll(f)
		f.Close()
		if err != nil {
			respondError(c, apperr.PayloadError("unreadable image upload"))
			return
		}
		images = append(images, blobstore.Image{
			FileName: fh.Filename,
			MIMEType: fh.Header.Get("Content-Type"),
			Data:     data,
		})
	}

	if err := h.images.Upload(c.Request.Context(), campaignID, images); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ListImages handles listing a campaign's stored image names.
func (h *CampaignHandler) ListImages(c *gin.Context) {
	campaignID, ok := parseUUIDParam(c, "cid")
	if !ok {
		return
	}

	names, err := h.images.Names(c.Request.Context(), campaignID)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, names)
}

// GetImage handles fetching one campaign image's bytes.
func (h *CampaignHandler) GetImage(c *gin.Context) {
	advertiserID, ok := parseUUIDParam(c, "aid")
	if !ok {
		return
	}
	campaignID, ok := parseUUIDParam(c, "cid")
	if !ok {
		return
	}

	img, err := h.images.Get(c.Request.Context(), campaignID, advertiserID, c.Param("filename"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.Data(http.StatusOK, img.MIMEType, img.Data)
}

// DeleteImage handles removing one campaign image.
func (h *CampaignHandler) DeleteImage(c *gin.Context) {
	advertiserID, ok := parseUUIDParam(c, "aid")
	if !ok {
		return
	}
	campaignID, ok := parseUUIDParam(c, "cid")
	if !ok {
		return
	}

	if err := h.images.Delete(c.Request.Context(), campaignID, advertiserID, c.Param("filename")); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
