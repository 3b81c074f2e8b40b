package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/subculture-collective/adserve/internal/apperr"
	"github.com/subculture-collective/adserve/internal/moderation"
)

// ModerationHandler serves the moderation config/word-list endpoints
// (spec §6, §4.9).
type ModerationHandler struct {
	moderation *moderation.Service
}

// NewModerationHandler wires a ModerationHandler to the shared Service.
func NewModerationHandler(mod *moderation.Service) *ModerationHandler {
	return &ModerationHandler{moderation: mod}
}

// moderationConfigRequest is the POST /moderate/config payload.
type moderationConfigRequest struct {
	AutoModerateEnabled bool `json:"auto_moderate_enabled"`
}

// SetConfig handles POST /moderate/config.
func (h *ModerationHandler) SetConfig(c *gin.Context) {
	var req moderationConfigRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, apperr.Validationf("invalid moderation config payload: %v", err))
		return
	}

	if err := h.moderation.SetAutoModerateEnabled(c.Request.Context(), req.AutoModerateEnabled); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// GetConfig handles GET /moderate/config.
func (h *ModerationHandler) GetConfig(c *gin.Context) {
	enabled, err := h.moderation.AutoModerateEnabled(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, gin.H{"auto_moderate_enabled": enabled})
}

// ListWords handles GET /moderate/words.
func (h *ModerationHandler) ListWords(c *gin.Context) {
	words, err := h.moderation.ListWords(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, words)
}

// wordsRequest is the shared POST/DELETE /moderate/words payload.
type wordsRequest struct {
	Words []string `json:"words" binding:"required"`
}

// AddWords handles POST /moderate/words.
func (h *ModerationHandler) AddWords(c *gin.Context) {
	var req wordsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, apperr.Validationf("invalid words payload: %v", err))
		return
	}

	if err := h.moderation.AddWords(c.Request.Context(), req.Words); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusCreated)
}

// RemoveWords handles DELETE /moderate/words.
func (h *ModerationHandler) RemoveWords(c *gin.Context) {
	var req wordsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, apperr.Validationf("invalid words payload: %v", err))
		return
	}

	if err := h.moderation.RemoveWords(c.Request.Context(), req.Words); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
