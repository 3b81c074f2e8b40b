package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/subculture-collective/adserve/internal/apperr"
	"github.com/subculture-collective/adserve/internal/clock"
)

// TimeHandler serves the simulated-clock endpoint (spec §6, §4.3).
type TimeHandler struct {
	clock *clock.Service
}

// NewTimeHandler wires a TimeHandler to the shared clock Service.
func NewTimeHandler(clk *clock.Service) *TimeHandler {
	return &TimeHandler{clock: clk}
}

// advanceRequest is the POST /time/advance payload.
type advanceRequest struct {
	Day uint32 `json:"day" binding:"required"`
}

// Advance handles POST /time/advance.
func (h *TimeHandler) Advance(c *gin.Context) {
	var req advanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, apperr.Validationf("invalid advance payload: %v", err))
		return
	}

	day, err := h.clock.Advance(c.Request.Context(), req.Day)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, gin.H{"day": day})
}
