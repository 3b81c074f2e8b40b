package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/subculture-collective/adserve/internal/apperr"
)

// respondError maps err through the apperr taxonomy onto the standard
// envelope and the appropriate HTTP status (spec §7).
func respondError(c *gin.Context, err error) {
	appErr, ok := apperr.As(err)
	if !ok {
		appErr = apperr.Unknown(err)
	}
	c.JSON(appErr.HTTPStatus(), StandardResponse{
		Success: false,
		Error:   &ErrorInfo{Code: string(appErr.Code), Message: appErr.Message},
	})
}

// respondOK writes a successful envelope with the given status and data.
func respondOK(c *gin.Context, status int, data interface{}) {
	c.JSON(status, StandardResponse{Success: true, Data: data})
}

// respondPage writes a successful envelope with pagination metadata.
func respondPage(c *gin.Context, data interface{}, meta PaginationMeta) {
	c.JSON(http.StatusOK, StandardResponse{Success: true, Data: data, Meta: meta})
}

func paginationMeta(page, limit, total int) PaginationMeta {
	totalPages := 0
	if limit > 0 {
		totalPages = (total + limit - 1) / limit
	}
	return PaginationMeta{
		Page:       page,
		Limit:      limit,
		Total:      total,
		TotalPages: totalPages,
		HasNext:    page < totalPages,
		HasPrev:    page > 1,
	}
}
