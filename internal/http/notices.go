package http

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/damlink/damlink/internal/database/notices"
)

const defaultNoticeLimit = 50

// NoticesController exposes the operator-facing import notices.
type NoticesController struct {
	notices *notices.Repository
}

// NewNoticesController creates a new NoticesController.
func NewNoticesController(repo *notices.Repository) *NoticesController {
	return &NoticesController{notices: repo}
}

// List handles GET /notices.
func (controller *NoticesController) List(c *gin.Context) {
	limit := defaultNoticeLimit
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			c.IndentedJSON(http.StatusBadRequest, gin.H{"error": "limit must be a positive integer"})
			return
		}
		limit = parsed
	}

	rows, err := controller.notices.Recent(limit)
	if err != nil {
		c.IndentedJSON(http.StatusInternalServerError, gin.H{"error": "failed to load notices"})
		return
	}

	c.IndentedJSON(http.StatusOK, gin.H{"notices": rows})
}

// Clear handles DELETE /notices.
func (controller *NoticesController) Clear(c *gin.Context) {
	if err := controller.notices.Clear(); err != nil {
		c.IndentedJSON(http.StatusInternalServerError, gin.H{"error": "failed to clear notices"})
		return
	}
	c.IndentedJSON(http.StatusOK, gin.H{"status": "cleared"})
}
