package handler

import (
	"net/http"

	"core/internal/repository"

	"github.com/gin-gonic/gin"
)

// FeedbackHandler handles feedback-related HTTP requests.
type FeedbackHandler struct {
	repo *repository.PostgresRepository
}

// NewFeedbackHandler creates a new feedback handler.
func NewFeedbackHandler(repo *repository.PostgresRepository) *FeedbackHandler {
	return &FeedbackHandler{repo: repo}
}

// Submit handles POST /api/v1/feedback.
func (h *FeedbackHandler) Submit(c *gin.Context) {
	var req struct {
		SearchID   string `json:"search_id" binding:"required"`
		PropertyID int64  `json:"property_id" binding:"required"`
		Action     string `json:"action" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	validActions := map[string]bool{
		"click":        true,
		"contact":      true,
		"view_details": true,
	}
	if !validActions[req.Action] {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid action. Must be one of: click, contact, view_details"})
		return
	}

	if err := h.repo.LogFeedback(c.Request.Context(), req.SearchID, req.PropertyID, req.Action); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to log feedback: " + err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}
