package handler

import (
	"net/http"

	"core/internal/model"
	"core/internal/repository"

	"github.com/gin-gonic/gin"
)

// EmbeddingHandler handles feature-embedding maintenance requests.
type EmbeddingHandler struct {
	repo *repository.PostgresRepository
}

// NewEmbeddingHandler creates a new embedding handler.
func NewEmbeddingHandler(repo *repository.PostgresRepository) *EmbeddingHandler {
	return &EmbeddingHandler{repo: repo}
}

// BatchUpdate handles POST /api/v1/embeddings/batch.
func (h *EmbeddingHandler) BatchUpdate(c *gin.Context) {
	var req struct {
		Embeddings []model.FeatureEmbeddingItem `json:"embeddings" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}
	if len(req.Embeddings) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No embeddings provided"})
		return
	}

	success, errs := h.repo.BatchUpdateFeatureEmbeddings(c.Request.Context(), req.Embeddings)

	c.JSON(http.StatusOK, gin.H{
		"success": success,
		"failed":  len(req.Embeddings) - success,
		"errors":  errs,
	})
}
