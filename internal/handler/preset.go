package handler

import (
	"net/http"

	"core/internal/model"
	"core/internal/service"

	"github.com/gin-gonic/gin"
)

// PresetHandler handles weight preset HTTP requests.
type PresetHandler struct {
	presets *service.PresetService
}

// NewPresetHandler creates a new preset handler.
func NewPresetHandler(presets *service.PresetService) *PresetHandler {
	return &PresetHandler{presets: presets}
}

// List handles GET /api/v1/presets.
func (h *PresetHandler) List(c *gin.Context) {
	presets, err := h.presets.List(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"presets": presets})
}

// Save handles POST /api/v1/presets.
func (h *PresetHandler) Save(c *gin.Context) {
	var req struct {
		Name    string                  `json:"name" binding:"required"`
		Weights model.SimilarityWeights `json:"weights" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	preset, err := h.presets.Save(c.Request.Context(), req.Name, req.Weights)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, preset)
}

// Delete handles DELETE /api/v1/presets/:name.
func (h *PresetHandler) Delete(c *gin.Context) {
	name := c.Param("name")
	if err := h.presets.Delete(c.Request.Context(), name); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": name})
}

// Quick handles GET /api/v1/presets/quick/:name.
func (h *PresetHandler) Quick(c *gin.Context) {
	name := c.Param("name")
	weights, ok := service.QuickPreset(name)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "Unknown quick preset: " + name})
		return
	}
	c.JSON(http.StatusOK, gin.H{"name": name, "weights": weights})
}
