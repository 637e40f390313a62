package handler

import (
	"net/http"
	"strconv"

	"core/internal/model"
	"core/internal/service"

	"github.com/gin-gonic/gin"
)

// SearchHandler handles search-related HTTP requests.
type SearchHandler struct {
	session *service.SearchSession
}

// NewSearchHandler creates a new search handler.
func NewSearchHandler(session *service.SearchSession) *SearchHandler {
	return &SearchHandler{session: session}
}

// Search handles POST /api/v1/search.
func (h *SearchHandler) Search(c *gin.Context) {
	var filters model.FilterState
	if err := c.ShouldBindJSON(&filters); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	response, err := h.session.SetFilters(c.Request.Context(), filters)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, response)
}

// Suggest handles GET /api/v1/suggest?q=...
func (h *SearchHandler) Suggest(c *gin.Context) {
	q := c.Query("q")

	suggestions, err := h.session.Suggest(c.Request.Context(), q)
	if err != nil {
		writeError(c, err)
		return
	}
	if suggestions == nil {
		// Superseded or empty input: nothing to display.
		suggestions = []string{}
	}

	c.JSON(http.StatusOK, gin.H{"suggestions": suggestions})
}

// GoToPage handles POST /api/v1/search/page.
func (h *SearchHandler) GoToPage(c *gin.Context) {
	var req struct {
		Page int `json:"page" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	response, err := h.session.GoToPage(c.Request.Context(), req.Page)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, response)
}

// NextPage handles POST /api/v1/search/page/next.
func (h *SearchHandler) NextPage(c *gin.Context) {
	response, err := h.session.NextPage(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	if response == nil {
		c.JSON(http.StatusOK, gin.H{"moved": false})
		return
	}
	c.JSON(http.StatusOK, response)
}

// PrevPage handles POST /api/v1/search/page/prev.
func (h *SearchHandler) PrevPage(c *gin.Context) {
	response, err := h.session.PrevPage(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	if response == nil {
		c.JSON(http.StatusOK, gin.H{"moved": false})
		return
	}
	c.JSON(http.StatusOK, response)
}

// ImageSearch handles POST /api/v1/search/image.
func (h *SearchHandler) ImageSearch(c *gin.Context) {
	var req struct {
		ImageURL string                   `json:"image_url" binding:"required"`
		Preset   string                   `json:"preset,omitempty"`
		Weights  *model.SimilarityWeights `json:"weights,omitempty"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	weights, _ := service.QuickPreset(service.PresetBalanced)
	if req.Preset != "" {
		preset, ok := service.QuickPreset(req.Preset)
		if !ok {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown preset: " + req.Preset})
			return
		}
		weights = preset
	}
	if req.Weights != nil {
		weights = *req.Weights
	}

	page, err := h.session.ImageSearch(c.Request.Context(), req.ImageURL, weights)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, page)
}

// SetThresholds handles POST /api/v1/search/thresholds.
func (h *SearchHandler) SetThresholds(c *gin.Context) {
	var thresholds model.Thresholds
	if err := c.ShouldBindJSON(&thresholds); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	page := h.session.SetThresholds(thresholds)
	if page == nil {
		c.JSON(http.StatusOK, gin.H{"results": []model.Property{}})
		return
	}
	c.JSON(http.StatusOK, page)
}

// RankByFeature handles GET /api/v1/search/rank/:feature.
func (h *SearchHandler) RankByFeature(c *gin.Context) {
	feature := model.Feature(c.Param("feature"))

	valid := false
	for _, f := range model.Features {
		if f == feature {
			valid = true
			break
		}
	}
	if !valid {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown feature: " + string(feature)})
		return
	}

	page := h.session.RankByFeature(feature)
	if page == nil {
		c.JSON(http.StatusConflict, gin.H{"error": "No image search active"})
		return
	}
	c.JSON(http.StatusOK, page)
}

// ScoredResults handles GET /api/v1/search/image/scores. It returns the
// displayed results with each property's similarity score attached.
func (h *SearchHandler) ScoredResults(c *gin.Context) {
	results := h.session.ScoredResults()
	if results == nil {
		c.JSON(http.StatusConflict, gin.H{"error": "No image search active"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"results": results})
}

// CandidatePool handles GET /api/v1/search/image/candidates. It widens
// an active image search beyond the current page using the reference
// embedding from the last analysis.
func (h *SearchHandler) CandidatePool(c *gin.Context) {
	limit := parseIntQuery(c, "limit", 50)

	pool, err := h.session.CandidatePool(c.Request.Context(), limit)
	if err != nil {
		writeError(c, err)
		return
	}
	if pool == nil {
		c.JSON(http.StatusConflict, gin.H{"error": "No reference embedding available"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"candidates": pool})
}

// ClearCache handles POST /api/v1/search/cache/clear.
func (h *SearchHandler) ClearCache(c *gin.Context) {
	h.session.ClearCache()
	c.JSON(http.StatusOK, gin.H{"cleared": true})
}

// CacheStats handles GET /api/v1/search/cache/stats.
func (h *SearchHandler) CacheStats(c *gin.Context) {
	hits, misses := h.session.CacheStats()
	c.JSON(http.StatusOK, gin.H{"hits": hits, "misses": misses})
}

// parseIntQuery reads an integer query parameter with a default.
func parseIntQuery(c *gin.Context, key string, def int) int {
	raw := c.Query(key)
	if raw == "" {
		return def
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	return v
}
