package handler

import (
	"net/http"

	"core/internal/model"
	"core/internal/service"

	"github.com/gin-gonic/gin"
)

// VoiceHandler handles voice-command HTTP requests.
type VoiceHandler struct {
	session *service.SearchSession
	presets *service.PresetService
}

// NewVoiceHandler creates a new voice handler.
func NewVoiceHandler(session *service.SearchSession, presets *service.PresetService) *VoiceHandler {
	return &VoiceHandler{session: session, presets: presets}
}

// Listen handles POST /api/v1/voice/listen, entering the listening
// state and discarding any held transcript.
func (h *VoiceHandler) Listen(c *gin.Context) {
	h.session.Voice().StartListening()
	c.JSON(http.StatusOK, gin.H{"state": h.session.Voice().State()})
}

// Transcript handles POST /api/v1/voice/transcript.
func (h *VoiceHandler) Transcript(c *gin.Context) {
	var cmd model.VoiceCommand
	if err := c.ShouldBindJSON(&cmd); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	outcome, response, err := h.session.ApplyVoice(c.Request.Context(), cmd)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"outcome":  outcome,
		"response": response,
		"state":    h.session.Voice().State(),
	})
}

// Accept handles POST /api/v1/voice/accept, applying a held
// low-confidence transcript anyway.
func (h *VoiceHandler) Accept(c *gin.Context) {
	outcome, response, err := h.session.AcceptPendingVoice(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	if !outcome.Applied {
		c.JSON(http.StatusConflict, gin.H{"error": "No transcript pending"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"outcome":  outcome,
		"response": response,
		"state":    h.session.Voice().State(),
	})
}

// Retry handles POST /api/v1/voice/retry.
func (h *VoiceHandler) Retry(c *gin.Context) {
	h.session.Voice().Retry()
	c.JSON(http.StatusOK, gin.H{"state": h.session.Voice().State()})
}

// Dismiss handles POST /api/v1/voice/dismiss.
func (h *VoiceHandler) Dismiss(c *gin.Context) {
	h.session.Voice().Dismiss()
	c.JSON(http.StatusOK, gin.H{"state": h.session.Voice().State()})
}

// History handles GET /api/v1/voice/history.
func (h *VoiceHandler) History(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"history": h.session.Voice().History()})
}

// GetLanguage handles GET /api/v1/voice/language.
func (h *VoiceHandler) GetLanguage(c *gin.Context) {
	lang, err := h.presets.VoiceLanguage(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"language": lang})
}

// SetLanguage handles PUT /api/v1/voice/language.
func (h *VoiceHandler) SetLanguage(c *gin.Context) {
	var req struct {
		Language string `json:"language" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	if err := h.presets.SetVoiceLanguage(c.Request.Context(), req.Language); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"language": req.Language})
}
