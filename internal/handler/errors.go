package handler

import (
	"errors"
	"net/http"

	"core/internal/model"

	"github.com/gin-gonic/gin"
)

// writeError maps the error taxonomy to HTTP responses. Superseded
// requests are reported as 409 so the client can simply drop them.
func writeError(c *gin.Context, err error) {
	var validationErr *model.ValidationError
	var fetchErr *model.FetchError
	var analysisErr *model.AnalysisError

	switch {
	case errors.Is(err, model.ErrSuperseded):
		c.JSON(http.StatusConflict, gin.H{"error": "superseded by a newer request"})
	case errors.As(err, &validationErr):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": validationErr.Error()})
	case errors.Is(err, model.ErrRateLimited):
		c.JSON(http.StatusTooManyRequests, gin.H{"error": err.Error()})
	case errors.Is(err, model.ErrPaymentRequired):
		c.JSON(http.StatusPaymentRequired, gin.H{"error": err.Error()})
	case errors.As(err, &analysisErr):
		c.JSON(http.StatusBadGateway, gin.H{"error": analysisErr.Error()})
	case errors.As(err, &fetchErr):
		c.JSON(http.StatusBadGateway, gin.H{"error": fetchErr.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}
