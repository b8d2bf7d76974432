package api

import (
	stderrors "errors"
	"net/http"

	"empathy-engine/backend/internal/emotion"
	"empathy-engine/backend/internal/service"
	"empathy-engine/backend/pkg/errors"
	"empathy-engine/backend/pkg/middleware"

	"github.com/gin-gonic/gin"
)

// AnalyzeRequest is the payload for a stateless conversation analysis.
// An empty message list is valid and yields an empty analysis.
type AnalyzeRequest struct {
	Messages []emotion.Message `json:"messages"`
	Window   int               `json:"window"`
}

type AnalyzeHandler struct {
	service *service.AnalysisService
}

func NewAnalyzeHandler(service *service.AnalysisService) *AnalyzeHandler {
	return &AnalyzeHandler{service: service}
}

// Analyze classifies a transcript and returns per-message emotions, the
// smoothed intensity timeline with peaks, and the session confidence
func (h *AnalyzeHandler) Analyze(c *gin.Context) {
	var req AnalyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(errors.NewBadRequestError("INVALID_INPUT", err.Error()))
		return
	}

	ctx := middleware.WithRequestContext(c.Request.Context(), c)
	analysis, err := h.service.Analyze(ctx, req.Messages, req.Window)
	if err != nil {
		c.Error(mapAnalysisError(err))
		return
	}

	c.JSON(http.StatusOK, analysis)
}

// mapAnalysisError translates pipeline errors into API errors
func mapAnalysisError(err error) error {
	switch {
	case stderrors.Is(err, service.ErrTooManyMessages):
		return errors.NewBadRequestError("TOO_MANY_MESSAGES", err.Error())
	case stderrors.Is(err, emotion.ErrInvalidVector):
		return errors.NewUnprocessableError("INVALID_VECTOR", err.Error())
	case stderrors.Is(err, emotion.ErrEmptyInput):
		return errors.NewBadRequestError("INVALID_INPUT", err.Error())
	default:
		return err
	}
}
