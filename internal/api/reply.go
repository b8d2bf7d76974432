package api

import (
	"net/http"

	"empathy-engine/backend/ai"
	"empathy-engine/backend/internal/emotion"
	"empathy-engine/backend/internal/service"
	"empathy-engine/backend/pkg/errors"
	"empathy-engine/backend/pkg/middleware"

	"github.com/gin-gonic/gin"
)

// ChatReplyRequest asks for an empathetic response to a single message.
// History is optional conversational context for the classifier and the
// reply generator.
type ChatReplyRequest struct {
	Message string            `json:"message" binding:"required"`
	History []emotion.Message `json:"history"`
}

// SummaryRequest asks for a prose summary of a transcript
type SummaryRequest struct {
	Messages []emotion.Message `json:"messages"`
}

type ReplyHandler struct {
	service *service.ReplyService
}

func NewReplyHandler(service *service.ReplyService) *ReplyHandler {
	return &ReplyHandler{service: service}
}

// Reply returns a tone-matched empathetic response with the emotion read of
// the incoming message and a safety flag
func (h *ReplyHandler) Reply(c *gin.Context) {
	var req ChatReplyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(errors.NewBadRequestError("INVALID_INPUT", err.Error()))
		return
	}

	history := make([]ai.HistoryEntry, 0, len(req.History))
	for _, msg := range req.History {
		history = append(history, ai.HistoryEntry{Speaker: msg.Speaker, Text: msg.Text})
	}

	ctx := middleware.WithRequestContext(c.Request.Context(), c)
	c.JSON(http.StatusOK, h.service.Reply(ctx, req.Message, history))
}

// Summarize returns a prose summary of the transcript
func (h *ReplyHandler) Summarize(c *gin.Context) {
	var req SummaryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(errors.NewBadRequestError("INVALID_INPUT", err.Error()))
		return
	}

	ctx := middleware.WithRequestContext(c.Request.Context(), c)
	c.JSON(http.StatusOK, gin.H{"summary": h.service.SummarizeTranscript(ctx, req.Messages)})
}
