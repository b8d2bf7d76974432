package api

import (
	stderrors "errors"
	"net/http"
	"strconv"

	"empathy-engine/backend/internal/models"
	"empathy-engine/backend/internal/repository"
	"empathy-engine/backend/internal/service"
	"empathy-engine/backend/pkg/errors"
	"empathy-engine/backend/pkg/middleware"

	"github.com/gin-gonic/gin"
)

type ChatHandler struct {
	service *service.ChatService
}

func NewChatHandler(service *service.ChatService) *ChatHandler {
	return &ChatHandler{service: service}
}

// CreateChat creates a new chat session, classifying the optional initial
// message
func (h *ChatHandler) CreateChat(c *gin.Context) {
	var req models.CreateChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(errors.NewBadRequestError("INVALID_INPUT", err.Error()))
		return
	}

	ctx := middleware.WithRequestContext(c.Request.Context(), c)
	chat, err := h.service.CreateChat(ctx, req.UserID, req.InitialMessage)
	if err != nil {
		c.Error(mapChatError(err))
		return
	}

	c.JSON(http.StatusCreated, chat)
}

// ListChats returns one page of a user's chats
func (h *ChatHandler) ListChats(c *gin.Context) {
	userID := c.Param("userId")
	cursor := c.Query("cursor")

	limit := 20
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			c.Error(errors.NewBadRequestError("INVALID_INPUT", "limit must be a positive integer"))
			return
		}
		limit = parsed
	}

	ctx := middleware.WithRequestContext(c.Request.Context(), c)
	page, err := h.service.ListChats(ctx, userID, cursor, limit)
	if err != nil {
		c.Error(mapChatError(err))
		return
	}

	c.JSON(http.StatusOK, page)
}

// GetChat returns a chat with its full message history
func (h *ChatHandler) GetChat(c *gin.Context) {
	ctx := middleware.WithRequestContext(c.Request.Context(), c)
	session, err := h.service.GetChat(ctx, c.Param("chatId"))
	if err != nil {
		c.Error(mapChatError(err))
		return
	}

	c.JSON(http.StatusOK, session)
}

// AddMessage classifies and appends a message to a chat
func (h *ChatHandler) AddMessage(c *gin.Context) {
	var req models.AddMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(errors.NewBadRequestError("INVALID_INPUT", err.Error()))
		return
	}

	ctx := middleware.WithRequestContext(c.Request.Context(), c)
	message, err := h.service.AddMessage(ctx, c.Param("chatId"), req.Speaker, req.Text)
	if err != nil {
		c.Error(mapChatError(err))
		return
	}

	c.JSON(http.StatusCreated, message)
}

// SummarizeEmotion aggregates a chat's messages into an emotion summary
func (h *ChatHandler) SummarizeEmotion(c *gin.Context) {
	includeText := true
	if raw := c.Query("include_summary_text"); raw != "" {
		parsed, err := strconv.ParseBool(raw)
		if err != nil {
			c.Error(errors.NewBadRequestError("INVALID_INPUT", "include_summary_text must be a boolean"))
			return
		}
		includeText = parsed
	}

	ctx := middleware.WithRequestContext(c.Request.Context(), c)
	summary, err := h.service.Summarize(ctx, c.Param("chatId"), includeText)
	if err != nil {
		c.Error(mapChatError(err))
		return
	}

	c.JSON(http.StatusOK, summary)
}

// UpdateTitle renames a chat
func (h *ChatHandler) UpdateTitle(c *gin.Context) {
	var req models.UpdateTitleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(errors.NewBadRequestError("INVALID_INPUT", err.Error()))
		return
	}

	ctx := middleware.WithRequestContext(c.Request.Context(), c)
	chat, err := h.service.UpdateTitle(ctx, c.Param("chatId"), req.Title)
	if err != nil {
		c.Error(mapChatError(err))
		return
	}

	c.JSON(http.StatusOK, chat)
}

// DeleteChat removes a chat after verifying ownership via the userId query
// parameter
func (h *ChatHandler) DeleteChat(c *gin.Context) {
	userID := c.Query("userId")
	if userID == "" {
		c.Error(errors.NewBadRequestError("INVALID_INPUT", "userId query parameter is required"))
		return
	}

	ctx := middleware.WithRequestContext(c.Request.Context(), c)
	if err := h.service.DeleteChat(ctx, c.Param("chatId"), userID); err != nil {
		c.Error(mapChatError(err))
		return
	}

	c.JSON(http.StatusOK, gin.H{"deleted": true})
}

// mapChatError translates service errors into API errors
func mapChatError(err error) error {
	switch {
	case stderrors.Is(err, repository.ErrChatNotFound):
		return errors.NewNotFoundError("CHAT_NOT_FOUND", "chat not found")
	case stderrors.Is(err, service.ErrInvalidCursor):
		return errors.NewBadRequestError("INVALID_CURSOR", err.Error())
	case stderrors.Is(err, service.ErrNotChatOwner):
		return errors.NewError(http.StatusForbidden, "NOT_CHAT_OWNER", "chat belongs to a different user")
	default:
		return mapAnalysisError(err)
	}
}
