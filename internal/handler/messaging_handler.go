package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/Kutlwano2023/Campus-Learn/internal/auth"
	"github.com/Kutlwano2023/Campus-Learn/internal/service"

	"github.com/gin-gonic/gin"
)

// MessagingHandler exposes the messaging REST surface: conversation lists,
// history, unread counts, directory search and a polling fallback for send
// and mark-read.
type MessagingHandler interface {
	GetConversations(c *gin.Context)
	GetMessages(c *gin.Context)
	GetConversationMessages(c *gin.Context)
	GetUnreadCount(c *gin.Context)
	SearchUsers(c *gin.Context)
	SendMessage(c *gin.Context)
	MarkAsRead(c *gin.Context)
}

type messagingHandler struct {
	messaging service.MessagingService
	search    service.SearchService
}

func NewMessagingHandler(messaging service.MessagingService, search service.SearchService) MessagingHandler {
	return &messagingHandler{
		messaging: messaging,
		search:    search,
	}
}

type sendMessageRequest struct {
	ReceiverID string `json:"receiverId" binding:"required"`
	Content    string `json:"content"`
}

func (h *messagingHandler) GetConversations(c *gin.Context) {
	convs, err := h.messaging.ConversationsFor(c.Request.Context(), auth.MustUserID(c))
	if err != nil {
		abortWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"conversations": convs})
}

func (h *messagingHandler) GetMessages(c *gin.Context) {
	otherUserID := c.Param("userId")
	msgs, err := h.messaging.MessagesWith(c.Request.Context(), auth.MustUserID(c), otherUserID)
	if err != nil {
		abortWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"messages": msgs})
}

func (h *messagingHandler) GetConversationMessages(c *gin.Context) {
	conversationID := c.Param("conversationId")
	page, err := strconv.ParseInt(c.DefaultQuery("page", "1"), 10, 64)
	if err != nil || page < 1 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid page number"})
		return
	}

	msgs, err := h.messaging.ConversationMessages(c.Request.Context(), conversationID, page)
	if err != nil {
		abortWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"messages": msgs})
}

func (h *messagingHandler) GetUnreadCount(c *gin.Context) {
	count, err := h.messaging.UnreadCount(c.Request.Context(), auth.MustUserID(c))
	if err != nil {
		abortWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": count})
}

func (h *messagingHandler) SearchUsers(c *gin.Context) {
	results, err := h.search.Search(c.Request.Context(), c.Query("query"), auth.MustUserID(c))
	if err != nil {
		abortWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"users": results})
}

func (h *messagingHandler) SendMessage(c *gin.Context) {
	var req sendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	msg, err := h.messaging.Send(c.Request.Context(), auth.MustUserID(c), req.ReceiverID, req.Content)
	if err != nil {
		abortWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": msg})
}

func (h *messagingHandler) MarkAsRead(c *gin.Context) {
	conversationID := c.Param("conversationId")
	updated, err := h.messaging.MarkRead(c.Request.Context(), conversationID, auth.MustUserID(c))
	if err != nil {
		abortWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"updated": updated})
}

func abortWithServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrUnauthenticated):
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrInvalidArgument):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "storage operation failed"})
	}
}
