package handler

import (
	"net/http"
	"strconv"

	"github.com/Kutlwano2023/Campus-Learn/internal/auth"
	"github.com/Kutlwano2023/Campus-Learn/internal/notify"

	"github.com/gin-gonic/gin"
)

// defaultRecentLimit matches the polling client's page size.
const defaultRecentLimit = 20

// NotificationHandler exposes the polling endpoints over the in-memory feed.
type NotificationHandler interface {
	GetCount(c *gin.Context)
	GetRecent(c *gin.Context)
	GetAll(c *gin.Context)
	MarkAsRead(c *gin.Context)
}

type notificationHandler struct {
	feed *notify.Feed
}

func NewNotificationHandler(feed *notify.Feed) NotificationHandler {
	return &notificationHandler{feed: feed}
}

func (h *notificationHandler) GetCount(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"unread": h.feed.UnreadCount(auth.MustUserID(c))})
}

func (h *notificationHandler) GetRecent(c *gin.Context) {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(defaultRecentLimit)))
	if err != nil || limit < 1 {
		limit = defaultRecentLimit
	}
	c.JSON(http.StatusOK, h.feed.Recent(auth.MustUserID(c), limit))
}

func (h *notificationHandler) GetAll(c *gin.Context) {
	c.JSON(http.StatusOK, h.feed.All(auth.MustUserID(c)))
}

type markReadRequest struct {
	ID string `json:"id" binding:"required"`
}

// MarkAsRead flips one notification to read. Unknown ids are a silent no-op.
func (h *notificationHandler) MarkAsRead(c *gin.Context) {
	var req markReadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	h.feed.MarkRead(auth.MustUserID(c), req.ID)
	c.Status(http.StatusOK)
}
