package approuters

import (
	"github.com/Kutlwano2023/Campus-Learn/internal/configuration"

	"github.com/gin-gonic/gin"
)

func MessagingRouters(router *gin.Engine, container *configuration.Container) {
	messagingRoute := router.Group("/api/messaging")
	messagingRoute.Use(container.Tokens.Middleware())
	{
		messagingRoute.GET("/conversations", container.MessagingHandler.GetConversations)
		messagingRoute.GET("/messages/:userId", container.MessagingHandler.GetMessages)
		messagingRoute.GET("/conversation-messages/:conversationId", container.MessagingHandler.GetConversationMessages)
		messagingRoute.GET("/unread-count", container.MessagingHandler.GetUnreadCount)
		messagingRoute.GET("/search-users", container.MessagingHandler.SearchUsers)
		messagingRoute.POST("/send", container.MessagingHandler.SendMessage)
		messagingRoute.POST("/mark-read/:conversationId", container.MessagingHandler.MarkAsRead)
	}
}
