package approuters

import (
	"github.com/Kutlwano2023/Campus-Learn/internal/configuration"

	"github.com/gin-gonic/gin"
)

func NotificationRouters(router *gin.Engine, container *configuration.Container) {
	notificationRoute := router.Group("/api/notifications")
	notificationRoute.Use(container.Tokens.Middleware())
	{
		notificationRoute.GET("/count", container.NotificationHandler.GetCount)
		notificationRoute.GET("/recent", container.NotificationHandler.GetRecent)
		notificationRoute.GET("/all", container.NotificationHandler.GetAll)
		notificationRoute.POST("/mark-read", container.NotificationHandler.MarkAsRead)
	}
}
