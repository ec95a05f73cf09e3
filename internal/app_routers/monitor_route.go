package approuters

import (
	"github.com/Kutlwano2023/Campus-Learn/internal/configuration"
	"github.com/Kutlwano2023/Campus-Learn/internal/handler"
	"github.com/Kutlwano2023/Campus-Learn/internal/hub"

	"github.com/gin-gonic/gin"
)

// MonitorRouters sets up monitoring API routes
func MonitorRouters(router *gin.Engine, container *configuration.Container) {
	monitorService := hub.NewMonitorService(container.Hub)
	monitorHandler := handler.NewMonitorHandler(monitorService)

	monitorGroup := router.Group("/api/monitor")
	{
		monitorGroup.GET("/stats", monitorHandler.GetHubStats)
	}
}
