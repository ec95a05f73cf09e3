package hub

import (
	"time"

	"github.com/Kutlwano2023/Campus-Learn/internal/model"
)

// MonitorService provides methods to gather hub statistics
type MonitorService struct {
	hub *Hub
}

// NewMonitorService creates a new monitor service
func NewMonitorService(hub *Hub) *MonitorService {
	return &MonitorService{hub: hub}
}

// GetStats gathers and returns current connection statistics
func (ms *MonitorService) GetStats() model.MonitorResponse {
	snapshot := ms.hub.registry.Snapshot()

	clients := make([]model.ClientInfo, 0, len(snapshot))
	online := make([]string, 0, len(snapshot))
	for _, p := range snapshot {
		clients = append(clients, model.ClientInfo{
			ClientID:    p.ConnectionID(),
			UserID:      p.UserID(),
			ConnectedAt: p.ConnectedAt().Format(time.RFC3339),
		})
		online = append(online, p.UserID())
	}

	status := "healthy"
	if len(snapshot) == 0 {
		status = "idle"
	}

	return model.MonitorResponse{
		Status:      status,
		Connections: len(snapshot),
		OnlineUsers: online,
		Clients:     clients,
	}
}
