package model

// -----------------------------------------------------------------
// Monitor API Response Models
// -----------------------------------------------------------------

// MonitorResponse is the main response for the monitor API
type MonitorResponse struct {
	Status      string       `json:"status"` // "healthy" or "idle"
	Connections int          `json:"connections"`
	OnlineUsers []string     `json:"onlineUsers"`
	Clients     []ClientInfo `json:"clients"`
}

// ClientInfo contains information about a connected client
type ClientInfo struct {
	ClientID    string `json:"clientId"`
	UserID      string `json:"userId"`
	ConnectedAt string `json:"connectedAt"` // ISO timestamp
}
