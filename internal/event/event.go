package event

import "encoding/json"

// Client -> server events
const (
	EventSendMessage        = "sendMessage"
	EventMarkAsRead         = "markAsRead"
	EventSearchUsers        = "searchUsers"
	EventGetConversations   = "getConversations"
	EventGetRegisteredUsers = "getRegisteredUsers"
	EventGetOnlineUsers     = "getOnlineUsers"
)

// Server -> client events
const (
	EventReceiveMessage    = "receiveMessage"
	EventMessageSent       = "messageSent"
	EventMessagesRead      = "messagesRead"
	EventUserOnline        = "userOnline"
	EventUserOffline       = "userOffline"
	EventUserSearchResults = "userSearchResults"
	EventConversations     = "conversationsLoaded"
	EventRegisteredUsers   = "registeredUsersLoaded"
	EventOnlineUsers       = "onlineUsers"
	EventError             = "error"
)

type WsEvent struct {
	Event   string          `json:"event"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// New builds a WsEvent with the payload marshalled in place.
func New(name string, payload any) (WsEvent, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return WsEvent{}, err
	}
	return WsEvent{Event: name, Payload: raw}, nil
}

// SendMessagePayload is the client request to relay a direct message.
type SendMessagePayload struct {
	ReceiverID string `json:"receiverId"`
	Content    string `json:"content"`
}

// MarkAsReadPayload marks a whole conversation read for the caller.
type MarkAsReadPayload struct {
	ConversationID string `json:"conversationId"`
}

// SearchUsersPayload carries a directory search query.
type SearchUsersPayload struct {
	Query string `json:"query"`
}

// PresencePayload announces an online/offline transition.
type PresencePayload struct {
	UserID string `json:"userId"`
}

// MessagesReadPayload confirms a completed markAsRead to the caller.
type MessagesReadPayload struct {
	ConversationID string `json:"conversationId"`
	Updated        int64  `json:"updated"`
}
