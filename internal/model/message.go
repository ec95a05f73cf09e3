package model

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Message represents a direct message in MongoDB. Immutable once created
// except for the is_read flag, which only transitions false -> true.
type Message struct {
	ID             primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	ConversationID primitive.ObjectID `json:"conversationId" bson:"conversation_id"`
	SenderID       string             `json:"senderId" bson:"sender_id"`
	ReceiverID     string             `json:"receiverId" bson:"receiver_id"`
	Content        string             `json:"content" bson:"content"`
	SentAt         time.Time          `json:"sentAtUtc" bson:"sent_at"`
	IsRead         bool               `json:"isRead" bson:"is_read"`
}

// ErrorPayload represents an error response sent to a client via WebSocket
type ErrorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
