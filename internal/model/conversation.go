package model

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Conversation is the canonical per-pair message thread in MongoDB.
// Exactly one document exists per unordered participant pair; it is created
// lazily on first message or first explicit lookup.
type Conversation struct {
	ID                 primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	ParticipantKey     string             `json:"-" bson:"participant_key"`
	ParticipantIDs     []string           `json:"participantIds" bson:"participant_ids"`
	CreatedAt          time.Time          `json:"createdAt" bson:"created_at"`
	LastMessageAt      time.Time          `json:"lastMessageAt" bson:"last_message_at"`
	LastMessagePreview string             `json:"lastMessagePreview" bson:"last_message_preview"`
	UnreadCount        int                `json:"unreadCount" bson:"unread_count"`
}

// ConversationKey returns the canonical key for a participant pair. The pair
// is sorted so conversation(a,b) and conversation(b,a) resolve identically.
func ConversationKey(a, b string) string {
	if b < a {
		a, b = b, a
	}
	return a + ":" + b
}

// SortedParticipants returns the pair in canonical order.
func SortedParticipants(a, b string) []string {
	if b < a {
		a, b = b, a
	}
	return []string{a, b}
}
