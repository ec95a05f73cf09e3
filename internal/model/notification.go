package model

import "time"

// Notification types
const (
	NotificationAnnouncement   = "announcement"
	NotificationConnection     = "connection"
	NotificationMessage        = "message"
	NotificationUpcomingQuiz   = "upcomingQuiz"
	NotificationIncompleteQuiz = "incompleteQuiz"
)

// Notification lives only in process memory, keyed by user id. It is lost on
// restart; read-state transitions false -> true only.
type Notification struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	Type      string    `json:"type"`
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	Link      string    `json:"link,omitempty"`
	CreatedAt time.Time `json:"createdAtUtc"`
	IsRead    bool      `json:"isRead"`
}
