package notify

import (
	"sort"
	"sync"
	"time"

	"github.com/Kutlwano2023/Campus-Learn/internal/model"

	"github.com/google/uuid"
)

// Feed is the in-memory per-user notification store. There is no persistence
// guarantee: everything here is lost on process restart.
type Feed struct {
	mu     sync.RWMutex
	byUser map[string][]*model.Notification

	// seed controls the demo seeding of first-touched users. Production
	// deployments start users empty by disabling it.
	seed bool
}

func NewFeed(seedDemoData bool) *Feed {
	return &Feed{
		byUser: make(map[string][]*model.Notification),
		seed:   seedDemoData,
	}
}

// Add appends a notification to the target user's list, assigning an id and
// timestamp when absent.
func (f *Feed) Add(n *model.Notification) {
	if n.ID == "" {
		n.ID = uuid.New().String()
	}
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now().UTC()
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.byUser[n.UserID] = append(f.list(n.UserID), n)
}

// UnreadCount returns the number of unread notifications for the user.
func (f *Feed) UnreadCount(userID string) int {
	f.mu.Lock()
	defer f.mu.Unlock()

	count := 0
	for _, n := range f.list(userID) {
		if !n.IsRead {
			count++
		}
	}
	return count
}

// Recent returns up to limit notifications, newest first.
func (f *Feed) Recent(userID string, limit int) []model.Notification {
	all := f.All(userID)
	if limit > 0 && len(all) > limit {
		all = all[:limit]
	}
	return all
}

// All returns every notification for the user, newest first.
func (f *Feed) All(userID string) []model.Notification {
	f.mu.Lock()
	defer f.mu.Unlock()

	items := f.list(userID)
	out := make([]model.Notification, 0, len(items))
	for _, n := range items {
		out = append(out, *n)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out
}

// MarkRead sets isRead for the notification if found; unknown ids are a
// no-op, not an error.
func (f *Feed) MarkRead(userID, notificationID string) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, n := range f.list(userID) {
		if n.ID == notificationID {
			n.IsRead = true
			return
		}
	}
}

// list returns the user's slice, lazily seeding a demo set on first access.
// Callers must hold f.mu.
func (f *Feed) list(userID string) []*model.Notification {
	if items, ok := f.byUser[userID]; ok {
		return items
	}
	if !f.seed {
		return nil
	}

	now := time.Now().UTC()
	items := []*model.Notification{
		{
			ID:        uuid.New().String(),
			UserID:    userID,
			Type:      model.NotificationAnnouncement,
			Title:     "New Announcement",
			Message:   "Midterm schedule published.",
			Link:      "/portal/student",
			CreatedAt: now.Add(-4 * time.Hour),
		},
		{
			ID:        uuid.New().String(),
			UserID:    userID,
			Type:      model.NotificationConnection,
			Title:     "Tutor Connected",
			Message:   "Your tutor has accepted your request.",
			Link:      "/portal/student",
			CreatedAt: now.Add(-24 * time.Hour),
		},
		{
			ID:        uuid.New().String(),
			UserID:    userID,
			Type:      model.NotificationMessage,
			Title:     "New Message",
			Message:   "You have a new message in your inbox.",
			Link:      "/portal/student",
			CreatedAt: now.Add(-2 * time.Hour),
		},
		{
			ID:        uuid.New().String(),
			UserID:    userID,
			Type:      model.NotificationUpcomingQuiz,
			Title:     "Quiz Tomorrow",
			Message:   "Quiz: JavaScript Basics starts within 24 hours.",
			Link:      "/portal/quiz",
			CreatedAt: now.Add(-3 * time.Hour),
		},
		{
			ID:        uuid.New().String(),
			UserID:    userID,
			Type:      model.NotificationIncompleteQuiz,
			Title:     "Incomplete Quiz",
			Message:   "You have an available quiz you haven't started yet.",
			Link:      "/portal/quiz",
			CreatedAt: now.Add(-10 * time.Hour),
		},
	}
	f.byUser[userID] = items
	return items
}
