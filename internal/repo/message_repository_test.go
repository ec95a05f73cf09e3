package repo

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Kutlwano2023/Campus-Learn/internal/db"
	"github.com/Kutlwano2023/Campus-Learn/internal/model"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

func TestInsertMessageValidation(t *testing.T) {
	repo := NewMessageRepository(nil, zap.NewNop())
	ctx := context.Background()

	if _, err := repo.InsertMessage(ctx, nil); !errors.Is(err, ErrInvalidMessage) {
		t.Errorf("nil message error = %v, want %v", err, ErrInvalidMessage)
	}

	msg := &model.Message{SenderID: "alice", ReceiverID: "bob", Content: "hi"}
	if _, err := repo.InsertMessage(ctx, msg); !errors.Is(err, ErrInvalidConversationID) {
		t.Errorf("zero conversation id error = %v, want %v", err, ErrInvalidConversationID)
	}
}

func TestMessagesByConversationEmptyID(t *testing.T) {
	repo := NewMessageRepository(nil, zap.NewNop())

	if _, err := repo.MessagesByConversation(context.Background(), "", 1); !errors.Is(err, ErrInvalidConversationID) {
		t.Errorf("empty conversation id error = %v, want %v", err, ErrInvalidConversationID)
	}
}

func newTestMessageRepo(t *testing.T) MessageRepository {
	t.Helper()

	database := testDatabase(t)
	dropCollection(t, database, "messages_test")
	return NewMessageRepository(db.NewRepository[model.Message](database, "messages_test"), zap.NewNop())
}

func insertTestMessage(t *testing.T, repo MessageRepository, convID primitive.ObjectID, sender, receiver, content string, sentAt time.Time) *model.Message {
	t.Helper()

	msg := &model.Message{
		ConversationID: convID,
		SenderID:       sender,
		ReceiverID:     receiver,
		Content:        content,
		SentAt:         sentAt,
	}
	if _, err := repo.InsertMessage(context.Background(), msg); err != nil {
		t.Fatalf("InsertMessage failed: %v", err)
	}
	return msg
}

func TestInsertAndFetchIntegration(t *testing.T) {
	repo := newTestMessageRepo(t)
	ctx := context.Background()

	convID := primitive.NewObjectID()
	base := time.Now().UTC().Truncate(time.Millisecond)

	insertTestMessage(t, repo, convID, "alice", "bob", "first", base)
	insertTestMessage(t, repo, convID, "bob", "alice", "second", base.Add(time.Second))
	insertTestMessage(t, repo, convID, "alice", "carol", "unrelated", base.Add(2*time.Second))

	msgs, err := repo.MessagesBetween(ctx, "alice", "bob")
	if err != nil {
		t.Fatalf("MessagesBetween failed: %v", err)
	}
	if len(msgs) != 2 {
		t.Fatalf("MessagesBetween = %d messages, want 2", len(msgs))
	}
	// Oldest first, both directions included.
	if msgs[0].Content != "first" || msgs[1].Content != "second" {
		t.Errorf("order = %q, %q; want first, second", msgs[0].Content, msgs[1].Content)
	}

	page, err := repo.MessagesByConversation(ctx, convID.Hex(), 1)
	if err != nil {
		t.Fatalf("MessagesByConversation failed: %v", err)
	}
	if page.Total != 2 {
		t.Errorf("conversation total = %d, want 2", page.Total)
	}
}

func TestMarkConversationReadIntegration(t *testing.T) {
	repo := newTestMessageRepo(t)
	ctx := context.Background()

	convID := primitive.NewObjectID()
	now := time.Now().UTC()

	insertTestMessage(t, repo, convID, "alice", "bob", "one", now)
	insertTestMessage(t, repo, convID, "alice", "bob", "two", now.Add(time.Second))
	insertTestMessage(t, repo, convID, "bob", "alice", "reply", now.Add(2*time.Second))

	unread, err := repo.UnreadCountFor(ctx, "bob")
	if err != nil {
		t.Fatalf("UnreadCountFor failed: %v", err)
	}
	if unread != 2 {
		t.Errorf("unread for bob = %d, want 2", unread)
	}

	// Only messages addressed to the reader flip.
	modified, err := repo.MarkConversationRead(ctx, convID, "bob")
	if err != nil {
		t.Fatalf("MarkConversationRead failed: %v", err)
	}
	if modified != 2 {
		t.Errorf("modified = %d, want 2", modified)
	}

	unread, err = repo.UnreadCountFor(ctx, "bob")
	if err != nil {
		t.Fatalf("UnreadCountFor failed: %v", err)
	}
	if unread != 0 {
		t.Errorf("unread after mark = %d, want 0", unread)
	}

	// Alice's incoming reply stays unread.
	unread, err = repo.UnreadCountFor(ctx, "alice")
	if err != nil {
		t.Fatalf("UnreadCountFor failed: %v", err)
	}
	if unread != 1 {
		t.Errorf("unread for alice = %d, want 1", unread)
	}

	// Second pass finds nothing left to flip.
	modified, err = repo.MarkConversationRead(ctx, convID, "bob")
	if err != nil {
		t.Fatalf("second MarkConversationRead failed: %v", err)
	}
	if modified != 0 {
		t.Errorf("second pass modified = %d, want 0", modified)
	}
}
