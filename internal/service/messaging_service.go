package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Kutlwano2023/Campus-Learn/internal/db"
	"github.com/Kutlwano2023/Campus-Learn/internal/metrics"
	"github.com/Kutlwano2023/Campus-Learn/internal/model"
	"github.com/Kutlwano2023/Campus-Learn/internal/repo"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// MessagingService is the message relay core: it validates a send, resolves
// the canonical conversation, persists the message and maintains the
// conversation's denormalized summary. Pushing to live connections is the
// hub's job and always happens after the durable write returns.
type MessagingService interface {
	Send(ctx context.Context, senderID, receiverID, content string) (*model.Message, error)
	MarkRead(ctx context.Context, conversationID, readerID string) (int64, error)
	ConversationsFor(ctx context.Context, userID string) ([]model.Conversation, error)
	MessagesWith(ctx context.Context, userID, otherUserID string) ([]model.Message, error)
	ConversationMessages(ctx context.Context, conversationID string, page int64) (*db.PaginatedResult[model.Message], error)
	UnreadCount(ctx context.Context, userID string) (int64, error)
}

type messagingService struct {
	messages      repo.MessageRepository
	conversations repo.ConversationRepository
	logger        *zap.Logger
}

func NewMessagingService(messages repo.MessageRepository, conversations repo.ConversationRepository, logger *zap.Logger) MessagingService {
	return &messagingService{
		messages:      messages,
		conversations: conversations,
		logger:        logger,
	}
}

func (s *messagingService) Send(ctx context.Context, senderID, receiverID, content string) (*model.Message, error) {
	if senderID == "" {
		return nil, ErrUnauthenticated
	}
	if receiverID == "" || receiverID == senderID {
		return nil, fmt.Errorf("%w: invalid receiver id", ErrInvalidArgument)
	}
	if strings.TrimSpace(content) == "" {
		return nil, fmt.Errorf("%w: empty content", ErrInvalidArgument)
	}

	conv, err := s.conversations.GetOrCreate(ctx, senderID, receiverID)
	if err != nil {
		return nil, err
	}

	msg := &model.Message{
		ConversationID: conv.ID,
		SenderID:       senderID,
		ReceiverID:     receiverID,
		Content:        content,
		SentAt:         time.Now().UTC(),
		IsRead:         false,
	}

	if _, err := s.messages.InsertMessage(ctx, msg); err != nil {
		return nil, err
	}

	if err := s.conversations.RecordMessage(ctx, conv.ID, content, msg.SentAt); err != nil {
		return nil, err
	}

	metrics.MessagesRelayed.Inc()

	s.logger.Info("message relayed",
		zap.String("conversation_id", conv.ID.Hex()),
		zap.String("sender_id", senderID),
		zap.String("receiver_id", receiverID),
	)
	return msg, nil
}

// MarkRead flips is_read for all unread messages addressed to the reader in
// the conversation and zeroes the unread counter. A missing conversation is
// a no-op, not an error; calling twice leaves the same end state.
func (s *messagingService) MarkRead(ctx context.Context, conversationID, readerID string) (int64, error) {
	if readerID == "" {
		return 0, ErrUnauthenticated
	}

	oid, err := primitive.ObjectIDFromHex(conversationID)
	if err != nil {
		return 0, fmt.Errorf("%w: malformed conversation id", ErrInvalidArgument)
	}

	conv, err := s.conversations.FindByID(ctx, conversationID)
	if err != nil {
		return 0, err
	}
	if conv == nil {
		return 0, nil
	}

	updated, err := s.messages.MarkConversationRead(ctx, oid, readerID)
	if err != nil {
		return 0, err
	}

	if err := s.conversations.ResetUnread(ctx, oid); err != nil {
		return 0, err
	}

	return updated, nil
}

func (s *messagingService) ConversationsFor(ctx context.Context, userID string) ([]model.Conversation, error) {
	if userID == "" {
		return nil, ErrUnauthenticated
	}
	return s.conversations.ListForUser(ctx, userID)
}

func (s *messagingService) MessagesWith(ctx context.Context, userID, otherUserID string) ([]model.Message, error) {
	if userID == "" {
		return nil, ErrUnauthenticated
	}
	if otherUserID == "" {
		return nil, fmt.Errorf("%w: missing user id", ErrInvalidArgument)
	}
	return s.messages.MessagesBetween(ctx, userID, otherUserID)
}

func (s *messagingService) ConversationMessages(ctx context.Context, conversationID string, page int64) (*db.PaginatedResult[model.Message], error) {
	if _, err := primitive.ObjectIDFromHex(conversationID); err != nil {
		return nil, fmt.Errorf("%w: malformed conversation id", ErrInvalidArgument)
	}
	return s.messages.MessagesByConversation(ctx, conversationID, page)
}

func (s *messagingService) UnreadCount(ctx context.Context, userID string) (int64, error) {
	if userID == "" {
		return 0, ErrUnauthenticated
	}
	return s.messages.UnreadCountFor(ctx, userID)
}
