package repo

import (
	"context"
	"fmt"
	"time"

	"github.com/Kutlwano2023/Campus-Learn/internal/db"
	"github.com/Kutlwano2023/Campus-Learn/internal/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

// previewLength is the fixed display length for conversation previews.
const previewLength = 50

type conversationRepository struct {
	mongoRepo *db.Repository[model.Conversation]
	logger    *zap.Logger
}

type ConversationRepository interface {
	GetOrCreate(ctx context.Context, userA, userB string) (*model.Conversation, error)
	FindByID(ctx context.Context, conversationID string) (*model.Conversation, error)
	RecordMessage(ctx context.Context, conversationID primitive.ObjectID, content string, sentAt time.Time) error
	ResetUnread(ctx context.Context, conversationID primitive.ObjectID) error
	ListForUser(ctx context.Context, userID string) ([]model.Conversation, error)
}

func NewConversationRepository(repo *db.Repository[model.Conversation], logger *zap.Logger) ConversationRepository {
	return &conversationRepository{
		mongoRepo: repo,
		logger:    logger,
	}
}

// GetOrCreate resolves the canonical conversation for a participant pair,
// creating it atomically on first contact. The upsert keys on participant_key
// so two concurrent first sends still yield a single document.
func (r *conversationRepository) GetOrCreate(ctx context.Context, userA, userB string) (*model.Conversation, error) {
	ctx, cancel := r.ensureTimeout(ctx, defaultWriteTimeout)
	defer cancel()

	key := model.ConversationKey(userA, userB)
	filter := bson.M{"participant_key": key}
	update := bson.M{"$setOnInsert": bson.M{
		"participant_key": key,
		"participant_ids": model.SortedParticipants(userA, userB),
		"created_at":      time.Now().UTC(),
		"last_message_at": time.Time{},
		"unread_count":    0,
	}}

	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After)

	var conv model.Conversation
	err := r.mongoRepo.Collection().FindOneAndUpdate(ctx, filter, update, opts).Decode(&conv)
	if err != nil {
		r.logger.Error("failed to resolve conversation",
			zap.String("participant_key", key),
			zap.Error(err),
		)
		return nil, fmt.Errorf("resolve conversation failed: %w", err)
	}

	return &conv, nil
}

// FindByID fetches a conversation document by its hex ID. Returns nil, nil
// when the conversation does not exist.
func (r *conversationRepository) FindByID(ctx context.Context, conversationID string) (*model.Conversation, error) {
	if conversationID == "" {
		return nil, ErrInvalidConversationID
	}

	ctx, cancel := r.ensureTimeout(ctx, defaultReadTimeout)
	defer cancel()

	conv, err := r.mongoRepo.FindByID(ctx, conversationID)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			r.logger.Debug("conversation not found",
				zap.String("conversation_id", conversationID),
			)
			return nil, nil
		}
		r.logger.Error("failed to fetch conversation",
			zap.String("conversation_id", conversationID),
			zap.Error(err),
		)
		return nil, fmt.Errorf("failed to fetch conversation: %w", err)
	}

	return conv, nil
}

// RecordMessage updates the denormalized summary fields after a send. The
// unread counter uses an atomic $inc so concurrent sends and markAsRead
// cannot lose increments to a fetch-then-write race.
func (r *conversationRepository) RecordMessage(ctx context.Context, conversationID primitive.ObjectID, content string, sentAt time.Time) error {
	ctx, cancel := r.ensureTimeout(ctx, defaultWriteTimeout)
	defer cancel()

	update := bson.M{
		"$set": bson.M{
			"last_message_at":      sentAt,
			"last_message_preview": Preview(content),
		},
		"$inc": bson.M{"unread_count": 1},
	}

	_, err := r.mongoRepo.Collection().UpdateOne(ctx, bson.M{"_id": conversationID}, update)
	if err != nil {
		r.logger.Error("failed to record message on conversation",
			zap.String("conversation_id", conversationID.Hex()),
			zap.Error(err),
		)
		return fmt.Errorf("record message failed: %w", err)
	}
	return nil
}

// ResetUnread zeroes the unread counter after a markAsRead.
func (r *conversationRepository) ResetUnread(ctx context.Context, conversationID primitive.ObjectID) error {
	ctx, cancel := r.ensureTimeout(ctx, defaultWriteTimeout)
	defer cancel()

	_, err := r.mongoRepo.Update(ctx, bson.M{"_id": conversationID}, bson.M{"unread_count": 0})
	if err != nil {
		return fmt.Errorf("reset unread failed: %w", err)
	}
	return nil
}

// ListForUser returns the user's conversations, most recent activity first.
func (r *conversationRepository) ListForUser(ctx context.Context, userID string) ([]model.Conversation, error) {
	ctx, cancel := r.ensureTimeout(ctx, defaultReadTimeout)
	defer cancel()

	filter := db.NewFilter().Eq("participant_ids", userID).Build()
	convs, err := r.mongoRepo.FindAll(ctx, filter, sortDesc("last_message_at"))
	if err != nil {
		r.logger.Error("failed to list conversations",
			zap.String("user_id", userID),
			zap.Error(err),
		)
		return nil, fmt.Errorf("list conversations failed: %w", err)
	}

	r.logger.Debug("conversations listed",
		zap.String("user_id", userID),
		zap.Int("count", len(convs)),
	)
	return convs, nil
}

func (r *conversationRepository) ensureTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if _, hadDeadline := ctx.Deadline(); hadDeadline {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, timeout)
}

// Preview truncates message content to the fixed display length.
func Preview(content string) string {
	runes := []rune(content)
	if len(runes) <= previewLength {
		return content
	}
	return string(runes[:previewLength]) + "..."
}

func sortAsc(field string) *options.FindOptions {
	return options.Find().SetSort(bson.D{{Key: field, Value: 1}})
}

func sortDesc(field string) *options.FindOptions {
	return options.Find().SetSort(bson.D{{Key: field, Value: -1}})
}
