package configuration

import (
	"context"
	"fmt"
	"time"

	"github.com/Kutlwano2023/Campus-Learn/internal/auth"
	"github.com/Kutlwano2023/Campus-Learn/internal/db"
	"github.com/Kutlwano2023/Campus-Learn/internal/handler"
	"github.com/Kutlwano2023/Campus-Learn/internal/hub"
	"github.com/Kutlwano2023/Campus-Learn/internal/model"
	"github.com/Kutlwano2023/Campus-Learn/internal/notify"
	"github.com/Kutlwano2023/Campus-Learn/internal/repo"
	"github.com/Kutlwano2023/Campus-Learn/internal/service"

	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

type Container struct {
	MessagingHandler    handler.MessagingHandler
	NotificationHandler handler.NotificationHandler
	Hub                 *hub.Hub
	Tokens              *auth.TokenManager
	Feed                *notify.Feed
	Ingest              *notify.Listener
	Config              Config
	Logger              *zap.Logger

	// private - for cleanup
	mongoClient *mongo.Database
}

func BuildContainer(configPath string) (*Container, error) {
	config, err := LoadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	con, err := db.OpenConnection(config.Mongo.Uri, config.Mongo.Database)
	if err != nil {
		return nil, err
	}

	logger, _ := zap.NewProduction()

	messageRepo := repo.NewMessageRepository(
		db.NewRepository[model.Message](con, config.Mongo.MessagesCollection), logger)
	conversationRepo := repo.NewConversationRepository(
		db.NewRepository[model.Conversation](con, config.Mongo.ConversationsCollection), logger)
	userRepo := repo.NewUserRepository(
		db.NewRepository[model.User](con, config.Mongo.UsersCollection), logger)

	messagingService := service.NewMessagingService(messageRepo, conversationRepo, logger)

	// The hub owns the registry; the search service reads presence from it.
	var messagingHub *hub.Hub
	presence := presenceFunc(func(userID string) bool {
		return messagingHub.Registry().IsOnline(userID)
	})
	searchService := service.NewSearchService(userRepo, presence, logger)
	messagingHub = hub.NewHub(messagingService, searchService, config.AllowedOrigins)

	feed := notify.NewFeed(config.SeedNotifications)
	ingest := notify.NewListener(config.Server.NotifyAddr, feed, logger)

	tokens := auth.NewTokenManager(
		config.Auth.JwtSecret,
		time.Duration(config.Auth.TokenTTLMinutes)*time.Minute,
	)

	return &Container{
		MessagingHandler:    handler.NewMessagingHandler(messagingService, searchService),
		NotificationHandler: handler.NewNotificationHandler(feed),
		Hub:                 messagingHub,
		Tokens:              tokens,
		Feed:                feed,
		Ingest:              ingest,
		Config:              *config,
		Logger:              logger,
		mongoClient:         con,
	}, nil
}

type presenceFunc func(userID string) bool

func (f presenceFunc) IsOnline(userID string) bool { return f(userID) }

// Close gracefully shuts down all connections
func (c *Container) Close() error {
	// Stop the hub first (closes all WebSocket connections)
	if c.Hub != nil {
		c.Hub.Stop()
	}

	if c.Ingest != nil {
		c.Ingest.Stop()
	}

	// Sync logger
	if c.Logger != nil {
		_ = c.Logger.Sync()
	}

	// Close MongoDB connection pool
	if c.mongoClient != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := c.mongoClient.Client().Disconnect(ctx); err != nil {
			return fmt.Errorf("failed to close MongoDB connection: %w", err)
		}
	}

	return nil
}
