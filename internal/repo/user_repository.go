package repo

import (
	"context"
	"fmt"
	"regexp"
	"time"

	"github.com/Kutlwano2023/Campus-Learn/internal/db"
	"github.com/Kutlwano2023/Campus-Learn/internal/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// searchFetchLimit bounds how many candidates a fuzzy search pulls from the
// store before ranking; the service caps the final result much lower.
const searchFetchLimit = 100

type UserRepository interface {
	FindByUserID(ctx context.Context, userID string) (*model.User, error)
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	All(ctx context.Context, excludeUserID string) ([]model.User, error)
	Search(ctx context.Context, query, excludeUserID string) ([]model.User, error)
}

type userRepository struct {
	mongoRepo *db.Repository[model.User]
	logger    *zap.Logger
}

func NewUserRepository(repo *db.Repository[model.User], logger *zap.Logger) UserRepository {
	return &userRepository{
		mongoRepo: repo,
		logger:    logger,
	}
}

func (r *userRepository) FindByUserID(ctx context.Context, userID string) (*model.User, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	user, err := r.mongoRepo.FindOne(ctx, db.NewFilter().Eq("user_id", userID).Build())
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, fmt.Errorf("find user failed: %w", err)
	}
	return user, nil
}

func (r *userRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	user, err := r.mongoRepo.FindOne(ctx, db.NewFilter().Eq("email", email).Build())
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, fmt.Errorf("find user by email failed: %w", err)
	}
	return user, nil
}

// All returns every active user except the excluded one, ordered by display name.
func (r *userRepository) All(ctx context.Context, excludeUserID string) ([]model.User, error) {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	filter := db.NewFilter().
		Eq("is_active", true).
		Ne("user_id", excludeUserID).
		Build()

	users, err := r.mongoRepo.FindAll(ctx, filter, sortAsc("full_name"))
	if err != nil {
		r.logger.Error("failed to list users", zap.Error(err))
		return nil, fmt.Errorf("list users failed: %w", err)
	}
	return users, nil
}

// Search performs a case-insensitive substring match against display name,
// email and login name. The query is quoted so user input cannot inject
// regex metacharacters into the store query.
func (r *userRepository) Search(ctx context.Context, query, excludeUserID string) ([]model.User, error) {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	pattern := regexp.QuoteMeta(query)
	contains := bson.M{"$regex": pattern, "$options": "i"}

	filter := db.NewFilter().
		Eq("is_active", true).
		Ne("user_id", excludeUserID).
		Or(
			bson.M{"full_name": contains},
			bson.M{"email": contains},
			bson.M{"username": contains},
		).
		Build()

	users, err := r.mongoRepo.FindAll(ctx, filter, sortAsc("full_name").SetLimit(searchFetchLimit))
	if err != nil {
		r.logger.Error("user search failed",
			zap.String("query", query),
			zap.Error(err),
		)
		return nil, fmt.Errorf("user search failed: %w", err)
	}

	r.logger.Debug("user search executed",
		zap.String("query", query),
		zap.Int("matches", len(users)),
	)
	return users, nil
}
