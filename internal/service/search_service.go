package service

import (
	"context"
	"sort"
	"strings"

	"github.com/Kutlwano2023/Campus-Learn/internal/metrics"
	"github.com/Kutlwano2023/Campus-Learn/internal/model"
	"github.com/Kutlwano2023/Campus-Learn/internal/repo"

	"go.uber.org/zap"
)

// searchResultLimit caps fuzzy search results.
const searchResultLimit = 20

// Presence reports whether a user currently has a live connection. The
// connection registry satisfies this at query time; results may still be
// stale relative to concurrent connects, which is an accepted race.
type Presence interface {
	IsOnline(userID string) bool
}

// SearchService serves directory lookups merged with live presence state.
type SearchService interface {
	Search(ctx context.Context, query, excludeUserID string) ([]model.UserSummary, error)
	RegisteredUsers(ctx context.Context, excludeUserID string) ([]model.UserSummary, error)
}

type searchService struct {
	users    repo.UserRepository
	presence Presence
	logger   *zap.Logger
}

func NewSearchService(users repo.UserRepository, presence Presence, logger *zap.Logger) SearchService {
	return &searchService{
		users:    users,
		presence: presence,
		logger:   logger,
	}
}

// Search returns directory matches for the query, excluding the caller.
// A blank query lists every user ordered by display name. Otherwise matches
// whose display name starts with the query sort first, the remainder stays
// ordered by display name, and the result is capped.
func (s *searchService) Search(ctx context.Context, query, excludeUserID string) ([]model.UserSummary, error) {
	metrics.SearchQueries.Inc()

	query = strings.TrimSpace(query)
	if query == "" {
		return s.RegisteredUsers(ctx, excludeUserID)
	}

	users, err := s.users.Search(ctx, query, excludeUserID)
	if err != nil {
		return nil, err
	}

	users = Filter(users, func(u model.User) bool { return u.UserID != excludeUserID })
	users = dedupeByID(users)

	lowered := strings.ToLower(query)
	sort.SliceStable(users, func(i, j int) bool {
		pi := strings.HasPrefix(strings.ToLower(users[i].FullName), lowered)
		pj := strings.HasPrefix(strings.ToLower(users[j].FullName), lowered)
		if pi != pj {
			return pi
		}
		return false // preserve display-name order within each band
	})

	if len(users) > searchResultLimit {
		users = users[:searchResultLimit]
	}

	return s.summarize(users), nil
}

// RegisteredUsers lists all users except the caller, ordered by display name.
func (s *searchService) RegisteredUsers(ctx context.Context, excludeUserID string) ([]model.UserSummary, error) {
	users, err := s.users.All(ctx, excludeUserID)
	if err != nil {
		return nil, err
	}

	users = Filter(users, func(u model.User) bool { return u.UserID != excludeUserID })
	return s.summarize(users), nil
}

func (s *searchService) summarize(users []model.User) []model.UserSummary {
	summaries := make([]model.UserSummary, 0, len(users))
	for _, u := range users {
		summaries = append(summaries, model.UserSummary{
			UserID:   u.UserID,
			FullName: u.FullName,
			Email:    u.Email,
			Username: u.Username,
			Role:     u.Role,
			IsOnline: s.presence.IsOnline(u.UserID),
		})
	}
	return summaries
}

func dedupeByID(users []model.User) []model.User {
	seen := make(map[string]struct{}, len(users))
	out := users[:0]
	for _, u := range users {
		if _, ok := seen[u.UserID]; ok {
			continue
		}
		seen[u.UserID] = struct{}{}
		out = append(out, u)
	}
	return out
}
