package service

import (
	"context"
	"errors"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/connect-campus/peer-session-service/internal/domain"
	"github.com/connect-campus/peer-session-service/internal/repository"
	apperrors "github.com/connect-campus/peer-session-service/pkg/util"
)

const leaderboardKey = "leaderboard:xp"

// RankedUser is a leaderboard row.
type RankedUser struct {
	Rank int
	User domain.User
}

// LeaderboardService serves xp standings. Postgres is authoritative; a Redis
// sorted set caches the ordering and is rebuilt from Postgres whenever the
// cache is cold or unreachable. Settlement updates are pushed into the set so
// independent readers converge without a query storm.
type LeaderboardService struct {
	users  repository.UserRepository
	client *redis.Client
	logger *zap.Logger
}

// NewLeaderboardService constructs the service. client may be nil in tests.
func NewLeaderboardService(users repository.UserRepository, client *redis.Client, logger *zap.Logger) *LeaderboardService {
	return &LeaderboardService{users: users, client: client, logger: logger}
}

// Record pushes a user's new xp total into the cached ordering. Best effort:
// cache errors are logged, never surfaced, since Postgres remains correct.
func (s *LeaderboardService) Record(ctx context.Context, user *domain.User) {
	if s == nil || s.client == nil || user == nil {
		return
	}
	err := s.client.ZAdd(ctx, leaderboardKey, redis.Z{
		Score:  float64(user.XP),
		Member: user.ID,
	}).Err()
	if err != nil {
		s.logger.Warn("leaderboard cache update failed", zap.Error(err))
	}
}

// Top returns the highest-xp users with ranks attached, newest entries last
// among ties by id for stable ordering.
func (s *LeaderboardService) Top(ctx context.Context, limit int) ([]RankedUser, error) {
	if limit <= 0 {
		limit = 100
	}

	if s.client != nil {
		ranked, err := s.topFromCache(ctx, limit)
		if err == nil {
			return ranked, nil
		}
		s.logger.Warn("leaderboard cache read failed; falling back to postgres", zap.Error(err))
	}

	users, err := s.users.ListByXP(ctx, limit)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	ranked := make([]RankedUser, 0, len(users))
	for i, user := range users {
		ranked = append(ranked, RankedUser{Rank: i + 1, User: user})
	}
	s.rebuildCache(ctx, users)
	return ranked, nil
}

var errCacheEmpty = errors.New("leaderboard cache empty")

func (s *LeaderboardService) topFromCache(ctx context.Context, limit int) ([]RankedUser, error) {
	ids, err := s.client.ZRevRange(ctx, leaderboardKey, 0, int64(limit-1)).Result()
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return nil, errCacheEmpty
	}

	ranked := make([]RankedUser, 0, len(ids))
	for i, id := range ids {
		user, err := s.users.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}
		ranked = append(ranked, RankedUser{Rank: i + 1, User: *user})
	}
	return ranked, nil
}

func (s *LeaderboardService) rebuildCache(ctx context.Context, users []domain.User) {
	if s.client == nil || len(users) == 0 {
		return
	}
	members := make([]redis.Z, 0, len(users))
	for _, user := range users {
		members = append(members, redis.Z{Score: float64(user.XP), Member: user.ID})
	}
	if err := s.client.ZAdd(ctx, leaderboardKey, members...).Err(); err != nil {
		s.logger.Warn("leaderboard cache rebuild failed", zap.Error(err))
	}
}

// GetUser returns a single user snapshot.
func (s *LeaderboardService) GetUser(ctx context.Context, id string) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, apperrors.NewNotFound("user", map[string]any{"user_id": id})
	}
	return user, nil
}
