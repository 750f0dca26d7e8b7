package service

import (
	"context"
	"strings"

	"github.com/connect-campus/peer-session-service/internal/domain"
	"github.com/connect-campus/peer-session-service/internal/repository"
	apperrors "github.com/connect-campus/peer-session-service/pkg/util"
)

// FocusService tracks Pomodoro sessions and their focus points.
type FocusService struct {
	sessions repository.FocusSessionRepository
	users    repository.UserRepository
}

// NewFocusService constructs the service.
func NewFocusService(sessions repository.FocusSessionRepository, users repository.UserRepository) *FocusService {
	return &FocusService{sessions: sessions, users: users}
}

// Record stores a completed focus interval. Duration is minutes and must be
// positive; points follow the fixed per-minute rate.
func (s *FocusService) Record(ctx context.Context, userID, topic string, duration int) (*domain.FocusSession, error) {
	if duration <= 0 {
		return nil, apperrors.NewValidationError("duration must be positive", map[string]any{"duration": duration})
	}
	topic = strings.TrimSpace(topic)
	if topic == "" {
		topic = "Unknown"
	}

	if err := s.users.Ensure(ctx, userID, userID); err != nil {
		return nil, apperrors.MapError(err)
	}

	session := &domain.FocusSession{
		UserID:      userID,
		Topic:       topic,
		Duration:    duration,
		FocusPoints: domain.FocusPointsForDuration(duration),
	}
	if err := s.sessions.Create(ctx, session); err != nil {
		return nil, apperrors.MapError(err)
	}
	return session, nil
}

// List returns a user's sessions newest-first.
func (s *FocusService) List(ctx context.Context, userID string, limit int) ([]domain.FocusSession, error) {
	result, err := s.sessions.ListByUser(ctx, userID, limit)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return result, nil
}

// Reset deletes every recorded session. Admin-only at the transport layer.
func (s *FocusService) Reset(ctx context.Context) error {
	if err := s.sessions.DeleteAll(ctx); err != nil {
		return apperrors.MapError(err)
	}
	return nil
}
