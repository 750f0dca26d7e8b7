package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/connect-campus/peer-session-service/internal/domain"
)

// FocusSessionRepository encapsulates Pomodoro session persistence.
type FocusSessionRepository interface {
	Create(ctx context.Context, session *domain.FocusSession) error
	ListByUser(ctx context.Context, userID string, limit int) ([]domain.FocusSession, error)
	DeleteAll(ctx context.Context) error
}

type focusSessionRepository struct {
	pool *pgxpool.Pool
}

// NewFocusSessionRepository instantiates repository.
func NewFocusSessionRepository(pool *pgxpool.Pool) FocusSessionRepository {
	return &focusSessionRepository{pool: pool}
}

func (r *focusSessionRepository) Create(ctx context.Context, session *domain.FocusSession) error {
	const query = `
        INSERT INTO focus_sessions (user_id, topic, duration, focus_points)
        VALUES ($1,$2,$3,$4)
        RETURNING id, created_at`
	return r.pool.QueryRow(ctx, query,
		session.UserID,
		session.Topic,
		session.Duration,
		session.FocusPoints,
	).Scan(&session.ID, &session.CreatedAt)
}

func (r *focusSessionRepository) ListByUser(ctx context.Context, userID string, limit int) ([]domain.FocusSession, error) {
	if limit <= 0 {
		limit = 100
	}
	const query = `
        SELECT id, user_id, topic, duration, focus_points, created_at
        FROM focus_sessions WHERE user_id=$1
        ORDER BY created_at DESC LIMIT $2`
	rows, err := r.pool.Query(ctx, query, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.FocusSession
	for rows.Next() {
		var session domain.FocusSession
		if err := rows.Scan(
			&session.ID,
			&session.UserID,
			&session.Topic,
			&session.Duration,
			&session.FocusPoints,
			&session.CreatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, session)
	}
	return result, rows.Err()
}

func (r *focusSessionRepository) DeleteAll(ctx context.Context) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM focus_sessions`)
	return err
}
