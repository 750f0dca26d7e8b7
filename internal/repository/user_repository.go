package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/connect-campus/peer-session-service/internal/domain"
)

// UserRepository encapsulates user persistence. XP only moves through
// IncrementXP, which refreshes the stored level in the same statement.
type UserRepository interface {
	Ensure(ctx context.Context, id, name string) error
	GetByID(ctx context.Context, id string) (*domain.User, error)
	IncrementXP(ctx context.Context, id string, amount int64) (*domain.User, error)
	ListByXP(ctx context.Context, limit int) ([]domain.User, error)
}

type userRepository struct {
	pool *pgxpool.Pool
}

// NewUserRepository instantiates repository.
func NewUserRepository(pool *pgxpool.Pool) UserRepository {
	return &userRepository{pool: pool}
}

// Ensure provisions a user record on first participation. Existing records
// are untouched.
func (r *userRepository) Ensure(ctx context.Context, id, name string) error {
	const query = `
        INSERT INTO users (id, name) VALUES ($1,$2)
        ON CONFLICT (id) DO NOTHING`
	_, err := r.pool.Exec(ctx, query, id, name)
	return err
}

func (r *userRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	const query = `SELECT id, name, xp, level, created_at, updated_at FROM users WHERE id=$1`
	var user domain.User
	if err := r.pool.QueryRow(ctx, query, id).Scan(
		&user.ID, &user.Name, &user.XP, &user.Level, &user.CreatedAt, &user.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &user, nil
}

// IncrementXP atomically adds xp and recomputes the level column from the new
// total. The level column is a cache of the derivation, never updated on its
// own.
func (r *userRepository) IncrementXP(ctx context.Context, id string, amount int64) (*domain.User, error) {
	const query = `
        UPDATE users
        SET xp = xp + $2, level = ((xp + $2) / 100) + 1, updated_at = NOW()
        WHERE id = $1
        RETURNING id, name, xp, level, created_at, updated_at`
	var user domain.User
	if err := r.pool.QueryRow(ctx, query, id, amount).Scan(
		&user.ID, &user.Name, &user.XP, &user.Level, &user.CreatedAt, &user.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) ListByXP(ctx context.Context, limit int) ([]domain.User, error) {
	if limit <= 0 {
		limit = 100
	}
	const query = `SELECT id, name, xp, level, created_at, updated_at FROM users ORDER BY xp DESC, id ASC LIMIT $1`
	rows, err := r.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.User
	for rows.Next() {
		var user domain.User
		if err := rows.Scan(&user.ID, &user.Name, &user.XP, &user.Level, &user.CreatedAt, &user.UpdatedAt); err != nil {
			return nil, err
		}
		result = append(result, user)
	}
	return result, rows.Err()
}
