package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/connect-campus/peer-session-service/internal/domain"
)

// RequestFilter captures listing parameters.
type RequestFilter struct {
	Status      *domain.RequestStatus
	RequesterID *string
	Limit       int
	Offset      int
}

// RequestRepository encapsulates help request persistence.
//
// Accept and CompleteIfAccepted are conditional single-statement updates: the
// WHERE clause carries the expected status, so exactly one of any number of
// racing callers observes a row change. The store offers no transactions we
// rely on beyond that.
type RequestRepository interface {
	Create(ctx context.Context, request *domain.HelpRequest) error
	GetByID(ctx context.Context, id string) (*domain.HelpRequest, error)
	List(ctx context.Context, filter RequestFilter) ([]domain.HelpRequest, error)
	Accept(ctx context.Context, id, helperID string) (*domain.HelpRequest, error)
	CompleteIfAccepted(ctx context.Context, id string) (*domain.HelpRequest, error)
	DeleteAll(ctx context.Context) error
}

type requestRepository struct {
	pool *pgxpool.Pool
}

// NewRequestRepository instantiates repository.
func NewRequestRepository(pool *pgxpool.Pool) RequestRepository {
	return &requestRepository{pool: pool}
}

const requestColumns = `id, requester_id, helper_id, title, description, status, created_at, updated_at, completed_at`

func (r *requestRepository) Create(ctx context.Context, request *domain.HelpRequest) error {
	const query = `
        INSERT INTO help_requests (requester_id, title, description, status)
        VALUES ($1,$2,$3,$4)
        RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, query,
		request.RequesterID,
		request.Title,
		request.Description,
		request.Status,
	).Scan(&request.ID, &request.CreatedAt, &request.UpdatedAt)
}

// isRequestID screens ids before they reach the UUID-typed column. Ids are
// opaque to callers, so one that cannot be a UUID matches no row and is
// reported the same way as an absent one.
func isRequestID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

func (r *requestRepository) GetByID(ctx context.Context, id string) (*domain.HelpRequest, error) {
	if !isRequestID(id) {
		return nil, pgx.ErrNoRows
	}
	query := fmt.Sprintf(`SELECT %s FROM help_requests WHERE id=$1`, requestColumns)
	return r.fetchSingle(ctx, query, id)
}

func (r *requestRepository) List(ctx context.Context, filter RequestFilter) ([]domain.HelpRequest, error) {
	base := fmt.Sprintf(`SELECT %s FROM help_requests`, requestColumns)
	clauses := []string{"1=1"}
	args := []any{}

	if filter.Status != nil {
		args = append(args, *filter.Status)
		clauses = append(clauses, fmt.Sprintf("status=$%d", len(args)))
	}
	if filter.RequesterID != nil {
		args = append(args, *filter.RequesterID)
		clauses = append(clauses, fmt.Sprintf("requester_id=$%d", len(args)))
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 50
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}

	query := fmt.Sprintf(`%s WHERE %s ORDER BY created_at DESC LIMIT %d OFFSET %d`,
		base, strings.Join(clauses, " AND "), limit, offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanRequests(rows)
}

// Accept flips OPEN -> ACCEPTED for exactly one caller. Returns pgx.ErrNoRows
// when the request is absent or no longer open; callers distinguish the two
// with a follow-up read.
func (r *requestRepository) Accept(ctx context.Context, id, helperID string) (*domain.HelpRequest, error) {
	if !isRequestID(id) {
		return nil, pgx.ErrNoRows
	}
	query := fmt.Sprintf(`
        UPDATE help_requests
        SET status=$2, helper_id=$3, updated_at=NOW()
        WHERE id=$1 AND status=$4
        RETURNING %s`, requestColumns)
	return r.fetchSingle(ctx, query, id, domain.RequestStatusAccepted, helperID, domain.RequestStatusOpen)
}

// CompleteIfAccepted flips ACCEPTED -> COMPLETED for exactly one caller; this
// row change is the settlement dedup gate.
func (r *requestRepository) CompleteIfAccepted(ctx context.Context, id string) (*domain.HelpRequest, error) {
	if !isRequestID(id) {
		return nil, pgx.ErrNoRows
	}
	query := fmt.Sprintf(`
        UPDATE help_requests
        SET status=$2, completed_at=NOW(), updated_at=NOW()
        WHERE id=$1 AND status=$3
        RETURNING %s`, requestColumns)
	return r.fetchSingle(ctx, query, id, domain.RequestStatusCompleted, domain.RequestStatusAccepted)
}

func (r *requestRepository) DeleteAll(ctx context.Context) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM help_requests`)
	return err
}

func (r *requestRepository) fetchSingle(ctx context.Context, query string, args ...any) (*domain.HelpRequest, error) {
	var request domain.HelpRequest
	if err := r.pool.QueryRow(ctx, query, args...).Scan(
		&request.ID,
		&request.RequesterID,
		&request.HelperID,
		&request.Title,
		&request.Description,
		&request.Status,
		&request.CreatedAt,
		&request.UpdatedAt,
		&request.CompletedAt,
	); err != nil {
		return nil, err
	}
	return &request, nil
}

func scanRequests(rows pgx.Rows) ([]domain.HelpRequest, error) {
	var result []domain.HelpRequest
	for rows.Next() {
		var request domain.HelpRequest
		if err := rows.Scan(
			&request.ID,
			&request.RequesterID,
			&request.HelperID,
			&request.Title,
			&request.Description,
			&request.Status,
			&request.CreatedAt,
			&request.UpdatedAt,
			&request.CompletedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, request)
	}
	return result, rows.Err()
}
