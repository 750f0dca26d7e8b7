package service

import (
	"context"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/connect-campus/peer-session-service/internal/domain"
	"github.com/connect-campus/peer-session-service/internal/repository"
)

// memRequestRepo mirrors the conditional-update contract of the SQL
// repository: Accept and CompleteIfAccepted mutate only when the stored
// status matches, and report pgx.ErrNoRows otherwise, so race tests exercise
// the same arbitration the database provides.
type memRequestRepo struct {
	mu       sync.Mutex
	seq      int
	requests map[string]*domain.HelpRequest
}

func newMemRequestRepo() *memRequestRepo {
	return &memRequestRepo{requests: make(map[string]*domain.HelpRequest)}
}

func (r *memRequestRepo) Create(ctx context.Context, request *domain.HelpRequest) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	request.ID = "req-" + strconv.Itoa(r.seq)
	request.CreatedAt = time.Now()
	request.UpdatedAt = request.CreatedAt
	clone := *request
	r.requests[request.ID] = &clone
	return nil
}

func (r *memRequestRepo) GetByID(ctx context.Context, id string) (*domain.HelpRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.requests[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	clone := *stored
	return &clone, nil
}

func (r *memRequestRepo) List(ctx context.Context, filter repository.RequestFilter) ([]domain.HelpRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.HelpRequest
	for _, stored := range r.requests {
		if filter.Status != nil && stored.Status != *filter.Status {
			continue
		}
		if filter.RequesterID != nil && stored.RequesterID != *filter.RequesterID {
			continue
		}
		out = append(out, *stored)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *memRequestRepo) Accept(ctx context.Context, id, helperID string) (*domain.HelpRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.requests[id]
	if !ok || stored.Status != domain.RequestStatusOpen {
		return nil, pgx.ErrNoRows
	}
	stored.Status = domain.RequestStatusAccepted
	stored.HelperID = &helperID
	stored.UpdatedAt = time.Now()
	clone := *stored
	return &clone, nil
}

func (r *memRequestRepo) CompleteIfAccepted(ctx context.Context, id string) (*domain.HelpRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.requests[id]
	if !ok || stored.Status != domain.RequestStatusAccepted {
		return nil, pgx.ErrNoRows
	}
	now := time.Now()
	stored.Status = domain.RequestStatusCompleted
	stored.CompletedAt = &now
	stored.UpdatedAt = now
	clone := *stored
	return &clone, nil
}

func (r *memRequestRepo) DeleteAll(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.requests = make(map[string]*domain.HelpRequest)
	return nil
}

type memUserRepo struct {
	mu    sync.Mutex
	users map[string]*domain.User
}

func newMemUserRepo() *memUserRepo {
	return &memUserRepo{users: make(map[string]*domain.User)}
}

func (r *memUserRepo) Ensure(ctx context.Context, id, name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[id]; ok {
		return nil
	}
	now := time.Now()
	r.users[id] = &domain.User{ID: id, Name: name, XP: 0, Level: 1, CreatedAt: now, UpdatedAt: now}
	return nil
}

func (r *memUserRepo) GetByID(ctx context.Context, id string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.users[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	clone := *stored
	return &clone, nil
}

func (r *memUserRepo) IncrementXP(ctx context.Context, id string, amount int64) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.users[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	stored.XP += amount
	stored.Level = domain.LevelForXP(stored.XP)
	stored.UpdatedAt = time.Now()
	clone := *stored
	return &clone, nil
}

func (r *memUserRepo) ListByXP(ctx context.Context, limit int) ([]domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.User
	for _, stored := range r.users {
		out = append(out, *stored)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].XP != out[j].XP {
			return out[i].XP > out[j].XP
		}
		return out[i].ID < out[j].ID
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

type memFocusRepo struct {
	mu       sync.Mutex
	seq      int
	sessions []domain.FocusSession
}

func newMemFocusRepo() *memFocusRepo {
	return &memFocusRepo{}
}

func (r *memFocusRepo) Create(ctx context.Context, session *domain.FocusSession) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	session.ID = "fs-" + strconv.Itoa(r.seq)
	session.CreatedAt = time.Now()
	r.sessions = append(r.sessions, *session)
	return nil
}

func (r *memFocusRepo) ListByUser(ctx context.Context, userID string, limit int) ([]domain.FocusSession, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.FocusSession
	for i := len(r.sessions) - 1; i >= 0; i-- {
		if r.sessions[i].UserID != userID {
			continue
		}
		out = append(out, r.sessions[i])
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}

func (r *memFocusRepo) DeleteAll(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions = nil
	return nil
}
