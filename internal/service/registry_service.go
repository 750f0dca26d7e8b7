package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/connect-campus/peer-session-service/internal/domain"
	"github.com/connect-campus/peer-session-service/internal/events"
	"github.com/connect-campus/peer-session-service/internal/repository"
	apperrors "github.com/connect-campus/peer-session-service/pkg/util"
)

// RegistryService owns the help request lifecycle.
type RegistryService struct {
	requests   repository.RequestRepository
	users      repository.UserRepository
	dispatcher events.Dispatcher
}

// RegistryDependencies bundles collaborators for the registry.
type RegistryDependencies struct {
	RequestRepo repository.RequestRepository
	UserRepo    repository.UserRepository
	Dispatcher  events.Dispatcher
}

// RequestCreateInput describes request creation payload.
type RequestCreateInput struct {
	Title       string
	Description string
}

// NewRegistryService constructs the service.
func NewRegistryService(deps RegistryDependencies) *RegistryService {
	return &RegistryService{
		requests:   deps.RequestRepo,
		users:      deps.UserRepo,
		dispatcher: deps.Dispatcher,
	}
}

// Create opens a new help request for a requester.
func (s *RegistryService) Create(ctx context.Context, requesterID string, input RequestCreateInput) (*domain.HelpRequest, error) {
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, apperrors.NewValidationError("title required", nil)
	}
	if strings.TrimSpace(requesterID) == "" {
		return nil, apperrors.NewValidationError("requester required", nil)
	}

	// auto-provision the participant record on first use
	if err := s.users.Ensure(ctx, requesterID, requesterID); err != nil {
		return nil, apperrors.MapError(err)
	}

	request := &domain.HelpRequest{
		RequesterID: requesterID,
		Title:       title,
		Description: strings.TrimSpace(input.Description),
		Status:      domain.RequestStatusOpen,
	}
	if err := s.requests.Create(ctx, request); err != nil {
		return nil, apperrors.MapError(err)
	}

	s.publishEvent(ctx, events.Event{
		Type:      events.EventRequestCreated,
		RequestID: request.ID,
		ActorID:   requesterID,
		Payload: events.RequestCreatedPayload{
			Title:       request.Title,
			RequesterID: requesterID,
		},
	})
	return request, nil
}

// List returns requests newest-first, optionally filtered by status.
func (s *RegistryService) List(ctx context.Context, status *domain.RequestStatus, limit, offset int) ([]domain.HelpRequest, error) {
	if status != nil && !status.Valid() {
		return nil, apperrors.NewValidationError("unknown status filter", map[string]any{"status": *status})
	}
	result, err := s.requests.List(ctx, repository.RequestFilter{Status: status, Limit: limit, Offset: offset})
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return result, nil
}

// Get fetches a single request.
func (s *RegistryService) Get(ctx context.Context, requestID string) (*domain.HelpRequest, error) {
	request, err := s.requests.GetByID(ctx, requestID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("request", map[string]any{"request_id": requestID})
		}
		return nil, apperrors.MapError(err)
	}
	return request, nil
}

// Accept assigns a helper to an open request. Exactly one acceptor wins under
// race; the conditional update in the repository is the arbiter.
func (s *RegistryService) Accept(ctx context.Context, requestID, helperID string) (*domain.HelpRequest, error) {
	if strings.TrimSpace(helperID) == "" {
		return nil, apperrors.NewValidationError("helper required", nil)
	}

	current, err := s.Get(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if current.RequesterID == helperID {
		return nil, apperrors.NewSelfAccept(requestID)
	}
	if current.Status != domain.RequestStatusOpen {
		return nil, apperrors.NewInvalidState("request not open to accept",
			map[string]any{"request_id": requestID, "status": current.Status})
	}

	if err := s.users.Ensure(ctx, helperID, helperID); err != nil {
		return nil, apperrors.MapError(err)
	}

	request, err := s.requests.Accept(ctx, requestID, helperID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			// lost the race: someone accepted between our read and the update
			return nil, apperrors.NewInvalidState("request not open to accept",
				map[string]any{"request_id": requestID})
		}
		return nil, apperrors.MapError(err)
	}

	s.publishEvent(ctx, events.Event{
		Type:      events.EventRequestAccepted,
		RequestID: request.ID,
		ActorID:   helperID,
		Payload:   events.RequestAcceptedPayload{HelperID: helperID},
	})
	return request, nil
}

// Complete moves an accepted request to completed. Idempotent: completing an
// already-completed request returns the current record unchanged. Completing
// a request that was never accepted is an invalid lifecycle skip.
func (s *RegistryService) Complete(ctx context.Context, requestID string) (*domain.HelpRequest, error) {
	request, err := s.requests.CompleteIfAccepted(ctx, requestID)
	if err == nil {
		s.publishEvent(ctx, events.Event{
			Type:      events.EventRequestCompleted,
			RequestID: request.ID,
			Payload: events.RequestCompletedPayload{
				OldStatus: domain.RequestStatusAccepted,
				NewStatus: domain.RequestStatusCompleted,
			},
		})
		return request, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.MapError(err)
	}

	current, getErr := s.Get(ctx, requestID)
	if getErr != nil {
		return nil, getErr
	}
	if current.Status == domain.RequestStatusCompleted {
		return current, nil
	}
	return nil, apperrors.NewInvalidState("request was never accepted",
		map[string]any{"request_id": requestID, "status": current.Status})
}

// Reset clears the whole registry. Admin-only at the transport layer.
func (s *RegistryService) Reset(ctx context.Context) error {
	if err := s.requests.DeleteAll(ctx); err != nil {
		return apperrors.MapError(err)
	}
	return nil
}

func (s *RegistryService) publishEvent(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	_ = s.dispatcher.Publish(ctx, event)
}
