package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/connect-campus/peer-session-service/internal/config"
	"github.com/connect-campus/peer-session-service/internal/domain"
	"github.com/connect-campus/peer-session-service/internal/events"
	"github.com/connect-campus/peer-session-service/internal/observability"
	"github.com/connect-campus/peer-session-service/internal/repository"
	apperrors "github.com/connect-campus/peer-session-service/pkg/util"
)

// SettleResult reports one settlement attempt. Applied is true only for the
// single attempt that won the accepted -> completed transition.
type SettleResult struct {
	Applied   bool
	Request   *domain.HelpRequest
	Helper    *domain.User
	Requester *domain.User
}

// SettlementService applies experience credit exactly once per completed
// session. The dedup marker is the request's own status: whichever caller
// performs the accepted -> completed transition applies the credit, every
// other caller observes Applied=false and mutates nothing.
type SettlementService struct {
	requests    repository.RequestRepository
	users       repository.UserRepository
	leaderboard *LeaderboardService
	dispatcher  events.Dispatcher
	metrics     *observability.Metrics
	cfg         config.RewardConfig
}

// SettlementDependencies bundles collaborators.
type SettlementDependencies struct {
	RequestRepo repository.RequestRepository
	UserRepo    repository.UserRepository
	Leaderboard *LeaderboardService
	Dispatcher  events.Dispatcher
	Metrics     *observability.Metrics
}

// NewSettlementService constructs the service.
func NewSettlementService(cfg config.RewardConfig, deps SettlementDependencies) *SettlementService {
	if cfg.RequesterDivisor <= 0 {
		cfg.RequesterDivisor = 3
	}
	if cfg.DefaultAmount <= 0 {
		cfg.DefaultAmount = 100
	}
	return &SettlementService{
		requests:    deps.RequestRepo,
		users:       deps.UserRepo,
		leaderboard: deps.Leaderboard,
		dispatcher:  deps.Dispatcher,
		metrics:     deps.Metrics,
		cfg:         cfg,
	}
}

// DefaultAmount exposes the configured helper reward.
func (s *SettlementService) DefaultAmount() int64 {
	return int64(s.cfg.DefaultAmount)
}

// Settle credits helper and requester for a terminated session. The requester
// share is amount divided by the policy divisor (observed 100:33 split in the
// product, so divisor 3).
func (s *SettlementService) Settle(ctx context.Context, requestID, requesterID, helperID string, amount int64) (*SettleResult, error) {
	if amount <= 0 {
		return nil, apperrors.NewValidationError("amount must be positive", map[string]any{"amount": amount})
	}

	current, err := s.requests.GetByID(ctx, requestID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("request", map[string]any{"request_id": requestID})
		}
		return nil, apperrors.MapError(err)
	}
	if current.Status == domain.RequestStatusOpen {
		return nil, apperrors.NewInvalidState("request was never accepted",
			map[string]any{"request_id": requestID})
	}
	if current.RequesterID != requesterID || current.HelperID == nil || *current.HelperID != helperID {
		return nil, apperrors.NewValidationError("participants do not match request record",
			map[string]any{"request_id": requestID})
	}

	completed, err := s.requests.CompleteIfAccepted(ctx, requestID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			// lost the gate: already completed, credit already applied elsewhere
			s.metrics.RecordSettlement(false)
			latest, getErr := s.requests.GetByID(ctx, requestID)
			if getErr != nil {
				latest = current
			}
			return &SettleResult{Applied: false, Request: latest}, nil
		}
		return nil, apperrors.MapError(err)
	}

	helperShare := amount
	requesterShare := amount / int64(s.cfg.RequesterDivisor)

	helper, err := s.users.IncrementXP(ctx, helperID, helperShare)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	requester, err := s.users.IncrementXP(ctx, requesterID, requesterShare)
	if err != nil {
		return nil, apperrors.MapError(err)
	}

	s.leaderboard.Record(ctx, helper)
	s.leaderboard.Record(ctx, requester)
	s.metrics.RecordSettlement(true)

	s.publishEvent(ctx, events.Event{
		Type:      events.EventRequestCompleted,
		RequestID: requestID,
		Payload: events.RequestCompletedPayload{
			OldStatus: domain.RequestStatusAccepted,
			NewStatus: domain.RequestStatusCompleted,
		},
	})
	s.publishEvent(ctx, events.Event{
		Type:      events.EventXPAwarded,
		RequestID: requestID,
		ActorID:   helperID,
		Payload: events.XPAwardedPayload{
			UserID: helper.ID, Amount: helperShare, XP: helper.XP, Level: helper.Level,
		},
	})
	s.publishEvent(ctx, events.Event{
		Type:      events.EventXPAwarded,
		RequestID: requestID,
		ActorID:   requesterID,
		Payload: events.XPAwardedPayload{
			UserID: requester.ID, Amount: requesterShare, XP: requester.XP, Level: requester.Level,
		},
	})

	return &SettleResult{
		Applied:   true,
		Request:   completed,
		Helper:    helper,
		Requester: requester,
	}, nil
}

func (s *SettlementService) publishEvent(ctx context.Context, event events.Event) {
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
