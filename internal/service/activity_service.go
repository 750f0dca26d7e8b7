package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/connect-campus/peer-session-service/internal/events"
	"github.com/connect-campus/peer-session-service/internal/observability"
)

// ActivityService subscribes to domain events and records an activity trail
// in the logs plus the session counters.
type ActivityService struct {
	dispatcher events.Dispatcher
	logger     *zap.Logger
	metrics    *observability.Metrics
}

// NewActivityService creates the service.
func NewActivityService(dispatcher events.Dispatcher, logger *zap.Logger, metrics *observability.Metrics) *ActivityService {
	return &ActivityService{dispatcher: dispatcher, logger: logger, metrics: metrics}
}

// RegisterHandlers subscribes to events.
func (a *ActivityService) RegisterHandlers() {
	if a.dispatcher == nil {
		return
	}
	a.dispatcher.Subscribe(events.EventRequestCreated, a.logEvent)
	a.dispatcher.Subscribe(events.EventRequestAccepted, a.logEvent)
	a.dispatcher.Subscribe(events.EventRequestCompleted, a.logEvent)
	a.dispatcher.Subscribe(events.EventSessionStarted, a.handleSessionStarted)
	a.dispatcher.Subscribe(events.EventSessionEnded, a.handleSessionEnded)
	a.dispatcher.Subscribe(events.EventXPAwarded, a.logEvent)
}

func (a *ActivityService) logEvent(ctx context.Context, event events.Event) error {
	a.logger.Info(string(event.Type),
		zap.String("request_id", event.RequestID),
		zap.String("actor_id", event.ActorID),
		zap.Any("payload", event.Payload))
	return nil
}

func (a *ActivityService) handleSessionStarted(ctx context.Context, event events.Event) error {
	a.metrics.RecordSessionStarted()
	return a.logEvent(ctx, event)
}

func (a *ActivityService) handleSessionEnded(ctx context.Context, event events.Event) error {
	a.metrics.RecordSessionEnded()
	return a.logEvent(ctx, event)
}
