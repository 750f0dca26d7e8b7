package events

import (
	"time"

	"github.com/connect-campus/peer-session-service/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventRequestCreated   EventType = "request_created"
	EventRequestAccepted  EventType = "request_accepted"
	EventRequestCompleted EventType = "request_completed"
	EventSessionStarted   EventType = "session_started"
	EventSessionEnded     EventType = "session_ended"
	EventXPAwarded        EventType = "xp_awarded"
)

// Event represents a domain event emitted by services.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	RequestID string      `json:"request_id"`
	ActorID   string      `json:"actor_id"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// RequestCreatedPayload payload.
type RequestCreatedPayload struct {
	Title       string `json:"title"`
	RequesterID string `json:"requester_id"`
}

// RequestAcceptedPayload payload.
type RequestAcceptedPayload struct {
	HelperID string `json:"helper_id"`
}

// RequestCompletedPayload payload.
type RequestCompletedPayload struct {
	OldStatus domain.RequestStatus `json:"old_status"`
	NewStatus domain.RequestStatus `json:"new_status"`
}

// SessionStartedPayload payload.
type SessionStartedPayload struct {
	RoomID string `json:"room_id"`
}

// SessionEndedPayload payload.
type SessionEndedPayload struct {
	RoomID  string `json:"room_id"`
	Trigger string `json:"trigger"` // "end" or "disconnect"
}

// XPAwardedPayload payload.
type XPAwardedPayload struct {
	UserID string `json:"user_id"`
	Amount int64  `json:"amount"`
	XP     int64  `json:"xp"`
	Level  int    `json:"level"`
}
