package domain

import "time"

// RequestStatus enumerates lifecycle states for help requests. Transitions are
// monotonic: OPEN -> ACCEPTED -> COMPLETED, never backwards.
type RequestStatus string

const (
	RequestStatusOpen      RequestStatus = "OPEN"
	RequestStatusAccepted  RequestStatus = "ACCEPTED"
	RequestStatusCompleted RequestStatus = "COMPLETED"
)

// Valid reports whether the status is one of the known lifecycle states.
func (s RequestStatus) Valid() bool {
	switch s {
	case RequestStatusOpen, RequestStatusAccepted, RequestStatusCompleted:
		return true
	}
	return false
}

// HelpRequest is the aggregate for one party's ask for peer assistance.
// HelperID is non-nil iff status is ACCEPTED or COMPLETED.
type HelpRequest struct {
	ID          string
	RequesterID string
	HelperID    *string
	Title       string
	Description string
	Status      RequestStatus
	CreatedAt   time.Time
	UpdatedAt   time.Time
	CompletedAt *time.Time
}

// RoomID derives the relay room for this request. Deterministic so both
// participants rendezvous without extra coordination.
func (r *HelpRequest) RoomID() string {
	return "room-" + r.ID
}
