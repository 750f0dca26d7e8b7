package dto

import (
	"time"

	"github.com/connect-campus/peer-session-service/internal/domain"
)

// CreateRequestRequest payload.
type CreateRequestRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

// SettleRequest payload. Amount falls back to the configured default.
type SettleRequest struct {
	Amount int64 `json:"amount"`
}

// RequestResponse response.
type RequestResponse struct {
	ID          string               `json:"id"`
	RequesterID string               `json:"requester_id"`
	HelperID    *string              `json:"helper_id"`
	Title       string               `json:"title"`
	Description string               `json:"description"`
	Status      domain.RequestStatus `json:"status"`
	RoomID      string               `json:"room_id"`
	CreatedAt   time.Time            `json:"created_at"`
	UpdatedAt   time.Time            `json:"updated_at"`
	CompletedAt *time.Time           `json:"completed_at,omitempty"`
}

// SettleResponse response.
type SettleResponse struct {
	Applied   bool            `json:"applied"`
	Request   RequestResponse `json:"request"`
	Helper    *UserResponse   `json:"helper,omitempty"`
	Requester *UserResponse   `json:"requester,omitempty"`
}
