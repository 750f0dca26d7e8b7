package dto

import "time"

// UserResponse response.
type UserResponse struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	XP    int64  `json:"xp"`
	Level int    `json:"level"`
}

// RankedUserResponse is a leaderboard row.
type RankedUserResponse struct {
	Rank int `json:"rank"`
	UserResponse
}

// FocusSessionRequest payload.
type FocusSessionRequest struct {
	Topic    string `json:"topic"`
	Duration int    `json:"duration"`
}

// FocusSessionResponse response.
type FocusSessionResponse struct {
	ID          string    `json:"id"`
	Topic       string    `json:"topic"`
	Duration    int       `json:"duration"`
	FocusPoints int       `json:"fp"`
	CreatedAt   time.Time `json:"created_at"`
}

// FocusSessionListResponse wraps a user's sessions.
type FocusSessionListResponse struct {
	Sessions []FocusSessionResponse `json:"sessions"`
}
