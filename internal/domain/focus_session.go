package domain

import "time"

// FocusPointsPerMinute converts Pomodoro minutes into focus points.
const FocusPointsPerMinute = 2

// FocusSession records one completed Pomodoro interval.
type FocusSession struct {
	ID          string
	UserID      string
	Topic       string
	Duration    int // minutes
	FocusPoints int
	CreatedAt   time.Time
}

// FocusPointsForDuration computes points for a session length in minutes.
func FocusPointsForDuration(minutes int) int {
	return minutes * FocusPointsPerMinute
}
