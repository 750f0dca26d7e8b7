package domain

import "time"

// XPPerLevel is the amount of experience required per level tier.
const XPPerLevel = 100

// User is a participant record. XP only grows, and only through reward
// settlement; Level is derived from XP, never authoritative on its own.
type User struct {
	ID        string
	Name      string
	XP        int64
	Level     int
	CreatedAt time.Time
	UpdatedAt time.Time
}

// LevelForXP computes the tier for a cumulative xp value.
func LevelForXP(xp int64) int {
	if xp < 0 {
		xp = 0
	}
	return int(xp/XPPerLevel) + 1
}
